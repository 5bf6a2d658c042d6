package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/keepmind9/rosebot/internal/core"
	"github.com/keepmind9/rosebot/internal/health"
	"github.com/keepmind9/rosebot/internal/logger"
	"github.com/spf13/cobra"
)

var (
	webConfigFile string

	webCmd = &cobra.Command{
		Use:   "web",
		Short: "Run only the health web service",
		Long: `Run the health web service without the bot. Useful on hosting
platforms that probe a web port while the bot runs elsewhere. No
Telegram credentials are required.`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()

			config, err := core.LoadConfig(webConfigFile)
			if err != nil {
				log.Fatalf("Failed to load config: %v", err)
			}

			logConfig := logger.Config{
				Level:        config.Logging.Level,
				File:         config.Logging.File,
				MaxSize:      config.Logging.MaxSize,
				MaxBackups:   config.Logging.MaxBackups,
				MaxAge:       config.Logging.MaxAge,
				Compress:     config.Logging.Compress,
				EnableStdout: config.Logging.EnableStdout,
			}
			if err := logger.InitLogger(logConfig); err != nil {
				log.Fatalf("Failed to initialize logger: %v", err)
			}

			server := health.NewServer(config.Health.Port)

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			errChan := make(chan error, 1)
			go func() {
				errChan <- server.Start()
			}()

			select {
			case sig := <-sigChan:
				logger.WithField("signal", sig.String()).Info("shutdown-signal-received")
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(ctx); err != nil {
					logger.Errorf("health-server-shutdown-error: %v", err)
				}
				<-errChan
			case err := <-errChan:
				if err != nil {
					log.Fatalf("Health server error: %v", err)
				}
			}
		},
	}
)

func init() {
	webCmd.Flags().StringVarP(&webConfigFile, "config", "c", "config.yaml", "Configuration file path")
}
