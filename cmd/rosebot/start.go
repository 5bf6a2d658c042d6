package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/keepmind9/rosebot/internal/ai"
	"github.com/keepmind9/rosebot/internal/bot"
	"github.com/keepmind9/rosebot/internal/core"
	"github.com/keepmind9/rosebot/internal/health"
	"github.com/keepmind9/rosebot/internal/logger"
	"github.com/keepmind9/rosebot/internal/watchdog"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configFile string

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the rosebot main process",
		Long:  "Start the rosebot main process: poll Telegram for updates and serve health probes",
		Run: func(cmd *cobra.Command, args []string) {
			// Best effort: a missing .env is fine, variables may come from
			// the real environment
			_ = godotenv.Load()

			config, err := core.LoadConfig(configFile)
			if err != nil {
				log.Fatalf("Failed to load config: %v", err)
			}

			if config.Telegram.Token == "" {
				log.Fatalf("Telegram token is missing: set telegram.token in %s", configFile)
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

			logger.WithFields(logrus.Fields{
				"config_file":      configFile,
				"log_level":        config.Logging.Level,
				"warn_threshold":   config.Moderation.WarnThreshold,
				"enforce":          config.Moderation.Enforce,
				"authorized_users": config.AuthorizedUserCount(),
				"ai_configured":    config.AIConfigured(),
			}).Info("rosebot-starting")

			telegram := bot.NewTelegramBot(config.Telegram.Token)
			if err := telegram.Connect(); err != nil {
				log.Fatalf("Failed to connect to Telegram: %v", err)
			}

			var assistant core.AIClient
			if config.AIConfigured() {
				assistant = ai.NewClient(config.AI.APIKey, config.AI.Model)
			} else {
				logger.Warn("ai-api-key-not-set-ai-commands-disabled")
			}

			engine := core.NewEngine(config, telegram, assistant)

			supervisor := watchdog.NewSupervisor(telegram, engine, watchdog.Policy{
				Timeout:     config.PollTimeout(),
				BatchLimit:  config.Polling.BatchLimit,
				MaxAttempts: config.Polling.MaxAttempts,
				RetryDelay:  config.RetryDelay(),
				Backoff:     config.Polling.Backoff,
			})

			healthServer := health.NewServer(config.Health.Port)
			go func() {
				if err := healthServer.Start(); err != nil {
					logger.Errorf("health-server-failed: %v", err)
				}
			}()
			healthServer.SetBotRunning(true)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			pollErrChan := make(chan error, 1)
			go func() {
				fmt.Println("rosebot polling started, press Ctrl+C to stop")
				pollErrChan <- supervisor.Run(ctx)
			}()

			exitCode := 0
			select {
			case sig := <-sigChan:
				logger.WithField("signal", sig.String()).Info("shutdown-signal-received")
				cancel()
				<-pollErrChan
			case err := <-pollErrChan:
				if err != nil && err != watchdog.ErrCancelled {
					logger.Errorf("polling-stopped-with-error: %v", err)
					exitCode = 1
				}
			}

			healthServer.SetBotRunning(false)
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := healthServer.Shutdown(shutdownCtx); err != nil {
				logger.Errorf("health-server-shutdown-error: %v", err)
			}

			logger.Info("rosebot-stopped")
			if exitCode != 0 {
				os.Exit(exitCode)
			}
		},
	}
)

func init() {
	startCmd.Flags().StringVarP(&configFile, "config", "c", "config.yaml", "Configuration file path")
}
