package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/keepmind9/rosebot/internal/core"
	"github.com/spf13/cobra"
)

var (
	validateConfigFlag string
	validateJSON       bool
)

// ValidationResult represents the validation result
type ValidationResult struct {
	Valid           bool     `json:"valid"`
	Config          string   `json:"config"`
	AuthorizedUsers int      `json:"authorized_users"`
	WarnThreshold   int      `json:"warn_threshold"`
	Enforce         bool     `json:"enforce"`
	Errors          []string `json:"errors,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the rosebot configuration file",
	Long: `Validate the rosebot configuration file without starting the service.

This command checks:
  - YAML syntax and environment variable expansion
  - Telegram credentials
  - AI allow-list user ids
  - Moderation and polling settings

Exit codes:
  0 - Configuration is valid
  1 - Configuration has errors`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()

		configFile := validateConfigFlag
		if configFile == "" {
			for _, loc := range []string{
				"config.yaml",
				filepath.Join(os.Getenv("HOME"), ".config/rosebot/config.yaml"),
				"/etc/rosebot/config.yaml",
			} {
				if _, err := os.Stat(loc); err == nil {
					configFile = loc
					break
				}
			}
		}

		if configFile == "" {
			fmt.Println("❌ No configuration file found")
			fmt.Println("\nSpecify a config file with --config or ensure one exists at:")
			fmt.Println("  - ./config.yaml")
			fmt.Println("  - ~/.config/rosebot/config.yaml")
			fmt.Println("  - /etc/rosebot/config.yaml")
			os.Exit(1)
		}

		cfg, err := core.LoadConfig(configFile)
		if err != nil {
			result := ValidationResult{
				Valid:  false,
				Config: configFile,
				Errors: []string{err.Error()},
			}
			outputValidationResult(result, validateJSON)
			os.Exit(1)
		}

		result := ValidationResult{
			Valid:           true,
			Config:          configFile,
			AuthorizedUsers: cfg.AuthorizedUserCount(),
			WarnThreshold:   cfg.Moderation.WarnThreshold,
			Enforce:         cfg.Moderation.Enforce,
			Warnings:        validateConfigDetails(cfg),
		}

		outputValidationResult(result, validateJSON)
	},
}

func validateConfigDetails(cfg *core.Config) []string {
	var warnings []string

	if cfg.Telegram.Token == "" {
		warnings = append(warnings, "telegram.token is empty - the start command will refuse to run")
	}
	if cfg.AIConfigured() && cfg.AuthorizedUserCount() == 0 {
		warnings = append(warnings, "AI key is set but security.authorized_users is empty - nobody can use /ai")
	}
	if !cfg.AIConfigured() && cfg.AuthorizedUserCount() > 0 {
		warnings = append(warnings, "security.authorized_users is set but no AI key is configured")
	}
	if !cfg.Moderation.Enforce {
		warnings = append(warnings, "moderation.enforce is off - ban, kick and del are acknowledgement-only")
	}

	return warnings
}

func outputValidationResult(result ValidationResult, jsonFormat bool) {
	if jsonFormat {
		output, err := json.Marshal(result)
		if err != nil {
			fmt.Printf("{\"error\": \"failed to marshal json: %v\"}\n", err)
			return
		}
		fmt.Println(string(output))
		return
	}

	if result.Valid {
		fmt.Println("✓ Configuration is valid")
		fmt.Printf("  - Config: %s\n", result.Config)
		fmt.Printf("  - AI authorized users: %d\n", result.AuthorizedUsers)
		fmt.Printf("  - Warn threshold: %d\n", result.WarnThreshold)
		fmt.Printf("  - Enforcement: %v\n", result.Enforce)
		if len(result.Warnings) > 0 {
			fmt.Println("\n⚠️  Warnings:")
			for _, warning := range result.Warnings {
				fmt.Printf("  - %s\n", warning)
			}
		}
	} else {
		fmt.Println("❌ Configuration validation failed:")
		for _, errMsg := range result.Errors {
			fmt.Printf("  - %s\n", errMsg)
		}
	}
}

func init() {
	validateCmd.Flags().StringVarP(&validateConfigFlag, "config", "c", "", "Configuration file path")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output in JSON format")
}
