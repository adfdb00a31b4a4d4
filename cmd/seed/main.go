package main

import (
	"fmt"
	"os"

	"github.com/ikkim/memolite-backend/config"
	"github.com/ikkim/memolite-backend/internal/db"
	"github.com/ikkim/memolite-backend/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	cfg       *config.Config
	assumeYes bool
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "memolite maintenance commands",
	Long: `Maintenance commands for a memolite database: create an admin account,
import memos from an XLSX workbook and remove unused tags.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger.Initialize(logger.Config{
			Level:       logLevel,
			Format:      "console",
			EnableColor: true,
		})

		if err := db.Initialize(&cfg.Database); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		return db.Migrate()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return db.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// confirm 사용자 확인 (--yes면 생략)
func confirm(cmd *cobra.Command, prompt string) bool {
	if assumeYes {
		return true
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (yes/no): ", prompt)
	var answer string
	fmt.Fscanln(cmd.InOrStdin(), &answer)
	return answer == "yes" || answer == "y"
}
