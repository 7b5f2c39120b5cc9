package main

import (
	"io"

	"sheetlog/internal/config"
	"sheetlog/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string

	cfg       *config.Config
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:           "sheetlog",
	Short:         "Append records to Excel logbooks and copy sheet ranges",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the TOML configuration file")

	rootCmd.AddCommand(appendCmd, copyRangeCmd, mergeCmd, recordCmd, formsCmd, statusCmd, journalCmd)
}

// setup loads .env, the configuration and the log file.
func setup() error {
	_ = godotenv.Load()

	loaded, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		return err
	}
	cfg = loaded

	closer, err := logger.Setup(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}
	logCloser = closer
	return nil
}

func teardown() {
	if logCloser != nil {
		logCloser.Close()
		logCloser = nil
	}
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		logger.Error("Command failed", "error", err)
	}
	teardown()
	return err
}
