package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"log/slog"

	"github.com/aanasc4/data-integration/config"
	"github.com/aanasc4/data-integration/logger"
	"github.com/aanasc4/data-integration/pipeline"
	"github.com/aanasc4/data-integration/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "itbi",
	Short: "ETL and ELT pipelines for the Recife ITBI open data",
	// Execute prints returned errors
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newETLCmd())
	rootCmd.AddCommand(newELTCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
}

func isRunningOnGitHubActions() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

func initializeConfigAndLogger() (*config.Config, *slog.Logger, error) {
	log := logger.NewLogger()
	if !isRunningOnGitHubActions() {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Error("Error loading .env file")
			return nil, nil, err
		}
	}

	// 1. Open the base configuration file, found in the working directory or above it
	basePath, err := utils.FindUp(".", "config.base.yaml")
	if err != nil {
		log.Error(fmt.Sprintf("Error locating base config file: %v", err))
		return nil, nil, err
	}
	baseConfigFile, err := os.Open(basePath)
	if err != nil {
		log.Error(fmt.Sprintf("Error opening base config file: %v", err))
		return nil, nil, err
	}
	defer baseConfigFile.Close()

	// 2. Prepare environment-specific config reader (if needed)
	env := os.Getenv("APP_ENV")
	var envConfigReader io.Reader
	envConfigFilename := filepath.Join(filepath.Dir(basePath), fmt.Sprintf("config.%s.yaml", env))
	if _, err := os.Stat(envConfigFilename); err == nil {
		envConfigFile, err := os.Open(envConfigFilename)
		if err != nil {
			log.Error(fmt.Sprintf("Error opening environment config file: %v", err))
			return nil, nil, err
		}
		defer envConfigFile.Close()
		envConfigReader = envConfigFile
	}

	// 3. Create the config
	cfg, err := config.NewConfig(baseConfigFile, envConfigReader, env)
	if err != nil {
		log.Error(fmt.Sprintf("Error reading config: %v", err))
		return nil, nil, err
	}

	return cfg, log, nil
}

// newPipeline loads the configuration and opens the warehouse.
func newPipeline() (*pipeline.Pipeline, *slog.Logger, error) {
	cfg, log, err := initializeConfigAndLogger()
	if err != nil {
		return nil, nil, err
	}

	p, err := pipeline.NewPipeline(cfg, log, utils.RealTimeProvider{})
	if err != nil {
		log.Error(fmt.Sprintf("Error creating pipeline: %v", err))
		return nil, nil, err
	}
	return p, p.Logger, nil
}
