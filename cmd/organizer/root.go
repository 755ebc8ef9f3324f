package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kirillkom/file-organizer/internal/config"
	"github.com/kirillkom/file-organizer/internal/observability/logging"
)

type commandContext struct {
	configFile *string
	backend    *string
	logLevel   *string
}

// loadConfig reads the environment, honouring --config, --backend and
// --log-level overrides. A --config file that cannot be read is an error.
func (c *commandContext) loadConfig() (config.Config, error) {
	var cfg config.Config
	if *c.configFile != "" {
		loaded, err := config.LoadFrom(*c.configFile)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	} else {
		cfg = config.Load()
	}
	if *c.backend != "" {
		cfg.ClassifierBackend = strings.ToLower(strings.TrimSpace(*c.backend))
	}
	if *c.logLevel != "" {
		cfg.LogLevel = *c.logLevel
	}
	return cfg, nil
}

func newRootCommand() *cobra.Command {
	var configFlag, backendFlag, logLevelFlag string
	ctx := &commandContext{
		configFile: &configFlag,
		backend:    &backendFlag,
		logLevel:   &logLevelFlag,
	}

	rootCmd := &cobra.Command{
		Use:           "organizer",
		Short:         "Sort files into category folders by content and extension",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := logLevelFlag
			if level == "" {
				level = os.Getenv("LOG_LEVEL")
			}
			if level == "" {
				level = "warn"
			}
			slog.SetDefault(logging.NewTextLogger(cmd.ErrOrStderr(), level))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Classifier backend: huggingface, ollama, openai or none")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level written to stderr")

	rootCmd.AddCommand(newOrganizeCommand(ctx))
	rootCmd.AddCommand(newBundleCommand(ctx))
	rootCmd.AddCommand(newCategoriesCommand())

	return rootCmd
}
