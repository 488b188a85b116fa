package commands

import (
	"github.com/spf13/cobra"

	"github.com/shoplist/shoplist-cli/internal/config"
	"github.com/shoplist/shoplist-cli/internal/output"
)

// NewConfigCmd creates the config command.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
		Long: `Inspect shoplist configuration.

Configuration is loaded from multiple sources with the following precedence:
  flags > env > local > global > defaults

Config locations:
  - Global: $XDG_CONFIG_HOME/shoplist/config.yaml
  - Local:  .shoplist/config.yaml`,
		Args: cobra.NoArgs,
		RunE: runConfigShow,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show effective configuration",
			Long:  "Display the current effective configuration with source information.",
			Args:  cobra.NoArgs,
			RunE:  runConfigShow,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show config and log file locations",
			Args:  cobra.NoArgs,
			RunE:  runConfigPath,
		},
	)

	return cmd
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	app, err := requireApp(cmd)
	if err != nil {
		return err
	}

	configData := make(map[string]any, len(config.Keys))
	for _, key := range config.Keys {
		value := app.Config.Value(key)
		if value == "" {
			continue
		}
		source := app.Config.Sources[key]
		if source == "" {
			source = string(config.SourceDefault)
		}
		configData[key] = map[string]string{
			"value":  value,
			"source": source,
		}
	}

	return app.OK(configData,
		output.WithSummary("Effective configuration"),
		output.WithBreadcrumbs(output.Breadcrumb{
			Action:      "path",
			Cmd:         "shoplist config path",
			Description: "Show where config is read from",
		}),
	)
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	app, err := requireApp(cmd)
	if err != nil {
		return err
	}

	logFile := app.Config.LogFile
	if logFile == "" {
		logFile = config.DefaultLogFile()
	}
	return app.OK(map[string]string{
		"global_config": config.GlobalConfigPath(),
		"log_file":      logFile,
	}, output.WithSummary("Configuration paths"))
}
