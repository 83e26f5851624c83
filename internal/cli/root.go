package cli

import (
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/spektr-org/plotdash/config"
	"github.com/spektr-org/plotdash/dataset"
	"github.com/spektr-org/plotdash/engine"
	"github.com/spektr-org/plotdash/logging"
)

// Version is set at build time.
var Version = "0.1.0"

func NewRootCmd(name, shortDesc, longDesc string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           name,
		Short:         shortDesc,
		Long:          longDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}

	cmd.PersistentFlags().String("log_level", "warn", "Set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log_format", "text", "Set the log format (text, logfmt, json)")
	cmd.PersistentFlags().String("config", "", "Dashboard config file (.toml, .yaml)")
	cmd.PersistentFlags().String("data", "", "CSV file to show instead of the configured dataset")

	cmd.PersistentPreRunE = func(cc *cobra.Command, _ []string) error {
		flags := cc.Flags()

		var merr error

		logLevel, err := flags.GetString("log_level")
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		logFormat, err := flags.GetString("log_format")
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		if merr != nil {
			return fmt.Errorf("invalid argument: %w", merr)
		}

		h, err := logging.CreateHandler(cc.ErrOrStderr(), logLevel, logFormat)
		if err != nil {
			return fmt.Errorf("failed creating log handler: %w", err)
		}
		slog.SetDefault(slog.New(h))

		return nil
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewRenderCmd())
	cmd.AddCommand(NewColumnsCmd())
	cmd.AddCommand(NewConfigCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// NewVersionCmd returns the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version of the dashboard CLI",
		Run: func(cc *cobra.Command, _ []string) {
			cc.Println(Version)
		},
	}
}

// loadConfig reads --config (or the defaults) and applies --data.
func loadConfig(cc *cobra.Command) (*config.Config, error) {
	flags := cc.Flags()

	path, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	data, err := flags.GetString("data")
	if err != nil {
		return nil, err
	}

	cfg := config.Default()
	if path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}
	if data != "" {
		cfg.Dataset.Path = data
		cfg.Dataset.Name = ""
	}

	return cfg, nil
}

// loadBinder loads the configured dataset and binds the slot table to it.
func loadBinder(cc *cobra.Command) (*config.Config, *engine.Binder, error) {
	cfg, err := loadConfig(cc)
	if err != nil {
		return nil, nil, err
	}

	tbl, err := cfg.LoadDataset()
	if err != nil {
		return nil, nil, fmt.Errorf("load dataset: %w", err)
	}
	slog.Debug("dataset loaded",
		slog.String("name", tbl.Name()),
		slog.Int("rows", tbl.Len()),
		slog.Int("columns", len(tbl.ColumnNames())),
	)

	b, err := engine.New(tbl, cfg.ToSlots(), cfg.EngineOptions(slog.Default())...)
	if err != nil {
		return nil, nil, err
	}

	return cfg, b, nil
}

// loadTable loads the configured dataset only.
func loadTable(cc *cobra.Command) (*dataset.Table, error) {
	cfg, err := loadConfig(cc)
	if err != nil {
		return nil, err
	}
	return cfg.LoadDataset()
}
