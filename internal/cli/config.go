package cli

import (
	"github.com/spf13/cobra"

	"github.com/spektr-org/plotdash/config"
)

// NewConfigCmd returns the config command.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the dashboard configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the config file",
		Args:  cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			b, err := config.JSONSchema()
			if err != nil {
				return err
			}
			cc.Println(string(b))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cc)
			if err != nil {
				return err
			}
			return cfg.Save(cc.OutOrStdout())
		},
	})

	return cmd
}
