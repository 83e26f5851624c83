package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spektr-org/plotdash/server"
)

// NewServeCmd returns the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			cfg, b, err := loadBinder(cc)
			if err != nil {
				return err
			}

			addr, err := cc.Flags().GetString("addr")
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			srv := server.New(b,
				server.WithTheme(server.Theme{
					Background: cfg.Theme.Background,
					Header:     cfg.Theme.Header,
					Text:       cfg.Theme.Text,
					Font:       cfg.Theme.Font,
				}),
				server.WithImage(cfg.ImageFormat(), cfg.ImageSize()),
				server.WithFigureOptions(cfg.FigureOptions()...),
				server.WithShutdownTimeout(cfg.Server.ShutdownDuration()),
				server.WithLogger(slog.Default()),
			)

			ctx, stop := signal.NotifyContext(cc.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default from config, :8050)")

	return cmd
}
