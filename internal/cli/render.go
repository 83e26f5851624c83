package cli

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/spektr-org/plotdash/engine"
	"github.com/spektr-org/plotdash/figure"
	"github.com/spektr-org/plotdash/render"
)

// NewRenderCmd returns the render command.
func NewRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render SLOT",
		Short: "Render one chart slot to an image file",
		Long: `Render one chart slot to an image file.

Controls start at their defaults. --x, --y and --color select other columns;
an empty value clears an optional control.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cc *cobra.Command, args []string) error {
			cfg, b, err := loadBinder(cc)
			if err != nil {
				return err
			}
			flags := cc.Flags()
			slotID := args[0]

			values := make(map[engine.Role]string)
			for _, role := range []engine.Role{engine.RoleX, engine.RoleY, engine.RoleColor} {
				if !flags.Changed(string(role)) {
					continue
				}
				v, err := flags.GetString(string(role))
				if err != nil {
					return err
				}
				values[role] = v
			}

			sel, err := b.Select(slotID, values)
			if err != nil {
				return err
			}
			spec, err := b.Render(slotID, sel)
			if err != nil {
				return err
			}

			fig, err := figure.Build(b.Dataset(), spec, cfg.FigureOptions()...)
			if err != nil {
				return err
			}

			format := cfg.ImageFormat()
			if flags.Changed("format") {
				raw, err := flags.GetString("format")
				if err != nil {
					return err
				}
				format, err = render.ParseFormat(raw)
				if err != nil {
					return err
				}
			}

			var buf bytes.Buffer
			if err := render.Write(&buf, fig, format, cfg.ImageSize()); err != nil {
				return err
			}

			out, err := flags.GetString("out")
			if err != nil {
				return err
			}
			if out == "-" {
				_, err = cc.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if out == "" {
				out = fmt.Sprintf("%s.%s", slotID, format)
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o600); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			slog.Info("chart written",
				slog.String("slot", slotID),
				slog.String("x", spec.X),
				slog.String("y", spec.Y),
				slog.String("color", spec.Color),
				slog.String("file", out),
			)
			return nil
		},
	}

	cmd.Flags().String("x", "", "Column for the x encoding")
	cmd.Flags().String("y", "", "Column for the y encoding")
	cmd.Flags().String("color", "", "Column for the color encoding")
	cmd.Flags().StringP("out", "o", "", "Output file, - for stdout (default SLOT.FORMAT)")
	cmd.Flags().String("format", "", "Image format (png, svg)")

	return cmd
}
