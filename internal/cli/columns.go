package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/spektr-org/plotdash/schema"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// NewColumnsCmd returns the columns command.
func NewColumnsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns",
		Short: "Show the columns of the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			tbl, err := loadTable(cc)
			if err != nil {
				return err
			}

			output, err := cc.Flags().GetString("output")
			if err != nil {
				return err
			}

			sch := tbl.Schema()
			switch output {
			case "json":
				b, err := json.MarshalIndent(sch, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal schema: %w", err)
				}
				cc.Println(string(b))
			case "table", "":
				cc.Println(columnsTable(sch))
			default:
				return fmt.Errorf("invalid output %q, expected table or json", output)
			}
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "table", "Output format (table, json)")

	return cmd
}

func columnsTable(sch schema.Config) string {
	rows := make([][]string, 0, len(sch.Columns))
	for _, c := range sch.Columns {
		rows = append(rows, []string{
			c.Name,
			string(c.Kind),
			string(c.Role),
			strconv.Itoa(c.NullCount),
			strconv.Itoa(c.UniqueCount),
			strings.Join(c.SampleValues, ", "),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("COLUMN", "KIND", "ROLE", "NULLS", "UNIQUE", "SAMPLES").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	return fmt.Sprintf("%s: %d rows\n%s", sch.Name, sch.Rows, t.Render())
}
