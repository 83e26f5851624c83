package main

import (
	"fmt"
	"os"

	"github.com/spektr-org/plotdash/internal/cli"
)

const (
	cmdName = "plotdash"

	shortDesc = "Reactive chart dashboard for tabular data."
	longDesc  = `Plotdash serves a dashboard over one CSV dataset: a paged table of the
rows and three chart slots (box, scatter, histogram). Each slot has dropdown
controls that pick the columns for its x, y and color encodings, and every
change re-renders the chart.

Without a dataset the bundled penguins sample is shown.
`
)

func main() {
	cmd := cli.NewRootCmd(cmdName, shortDesc, longDesc)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
