package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/csvask-cli/internal/render"
)

var (
	colFormat string
	colLoad   loadFlags
)

var columnsCmd = &cobra.Command{
	Use:   "columns <file>",
	Short: "Print the inferred column kinds of a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := render.ParseFormat(colFormat)
		if err != nil {
			return err
		}
		d, err := colLoad.load(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "File: %s\nRows: %d\nColumns: %d\n\n", d.Name, d.NumRows(), d.NumCols())
		fmt.Fprint(out, render.Schema(d, format))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(columnsCmd)
	columnsCmd.Flags().StringVar(&colFormat, "format", "text", "table format: text | markdown")
	colLoad.register(columnsCmd)
}
