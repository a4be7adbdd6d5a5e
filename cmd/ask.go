package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/csvask-cli/internal/render"
	"github.com/KaramelBytes/csvask-cli/internal/router"
	"github.com/KaramelBytes/csvask-cli/internal/tools"
)

var (
	askTool     string
	askX        string
	askY        string
	askColumn   string
	askGroup    string
	askTime     string
	askCategory string
	askOut      string
	askFormat   string
	askJSON     bool
	askNoLLM    bool
	askAssist   bool
	askLoad     loadFlags
)

var askCmd = &cobra.Command{
	Use:   "ask <file> <question...>",
	Short: "Answer a question about a dataset with a chart and statistics",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, question := args[0], strings.Join(args[1:], " ")
		format, err := render.ParseFormat(askFormat)
		if err != nil {
			return err
		}
		d, err := askLoad.load(path)
		if err != nil {
			return err
		}
		logger := newLogger()

		var dec router.Decision
		if askTool != "" {
			t, ok := router.Parse(askTool)
			if !ok {
				return fmt.Errorf("unknown --tool %q (want one of %v)", askTool, router.Tools)
			}
			dec = router.Decision{Tool: t, Strategy: router.StrategyManual}
		} else {
			dec = buildRouter(askNoLLM, logger).Route(cmd.Context(), question)
		}

		req := tools.Request{Dataset: d, Query: question, Selections: askSelections()}
		runner := buildRunner(logger)
		res, err := runner.Run(dec.Tool, req)
		if err != nil {
			return err
		}
		if res.NeedsSelection() {
			if a := buildAssistant(askAssist, logger); a != nil {
				if extra := a.Suggest(cmd.Context(), question, res.Pending); len(extra) > 0 {
					for role, col := range req.Selections {
						extra[role] = col
					}
					req.Selections = extra
					if res, err = runner.Run(dec.Tool, req); err != nil {
						return err
					}
				}
			}
		}

		out := cmd.OutOrStdout()
		var chartPath string
		if render.HasImage(res.Chart) {
			if chartPath, err = writeChart(res); err != nil {
				return err
			}
		}
		if askJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Decision router.Decision `json:"decision"`
				Result   *tools.Result   `json:"result"`
				Chart    string          `json:"chart,omitempty"`
			}{dec, res, chartPath})
		}

		fmt.Fprintf(out, "Tool: %s (%s)\n\n", dec.Tool, dec.Strategy)
		fmt.Fprint(out, render.Report(res, format))
		if chartPath != "" {
			fmt.Fprintf(out, "\n✓ Wrote chart to %s\n", chartPath)
		}
		if res.NeedsSelection() {
			fmt.Fprintln(out, "\n⚠ Re-run with --x, --y, --column, --group, --time or --category to choose the columns above.")
		}
		return nil
	},
}

func askSelections() tools.Selections {
	sel := tools.Selections{}
	for role, v := range map[tools.Role]string{
		tools.RoleX:        askX,
		tools.RoleY:        askY,
		tools.RoleValue:    askColumn,
		tools.RoleGroup:    askGroup,
		tools.RoleTime:     askTime,
		tools.RoleCategory: askCategory,
	} {
		if v != "" {
			sel[role] = v
		}
	}
	return sel
}

// writeChart writes to --out when given, else into charts_dir. With neither
// set no image is written.
func writeChart(res *tools.Result) (string, error) {
	if askOut != "" {
		b, err := render.PNGBytes(res.Chart)
		if err != nil {
			return "", err
		}
		if dir := filepath.Dir(askOut); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(askOut, b, 0o644); err != nil {
			return "", fmt.Errorf("write chart: %w", err)
		}
		return askOut, nil
	}
	if dir := current().ChartsDir; dir != "" {
		return render.WriteFile(dir, res.ID, res.Chart)
	}
	return "", nil
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVar(&askTool, "tool", "", "skip routing and run this tool")
	askCmd.Flags().StringVar(&askX, "x", "", "scatter: X-axis column")
	askCmd.Flags().StringVar(&askY, "y", "", "scatter: Y-axis column; line: value column")
	askCmd.Flags().StringVar(&askColumn, "column", "", "bar, histogram, pie: value column")
	askCmd.Flags().StringVar(&askGroup, "group", "", "bar: column to group by")
	askCmd.Flags().StringVar(&askTime, "time", "", "line: time column")
	askCmd.Flags().StringVar(&askCategory, "category", "", "pie record counts: category column")
	askCmd.Flags().StringVarP(&askOut, "out", "o", "", "path for the PNG chart (default charts_dir/<result id>.png)")
	askCmd.Flags().StringVar(&askFormat, "format", "text", "report tables: text | markdown")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the result as JSON")
	askCmd.Flags().BoolVar(&askNoLLM, "no-llm", false, "route with local rules only")
	askCmd.Flags().BoolVar(&askAssist, "assist", false, "ask the column assistant when columns cannot be resolved")
	askLoad.register(askCmd)
}
