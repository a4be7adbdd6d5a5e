package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var routeNoLLM bool

var routeCmd = &cobra.Command{
	Use:   "route <question...>",
	Short: "Show which tool a question is routed to",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dec := buildRouter(routeNoLLM, newLogger()).Route(cmd.Context(), strings.Join(args, " "))
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "tool: %s\n", dec.Tool)
		fmt.Fprintf(out, "strategy: %s\n", dec.Strategy)
		if dec.Answer != "" {
			fmt.Fprintf(out, "classifier answer: %q\n", dec.Answer)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(routeCmd)
	routeCmd.Flags().BoolVar(&routeNoLLM, "no-llm", false, "route with local rules only")
}
