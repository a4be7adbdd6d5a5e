package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/csvask-cli/internal/dataset"
	"github.com/KaramelBytes/csvask-cli/internal/server"
)

var (
	serveAddr   string
	serveNoLLM  bool
	serveAssist bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the question API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := current()
		addr := c.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		if addr == "" {
			addr = ":8005"
		}
		logger := newLogger()
		opt := dataset.DefaultOptions()
		opt.MaxRows = c.MaxRows
		srv := server.New(server.Config{
			Router:      buildRouter(serveNoLLM, logger),
			Runner:      buildRunner(logger),
			Assistant:   buildAssistant(serveAssist, logger),
			Load:        opt,
			CORSOrigins: c.CORSOrigins,
			Logger:      logger,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Fprintf(os.Stderr, "✓ Serving on %s (metrics at /metrics)\n", addr)
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides listen_addr)")
	serveCmd.Flags().BoolVar(&serveNoLLM, "no-llm", false, "route with local rules only")
	serveCmd.Flags().BoolVar(&serveAssist, "assist", false, "enable the column assistant")
}
