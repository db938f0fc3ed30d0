package cmd

import (
	"fmt"

	"github.com/cursorvault/cursor-vault/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API over the filtered working copy",
	Long: `Start a local HTTP API exposing the same view the CLI commands use.

Endpoints:
  GET  /healthz                    Liveness probe
  GET  /api/conversations          List conversations (project, limit params)
  GET  /api/conversations/:id      One conversation with messages
  GET  /api/search                 Fuzzy search (q, limit params)
  GET  /api/projects               Current allow-list
  PUT  /api/projects               Replace the allow-list
  POST /api/refresh                Re-derive the working copy

The API reads through the shadow manager, so a configured allow-list is
enforced before any response is built.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openVault()
		if err != nil {
			return err
		}

		addr := serveAddr
		if addr == "" {
			addr = env.cfg.Server.Addr
		}

		// Derive the working copy up front so the first request is fast.
		path := env.manager.ActivePath()
		env.events.Event("api serving store at %s", path)

		srv := server.New(env.source, env.manager, env.cfg.AllowedProjectsFile, env.events)
		if err := srv.Start(addr); err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, 127.0.0.1:8377)")
}
