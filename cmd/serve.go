package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"uploadpilot/internal/app"
	"uploadpilot/internal/server"
	"uploadpilot/pkg/config"
	"uploadpilot/pkg/httputil"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the generation and upload-token API",
	Long: `Serve POST /api/generate-details and GET /api/get-upload-token so that clients
without credentials can generate details and upload with a short-lived token.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	client := httputil.NewClient(cfg.Generator.Timeout)

	generator, err := app.BuildGenerator(ctx, cfg, client)
	if err != nil {
		return err
	}
	tokens, err := app.BuildTokenProvider(cfg, client)
	if err != nil {
		return err
	}

	return server.Run(ctx, cfg.Server.Addr, server.NewHandler(generator, tokens).Routes())
}
