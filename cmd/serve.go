package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/seralo/inbox-assist/internal"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the assistant over a local HTTP API",
	Long: `Serve an HTTP API for local tooling:

  POST   /api/process        Analyze one message
  GET    /api/history        List stored messages
  GET    /api/conversations  List conversations
  DELETE /api/history        Clear stored messages
  GET    /api/settings       Read settings (key redacted)
  PUT    /api/settings       Update settings`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		addr := serveAddr
		if addr == "" {
			addr = cfg.ListenAddr
		}
		if addr == "" {
			addr = "127.0.0.1:8391"
		}

		kv, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer kv.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		settings := func() internal.Settings {
			s := internal.LoadSettings(ctx, kv)
			if cfg.Model != "" {
				s.Model = cfg.Model
			}
			return s
		}

		page := internal.NewTranscriptPage(cfg.Transcript)
		history := internal.NewHistoryStore(kv)
		model := internal.NewGeminiService(settings)
		renderer := internal.NewTerminalRenderer(os.Stdout)
		coordinator := internal.NewCoordinator(page, internal.NewFingerprintCache(), history, model, renderer, settings)

		server := internal.NewAPIServer(coordinator, history, kv)
		return server.Serve(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default 127.0.0.1:8391)")
	rootCmd.AddCommand(serveCmd)
}
