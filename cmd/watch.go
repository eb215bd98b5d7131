package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/seralo/inbox-assist/internal"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the transcript and assist with new buyer messages",
	Long: `Watch the transcript file for changes. New messages are normalized,
deduplicated, and stored; the latest unanswered buyer message gets a
summary and reply suggestions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
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

		detector := internal.NewChangeDetector(coordinator.MessageCount, coordinator.Scan)
		if cfg.DebounceMS > 0 {
			detector.Debounce = time.Duration(cfg.DebounceMS) * time.Millisecond
		}

		source, err := internal.NewFileChangeSource(cfg.Transcript)
		if err != nil {
			return fmt.Errorf("failed to watch transcript: %w", err)
		}
		defer source.Close()

		fmt.Printf("Watching %s (Ctrl+C to stop)\n", cfg.Transcript)
		go source.Run(ctx, detector)
		detector.Run(ctx)
		coordinator.Wait()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
