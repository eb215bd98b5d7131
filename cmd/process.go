package cmd

import (
	"context"
	"os"

	"github.com/seralo/inbox-assist/internal"
	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process <message>",
	Short: "Get a summary and reply suggestions for one message",
	Long: `Run the assistance flow once for a single buyer message. The message
is stored in history and analyzed with the current conversation context.`,
	Args: cobra.ExactArgs(1),
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

		ctx := context.Background()
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

		result, err := coordinator.ProcessText(ctx, args[0])
		if err != nil {
			return err
		}
		renderer.ShowResult(args[0], result)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(processCmd)
}
