package cmd

import (
	"context"
	"fmt"

	"github.com/seralo/inbox-assist/internal"
	"github.com/spf13/cobra"
)

var (
	settingsAPIKey  string
	settingsModel   string
	settingsEnable  bool
	settingsDisable bool
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or update assistant settings",
	Long: `Without flags, show the current settings. Flags update the stored
settings; GEMINI_API_KEY in the environment always overrides the
stored key at runtime.`,
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
		settings := internal.LoadSettings(ctx, kv)

		changed := false
		if settingsAPIKey != "" {
			settings.APIKey = settingsAPIKey
			changed = true
		}
		if settingsModel != "" {
			settings.Model = settingsModel
			changed = true
		}
		if settingsEnable {
			settings.AIEnabled = true
			changed = true
		}
		if settingsDisable {
			settings.AIEnabled = false
			changed = true
		}

		if changed {
			if err := internal.SaveSettings(ctx, kv, settings); err != nil {
				return fmt.Errorf("failed to save settings: %w", err)
			}
			fmt.Println("Settings saved.")
		}

		key := "(not set)"
		if settings.APIKey != "" {
			key = "(set)"
		}
		fmt.Printf("AI enabled: %v\nModel:      %s\nAPI key:    %s\n",
			settings.AIEnabled, settings.Model, key)
		return nil
	},
}

func init() {
	settingsCmd.Flags().StringVar(&settingsAPIKey, "api-key", "", "Set the Gemini API key")
	settingsCmd.Flags().StringVar(&settingsModel, "model", "", "Set the generation model")
	settingsCmd.Flags().BoolVar(&settingsEnable, "enable", false, "Enable AI assistance")
	settingsCmd.Flags().BoolVar(&settingsDisable, "disable", false, "Disable AI assistance")
	settingsCmd.MarkFlagsMutuallyExclusive("enable", "disable")
	rootCmd.AddCommand(settingsCmd)
}
