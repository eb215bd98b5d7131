package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/seralo/inbox-assist/internal"
	"github.com/spf13/cobra"
)

var (
	verbose        bool
	configPath     string
	dbPath         string
	transcriptPath string
	version        string = "dev"
	commit         string = "unknown"
	date           string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "inbox-assist",
	Short: "AI reply assistant for your freelancing inbox",
	Long: `inbox-assist watches a chat transcript, keeps a deduplicated history
of the conversation, and suggests replies for new buyer messages using
the Gemini API.

Quick Start:
  inbox-assist watch                     # Watch the transcript and assist live
  inbox-assist process "message text"    # Get suggestions for one message
  inbox-assist history                   # Browse stored messages
  inbox-assist serve                     # Expose the assistant over HTTP

Set GEMINI_API_KEY (or put it in a .env file) before first use.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(func() {
		// .env is optional; real env vars win either way.
		godotenv.Load()
	})

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the SQLite store (overrides config)")
	rootCmd.PersistentFlags().StringVar(&transcriptPath, "transcript", "", "Path to the transcript file (overrides config)")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig resolves the effective configuration from the config file
// and flag overrides.
func loadConfig() (internal.Config, error) {
	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return cfg, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if transcriptPath != "" {
		cfg.Transcript = transcriptPath
	}
	return cfg, nil
}

// openStore opens the KV store for cfg and makes sure the settings
// record exists.
func openStore(cfg internal.Config) (*internal.SQLiteKV, error) {
	kv, err := internal.OpenKV(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if err := internal.EnsureInitialized(context.Background(), kv); err != nil {
		internal.LogWarn("Failed to initialize settings: %v", err)
	}
	return kv, nil
}
