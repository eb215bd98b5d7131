package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/seralo/inbox-assist/internal"
	"github.com/spf13/cobra"
)

var (
	historyConversation string
	historyLimit        int
	historyList         bool
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	buyerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	selfStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse stored messages",
	Long: `Show the stored chat history, oldest first. Use --conversations for
a per-conversation overview, or --conversation to filter by key.`,
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
		history := internal.NewHistoryStore(kv)

		if historyList {
			return printConversations(ctx, history)
		}

		var records []internal.MessageRecord
		if historyConversation != "" {
			records, err = history.QueryByConversation(ctx, historyConversation)
		} else {
			records, err = history.Recent(ctx, historyLimit)
		}
		if err != nil {
			return fmt.Errorf("failed to read history: %w", err)
		}
		if len(records) == 0 {
			fmt.Println("No messages stored.")
			return nil
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("%d message(s)", len(records))))
		for _, rec := range records {
			style := buyerStyle
			if rec.Sender == internal.SenderSelf {
				style = selfStyle
			}
			stamp := rec.GetTimestamp().Format("Jan 2 15:04")
			fmt.Printf("%s %s %s\n",
				timeStyle.Render(stamp),
				style.Render(string(rec.Sender)+":"),
				rec.Text)
		}
		return nil
	},
}

func printConversations(ctx context.Context, history *internal.HistoryStore) error {
	summaries, err := history.Conversations(ctx)
	if err != nil {
		return fmt.Errorf("failed to read conversations: %w", err)
	}
	if len(summaries) == 0 {
		fmt.Println("No conversations stored.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tBUYER\tMESSAGES\tLAST ACTIVITY")
	for _, sum := range summaries {
		key := sum.Key
		if key == "" {
			key = "(unresolved)"
		}
		last := time.UnixMilli(sum.LastAt).Format("Jan 2 15:04")
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", key, sum.BuyerName, sum.MessageCount, last)
	}
	return w.Flush()
}

func init() {
	historyCmd.Flags().StringVar(&historyConversation, "conversation", "", "Filter by conversation key")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "Maximum number of messages to show")
	historyCmd.Flags().BoolVar(&historyList, "conversations", false, "List conversations instead of messages")
	rootCmd.AddCommand(historyCmd)
}
