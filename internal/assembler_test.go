package internal

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestBuildContext(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(NewMemoryKV())

	// 15 records, inserted out of order.
	var recs []MessageRecord
	for i := 14; i >= 0; i-- {
		recs = append(recs, MessageRecord{
			Sender:          SenderBuyer,
			Text:            fmt.Sprintf("msg %02d", i),
			Timestamp:       int64(1000 + i),
			ConversationKey: "alex:1",
		})
	}
	if _, err := store.InsertBatch(ctx, recs); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	got, err := BuildContext(ctx, store, "alex:1", 10)
	if err != nil {
		t.Fatalf("BuildContext failed: %v", err)
	}

	lines := strings.Split(got, "\n")
	if len(lines) != 10 {
		t.Fatalf("got %d lines, want 10", len(lines))
	}
	// The 10 most recent, ascending.
	if lines[0] != "Buyer: msg 05" {
		t.Errorf("first line = %q, want %q", lines[0], "Buyer: msg 05")
	}
	if lines[9] != "Buyer: msg 14" {
		t.Errorf("last line = %q, want %q", lines[9], "Buyer: msg 14")
	}
}

func TestBuildContextFallback(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(NewMemoryKV())

	recs := []MessageRecord{
		{Sender: SenderBuyer, Text: "from alex", Timestamp: 1, ConversationKey: "alex:1"},
		{Sender: SenderSelf, Text: "reply", Timestamp: 2, ConversationKey: "alex:1"},
	}
	if _, err := store.InsertBatch(ctx, recs); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	// No key: recent records across conversations stand in.
	got, err := BuildContext(ctx, store, "", 10)
	if err != nil {
		t.Fatalf("BuildContext failed: %v", err)
	}
	want := "Buyer: from alex\nYou: reply"
	if got != want {
		t.Errorf("BuildContext = %q, want %q", got, want)
	}
}

func TestBuildContextEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(NewMemoryKV())

	got, err := BuildContext(ctx, store, "alex:1", 10)
	if err != nil {
		t.Fatalf("BuildContext failed: %v", err)
	}
	if got != "" {
		t.Errorf("empty history should yield empty context, got %q", got)
	}
}
