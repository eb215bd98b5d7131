package internal

import (
	"bytes"
	"strings"
	"testing"
)

func TestTerminalRendererShowResult(t *testing.T) {
	var buf bytes.Buffer
	r := NewTerminalRenderer(&buf)

	r.ShowResult("Can you fix my logo?", &AIResult{
		Summary:      "Buyer wants a logo fix.",
		ReplyOptions: []string{"Sure!", "On it."},
	})

	out := buf.String()
	for _, want := range []string{"Buyer wants a logo fix.", "1. Sure!", "2. On it."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestTerminalRendererTruncatesLongMessage(t *testing.T) {
	var buf bytes.Buffer
	r := NewTerminalRenderer(&buf)

	long := strings.Repeat("x", 200)
	r.ShowResult(long, &AIResult{ReplyOptions: []string{"ok"}})
	if strings.Contains(buf.String(), long) {
		t.Error("long message should be truncated in the header")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 80); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	got := truncate(strings.Repeat("a", 100), 10)
	if len([]rune(got)) != 10 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncate = %q", got)
	}
}
