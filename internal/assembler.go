package internal

import (
	"context"
	"fmt"
	"strings"
)

// contextLimit bounds the transcript that accompanies a model request.
const contextLimit = 10

// BuildContext assembles the ordered, size-bounded transcript for a
// conversation: up to limit most recent records for key, ascending by
// timestamp, one "Sender: text" line each. When key is empty the limit
// most recent records overall serve as a degraded fallback. An empty
// result means "no prior context", not an error.
func BuildContext(ctx context.Context, store *HistoryStore, key string, limit int) (string, error) {
	if limit <= 0 {
		limit = contextLimit
	}

	var records []MessageRecord
	var err error
	if key != "" {
		records, err = store.QueryByConversation(ctx, key)
	} else {
		records, err = store.Recent(ctx, limit)
	}
	if err != nil {
		return "", err
	}
	if len(records) > limit {
		records = records[len(records)-limit:]
	}
	if len(records) == 0 {
		return "", nil
	}

	lines := make([]string, 0, len(records))
	for _, rec := range records {
		lines = append(lines, fmt.Sprintf("%s: %s", rec.Sender, rec.Text))
	}
	return strings.Join(lines, "\n"), nil
}
