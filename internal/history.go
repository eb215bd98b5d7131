package internal

import (
	"context"
	"sort"
	"strings"
	"time"
)

const (
	historyKey = "chatHistory"
	historyCap = 200
)

// HistoryStore is the append-only, size-bounded, dedup-on-insert chat
// log persisted in the local KV scope. Every mutation re-reads the log
// immediately before writing (read-modify-write), so overlapping
// triggers cannot lose each other's updates; the store itself holds no
// cached state.
type HistoryStore struct {
	kv  KVStore
	cap int
}

// NewHistoryStore creates a store over kv with the standard retention cap.
func NewHistoryStore(kv KVStore) *HistoryStore {
	return &HistoryStore{kv: kv, cap: historyCap}
}

func (s *HistoryStore) load(ctx context.Context) ([]MessageRecord, error) {
	data, found, err := s.kv.Get(ctx, ScopeLocal, historyKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	records, err := decodeHistory(data)
	if err != nil {
		return nil, &StorageError{Scope: ScopeLocal, Key: historyKey, Op: "decode", Err: err}
	}
	return records, nil
}

func (s *HistoryStore) save(ctx context.Context, records []MessageRecord) error {
	data, err := encodeHistory(records)
	if err != nil {
		return &StorageError{Scope: ScopeLocal, Key: historyKey, Op: "encode", Err: err}
	}
	return s.kv.Set(ctx, ScopeLocal, historyKey, data)
}

// hasDuplicate reports whether an equal (sender, text) pair already
// exists in records. Comparison is case-insensitive on trimmed text.
func hasDuplicate(records []MessageRecord, sender Sender, text string) bool {
	needle := strings.ToLower(strings.TrimSpace(text))
	for i := range records {
		if records[i].Sender == sender &&
			strings.ToLower(strings.TrimSpace(records[i].Text)) == needle {
			return true
		}
	}
	return false
}

func (s *HistoryStore) trim(records []MessageRecord) []MessageRecord {
	if len(records) > s.cap {
		records = records[len(records)-s.cap:]
	}
	return records
}

// InsertOne appends rec unless its text is empty or a matching
// (sender, text) pair already exists anywhere in the log. It reports
// whether the record was inserted.
func (s *HistoryStore) InsertOne(ctx context.Context, rec MessageRecord) (bool, error) {
	if strings.TrimSpace(rec.Text) == "" {
		return false, nil
	}
	records, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	if hasDuplicate(records, rec.Sender, rec.Text) {
		return false, nil
	}
	if rec.Timestamp == 0 {
		rec.Timestamp = time.Now().UnixMilli()
	}
	records = s.trim(append(records, rec))
	if err := s.save(ctx, records); err != nil {
		return false, err
	}
	return true, nil
}

// InsertBatch applies the InsertOne rules to a whole scan's worth of
// records in one read-modify-write cycle. Duplicates are checked against
// the log as loaded plus records accepted earlier in the same batch.
// Records without a timestamp get synthetic strictly-increasing ones so
// batch members keep their relative order.
func (s *HistoryStore) InsertBatch(ctx context.Context, recs []MessageRecord) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	records, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now().UnixMilli()
	accepted := 0
	for _, rec := range recs {
		if strings.TrimSpace(rec.Text) == "" {
			continue
		}
		if hasDuplicate(records, rec.Sender, rec.Text) {
			continue
		}
		if rec.Timestamp == 0 {
			rec.Timestamp = now - int64(len(recs)-accepted)
		}
		records = append(records, rec)
		accepted++
	}
	if accepted == 0 {
		return 0, nil
	}

	records = s.trim(records)
	if err := s.save(ctx, records); err != nil {
		return 0, err
	}
	return accepted, nil
}

// QueryByConversation returns the records for key, ascending by
// timestamp. An empty key selects the fallback bucket of records that
// never resolved a conversation.
func (s *HistoryStore) QueryByConversation(ctx context.Context, key string) ([]MessageRecord, error) {
	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	var matched []MessageRecord
	for _, rec := range records {
		if rec.ConversationKey == key {
			matched = append(matched, rec)
		}
	}
	sortByTimestamp(matched)
	return matched, nil
}

// Recent returns the limit most recent records across all
// conversations, ascending by timestamp.
func (s *HistoryStore) Recent(ctx context.Context, limit int) ([]MessageRecord, error) {
	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	sortByTimestamp(records)
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records, nil
}

// All returns the full log, ascending by timestamp.
func (s *HistoryStore) All(ctx context.Context) ([]MessageRecord, error) {
	return s.Recent(ctx, 0)
}

// Conversations computes the on-demand conversation view: one summary
// per conversation key, most recently active first. Records with no key
// aggregate into a single fallback bucket.
func (s *HistoryStore) Conversations(ctx context.Context) ([]ConversationSummary, error) {
	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]*ConversationSummary)
	for _, rec := range records {
		sum, ok := byKey[rec.ConversationKey]
		if !ok {
			sum = &ConversationSummary{
				Key:     rec.ConversationKey,
				FirstAt: rec.Timestamp,
				LastAt:  rec.Timestamp,
			}
			byKey[rec.ConversationKey] = sum
		}
		sum.MessageCount++
		if rec.BuyerName != "" {
			sum.BuyerName = rec.BuyerName
		}
		if rec.Timestamp < sum.FirstAt {
			sum.FirstAt = rec.Timestamp
		}
		if rec.Timestamp > sum.LastAt {
			sum.LastAt = rec.Timestamp
		}
	}
	summaries := make([]ConversationSummary, 0, len(byKey))
	for _, sum := range byKey {
		summaries = append(summaries, *sum)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastAt > summaries[j].LastAt
	})
	return summaries, nil
}

// ClearAll empties the log. The only path that removes records besides
// cap truncation; user-initiated.
func (s *HistoryStore) ClearAll(ctx context.Context) error {
	return s.save(ctx, nil)
}

func sortByTimestamp(records []MessageRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})
}
