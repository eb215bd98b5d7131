package internal

import (
	"encoding/json"
	"time"
)

// Sender identifies which side of the conversation a message came from.
// The wire values match the history format the extension-era tooling used.
type Sender string

const (
	// SenderBuyer is the remote chat participant (the client).
	SenderBuyer Sender = "Buyer"
	// SenderSelf is the freelancer's own side of the conversation.
	SenderSelf Sender = "You"
)

// MessageRecord is one entry in the persisted chat history.
type MessageRecord struct {
	Sender          Sender `json:"sender"`
	Text            string `json:"content"`
	Timestamp       int64  `json:"timestamp"` // unix milliseconds
	BuyerName       string `json:"buyerName,omitempty"`
	ConversationKey string `json:"conversationId,omitempty"`
}

// GetTimestamp returns the record timestamp as a time.Time.
func (m *MessageRecord) GetTimestamp() time.Time {
	return time.Unix(0, m.Timestamp*int64(time.Millisecond))
}

// Candidate is a raw message observed on the page before normalization.
// Order is the document position, used as a chronology proxy because the
// page exposes no reliable per-message timestamp.
type Candidate struct {
	RawText      string
	SenderSignal string
	Order        int
}

// AIResult is the model service's answer for one inbound message.
type AIResult struct {
	Summary      string   `json:"summary"`
	ReplyOptions []string `json:"replyOptions"`
}

// Settings mirrors the sync-scope configuration blob.
type Settings struct {
	APIKey    string `json:"apiKey"`
	AIEnabled bool   `json:"aiEnabled"`
	Model     string `json:"model,omitempty"`
}

// DefaultSettings returns the values used when nothing is stored yet or
// the settings blob cannot be read.
func DefaultSettings() Settings {
	return Settings{AIEnabled: true, Model: defaultModel}
}

// ConversationSummary is the aggregated view of one conversation key,
// computed on demand from the history log.
type ConversationSummary struct {
	Key          string `json:"key"`
	BuyerName    string `json:"buyerName,omitempty"`
	MessageCount int    `json:"messageCount"`
	FirstAt      int64  `json:"firstAt"`
	LastAt       int64  `json:"lastAt"`
}

// decodeHistory parses the stored history blob. A missing or empty blob
// decodes to an empty log.
func decodeHistory(data []byte) ([]MessageRecord, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var records []MessageRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func encodeHistory(records []MessageRecord) ([]byte, error) {
	if records == nil {
		records = []MessageRecord{}
	}
	return json.Marshal(records)
}
