package internal

import (
	"regexp"
	"strings"
)

var (
	// Inbox timestamp chrome, e.g. "Mar 28, 2025, 8:24 PM".
	datePattern = regexp.MustCompile(`(?i)(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s\d{1,2},\s\d{4},\s\d{1,2}:\d{2}\s(AM|PM)`)
	// Sender-name prefix left over before a stripped timestamp.
	namePrefixPattern = regexp.MustCompile(`^(Me|[A-Za-z\s]+)`)
	// Leading "Name:" prefix on the message body itself.
	colonPrefixPattern = regexp.MustCompile(`^[A-Za-z\s]+:`)
)

// Normalizer converts raw extracted message text into canonical form:
// timestamp chrome, self-identifying tokens and sender-name prefixes are
// stripped, whitespace is trimmed. Normalize is pure and idempotent on
// its supported inputs.
type Normalizer struct{}

// NewNormalizer creates a new Normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize returns the canonical message text, or "" for blank input.
func (n *Normalizer) Normalize(raw string) string {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return ""
	}

	// Messages scraped from the page often carry the sender name and a
	// timestamp glued in front of (or instead of) the body. Prefer the
	// text after the timestamp; when nothing follows it, fall back to
	// the text before it minus the sender-name prefix.
	if loc := datePattern.FindStringIndex(clean); loc != nil && loc[0] > 0 {
		after := strings.TrimSpace(clean[loc[1]:])
		if after != "" {
			clean = after
		} else {
			before := strings.TrimSpace(clean[:loc[0]])
			if m := namePrefixPattern.FindString(before); m != "" {
				clean = strings.TrimSpace(before[len(m):])
			} else {
				clean = before
			}
		}
	}

	// Self-identifying token.
	if strings.HasPrefix(clean, "Me") {
		clean = strings.TrimSpace(clean[2:])
	}

	// Remaining "Name:" prefix.
	if m := colonPrefixPattern.FindString(clean); m != "" {
		clean = strings.TrimSpace(clean[len(m):])
	}

	return clean
}
