package internal

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dayMillis is the conversation day-bucket width.
const dayMillis = 86400000

var inboxPathPattern = regexp.MustCompile(`/inbox/([^/?#]+)`)

// ResolveConversationKey derives the stable key grouping messages with
// the same counterparty: name plus a day bucket. Records without a known
// name get an empty key and land in the shared fallback bucket.
func ResolveConversationKey(counterpartyName string, now time.Time) string {
	if counterpartyName == "" {
		return ""
	}
	return counterpartyName + ":" + strconv.FormatInt(now.UnixMilli()/dayMillis, 10)
}

// DayBucket returns the bucket index for a millisecond timestamp.
func DayBucket(millis int64) int64 {
	return millis / dayMillis
}

// ResolveCounterpartyName works out who the conversation is with. It
// tries, in order: a path segment of the page location, the page-chrome
// label, the document title, and finally a deterministic date-based
// fallback. The first non-empty, non-self-referential candidate wins.
func ResolveCounterpartyName(page PageAdapter, now time.Time) string {
	if page != nil {
		if name := nameFromLocation(page.Location()); name != "" {
			return name
		}
		if name := cleanNameCandidate(page.CounterpartyName()); name != "" {
			return name
		}
		if name := nameFromTitle(page.Title()); name != "" {
			return name
		}
	}
	return "Conversation-" + now.Format("2006-01-02")
}

func nameFromLocation(location string) string {
	if location == "" {
		return ""
	}
	m := inboxPathPattern.FindStringSubmatch(location)
	if m == nil {
		return ""
	}
	name := m[1]
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "+", " ")
	return cleanNameCandidate(name)
}

func nameFromTitle(title string) string {
	if !strings.Contains(title, "|") {
		return ""
	}
	first := strings.TrimSpace(strings.SplitN(title, "|", 2)[0])
	if strings.Contains(first, "Inbox") {
		return ""
	}
	return cleanNameCandidate(first)
}

// cleanNameCandidate rejects self-referential or platform-branded
// labels and strips the @-handle marker.
func cleanNameCandidate(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "@")
	if name == "" || name == "Me" || strings.Contains(name, "Fiverr") {
		return ""
	}
	return name
}
