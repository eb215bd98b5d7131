package internal

import (
	"bufio"
	"os"
	"strings"
)

// PageAdapter is the pluggable strategy for reading the messaging page.
// Every method may return empty results at any time (page not rendered
// yet, layout unrecognized); callers tolerate that by retrying later via
// the change detector's polling fallback, never by failing hard.
type PageAdapter interface {
	// FindCandidates returns the message-like elements currently
	// rendered, in document order. A non-nil error means the message
	// container itself cannot be located.
	FindCandidates() ([]Candidate, error)
	// CounterpartyName returns the page-chrome "talking to" label, or "".
	CounterpartyName() string
	// Location returns the current page location.
	Location() string
	// Title returns the document title.
	Title() string
}

// ClassifySender maps a raw sender signal onto a Sender. Ambiguous
// signals default to the counterparty, since only inbound messages
// trigger assistance and a false inbound is cheaper than a missed one.
func ClassifySender(signal string) Sender {
	if strings.Contains(signal, "Me") || signal == string(SenderSelf) {
		return SenderSelf
	}
	lower := strings.ToLower(signal)
	for _, marker := range []string{"own", "outgoing", "sent", "seller"} {
		if strings.Contains(lower, marker) {
			return SenderSelf
		}
	}
	return SenderBuyer
}

// TranscriptPage adapts a plain-text chat snapshot file to the
// PageAdapter interface. Each non-blank line is one rendered message;
// lines starting with "#" carry page chrome:
//
//	# with: Alex Smith
//	# title: Alex Smith | Inbox
//	# location: https://www.fiverr.com/inbox/alexsmith
//	Alex Smith: Hello, can you fix my logo by Friday?
//	Me Mar 28, 2025, 8:25 PM Sure thing!
//
// Message lines are passed through raw; prefix stripping is the
// Normalizer's job, and the leading token doubles as the sender signal.
type TranscriptPage struct {
	path string
}

// NewTranscriptPage creates an adapter over the snapshot at path.
func NewTranscriptPage(path string) *TranscriptPage {
	return &TranscriptPage{path: path}
}

type transcriptSnapshot struct {
	directives map[string]string
	lines      []string
}

// snapshot re-reads the file on every call: the transcript is a live
// view, like the DOM it stands in for.
func (p *TranscriptPage) snapshot() (*transcriptSnapshot, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, &ExtractError{Source: p.path, Err: err}
	}
	defer f.Close()

	snap := &transcriptSnapshot{directives: make(map[string]string)}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			body := strings.TrimSpace(strings.TrimPrefix(line, "#"))
			if k, v, ok := strings.Cut(body, ":"); ok {
				snap.directives[strings.TrimSpace(strings.ToLower(k))] = strings.TrimSpace(v)
			}
			continue
		}
		snap.lines = append(snap.lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, &ExtractError{Source: p.path, Err: err}
	}
	return snap, nil
}

// FindCandidates implements PageAdapter.
func (p *TranscriptPage) FindCandidates() ([]Candidate, error) {
	snap, err := p.snapshot()
	if err != nil {
		return nil, err
	}
	candidates := make([]Candidate, 0, len(snap.lines))
	for i, line := range snap.lines {
		candidates = append(candidates, Candidate{
			RawText:      line,
			SenderSignal: senderSignalFor(line),
			Order:        i,
		})
	}
	return candidates, nil
}

// senderSignalFor extracts the raw sender marker from a message line.
// Best-effort only; attribution on arbitrary layouts is out of scope.
func senderSignalFor(line string) string {
	if line == "Me" || strings.HasPrefix(line, "Me ") || strings.HasPrefix(line, "Me:") {
		return "Me"
	}
	if m := colonPrefixPattern.FindString(line); m != "" {
		return strings.TrimSpace(strings.TrimSuffix(m, ":"))
	}
	return ""
}

// CounterpartyName implements PageAdapter.
func (p *TranscriptPage) CounterpartyName() string {
	return p.directive("with")
}

// Location implements PageAdapter.
func (p *TranscriptPage) Location() string {
	return p.directive("location")
}

// Title implements PageAdapter.
func (p *TranscriptPage) Title() string {
	return p.directive("title")
}

func (p *TranscriptPage) directive(key string) string {
	snap, err := p.snapshot()
	if err != nil {
		return ""
	}
	return snap.directives[key]
}
