package internal

import (
	"context"
	"sync"
	"time"
)

// dispatchDelay is the per-message settle window between noticing a new
// buyer message and calling the model, so a message still being typed
// out in pieces coalesces into one request.
const dispatchDelay = 500 * time.Millisecond

// Coordinator runs one extraction pass end to end: read the page,
// normalize and attribute candidates, persist what is new, and arrange
// model assistance for the latest unprocessed buyer message.
type Coordinator struct {
	Page       PageAdapter
	Normalizer *Normalizer
	Cache      *FingerprintCache
	History    *HistoryStore
	Model      ModelService
	Renderer   Renderer
	Settings   func() Settings

	// Delay overrides dispatchDelay, for tests.
	Delay time.Duration

	mu      sync.Mutex
	pending map[FingerprintID]*time.Timer
	wg      sync.WaitGroup
}

// NewCoordinator wires a coordinator over its collaborators.
func NewCoordinator(page PageAdapter, cache *FingerprintCache, history *HistoryStore, model ModelService, renderer Renderer, settings func() Settings) *Coordinator {
	return &Coordinator{
		Page:       page,
		Normalizer: NewNormalizer(),
		Cache:      cache,
		History:    history,
		Model:      model,
		Renderer:   renderer,
		Settings:   settings,
		Delay:      dispatchDelay,
		pending:    make(map[FingerprintID]*time.Timer),
	}
}

// MessageCount reports the current candidate count and whether the
// message container is reachable. Feeds the change detector's gate.
func (c *Coordinator) MessageCount() (int, bool) {
	candidates, err := c.Page.FindCandidates()
	if err != nil {
		return 0, false
	}
	return len(candidates), true
}

// Scan performs one full pass over the page.
func (c *Coordinator) Scan(ctx context.Context) {
	candidates, err := c.Page.FindCandidates()
	if err != nil {
		LogWarn("Extraction failed: %v", err)
		return
	}
	if len(candidates) == 0 {
		return
	}

	now := time.Now()
	buyerName := ResolveCounterpartyName(c.Page, now)
	conversationKey := ResolveConversationKey(buyerName, now)

	records := make([]MessageRecord, 0, len(candidates))
	for _, cand := range candidates {
		text := c.Normalizer.Normalize(cand.RawText)
		if len(text) < 2 {
			continue
		}
		records = append(records, MessageRecord{
			Sender:          ClassifySender(cand.SenderSignal),
			Text:            text,
			BuyerName:       buyerName,
			ConversationKey: conversationKey,
		})
	}
	if len(records) == 0 {
		return
	}

	// Only the latest inbound message earns assistance. Its context is
	// the conversation as it stood before this batch lands, so the
	// message being analyzed never quotes itself; a first message in a
	// fresh conversation dispatches with no context at all.
	var latest *MessageRecord
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Sender == SenderBuyer {
			latest = &records[i]
			break
		}
	}

	var fp FingerprintID
	var conversationContext string
	dispatchNeeded := false
	if latest != nil {
		fp = Fingerprint(latest.Text)
		if c.Cache.HasProcessed(fp) {
			LogDebug("Message already processed, skipping")
		} else {
			dispatchNeeded = true
			var cerr error
			conversationContext, cerr = BuildContext(ctx, c.History, latest.ConversationKey, contextLimit)
			if cerr != nil {
				LogWarn("Failed to build context: %v", cerr)
				conversationContext = ""
			}
		}
	}

	accepted, err := c.History.InsertBatch(ctx, records)
	if err != nil {
		// Storage is soft-fail: assistance still runs on what we saw.
		LogWarn("Failed to persist messages: %v", err)
	} else if accepted > 0 {
		LogInfo("Stored %d new message(s) for %s", accepted, buyerName)
	}

	if dispatchNeeded {
		c.scheduleDispatch(ctx, fp, *latest, conversationContext)
	}
}

// scheduleDispatch arms (or re-arms) the settle timer for a
// fingerprint. Repeated sightings of the same message push the timer
// back; distinct messages get independent timers.
func (c *Coordinator) scheduleDispatch(ctx context.Context, fp FingerprintID, rec MessageRecord, conversationContext string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if timer, ok := c.pending[fp]; ok {
		timer.Reset(c.Delay)
		return
	}

	c.wg.Add(1)
	c.pending[fp] = time.AfterFunc(c.Delay, func() {
		defer c.wg.Done()
		c.mu.Lock()
		delete(c.pending, fp)
		c.mu.Unlock()
		c.dispatch(ctx, fp, rec, conversationContext)
	})
}

// dispatch runs the model flow for one message. At most one dispatch
// is in flight at a time; a message that arrives while another is being
// processed re-queues itself for after the slot frees up.
func (c *Coordinator) dispatch(ctx context.Context, fp FingerprintID, rec MessageRecord, conversationContext string) {
	if ctx.Err() != nil {
		return
	}
	if !c.Cache.BeginProcessing(fp) {
		LogDebug("Another message in flight, requeueing")
		c.scheduleDispatch(ctx, fp, rec, conversationContext)
		return
	}
	defer c.Cache.EndProcessing(fp)

	c.Cache.MarkProcessed(fp)

	// Without a usable model configuration the message is still worth
	// surfacing; show it as-is instead of an error on every new message.
	settings := c.Settings()
	if !settings.AIEnabled {
		LogDebug("Assistance disabled, showing message as-is")
		c.Renderer.ShowMessage(rec.Text)
		return
	}
	if settings.APIKey == "" {
		LogWarn("No API key configured, showing message as-is")
		c.Renderer.ShowMessage(rec.Text)
		return
	}

	LogInfo("Requesting assistance for message from %s", rec.BuyerName)
	result, err := c.Model.Analyze(ctx, rec.Text, conversationContext)
	if err != nil {
		LogError("Model request failed: %v", err)
		c.Renderer.ShowError("AI assistance unavailable: " + err.Error())
		return
	}
	if len(result.ReplyOptions) == 0 {
		result.ReplyOptions = []string{replyPlaceholder}
	}
	c.Renderer.ShowResult(rec.Text, result)
}

// ProcessText runs the assistance flow for a single piece of text
// without touching the page, for one-shot invocations. The message is
// normalized, persisted, and analyzed synchronously.
func (c *Coordinator) ProcessText(ctx context.Context, raw string) (*AIResult, error) {
	text := c.Normalizer.Normalize(raw)
	if len(text) < 2 {
		return nil, &ExtractError{Source: "input", Err: errEmptyMessage}
	}

	now := time.Now()
	buyerName := ResolveCounterpartyName(c.Page, now)
	rec := MessageRecord{
		Sender:          SenderBuyer,
		Text:            text,
		Timestamp:       now.UnixMilli(),
		BuyerName:       buyerName,
		ConversationKey: ResolveConversationKey(buyerName, now),
	}
	// Context first, then persist: the analyzed message must not appear
	// in its own transcript.
	conversationContext, err := BuildContext(ctx, c.History, rec.ConversationKey, contextLimit)
	if err != nil {
		conversationContext = ""
	}
	if _, err := c.History.InsertOne(ctx, rec); err != nil {
		LogWarn("Failed to persist message: %v", err)
	}

	result, err := c.Model.Analyze(ctx, rec.Text, conversationContext)
	if err != nil {
		return nil, err
	}
	if len(result.ReplyOptions) == 0 {
		result.ReplyOptions = []string{replyPlaceholder}
	}
	c.Cache.MarkProcessed(Fingerprint(text))
	return result, nil
}

// Wait blocks until all armed dispatch timers have fired and finished.
// Test support.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}
