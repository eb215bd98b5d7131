package internal

import (
	"context"
	"time"
)

// Change detector timing. The debounce window coalesces event bursts,
// the rate floor bounds scan frequency during sustained churn, and the
// retry interval polls for a message container that is not rendered yet.
const (
	defaultDebounce      = 400 * time.Millisecond
	defaultRateFloor     = 300 * time.Millisecond
	defaultRetryInterval = 2 * time.Second
)

// ChangeDetector turns a noisy stream of page-change events into a
// bounded series of scan invocations. It also carries the
// count-changed gate: a scan request is dropped when the observable
// message count has not moved since the last completed scan.
type ChangeDetector struct {
	// Events receives a signal per observed page mutation. Senders must
	// not block; the channel is buffered and drops are fine, since any
	// retained event still triggers a scan of the full current state.
	Events chan struct{}

	// Count reports the current message-like element count and whether
	// the message container was found at all.
	Count func() (int, bool)

	// Scan performs one full extraction pass.
	Scan func(ctx context.Context)

	Debounce      time.Duration
	RateFloor     time.Duration
	RetryInterval time.Duration

	lastCount int
	hasCount  bool
	lastScan  time.Time
}

// NewChangeDetector creates a detector with default timing over the
// given count and scan hooks.
func NewChangeDetector(count func() (int, bool), scan func(ctx context.Context)) *ChangeDetector {
	return &ChangeDetector{
		Events:        make(chan struct{}, 16),
		Count:         count,
		Scan:          scan,
		Debounce:      defaultDebounce,
		RateFloor:     defaultRateFloor,
		RetryInterval: defaultRetryInterval,
	}
}

// Notify records a page-change event without blocking the caller.
func (d *ChangeDetector) Notify() {
	select {
	case d.Events <- struct{}{}:
	default:
	}
}

// Run drives the detector until ctx is cancelled. All detector state is
// confined to this goroutine.
//
// The loop waits for the message container to appear, performs one
// unconditional initial scan, then debounces incoming events: each
// event resets the window, and when the window elapses quietly a scan
// fires if the count changed and the rate floor has passed.
func (d *ChangeDetector) Run(ctx context.Context) {
	if !d.waitForContainer(ctx) {
		return
	}

	LogInfo("Message container found, performing initial scan")
	d.runScan(ctx, true)

	debounce := time.NewTimer(d.Debounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			return
		case <-d.Events:
			if pending && !debounce.Stop() {
				<-debounce.C
			}
			debounce.Reset(d.Debounce)
			pending = true
		case <-debounce.C:
			pending = false
			d.runScan(ctx, false)
		}
	}
}

// waitForContainer polls until the message container is present. It
// reports false only when ctx is cancelled first.
func (d *ChangeDetector) waitForContainer(ctx context.Context) bool {
	if _, ok := d.Count(); ok {
		return true
	}
	LogDebug("Message container not found, retrying in %v", d.RetryInterval)

	ticker := time.NewTicker(d.RetryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if _, ok := d.Count(); ok {
				return true
			}
		}
	}
}

func (d *ChangeDetector) runScan(ctx context.Context, force bool) {
	count, ok := d.Count()
	if !ok {
		LogDebug("Message container missing, skipping scan")
		return
	}
	if !force {
		if d.hasCount && count == d.lastCount {
			LogDebug("Message count unchanged (%d), skipping scan", count)
			return
		}
		// Suppress, don't wait: lastCount stays behind, so the next
		// event naturally retriggers once the floor has passed.
		if since := time.Since(d.lastScan); since < d.RateFloor {
			LogDebug("Scan rate floor not met, suppressing")
			return
		}
	}

	d.lastCount = count
	d.hasCount = true
	d.lastScan = time.Now()
	d.Scan(ctx)
}
