package internal

import (
	"fmt"
	"testing"
)

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("Hello, can you fix my logo by Friday?")
	b := Fingerprint("Hello, can you fix my logo by Friday?")
	if a != b {
		t.Errorf("same text produced different fingerprints: %d vs %d", a, b)
	}
	if Fingerprint("hello") == Fingerprint("Hello") {
		t.Error("expected distinct fingerprints for different text")
	}
}

func TestFingerprintCacheProcessed(t *testing.T) {
	cache := NewFingerprintCache()
	fp := Fingerprint("message one")

	if cache.HasProcessed(fp) {
		t.Error("fresh cache should not report processed")
	}
	cache.MarkProcessed(fp)
	if !cache.HasProcessed(fp) {
		t.Error("marked fingerprint should report processed")
	}

	// Marking again must not grow the set.
	cache.MarkProcessed(fp)
	if got := cache.ProcessedLen(); got != 1 {
		t.Errorf("ProcessedLen = %d, want 1", got)
	}
}

func TestFingerprintCacheEviction(t *testing.T) {
	cache := NewFingerprintCache()

	var ids []FingerprintID
	for i := 0; i < processedHighWater+1; i++ {
		id := Fingerprint(fmt.Sprintf("message %d", i))
		ids = append(ids, id)
		cache.MarkProcessed(id)
	}

	if got := cache.ProcessedLen(); got != processedLowWater {
		t.Fatalf("ProcessedLen after overflow = %d, want %d", got, processedLowWater)
	}

	// Oldest entries evicted, newest retained.
	if cache.HasProcessed(ids[0]) {
		t.Error("oldest fingerprint should have been evicted")
	}
	if !cache.HasProcessed(ids[len(ids)-1]) {
		t.Error("newest fingerprint should be retained")
	}
}

func TestFingerprintCacheInFlight(t *testing.T) {
	cache := NewFingerprintCache()
	first := Fingerprint("first")
	second := Fingerprint("second")

	if !cache.BeginProcessing(first) {
		t.Fatal("BeginProcessing on idle cache should succeed")
	}
	if !cache.IsProcessing(first) {
		t.Error("IsProcessing should report the in-flight fingerprint")
	}
	if cache.BeginProcessing(second) {
		t.Error("BeginProcessing should fail while another message is in flight")
	}
	if !cache.BeginProcessing(first) {
		t.Error("BeginProcessing should be reentrant for the same fingerprint")
	}

	cache.EndProcessing(first)
	if cache.Busy() {
		t.Error("cache should be idle after EndProcessing")
	}
	if !cache.BeginProcessing(second) {
		t.Error("BeginProcessing should succeed once the slot is free")
	}
}
