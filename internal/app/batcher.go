package app

import (
	"time"

	"github.com/attn-labs/focusship/internal/domain"
)

// Batcher manages the batching of samples for upload.
type Batcher struct {
	batch        *domain.Batch
	maxSamples   int
	sendInterval time.Duration
	hardInterval time.Duration
	lastSend     time.Time
}

// NewBatcher creates a new batcher with the given configuration.
// maxSamples caps the batch size; sendInterval is the soft deadline and
// hardInterval the unconditional one.
func NewBatcher(maxSamples int, sendInterval, hardInterval time.Duration) *Batcher {
	return &Batcher{
		batch:        domain.NewBatch(),
		maxSamples:   maxSamples,
		sendInterval: sendInterval,
		hardInterval: hardInterval,
		lastSend:     time.Now(),
	}
}

// Add adds a sample to the batch.
// Returns true if the batch should be sent after this add (size trigger).
func (b *Batcher) Add(sample domain.Sample) bool {
	b.batch.Add(sample)
	return b.maxSamples > 0 && b.batch.Size() >= b.maxSamples
}

// ShouldSend returns true if the batch should be sent based on time triggers.
func (b *Batcher) ShouldSend() bool {
	if b.batch.Empty() {
		return false
	}
	elapsed := time.Since(b.lastSend)
	return elapsed >= b.sendInterval || elapsed >= b.hardInterval
}

// ShouldForceSend returns true if the hard interval has been exceeded.
func (b *Batcher) ShouldForceSend() bool {
	if b.batch.Empty() {
		return false
	}
	return time.Since(b.lastSend) >= b.hardInterval
}

// Batch returns the current batch.
func (b *Batcher) Batch() *domain.Batch {
	return b.batch
}

// Reset clears the batch and updates the last send time.
func (b *Batcher) Reset() {
	b.batch.Reset()
	b.lastSend = time.Now()
}

// HasPending returns true if there are samples waiting to be sent.
func (b *Batcher) HasPending() bool {
	return !b.batch.Empty()
}

// TimeSinceLastSend returns the duration since the last send.
func (b *Batcher) TimeSinceLastSend() time.Duration {
	return time.Since(b.lastSend)
}
