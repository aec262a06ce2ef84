package domain

// Batch is an aggregate of samples ready to be sent together.
type Batch struct {
	// Samples contains the scored samples in arrival order.
	Samples []Sample
}

// NewBatch creates a new empty batch.
func NewBatch() *Batch {
	return &Batch{
		Samples: make([]Sample, 0),
	}
}

// Add appends a sample to the batch.
func (b *Batch) Add(sample Sample) {
	b.Samples = append(b.Samples, sample)
}

// Size returns the number of samples in the batch.
func (b *Batch) Size() int {
	return len(b.Samples)
}

// Empty returns true if the batch has no samples.
func (b *Batch) Empty() bool {
	return len(b.Samples) == 0
}

// Reset clears the batch for reuse.
func (b *Batch) Reset() {
	b.Samples = b.Samples[:0]
}

// LastSample returns the last sample in the batch, or nil if empty.
func (b *Batch) LastSample() *Sample {
	if len(b.Samples) == 0 {
		return nil
	}
	return &b.Samples[len(b.Samples)-1]
}
