package announce

import (
	"context"
	"slices"
	"sync"
)

// Recorder keeps every announced batch in memory.
type Recorder struct {
	mu      sync.Mutex
	batches [][]string
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Announce(_ context.Context, messages ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, slices.Clone(messages))
	return nil
}

// Batches returns a copy of the recorded batches.
func (r *Recorder) Batches() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]string, len(r.batches))
	for i, batch := range r.batches {
		out[i] = slices.Clone(batch)
	}
	return out
}

// Messages flattens every batch in order.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, batch := range r.batches {
		out = append(out, batch...)
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = nil
}
