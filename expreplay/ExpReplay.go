// Package expreplay implements a bounded experience replay buffer
package expreplay

import (
	"fmt"

	"github.com/samuelfneumann/arcadeq/timestep"
)

// ReplayBuffer implements a capacity-bounded experience replay buffer.
// Transitions are evicted in a FiFo manner: when the buffer is full the
// oldest transition is removed before a new one is added. Batches are
// sampled uniformly randomly without replacement.
//
// Storage is a ring so that eviction does not shift the underlying
// slice. Logical position 0 is always the oldest transition.
type ReplayBuffer struct {
	transitions []timestep.Transition
	start       int // Physical index of the oldest transition
	length      int
	maxSize     int

	sampler Selector
}

// New creates and returns a new ReplayBuffer holding at most maxSize
// transitions. The seed parameter seeds the uniform sampler.
func New(maxSize int, seed uint64) (*ReplayBuffer, error) {
	return NewWithSelector(maxSize, NewUniformSelector(seed))
}

// NewWithSelector returns a new ReplayBuffer which uses the argument
// Selector to choose the positions of sampled transitions
func NewWithSelector(maxSize int, sampler Selector) (*ReplayBuffer,
	error) {
	if maxSize < 1 {
		return nil, fmt.Errorf("new: maxSize must be >= 1\n\thave(%v)",
			maxSize)
	}
	if sampler == nil {
		return nil, fmt.Errorf("new: sampler must not be nil")
	}

	// Only grow the backing slice as data arrives, capacities in the
	// millions are common
	initialCap := maxSize
	if initialCap > 1024 {
		initialCap = 1024
	}

	return &ReplayBuffer{
		transitions: make([]timestep.Transition, 0, initialCap),
		maxSize:     maxSize,
		sampler:     sampler,
	}, nil
}

// Len returns the current number of transitions in the buffer
func (r *ReplayBuffer) Len() int {
	return r.length
}

// MaxSize returns the maximum number of transitions in the buffer
func (r *ReplayBuffer) MaxSize() int {
	return r.maxSize
}

// Full returns whether the buffer holds MaxSize() transitions
func (r *ReplayBuffer) Full() bool {
	return r.length == r.maxSize
}

// At returns the transition at logical position i, where position 0
// holds the oldest transition in the buffer
func (r *ReplayBuffer) At(i int) timestep.Transition {
	if i < 0 || i >= r.length {
		panic(fmt.Sprintf("at: index %v out of range [0, %v)", i, r.length))
	}
	return r.transitions[r.physical(i)]
}

// physical converts a logical position into an index of the backing
// slice
func (r *ReplayBuffer) physical(i int) int {
	return (r.start + i) % len(r.transitions)
}

// Store adds a transition to the buffer, first evicting the oldest
// transition if the buffer is full
func (r *ReplayBuffer) Store(t timestep.Transition) {
	if r.length == r.maxSize {
		// Overwriting the oldest slot evicts it and appends t at the
		// logical end in one step
		r.transitions[r.start] = t
		r.start = (r.start + 1) % r.maxSize
		return
	}

	r.transitions = append(r.transitions, t)
	r.length++
}

// BatchSample samples and returns batchSize transitions, drawn
// uniformly randomly without replacement from the buffer. If batchSize
// exceeds the number of transitions in the buffer, an *ExpReplayError
// wrapping ErrUnderflow is returned.
func (r *ReplayBuffer) BatchSample(batchSize int) ([]timestep.Transition,
	error) {
	if batchSize > r.length {
		err := &ExpReplayError{
			Op: "batchSample",
			Err: fmt.Errorf("%w\n\twant(%v)\n\thave(%v)", ErrUnderflow,
				batchSize, r.length),
		}
		return nil, err
	}
	if batchSize < 0 {
		return nil, fmt.Errorf("batchSample: batch size must be >= 0")
	}

	indices := r.sampler.choose(batchSize, r.length)

	batch := make([]timestep.Transition, batchSize)
	for i, index := range indices {
		batch[i] = r.At(index)
	}
	return batch, nil
}

// String returns the string representation of the buffer
func (r *ReplayBuffer) String() string {
	return fmt.Sprintf("ReplayBuffer | Length: %v  |  Max Size: %v", r.length,
		r.maxSize)
}
