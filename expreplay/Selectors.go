package expreplay

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// Selector implements functionality for choosing which positions of an
// experience replay buffer should be sampled
type Selector interface {
	// choose selects batch distinct positions in [0, size)
	choose(batch, size int) []int
}

// uniformSelector is a Selector which selects positions uniformly
// randomly without replacement
type uniformSelector struct {
	src rand.Source
}

// NewUniformSelector returns a new Selector which selects positions
// uniformly randomly, without replacement, from an experience replay
// buffer
func NewUniformSelector(seed uint64) Selector {
	return &uniformSelector{src: rand.NewSource(seed)}
}

// choose selects batch distinct indices in [0, size)
func (u *uniformSelector) choose(batch, size int) []int {
	selected := make([]int, batch)
	sampleuv.WithoutReplacement(selected, size, u.src)
	return selected
}
