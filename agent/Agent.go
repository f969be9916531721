// Package agent defines the interfaces satisfied by learning agents
// and their configurations
package agent

import "github.com/samuelfneumann/arcadeq/timestep"

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a Learner, which learns weights, and a Policy
// which chooses actions in each state. The Learner and Policy share
// weights so that any change the Learner makes is reflected in the
// actions the Policy chooses.
type Agent interface {
	Learner
	Policy
}

// Policy chooses actions given state observations
type Policy interface {
	// ChooseAction returns the index of the action to take in state
	ChooseAction(state []float64) (int, error)
}

// Learner implements a learning algorithm that defines how weights are
// updated from stored experience.
type Learner interface {
	// Store records a transition for later learning
	Store(timestep.Transition)

	// Learn performs a single learning step
	Learn() error

	// UpdateModel synchronizes any target weights with the weights
	// being learned
	UpdateModel() error

	// MemoryLen returns the number of transitions currently stored
	MemoryLen() int
}
