// Package environment outlines the interfaces and structs needed to
// implement concrete environments with discrete actions
package environment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/arcadeq/timestep"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when episodes end
type Ender interface {
	// End returns whether the episode should end at t. If so, End sets
	// the StepType of t to timestep.Last.
	End(t *timestep.TimeStep) bool
}

// Task implements the reward scheme, starting state distribution, and
// episode termination of an environment
type Task interface {
	Starter
	Ender
	GetReward(state, nextState mat.Vector, action int) float64
}

// Environment implements a simulated environment with discrete actions
// numbered from 0
type Environment interface {
	// Reset starts a new episode and returns its first timestep
	Reset() (timestep.TimeStep, error)

	// Step takes an action and returns the next timestep along with
	// whether the episode has ended
	Step(action int) (timestep.TimeStep, bool, error)

	ObservationSpec() Spec
	ActionSpec() Spec
}

// Closer is an Environment which holds external resources
type Closer interface {
	Environment
	Close() error
}
