// Package gym provides access to OpenAI Gym environments with discrete
// actions, such as the Atari RAM environments.
//
// This is made possible through the Go bindings for OpenAI Gym,
// found at https://github.com/samuelfneumann/GoGym.
package gym

import (
	"fmt"

	"github.com/samuelfneumann/gogym"
	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/arcadeq/environment"
	ts "github.com/samuelfneumann/arcadeq/timestep"
)

// BreakoutRAM is the Gym ID of Atari Breakout with a 128 byte RAM
// observation and 4 actions
const BreakoutRAM = "Breakout-ramDeterministic-v4"

// GymEnv implements access to an OpenAI Gym environment using GoGym
type GymEnv struct {
	gogym.Environment

	name        string
	currentStep ts.TimeStep
	discount    float64
}

// New returns a new GymEnv with the given name, which must be a legal
// name from the OpenAI Gym suite with a discrete action space.
func New(name string, discount float64, seed uint64) (*GymEnv, error) {
	goGymEnv, err := gogym.Make(name)
	if err != nil {
		return nil, fmt.Errorf("new: could not create environment %v: %w",
			name, err)
	}
	goGymEnv.Seed(int(seed))

	gymEnv := &GymEnv{
		Environment: goGymEnv,
		name:        name,
		discount:    discount,
	}

	if _, ok := goGymEnv.ActionSpace().(*gogym.DiscreteSpace); !ok {
		goGymEnv.Close()
		return nil, fmt.Errorf("new: environment %v does not have discrete "+
			"actions", name)
	}

	return gymEnv, nil
}

// Step takes a single environmental step
func (g *GymEnv) Step(a int) (ts.TimeStep, bool, error) {
	action := mat.NewVecDense(1, []float64{float64(a)})
	obs, reward, done, err := g.Environment.Step(action)
	if err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: could not step "+
			"GoGym environment: %w", err)
	}

	t := ts.New(ts.Mid, reward, g.discount, obs, g.currentStep.Number+1)
	if done {
		t.StepType = ts.Last
	}
	g.currentStep = t

	return t, done, nil
}

// Reset resets the environment to some starting state
func (g *GymEnv) Reset() (ts.TimeStep, error) {
	obs, err := g.Environment.Reset()
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: could not reset "+
			"environment: %w", err)
	}

	t := ts.New(ts.First, 0, g.discount, obs, 0)
	g.currentStep = t

	return t, nil
}

// ObservationSpec returns the observation spec of the environment
func (g *GymEnv) ObservationSpec() env.Spec {
	space := g.ObservationSpace()

	switch space.(type) {
	case *gogym.BoxSpace, *gogym.DiscreteSpace:
		return observationSpec(space.Low()[0], space.High()[0])
	default:
		panic("observationSpec: invalid space type, package gym supports " +
			"only GoGym's BoxSpace or DiscreteSpace")
	}
}

// ActionSpec returns the action specification of the environment.
// Actions are enumerated from 0 regardless of the lower bound GoGym
// reports for its discrete spaces.
func (g *GymEnv) ActionSpec() env.Spec {
	space, ok := g.ActionSpace().(*gogym.DiscreteSpace)
	if !ok {
		panic("actionSpec: package gym supports only GoGym's DiscreteSpace " +
			"actions")
	}
	return actionSpec(space.High()[0])
}

// observationSpec returns the continuous observation spec bounded by
// low and high
func observationSpec(low, high *mat.VecDense) env.Spec {
	shape := mat.NewVecDense(low.Len(), nil)
	return env.NewSpec(shape, env.Observation, low, high, env.Continuous)
}

// actionSpec returns the spec of the discrete actions {0, ..., high}
func actionSpec(high mat.Vector) env.Spec {
	return env.NewDiscreteActionSpec(int(high.AtVec(0)) + 1)
}

// String implements the fmt.Stringer interface
func (g *GymEnv) String() string {
	return fmt.Sprintf("Gym(%v)", g.name)
}

// Close performs resource cleanup after the environment is no longer
// needed
func (g *GymEnv) Close() error {
	g.Environment.Close()
	return nil
}
