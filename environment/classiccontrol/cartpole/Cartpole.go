// Package cartpole implements the Cartpole classic control environment
// with discrete actions
package cartpole

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	env "github.com/samuelfneumann/arcadeq/environment"
	ts "github.com/samuelfneumann/arcadeq/timestep"
	"github.com/samuelfneumann/arcadeq/utils/floatutils"
)

const (
	// Physical constants
	Gravity        float64 = 9.8
	CartMass       float64 = 1.0
	PoleMass       float64 = 0.1
	HalfPoleLength float64 = 0.5  // half of pole length
	ForceMag       float64 = 10.0 // Magnification of force applied
	Dt             float64 = 0.02 // seconds between state updates

	// Bounds (+/-) on state variables
	PositionBounds        float64 = 2.4
	SpeedBounds           float64 = math.MaxFloat64
	AngleBounds           float64 = math.Pi
	AngularVelocityBounds float64 = math.MaxFloat64

	// Discrete Actions
	MinDiscreteAction int = 0
	MaxDiscreteAction int = 2

	ObservationDims int = 4
)

// Cartpole implements the classic control environment Cartpole. In
// this environment, a pole is attached to a cart, which can move
// horizontally. Gravity pulls the pole downwards so that balancing it
// in an upright position is difficult.
//
// The state features are continuous and consist of the cart's x
// position and speed, as well as the pole's angle from the positive
// y-axis and the pole's angular velocity. The position is clipped to
// its bounds, and the angle is normalized to stay in (-π, π].
//
// Actions are discrete and consist of the force applied to the cart:
//
//	Action	Meaning
//	  0		Accelerate left
//	  1		Do nothing
//	  2		Accelerate right
type Cartpole struct {
	env.Task
	lastStep ts.TimeStep
	discount float64

	positionBounds        r1.Interval
	speedBounds           r1.Interval
	angleBounds           r1.Interval
	angularVelocityBounds r1.Interval
}

// New constructs a new Cartpole environment. Reset() must be called
// before the first call to Step().
func New(t env.Task, discount float64) *Cartpole {
	return &Cartpole{
		Task:           t,
		discount:       discount,
		positionBounds: r1.Interval{Min: -PositionBounds, Max: PositionBounds},
		speedBounds:    r1.Interval{Min: -SpeedBounds, Max: SpeedBounds},
		angleBounds:    r1.Interval{Min: -AngleBounds, Max: AngleBounds},
		angularVelocityBounds: r1.Interval{
			Min: -AngularVelocityBounds,
			Max: AngularVelocityBounds,
		},
	}
}

// Reset resets the environment and returns a starting state drawn from
// the environment Starter
func (c *Cartpole) Reset() (ts.TimeStep, error) {
	state := c.Start()
	if err := c.validateState(state); err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %w", err)
	}

	startStep := ts.New(ts.First, 0, c.discount, state, 0)
	c.lastStep = startStep

	return startStep, nil
}

// ActionSpec returns the action specification of the environment
func (c *Cartpole) ActionSpec() env.Spec {
	return env.NewDiscreteActionSpec(MaxDiscreteAction + 1)
}

// ObservationSpec returns the observation specification of the
// environment
func (c *Cartpole) ObservationSpec() env.Spec {
	shape := mat.NewVecDense(ObservationDims, nil)

	lower := []float64{c.positionBounds.Min, c.speedBounds.Min,
		c.angleBounds.Min, c.angularVelocityBounds.Min}
	lowerBound := mat.NewVecDense(ObservationDims, lower)

	upper := []float64{c.positionBounds.Max, c.speedBounds.Max,
		c.angleBounds.Max, c.angularVelocityBounds.Max}
	upperBound := mat.NewVecDense(ObservationDims, upper)

	return env.NewSpec(shape, env.Observation, lowerBound,
		upperBound, env.Continuous)
}

// Step takes one environmental step given action a and returns the next
// state as a timestep.TimeStep and a bool indicating whether or not the
// episode has ended
func (c *Cartpole) Step(a int) (ts.TimeStep, bool, error) {
	if c.lastStep.Observation == nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: environment must " +
			"be reset before stepping")
	}
	if a < MinDiscreteAction || a > MaxDiscreteAction {
		return ts.TimeStep{}, true, fmt.Errorf("step: illegal action %v "+
			"∉ {0, 1, 2}", a)
	}

	// Convert action (0, 1, 2) to a direction (-1, 0, 1)
	direction := float64(a - 1)

	state := c.lastStep.Observation
	newState := c.nextState(state, direction)

	reward := c.GetReward(state, newState, a)
	nextStep := ts.New(ts.Mid, reward, c.discount, newState,
		c.lastStep.Number+1)

	// Check if the step ends the episode
	c.End(&nextStep)

	c.lastStep = nextStep
	return nextStep, nextStep.Last(), nil
}

// nextState integrates the cartpole dynamics for one step when force
// is applied in the given direction
func (c *Cartpole) nextState(state *mat.VecDense,
	direction float64) *mat.VecDense {
	x, xDot := state.AtVec(0), state.AtVec(1)
	th, thDot := state.AtVec(2), state.AtVec(3)

	force := direction * ForceMag

	cosTheta := math.Cos(th)
	sinTheta := math.Sin(th)

	totalMass := PoleMass + CartMass
	poleMassLength := PoleMass * HalfPoleLength

	temp := (force + poleMassLength*thDot*thDot*sinTheta) / totalMass
	thAcc := (Gravity*sinTheta - cosTheta*temp) / (HalfPoleLength *
		(4.0/3.0 - PoleMass*cosTheta*cosTheta/totalMass))
	xAcc := temp - poleMassLength*thAcc*cosTheta/totalMass

	// Update state variables using Euler kinematic integration
	x += Dt * xDot
	xDot += Dt * xAcc
	th += Dt * thDot
	thDot += Dt * thAcc

	// The cart stops when it hits a wall
	if x <= c.positionBounds.Min || x >= c.positionBounds.Max {
		xDot = 0
	}
	x = floatutils.ClipInterval(x, c.positionBounds)
	th = normalizeAngle(th, c.angleBounds)

	return mat.NewVecDense(ObservationDims, []float64{x, xDot, th, thDot})
}

// validateState ensures that a state observation is between the
// physical bounds of the Cartpole environment
func (c *Cartpole) validateState(obs mat.Vector) error {
	if obs.Len() != ObservationDims {
		return fmt.Errorf("validateState: invalid state dimension"+
			"\n\twant(%v)\n\thave(%v)", ObservationDims, obs.Len())
	}

	bounds := []r1.Interval{c.positionBounds, c.speedBounds, c.angleBounds,
		c.angularVelocityBounds}
	names := []string{"position", "speed", "angle", "angular velocity"}
	for i, bound := range bounds {
		if v := obs.AtVec(i); v < bound.Min || v > bound.Max {
			return fmt.Errorf("validateState: %v %v is not within bounds "+
				"%v", names[i], v, bound)
		}
	}
	return nil
}

func (c *Cartpole) String() string {
	if c.lastStep.Observation == nil {
		return "Cartpole  |  not started"
	}

	msg := "Cartpole  |  Position: %v  | Speed: %v  |  Angle: %v" +
		"  |  Angular Velocity: %v"

	state := c.lastStep.Observation
	position, speed := state.AtVec(0), state.AtVec(1)
	angle, velocity := state.AtVec(2), state.AtVec(3)

	return fmt.Sprintf(msg, position, speed, angle, velocity)
}

// normalizeAngle wraps the pole angle into the angle bounds, which
// must be centred around 0
func normalizeAngle(th float64, angleBounds r1.Interval) float64 {
	if angleBounds.Max != -angleBounds.Min {
		panic("angle bounds should be centered around 0")
	}

	width := angleBounds.Max - angleBounds.Min
	for th > angleBounds.Max {
		th -= width
	}
	for th <= angleBounds.Min {
		th += width
	}
	return th
}
