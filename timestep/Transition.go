package timestep

import "fmt"

// Transition is a single (state, action, reward, next state, done)
// tuple of experience. A Transition is never modified after it has been
// stored in an experience replay buffer.
type Transition struct {
	State     []float64
	Action    int
	Reward    float64
	NextState []float64
	Done      bool
}

// NewTransition returns a new Transition that owns copies of the
// argument state vectors
func NewTransition(state []float64, action int, reward float64,
	nextState []float64, done bool) Transition {
	s := make([]float64, len(state))
	copy(s, state)

	next := make([]float64, len(nextState))
	copy(next, nextState)

	return Transition{
		State:     s,
		Action:    action,
		Reward:    reward,
		NextState: next,
		Done:      done,
	}
}

// FromTimeSteps constructs the Transition of taking action in step and
// arriving at next
func FromTimeSteps(step TimeStep, action int, next TimeStep) Transition {
	return Transition{
		State:     step.State(),
		Action:    action,
		Reward:    next.Reward,
		NextState: next.State(),
		Done:      next.Last(),
	}
}

func (t Transition) String() string {
	return fmt.Sprintf("Transition | Action: %v  |  Reward: %.2f  |  "+
		"Done: %v", t.Action, t.Reward, t.Done)
}
