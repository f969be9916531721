package environment

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/arcadeq/timestep"
)

// StepLimit implements the Ender interface to end episodes at specific
// timestep limits
type StepLimit struct {
	episodeSteps int
}

// NewStepLimit creates and returns a new step limit
func NewStepLimit(episodeSteps int) *StepLimit {
	return &StepLimit{episodeSteps}
}

// End ends the episode once t.Number reaches the step limit
func (s *StepLimit) End(t *timestep.TimeStep) bool {
	if t.Number >= s.episodeSteps {
		t.StepType = timestep.Last
		return true
	}
	return false
}

// IntervalLimit implements the Ender interface to end episodes
// whenever a single feature in a feature vector leaves some interval
type IntervalLimit struct {
	intervals []r1.Interval
	indices   []int
}

// NewIntervalLimit creates and returns a new interval limit which ends
// an episode when observation feature obsIndices[i] leaves limits[i]
func NewIntervalLimit(limits []r1.Interval, obsIndices []int) *IntervalLimit {
	if len(limits) != len(obsIndices) {
		panic(fmt.Sprintf("limits should have same length as observation "+
			"indices\n\twant(%v)\n\thave(%v)", len(limits), len(obsIndices)))
	}

	return &IntervalLimit{limits, obsIndices}
}

// End ends the episode if any tracked feature of t's observation is
// outside its interval
func (i *IntervalLimit) End(t *timestep.TimeStep) bool {
	for index, featureIndex := range i.indices {
		interval := i.intervals[index]
		feature := t.Observation.AtVec(featureIndex)

		if feature > interval.Max || feature < interval.Min {
			t.StepType = timestep.Last
			return true
		}
	}
	return false
}
