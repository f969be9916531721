// Package experiment implements the training loop which runs an agent
// online in an environment
package experiment

import (
	"context"
	"fmt"
	"log"

	"gonum.org/v1/gonum/stat"

	"github.com/samuelfneumann/arcadeq/agent"
	env "github.com/samuelfneumann/arcadeq/environment"
	"github.com/samuelfneumann/arcadeq/experiment/checkpointer"
	"github.com/samuelfneumann/arcadeq/experiment/tracker"
	ts "github.com/samuelfneumann/arcadeq/timestep"
)

// epsilonReporter is an Agent which reports its exploration rate
type epsilonReporter interface {
	Epsilon() float64
}

// Online is an experiment that runs and trains an agent online. No
// offline evaluation is performed.
//
// On each environment step the agent chooses an action, the
// environment is stepped, the resulting transition is stored, and the
// agent learns. Whenever the number of transitions the agent has
// stored is a multiple of the sync interval, the agent's target model
// is updated.
type Online struct {
	env.Environment
	agent.Agent

	episodes     int
	maxSteps     int // Total steps in the experiment, 0 for no limit
	syncInterval int
	currentSteps int

	trackers      []tracker.Tracker
	checkpointers []checkpointer.Checkpointer

	scores []float64

	lastSyncLen int
	warnedSync  bool

	// Verbose toggles per-episode and target update logging
	Verbose bool
	Logger  *log.Logger
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. The experiment runs for the given
// number of episodes or until maxSteps total environment steps have
// been taken, whichever is first. A maxSteps of 0 places no limit on
// the number of steps.
func NewOnline(e env.Environment, a agent.Agent, episodes, maxSteps,
	syncInterval int, t ...tracker.Tracker) (*Online, error) {
	if e == nil || a == nil {
		return nil, fmt.Errorf("newOnline: environment and agent must " +
			"not be nil")
	}
	if episodes < 1 {
		return nil, fmt.Errorf("newOnline: episodes must be positive"+
			"\n\thave(%v)", episodes)
	}
	if maxSteps < 0 {
		return nil, fmt.Errorf("newOnline: max steps must be "+
			"non-negative\n\thave(%v)", maxSteps)
	}
	if syncInterval < 1 {
		return nil, fmt.Errorf("newOnline: sync interval must be positive"+
			"\n\thave(%v)", syncInterval)
	}

	return &Online{
		Environment:  e,
		Agent:        a,
		episodes:     episodes,
		maxSteps:     maxSteps,
		syncInterval: syncInterval,
		trackers:     t,
		lastSyncLen:  -1,
		Verbose:      true,
		Logger:       log.Default(),
	}, nil
}

// Register registers a tracker.Tracker with the experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// RegisterCheckpointer registers a checkpointer.Checkpointer which is
// given the total step count after each environment step
func (o *Online) RegisterCheckpointer(c checkpointer.Checkpointer) {
	o.checkpointers = append(o.checkpointers, c)
}

// RunEpisode runs a single episode of the experiment and returns
// whether the step limit of the experiment has been reached. The
// context is checked between environment steps.
func (o *Online) RunEpisode(ctx context.Context) (bool, error) {
	step, err := o.Environment.Reset()
	if err != nil {
		return false, fmt.Errorf("runEpisode: could not reset "+
			"environment: %w", err)
	}
	o.track(step)

	score := 0.0
	for !step.Last() && !o.stepLimitReached() {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		action, err := o.Agent.ChooseAction(step.State())
		if err != nil {
			return false, fmt.Errorf("runEpisode: %w", err)
		}

		next, _, err := o.Environment.Step(action)
		if err != nil {
			return false, fmt.Errorf("runEpisode: %w", err)
		}
		o.currentSteps++
		o.track(next)
		score += next.Reward

		o.Agent.Store(ts.FromTimeSteps(step, action, next))
		step = next

		if err := o.Agent.Learn(); err != nil {
			return false, fmt.Errorf("runEpisode: %w", err)
		}
		if err := o.maybeSync(); err != nil {
			return false, fmt.Errorf("runEpisode: %w", err)
		}

		for _, c := range o.checkpointers {
			if err := c.Checkpoint(o.currentSteps); err != nil {
				return false, fmt.Errorf("runEpisode: could not "+
					"checkpoint: %w", err)
			}
		}
	}

	if step.Last() {
		o.scores = append(o.scores, score)
		o.logEpisode(score)
	}

	return o.stepLimitReached(), nil
}

// Run runs the entire experiment until all episodes have finished, the
// step limit has been reached, or ctx is done
func (o *Online) Run(ctx context.Context) error {
	for i := 0; i < o.episodes; i++ {
		ended, err := o.RunEpisode(ctx)
		if err != nil {
			return fmt.Errorf("run: episode %v: %w", i, err)
		}
		if ended {
			break
		}
	}
	return nil
}

// maybeSync updates the agent's target model if the number of stored
// transitions is a multiple of the sync interval
func (o *Online) maybeSync() error {
	memLen := o.Agent.MemoryLen()
	if memLen == 0 || memLen%o.syncInterval != 0 {
		return nil
	}

	// A full replay buffer stays at the same length, so the target model
	// is then updated on every step
	if memLen == o.lastSyncLen && !o.warnedSync {
		o.Logger.Printf("Warning: replay buffer holds %v transitions and "+
			"is no longer growing, the target model will be updated on "+
			"every step", memLen)
		o.warnedSync = true
	}
	o.lastSyncLen = memLen

	if err := o.Agent.UpdateModel(); err != nil {
		return err
	}
	if o.Verbose && !o.warnedSync {
		o.Logger.Println("target model updated")
	}
	return nil
}

func (o *Online) logEpisode(score float64) {
	if !o.Verbose {
		return
	}

	epsilon := "-"
	if e, ok := o.Agent.(epsilonReporter); ok {
		epsilon = fmt.Sprintf("%.3f", e.Epsilon())
	}
	o.Logger.Printf("episode %v | score %.2f | average score %.2f | "+
		"epsilon %v | memory %v", len(o.scores)-1, score, o.AverageScore(),
		epsilon, o.Agent.MemoryLen())
}

func (o *Online) stepLimitReached() bool {
	return o.maxSteps > 0 && o.currentSteps >= o.maxSteps
}

// Scores returns the score of each finished episode
func (o *Online) Scores() []float64 {
	return append([]float64{}, o.scores...)
}

// AverageScore returns the mean score over all finished episodes
func (o *Online) AverageScore() float64 {
	if len(o.scores) == 0 {
		return 0
	}
	return stat.Mean(o.scores, nil)
}

// TotalSteps returns the number of environment steps taken so far
func (o *Online) TotalSteps() int {
	return o.currentSteps
}

// Save saves all the data cached by the trackers to disk
func (o *Online) Save() error {
	for _, t := range o.trackers {
		if err := t.Save(); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}
	return nil
}

// track tracks the current timestep by caching its data in each tracker
func (o *Online) track(t ts.TimeStep) {
	for _, tr := range o.trackers {
		tr.Track(t)
	}
}
