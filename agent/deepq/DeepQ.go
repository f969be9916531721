// Package deepq implements the deep Q-learning algorithm with an
// experience replay buffer and a hard-updated target network.
package deepq

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"

	"github.com/samuelfneumann/arcadeq/expreplay"
	"github.com/samuelfneumann/arcadeq/network"
	ts "github.com/samuelfneumann/arcadeq/timestep"
)

// DeepQ implements the deep Q-learning algorithm using the MSE loss.
//
// Actions are selected epsilon-greedily with respect to the online
// network. Each call to Learn() fits the online network to bootstrap
// targets computed by the target network on a batch of transitions
// sampled from the replay buffer. The target network only changes
// through UpdateModel(), which copies the online network's weights.
type DeepQ struct {
	online network.ValueFunctionApproximator
	target network.ValueFunctionApproximator
	replay *expreplay.ReplayBuffer

	numActions int
	batchSize  int
	gamma      float64

	epsilon      float64
	epsilonEnd   float64
	epsilonDecay float64

	rng *rand.Rand
}

// New creates and returns a new DeepQ agent using the argument online
// and target networks and replay buffer. Only the learning
// hyperparameters of config are used.
func New(online, target network.ValueFunctionApproximator,
	replay *expreplay.ReplayBuffer, config Config, seed uint64) (*DeepQ,
	error) {
	if online == nil || target == nil {
		return nil, fmt.Errorf("new: online and target networks must " +
			"not be nil")
	}
	if replay == nil {
		return nil, fmt.Errorf("new: replay buffer must not be nil")
	}
	if err := config.validateLearning(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	if online.Features() != target.Features() {
		return nil, fmt.Errorf("new: online and target networks have "+
			"different numbers of features\n\tonline(%v)\n\ttarget(%v)",
			online.Features(), target.Features())
	}
	if online.Outputs() != target.Outputs() {
		return nil, fmt.Errorf("new: online and target networks have "+
			"different numbers of outputs\n\tonline(%v)\n\ttarget(%v)",
			online.Outputs(), target.Outputs())
	}

	return &DeepQ{
		online:       online,
		target:       target,
		replay:       replay,
		numActions:   online.Outputs(),
		batchSize:    config.BatchSize,
		gamma:        config.Gamma,
		epsilon:      config.Epsilon,
		epsilonEnd:   config.EpsilonEnd,
		epsilonDecay: config.EpsilonDecay,
		rng:          rand.New(rand.NewSource(seed)),
	}, nil
}

// ChooseAction selects an action in state epsilon-greedily with
// respect to the online network. Ties between greedy actions are
// broken by choosing the lowest action index.
func (d *DeepQ) ChooseAction(state []float64) (int, error) {
	if d.rng.Float64() < d.epsilon {
		return d.rng.Intn(d.numActions), nil
	}

	values, err := d.online.Predict(state)
	if err != nil {
		return 0, fmt.Errorf("chooseAction: %w", err)
	}
	return floats.MaxIdx(values), nil
}

// Store adds a transition to the replay buffer, evicting the oldest
// transition if the buffer is full
func (d *DeepQ) Store(t ts.Transition) {
	d.replay.Store(t)
}

// Learn performs a single learning step.
//
// Epsilon is decayed on every call. If the replay buffer holds no more
// than BatchSize transitions, Learn returns without fitting. Otherwise
// a batch is sampled and the online network takes a single gradient
// step toward the bootstrap targets of the batch.
func (d *DeepQ) Learn() error {
	if d.epsilon > d.epsilonEnd {
		d.epsilon *= d.epsilonDecay
		if d.epsilon < d.epsilonEnd {
			d.epsilon = d.epsilonEnd
		}
	}

	if d.replay.Len() <= d.batchSize {
		return nil
	}

	batch, err := d.replay.BatchSample(d.batchSize)
	if err != nil {
		return fmt.Errorf("learn: could not sample batch: %w", err)
	}

	states := make([][]float64, len(batch))
	targets := make([][]float64, len(batch))
	for i, t := range batch {
		targets[i], err = d.targetVector(t)
		if err != nil {
			return fmt.Errorf("learn: %w", err)
		}
		states[i] = t.State
	}

	if err := d.online.Fit(states, targets); err != nil {
		return fmt.Errorf("learn: could not fit online network: %w", err)
	}
	return nil
}

// targetVector returns the online network's prediction for the state
// of t with the entry of the action taken replaced by the bootstrap
// target of t
func (d *DeepQ) targetVector(t ts.Transition) ([]float64, error) {
	if t.Action < 0 || t.Action >= d.numActions {
		return nil, fmt.Errorf("targetVector: action out of range "+
			"\n\twant([0, %v))\n\thave(%v)", d.numActions, t.Action)
	}

	target, err := d.bootstrapTarget(t)
	if err != nil {
		return nil, err
	}

	values, err := d.online.Predict(t.State)
	if err != nil {
		return nil, fmt.Errorf("targetVector: could not predict action "+
			"values: %w", err)
	}
	values[t.Action] = target

	return values, nil
}

// bootstrapTarget returns the target r + γ max_a' Q_target(s', a'), or
// just r if the transition ends the episode
func (d *DeepQ) bootstrapTarget(t ts.Transition) (float64, error) {
	if t.Done {
		return t.Reward, nil
	}

	nextValues, err := d.target.Predict(t.NextState)
	if err != nil {
		return 0, fmt.Errorf("bootstrapTarget: could not predict next "+
			"action values: %w", err)
	}
	return t.Reward + d.gamma*floats.Max(nextValues), nil
}

// UpdateModel copies the weights of the online network into the target
// network
func (d *DeepQ) UpdateModel() error {
	if err := d.target.SetParameters(d.online.Parameters()); err != nil {
		return fmt.Errorf("updateModel: %w", err)
	}
	return nil
}

// Epsilon returns the current exploration rate
func (d *DeepQ) Epsilon() float64 {
	return d.epsilon
}

// MemoryLen returns the number of transitions in the replay buffer
func (d *DeepQ) MemoryLen() int {
	return d.replay.Len()
}

// Online returns the online network
func (d *DeepQ) Online() network.ValueFunctionApproximator {
	return d.online
}
