package deepq

import (
	"fmt"

	"github.com/samuelfneumann/arcadeq/agent"
	"github.com/samuelfneumann/arcadeq/expreplay"
	"github.com/samuelfneumann/arcadeq/initwfn"
	"github.com/samuelfneumann/arcadeq/network"
	"github.com/samuelfneumann/arcadeq/solver"
)

func init() {
	// Register Config so that it can be unmarshalled through
	// agent.TypedConfig
	agent.Register(agent.EGreedyDeepQMLP, Config{})
}

// Config implements a configuration for a DeepQ agent
type Config struct {
	HiddenSizes []int                 // Layer sizes in neural net
	Activations []*network.Activation // Activation of each hidden layer
	Solver      *solver.Solver        // Solver for learning weights
	InitWFn     *initwfn.InitWFn      // Weight initialization

	Capacity  int // Maximum number of transitions stored
	BatchSize int

	Gamma float64 // Discount factor

	// Epsilon decays geometrically by EpsilonDecay on each call to
	// Learn() until it reaches EpsilonEnd
	Epsilon      float64
	EpsilonEnd   float64
	EpsilonDecay float64
}

// DefaultConfig returns the reference configuration of DeepQ: two
// hidden layers of 128 ReLU units trained by Adam with step size
// 1e-4, a replay buffer holding a million transitions, and epsilon
// decaying from 1.0 to 0.1.
func DefaultConfig() Config {
	s, err := solver.NewDefaultAdam(1e-4, 1)
	if err != nil {
		panic(fmt.Sprintf("defaultConfig: could not create solver: %v", err))
	}
	init, err := initwfn.NewGlorotU(1.0)
	if err != nil {
		panic(fmt.Sprintf("defaultConfig: could not create initializer: %v",
			err))
	}

	return Config{
		HiddenSizes:  []int{128, 128},
		Activations:  []*network.Activation{network.ReLU(), network.ReLU()},
		Solver:       s,
		InitWFn:      init,
		Capacity:     1_000_000,
		BatchSize:    32,
		Gamma:        0.99,
		Epsilon:      1.0,
		EpsilonEnd:   0.1,
		EpsilonDecay: 0.9999846,
	}
}

// Type returns the type of the configuration
func (c Config) Type() agent.Type {
	return agent.EGreedyDeepQMLP
}

// Validate checks a Config to ensure it is a valid configuration of a
// DeepQ agent.
func (c Config) Validate() error {
	if len(c.HiddenSizes) != len(c.Activations) {
		return fmt.Errorf("validate: invalid number of activations"+
			"\n\twant(%v)\n\thave(%v)", len(c.HiddenSizes),
			len(c.Activations))
	}
	if c.Solver == nil {
		return fmt.Errorf("validate: no solver specified")
	}
	if c.InitWFn == nil {
		return fmt.Errorf("validate: no weight initializer specified")
	}
	if c.Capacity < 1 {
		return fmt.Errorf("validate: capacity must be positive"+
			"\n\twant(>0)\n\thave(%v)", c.Capacity)
	}

	return c.validateLearning()
}

// validateLearning checks the hyperparameters used by the learning
// rule, independent of how the approximators and buffer are built
func (c Config) validateLearning() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("validate: batch size must be positive"+
			"\n\twant(>0)\n\thave(%v)", c.BatchSize)
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("validate: gamma must be in [0, 1]\n\thave(%v)",
			c.Gamma)
	}
	if c.EpsilonEnd < 0 || c.EpsilonEnd > c.Epsilon || c.Epsilon > 1 {
		return fmt.Errorf("validate: must have 0 <= EpsilonEnd <= "+
			"Epsilon <= 1\n\thave(EpsilonEnd=%v, Epsilon=%v)", c.EpsilonEnd,
			c.Epsilon)
	}
	if c.EpsilonDecay <= 0 || c.EpsilonDecay > 1 {
		return fmt.Errorf("validate: epsilon decay must be in (0, 1]"+
			"\n\thave(%v)", c.EpsilonDecay)
	}
	return nil
}

// networkConfig returns the configuration of the online and target
// networks
func (c Config) networkConfig(features, actions int) network.MLPConfig {
	return network.MLPConfig{
		Features:    features,
		Outputs:     actions,
		HiddenSizes: c.HiddenSizes,
		Activations: c.Activations,
		Solver:      c.Solver,
		InitWFn:     c.InitWFn,
	}
}

// CreateAgent creates a new DeepQ agent for an environment with the
// given number of state features and discrete actions. The online and
// target networks are initialized independently.
func (c Config) CreateAgent(features, actions int,
	seed uint64) (agent.Agent, error) {
	return c.Create(features, actions, seed)
}

// Create is like CreateAgent but returns the concrete *DeepQ
func (c Config) Create(features, actions int, seed uint64) (*DeepQ, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("createAgent: %w", err)
	}

	online, err := network.NewMLP(c.networkConfig(features, actions))
	if err != nil {
		return nil, fmt.Errorf("createAgent: could not create online "+
			"network: %w", err)
	}
	target, err := network.NewMLP(c.networkConfig(features, actions))
	if err != nil {
		return nil, fmt.Errorf("createAgent: could not create target "+
			"network: %w", err)
	}

	replay, err := expreplay.New(c.Capacity, seed)
	if err != nil {
		return nil, fmt.Errorf("createAgent: could not create experience "+
			"replay buffer: %w", err)
	}

	return New(online, target, replay, c, seed)
}
