// Package envconfig provides configuration structs for configuring
// environments with default physical parameters and tasks. Environment
// configurations in this package are JSON serializable.
package envconfig

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r1"

	env "github.com/samuelfneumann/arcadeq/environment"
	"github.com/samuelfneumann/arcadeq/environment/classiccontrol/cartpole"
	"github.com/samuelfneumann/arcadeq/environment/gym"
)

// EnvName stores the name of environments that can be configured with
// this package
type EnvName string

// Environments available for configuration
const (
	Cartpole EnvName = "Cartpole"
	Gym      EnvName = "Gym"
)

// Config implements a specific configuration of an environment. GymID
// is only used by Gym environments and EpisodeCutoff only by
// Cartpole, since Gym environments use their own cutoffs.
type Config struct {
	Environment   EnvName
	GymID         string `json:",omitempty"`
	EpisodeCutoff int
	Discount      float64
}

// Default returns the configuration of the Breakout RAM environment
func Default() Config {
	return Config{
		Environment: Gym,
		GymID:       gym.BreakoutRAM,
		Discount:    0.99,
	}
}

// DefaultCartpole returns a configuration of Cartpole with episodes
// cut off at 500 steps
func DefaultCartpole() Config {
	return Config{
		Environment:   Cartpole,
		EpisodeCutoff: 500,
		Discount:      0.99,
	}
}

// Validate returns an error if the Config is invalid
func (c Config) Validate() error {
	switch c.Environment {
	case Cartpole:
		if c.EpisodeCutoff < 1 {
			return fmt.Errorf("validate: episode cutoff must be positive"+
				"\n\thave(%v)", c.EpisodeCutoff)
		}
	case Gym:
		if c.GymID == "" {
			return fmt.Errorf("validate: no Gym environment ID specified")
		}
	default:
		return fmt.Errorf("validate: no such environment %q", c.Environment)
	}

	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("validate: discount must be in [0, 1]\n\thave(%v)",
			c.Discount)
	}
	return nil
}

// Create returns the environment described by the Config
func (c Config) Create(seed uint64) (env.Environment, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}

	switch c.Environment {
	case Gym:
		g, err := gym.New(c.GymID, c.Discount, seed)
		if err != nil {
			return nil, fmt.Errorf("create: %w", err)
		}
		return g, nil
	default:
		return CreateCartpole(c.EpisodeCutoff, seed, c.Discount), nil
	}
}

// CreateCartpole is a factory for creating the Cartpole environment
// with default physical parameters and the Balance task.
func CreateCartpole(cutoff int, seed uint64,
	discount float64) *cartpole.Cartpole {
	bounds := r1.Interval{Min: -0.05, Max: 0.05}
	s := env.NewUniformStarter([]r1.Interval{
		bounds,
		bounds,
		bounds,
		bounds,
	}, seed)

	task := cartpole.NewBalance(s, cutoff, cartpole.FailAngle)
	return cartpole.New(task, discount)
}
