package experiment

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samuelfneumann/arcadeq/agent"
	"github.com/samuelfneumann/arcadeq/agent/deepq"
	"github.com/samuelfneumann/arcadeq/environment/envconfig"
	"github.com/samuelfneumann/arcadeq/experiment/checkpointer"
	"github.com/samuelfneumann/arcadeq/network"
)

// Config represents a configuration of an online experiment
type Config struct {
	Episodes     int
	MaxSteps     int // Total step limit, 0 for no limit
	SyncInterval int // Stored transitions between target model updates

	// CheckpointEvery is the number of steps between checkpoints of the
	// online network's parameters, 0 to disable checkpointing
	CheckpointEvery int
	CheckpointDir   string              `json:",omitempty"`
	CheckpointNames checkpointer.Naming `json:",omitempty"`

	// Resume is a checkpoint file whose parameters initialize both the
	// online and target networks, empty to start from scratch
	Resume string `json:",omitempty"`

	Seed uint64

	EnvConfig   envconfig.Config
	AgentConfig agent.TypedConfig
}

// DefaultConfig returns the configuration of DeepQ trained on Breakout
// RAM for 2000 episodes
func DefaultConfig() Config {
	return Config{
		Episodes:     2000,
		SyncInterval: 40000,
		EnvConfig:    envconfig.Default(),
		AgentConfig:  agent.NewTypedConfig(deepq.DefaultConfig()),
	}
}

// Validate returns an error if the Config is invalid
func (c Config) Validate() error {
	if c.Episodes < 1 {
		return fmt.Errorf("validate: episodes must be positive\n\thave(%v)",
			c.Episodes)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("validate: max steps must be non-negative"+
			"\n\thave(%v)", c.MaxSteps)
	}
	if c.SyncInterval < 1 {
		return fmt.Errorf("validate: sync interval must be positive"+
			"\n\thave(%v)", c.SyncInterval)
	}
	if c.CheckpointEvery < 0 {
		return fmt.Errorf("validate: checkpoint interval must be "+
			"non-negative\n\thave(%v)", c.CheckpointEvery)
	}
	_, err := checkpointer.NewFilenamer(c.CheckpointNames, "", "")
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if err := c.EnvConfig.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if c.AgentConfig.Config == nil {
		return fmt.Errorf("validate: no agent configuration")
	}
	if err := c.AgentConfig.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}

// CreateExp creates the experiment described by the Config. The
// returned experiment owns its environment, which should be closed by
// the caller if it implements environment.Closer.
func (c Config) CreateExp() (*Online, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("createExp: %w", err)
	}

	e, err := c.EnvConfig.Create(c.Seed)
	if err != nil {
		return nil, fmt.Errorf("createExp: %w", err)
	}

	features := e.ObservationSpec().Features()
	actions, err := e.ActionSpec().Actions()
	if err != nil {
		return nil, fmt.Errorf("createExp: %w", err)
	}

	a, err := c.AgentConfig.CreateAgent(features, actions, c.Seed)
	if err != nil {
		return nil, fmt.Errorf("createExp: %w", err)
	}

	exp, err := NewOnline(e, a, c.Episodes, c.MaxSteps, c.SyncInterval)
	if err != nil {
		return nil, fmt.Errorf("createExp: %w", err)
	}

	if c.CheckpointEvery == 0 && c.Resume == "" {
		return exp, nil
	}

	model, ok := a.(onlineModeler)
	if !ok {
		return nil, fmt.Errorf("createExp: agent %T cannot be checkpointed",
			a)
	}

	if c.Resume != "" {
		if err := resume(c.Resume, a, model); err != nil {
			return nil, fmt.Errorf("createExp: %w", err)
		}
	}

	if c.CheckpointEvery > 0 {
		dir := c.CheckpointDir
		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("createExp: could not create checkpoint "+
				"directory: %w", err)
		}

		filename, err := checkpointer.NewFilenamer(c.CheckpointNames,
			filepath.Join(dir, "online"), ".bin")
		if err != nil {
			return nil, fmt.Errorf("createExp: %w", err)
		}
		ckpt, err := checkpointer.NewNStep(c.CheckpointEvery, model.Online(),
			filename)
		if err != nil {
			return nil, fmt.Errorf("createExp: %w", err)
		}
		exp.RegisterCheckpointer(ckpt)
	}

	return exp, nil
}

// onlineModeler is an agent which exposes the network it learns
type onlineModeler interface {
	Online() network.ValueFunctionApproximator
}

// resume loads the checkpointed parameters in filename into the online
// network of model and synchronizes the target network of a with them
func resume(filename string, a agent.Agent, model onlineModeler) error {
	params, err := checkpointer.Load(filename)
	if err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	if err := model.Online().SetParameters(params); err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	if err := a.UpdateModel(); err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	return nil
}

// LoadConfig reads a JSON serialized Config from filename
func LoadConfig(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("loadConfig: %w", err)
	}

	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("loadConfig: could not decode config: "+
			"%w", err)
	}
	return c, nil
}
