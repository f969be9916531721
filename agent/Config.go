package agent

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Type represents a type of an agent, for example DeepQ
type Type string

// Available agent types
const (
	EGreedyDeepQMLP Type = "EGreedyDeepQ-MLP"
)

// Config represents a configuration for creating an agent
type Config interface {
	// CreateAgent creates the agent that the config describes for an
	// environment with the given number of state features and discrete
	// actions
	CreateAgent(features, actions int, seed uint64) (Agent, error)

	// Validate returns an error describing why the configuration is
	// invalid, or nil if it is valid
	Validate() error

	// Type returns the type of agent the Config creates
	Type() Type
}

// Registered types with the package. Once a Type has been registered
// with this map, a TypedConfig with that type can be unmarshalled.
//
// Each agent package registers its own Config to avoid circular
// imports.
var registeredTypes = make(map[Type]reflect.Type)

// Register registers an agent Type with a concrete Config type so that
// TypedConfigs of type agentType are unmarshalled into that Config.
func Register(agentType Type, config Config) {
	registeredTypes[agentType] = reflect.TypeOf(config)
}

// TypedConfig wraps a Config so that it can be JSON marshalled and
// unmarshalled into its underlying concrete type.
type TypedConfig struct {
	Type
	Config
}

// NewTypedConfig types the argument Config
func NewTypedConfig(c Config) TypedConfig {
	return TypedConfig{Type: c.Type(), Config: c}
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (t *TypedConfig) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   Type
		Config json.RawMessage
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}

	ty, found := registeredTypes[raw.Type]
	if !found {
		return fmt.Errorf("unmarshalJSON: agent type %q not registered",
			raw.Type)
	}

	value := reflect.New(ty)
	if err := json.Unmarshal(raw.Config, value.Interface()); err != nil {
		return fmt.Errorf("unmarshalJSON: could not decode %v config: %w",
			raw.Type, err)
	}

	t.Type = raw.Type
	t.Config = value.Elem().Interface().(Config)

	return nil
}
