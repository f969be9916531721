// Package initwfn wraps Gorgonia weight initializers so that they can
// be stored in and loaded from JSON configuration files.
package initwfn

import (
	"encoding/json"
	"fmt"
	"reflect"

	G "gorgonia.org/gorgonia"
)

// Type names a family of weight initializers
type Type string

// Available InitWFn types
const (
	GlorotU  Type = "GlorotU"
	GlorotN  Type = "GlorotN"
	HeU      Type = "HeU"
	HeN      Type = "HeN"
	Zeroes   Type = "Zeroes"
	Ones     Type = "Ones"
	Constant Type = "Constant"
)

// registry maps each Type to the concrete Config which describes it
var registry = map[Type]reflect.Type{
	GlorotU:  reflect.TypeOf(GlorotUConfig{}),
	GlorotN:  reflect.TypeOf(GlorotNConfig{}),
	HeU:      reflect.TypeOf(HeUConfig{}),
	HeN:      reflect.TypeOf(HeNConfig{}),
	Zeroes:   reflect.TypeOf(ZeroesConfig{}),
	Ones:     reflect.TypeOf(OnesConfig{}),
	Constant: reflect.TypeOf(ConstantConfig{}),
}

// InitWFn wraps a Gorgonia InitWFn together with the Config that
// created it. Marshalling an InitWFn produces a JSON object of the form
// {"Type": ..., "Config": {...}}.
type InitWFn struct {
	initWFn G.InitWFn
	Type
	Config
}

func newInitWFn(c Config) (*InitWFn, error) {
	if _, ok := registry[c.Type()]; !ok {
		return nil, fmt.Errorf("newInitWFn: unknown type %v", c.Type())
	}
	init := InitWFn{Type: c.Type(), Config: c}
	init.initWFn = init.Config.Create()

	return &init, nil
}

// InitWFn returns the wrapped Gorgonia InitWFn
func (i *InitWFn) InitWFn() G.InitWFn {
	return i.initWFn
}

// String implements the fmt.Stringer interface
func (i *InitWFn) String() string {
	return fmt.Sprintf("{%v InitWFn: %v}", i.Type, i.Config)
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (i *InitWFn) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   Type
		Config json.RawMessage
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}

	ty, ok := registry[raw.Type]
	if !ok {
		return fmt.Errorf("unmarshalJSON: no such initializer type %q",
			raw.Type)
	}

	value := reflect.New(ty)
	if len(raw.Config) > 0 && string(raw.Config) != "null" {
		if err := json.Unmarshal(raw.Config, value.Interface()); err != nil {
			return fmt.Errorf("unmarshalJSON: could not decode %v "+
				"config: %w", raw.Type, err)
		}
	}

	i.Config = value.Elem().Interface().(Config)
	i.Type = raw.Type
	i.initWFn = i.Config.Create()

	return nil
}

// Config describes a Gorgonia InitWFn and can create it
type Config interface {
	// Create returns the Gorgonia InitWFn that the Config describes
	Create() G.InitWFn

	// Type returns the type of Gorgonia InitWFn that is returned
	Type() Type
}
