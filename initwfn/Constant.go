package initwfn

import G "gorgonia.org/gorgonia"

// ZeroesConfig configures an initializer that sets every weight to 0.
// Bias units are initialized this way.
type ZeroesConfig struct{}

// NewZeroes returns a new zeroes weight intializer
func NewZeroes() (*InitWFn, error) {
	return newInitWFn(ZeroesConfig{})
}

// Type satisfies the Config interface
func (z ZeroesConfig) Type() Type { return Zeroes }

// Create returns a Gorgonia zeroes initializer
func (z ZeroesConfig) Create() G.InitWFn {
	return G.Zeroes()
}

// OnesConfig configures an initializer that sets every weight to 1
type OnesConfig struct{}

// NewOnes returns a new ones weight intializer
func NewOnes() (*InitWFn, error) {
	return newInitWFn(OnesConfig{})
}

// Type satisfies the Config interface
func (o OnesConfig) Type() Type { return Ones }

// Create returns a Gorgonia ones initializer
func (o OnesConfig) Create() G.InitWFn {
	return G.Ones()
}

// ConstantConfig configures an initializer that sets every weight to
// Value
type ConstantConfig struct {
	Value float64
}

// NewConstant returns a new constant weight intializer
func NewConstant(value float64) (*InitWFn, error) {
	return newInitWFn(ConstantConfig{value})
}

// Type satisfies the Config interface
func (c ConstantConfig) Type() Type { return Constant }

// Create returns a Gorgonia initializer producing Value everywhere
func (c ConstantConfig) Create() G.InitWFn {
	return G.ValuesOf(c.Value)
}
