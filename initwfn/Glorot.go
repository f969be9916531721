package initwfn

import G "gorgonia.org/gorgonia"

// GlorotUConfig configures Glorot uniform initialization
type GlorotUConfig struct {
	Gain float64
}

// NewGlorotU returns a new Glorot uniform weight initializer
func NewGlorotU(gain float64) (*InitWFn, error) {
	return newInitWFn(GlorotUConfig{Gain: gain})
}

// Type satisfies the Config interface
func (g GlorotUConfig) Type() Type { return GlorotU }

// Create returns a Gorgonia Glorot uniform initializer
func (g GlorotUConfig) Create() G.InitWFn {
	return G.GlorotU(g.Gain)
}

// GlorotNConfig configures Glorot normal initialization
type GlorotNConfig struct {
	Gain float64
}

// NewGlorotN returns a new Glorot normal weight initializer
func NewGlorotN(gain float64) (*InitWFn, error) {
	return newInitWFn(GlorotNConfig{Gain: gain})
}

// Type satisfies the Config interface
func (g GlorotNConfig) Type() Type { return GlorotN }

// Create returns a Gorgonia Glorot normal initializer
func (g GlorotNConfig) Create() G.InitWFn {
	return G.GlorotN(g.Gain)
}
