package initwfn

import G "gorgonia.org/gorgonia"

// HeUConfig configures He uniform initialization, which suits layers
// followed by a ReLU
type HeUConfig struct {
	Gain float64
}

// NewHeU returns a new He uniform weight initializer
func NewHeU(gain float64) (*InitWFn, error) {
	return newInitWFn(HeUConfig{Gain: gain})
}

// Type satisfies the Config interface
func (h HeUConfig) Type() Type { return HeU }

// Create returns a Gorgonia He uniform initializer
func (h HeUConfig) Create() G.InitWFn {
	return G.HeU(h.Gain)
}

// HeNConfig configures He normal initialization
type HeNConfig struct {
	Gain float64
}

// NewHeN returns a new He normal weight initializer
func NewHeN(gain float64) (*InitWFn, error) {
	return newInitWFn(HeNConfig{Gain: gain})
}

// Type satisfies the Config interface
func (h HeNConfig) Type() Type { return HeN }

// Create returns a Gorgonia He normal initializer
func (h HeNConfig) Create() G.InitWFn {
	return G.HeN(h.Gain)
}
