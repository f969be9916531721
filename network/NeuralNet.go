// Package network implements neural network function approximators
// which predict one value per discrete action.
package network

import "gonum.org/v1/gonum/mat"

// ValueFunctionApproximator maps a state vector to a vector of action
// values and can be trained by regressing on target action values.
type ValueFunctionApproximator interface {
	// Predict returns the action values of a single state. Predict
	// never changes the approximator's parameters.
	Predict(state []float64) ([]float64, error)

	// Fit takes a single gradient step minimising the mean squared
	// error between the predicted action values of states and targets.
	Fit(states, targets [][]float64) error

	// Parameters returns a deep copy of the approximator's parameters
	Parameters() []*mat.Dense

	// SetParameters overwrites all parameters with deep copies of the
	// arguments, which must match Parameters() in count and shape.
	SetParameters([]*mat.Dense) error

	Features() int
	Outputs() int
}
