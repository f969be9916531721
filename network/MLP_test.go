package network

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/arcadeq/initwfn"
	"github.com/samuelfneumann/arcadeq/solver"
)

func newTestMLP(t *testing.T, features, outputs int, hidden []int,
	stepSize float64) *MLP {
	t.Helper()

	s, err := solver.NewDefaultAdam(stepSize, 1)
	require.NoError(t, err)
	init, err := initwfn.NewGlorotU(1.0)
	require.NoError(t, err)

	acts := make([]*Activation, len(hidden))
	for i := range acts {
		acts[i] = ReLU()
	}

	m, err := NewMLP(MLPConfig{
		Features:    features,
		Outputs:     outputs,
		HiddenSizes: hidden,
		Activations: acts,
		Solver:      s,
		InitWFn:     init,
	})
	require.NoError(t, err)
	return m
}

func mse(t *testing.T, m *MLP, states, targets [][]float64) float64 {
	t.Helper()

	var total float64
	var n int
	for i := range states {
		pred, err := m.Predict(states[i])
		require.NoError(t, err)
		for j := range pred {
			diff := pred[j] - targets[i][j]
			total += diff * diff
			n++
		}
	}
	return total / float64(n)
}

func TestNewMLPInvalidConfig(t *testing.T) {
	s, err := solver.NewDefaultAdam(1e-3, 1)
	require.NoError(t, err)
	init, err := initwfn.NewGlorotU(1.0)
	require.NoError(t, err)

	configs := []MLPConfig{
		{Features: 0, Outputs: 2, Solver: s, InitWFn: init},
		{Features: 2, Outputs: 0, Solver: s, InitWFn: init},
		{Features: 2, Outputs: 2, HiddenSizes: []int{4}, Solver: s,
			InitWFn: init},
		{Features: 2, Outputs: 2, HiddenSizes: []int{0},
			Activations: []*Activation{ReLU()}, Solver: s, InitWFn: init},
		{Features: 2, Outputs: 2, InitWFn: init},
		{Features: 2, Outputs: 2, Solver: s},
	}

	for i, config := range configs {
		_, err := NewMLP(config)
		require.Error(t, err, "config %v", i)
	}
}

func TestPredictShape(t *testing.T) {
	m := newTestMLP(t, 3, 4, []int{8, 8}, 1e-3)

	values, err := m.Predict([]float64{0.1, 0.2, 0.3})
	require.NoError(t, err)
	require.Len(t, values, 4)

	_, err = m.Predict([]float64{0.1, 0.2})
	require.Error(t, err)

	var shapeErr *ShapeMismatchError
	require.True(t, errors.As(err, &shapeErr))
	require.Equal(t, "predict", shapeErr.Op)
	require.Equal(t, []int{3}, shapeErr.Want)
	require.Equal(t, []int{2}, shapeErr.Have)
}

func TestPredictIsPure(t *testing.T) {
	m := newTestMLP(t, 3, 2, []int{16}, 1e-3)
	state := []float64{1, -1, 0.5}

	first, err := m.Predict(state)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := m.Predict(state)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestFitReducesError(t *testing.T) {
	m := newTestMLP(t, 2, 2, []int{16}, 1e-2)

	states := [][]float64{{0, 1}, {1, 0}, {1, 1}, {0.5, -0.5}}
	targets := [][]float64{{1, 0}, {0, 1}, {1, 1}, {-1, 0.5}}

	before := mse(t, m, states, targets)
	for i := 0; i < 300; i++ {
		require.NoError(t, m.Fit(states, targets))
	}
	after := mse(t, m, states, targets)

	require.Less(t, after, 0.5*before)
}

func TestFitMultipleBatchSizes(t *testing.T) {
	m := newTestMLP(t, 2, 1, []int{8}, 1e-2)

	require.NoError(t, m.Fit([][]float64{{1, 2}}, [][]float64{{3}}))
	require.NoError(t, m.Fit([][]float64{{1, 2}, {2, 1}},
		[][]float64{{3}, {0}}))
	require.NoError(t, m.Fit([][]float64{{1, 2}}, [][]float64{{3}}))
	require.Len(t, m.fits, 2)
}

func TestFitInvalidShapesLeaveParameters(t *testing.T) {
	m := newTestMLP(t, 2, 2, []int{4}, 1e-2)
	before := m.Parameters()

	cases := []struct {
		states, targets [][]float64
	}{
		{nil, nil},
		{[][]float64{{1, 2}}, [][]float64{{1, 2}, {3, 4}}},
		{[][]float64{{1, 2}, {1}}, [][]float64{{1, 2}, {3, 4}}},
		{[][]float64{{1, 2}, {3, 4}}, [][]float64{{1, 2}, {3}}},
	}

	for i, c := range cases {
		err := m.Fit(c.states, c.targets)
		require.Error(t, err, "case %v", i)

		var shapeErr *ShapeMismatchError
		require.True(t, errors.As(err, &shapeErr), "case %v", i)
	}

	after := m.Parameters()
	for i := range before {
		require.True(t, mat.Equal(before[i], after[i]))
	}
}

func TestFitOnPredictionsKeepsParameters(t *testing.T) {
	m := newTestMLP(t, 3, 3, []int{8}, 1e-2)
	states := [][]float64{{1, 0, -1}, {0.5, 0.5, 0.5}}

	targets := make([][]float64, len(states))
	for i := range states {
		pred, err := m.Predict(states[i])
		require.NoError(t, err)
		targets[i] = pred
	}

	before := m.Parameters()
	require.NoError(t, m.Fit(states, targets))
	after := m.Parameters()

	for i := range before {
		require.True(t, mat.EqualApprox(before[i], after[i], 1e-6))
	}
}

func TestParametersLayout(t *testing.T) {
	m := newTestMLP(t, 5, 4, []int{7, 6}, 1e-3)
	params := m.Parameters()
	require.Len(t, params, 6)

	shapes := [][2]int{{5, 7}, {1, 7}, {7, 6}, {1, 6}, {6, 4}, {1, 4}}
	for i, p := range params {
		r, c := p.Dims()
		require.Equal(t, shapes[i], [2]int{r, c}, "parameter %v", i)
	}

	// Biases start at zero
	for _, i := range []int{1, 3, 5} {
		require.Equal(t, 0.0, mat.Sum(params[i]))
	}
}

func TestParametersDeepCopy(t *testing.T) {
	m := newTestMLP(t, 2, 2, []int{4}, 1e-3)
	state := []float64{0.3, -0.7}

	before, err := m.Predict(state)
	require.NoError(t, err)

	params := m.Parameters()
	for _, p := range params {
		p.Scale(10, p)
	}

	after, err := m.Predict(state)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestSetParameters(t *testing.T) {
	online := newTestMLP(t, 3, 2, []int{8}, 1e-2)
	target := newTestMLP(t, 3, 2, []int{8}, 1e-2)
	state := []float64{1, 2, 3}

	params := online.Parameters()
	require.NoError(t, target.SetParameters(params))
	require.NoError(t, target.SetParameters(params))

	want, err := online.Predict(state)
	require.NoError(t, err)
	have, err := target.Predict(state)
	require.NoError(t, err)
	require.Equal(t, want, have)

	// Later changes to the source must not leak into target
	for _, p := range params {
		p.Zero()
	}
	require.NoError(t, online.Fit([][]float64{state}, [][]float64{{5, -5}}))
	have, err = target.Predict(state)
	require.NoError(t, err)
	require.Equal(t, want, have)
}

func TestSetParametersInvalid(t *testing.T) {
	m := newTestMLP(t, 3, 2, []int{8}, 1e-2)
	params := m.Parameters()

	err := m.SetParameters(params[:len(params)-1])
	var shapeErr *ShapeMismatchError
	require.True(t, errors.As(err, &shapeErr))

	params[0] = mat.NewDense(2, 8, nil)
	err = m.SetParameters(params)
	require.True(t, errors.As(err, &shapeErr))
	require.Equal(t, []int{3, 8}, shapeErr.Want)
	require.Equal(t, []int{2, 8}, shapeErr.Have)
}

func TestActivationJSON(t *testing.T) {
	acts := []*Activation{ReLU(), Identity(), TanH()}
	data, err := json.Marshal(acts)
	require.NoError(t, err)
	require.JSONEq(t, `["relu", "identity", "tanh"]`, string(data))

	var out []*Activation
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, 3)
	for i := range acts {
		require.Equal(t, acts[i].String(), out[i].String())
	}

	require.Error(t, json.Unmarshal([]byte(`["softmax"]`), &out))
}
