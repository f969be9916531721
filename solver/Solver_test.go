package solver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	G "gorgonia.org/gorgonia"
)

func TestSolverJSONRoundTrip(t *testing.T) {
	s, err := NewDefaultAdam(1e-4, 1)
	require.NoError(t, err)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var out Solver
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, Adam, out.Type)
	require.Equal(t, s.Config, out.Config)

	_, ok := out.Solver.(*G.AdamSolver)
	require.True(t, ok)
}

func TestVanillaJSONRoundTrip(t *testing.T) {
	s, err := NewVanilla(0.01, 4, 1.0)
	require.NoError(t, err)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var out Solver
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, Vanilla, out.Type)
	require.Equal(t, VanillaConfig{StepSize: 0.01, Batch: 4, Clip: 1.0},
		out.Config)
}

func TestUnmarshalUnknownType(t *testing.T) {
	var out Solver
	err := json.Unmarshal([]byte(`{"Type":"Nesterov","Config":{}}`), &out)
	require.Error(t, err)
}

func TestNewAdamInvalid(t *testing.T) {
	_, err := NewAdam(0, 1e-8, 0.9, 0.999, 1)
	require.Error(t, err)

	_, err = NewAdam(1e-3, 1e-8, 0.9, 0.999, 0)
	require.Error(t, err)
}

func TestCreateReturnsFreshSolvers(t *testing.T) {
	s, err := NewDefaultAdam(1e-3, 1)
	require.NoError(t, err)

	a := s.Config.Create()
	b := s.Config.Create()
	require.NotSame(t, a.(*G.AdamSolver), b.(*G.AdamSolver))
}
