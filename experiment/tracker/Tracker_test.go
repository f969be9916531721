package tracker

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	ts "github.com/samuelfneumann/arcadeq/timestep"
)

// episode returns the timesteps of an episode with the given rewards
func episode(rewards ...float64) []ts.TimeStep {
	obs := mat.NewVecDense(1, nil)
	steps := []ts.TimeStep{ts.New(ts.First, 0, 0.99, obs, 0)}
	for i, r := range rewards {
		stepType := ts.Mid
		if i == len(rewards)-1 {
			stepType = ts.Last
		}
		steps = append(steps, ts.New(stepType, r, 0.99, obs, i+1))
	}
	return steps
}

func TestReturnAndLength(t *testing.T) {
	dir := t.TempDir()
	ret := NewReturn(filepath.Join(dir, "returns.bin"))
	length := NewEpisodeLength(filepath.Join(dir, "lengths.bin"))

	for _, ep := range [][]float64{{1, 1, 1}, {0, 5}, {-1}} {
		for _, step := range episode(ep...) {
			ret.Track(step)
			length.Track(step)
		}
	}
	require.Equal(t, []float64{3, 5, -1}, ret.Returns())

	require.NoError(t, ret.Save())
	require.NoError(t, length.Save())

	returns, err := LoadData(filepath.Join(dir, "returns.bin"))
	require.NoError(t, err)
	require.Equal(t, []float64{3, 5, -1}, returns)

	lengths, err := LoadData(filepath.Join(dir, "lengths.bin"))
	require.NoError(t, err)
	require.Equal(t, []float64{3, 2, 1}, lengths)
}

func TestReturnNonSequentialPanics(t *testing.T) {
	ret := NewReturn("unused")
	steps := episode(1, 2, 3)

	ret.Track(steps[0])
	require.Panics(t, func() { ret.Track(steps[2]) })
}

func TestLoadDataMissingFile(t *testing.T) {
	_, err := LoadData(filepath.Join(t.TempDir(), "missing.bin"))
	require.Error(t, err)
}

// failingCloser is a writer whose Close always fails
type failingCloser struct {
	bytes.Buffer
}

func (f *failingCloser) Close() error {
	return errors.New("disk full")
}

func TestEncodeReturnsCloseError(t *testing.T) {
	err := encode(&failingCloser{}, []float64{1, 2, 3})
	require.Error(t, err)
	require.Contains(t, err.Error(), "disk full")
}
