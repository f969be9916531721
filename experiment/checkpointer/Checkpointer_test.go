package checkpointer

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

type model struct {
	params []*mat.Dense
}

func (m *model) Parameters() []*mat.Dense {
	return m.params
}

func TestSaveLoad(t *testing.T) {
	m := &model{params: []*mat.Dense{
		mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}),
		mat.NewDense(1, 3, []float64{-1, 0, 1}),
	}}
	filename := filepath.Join(t.TempDir(), "params.bin")

	require.NoError(t, Save(filename, m))
	params, err := Load(filename)
	require.NoError(t, err)

	require.Len(t, params, 2)
	for i := range params {
		require.True(t, mat.Equal(m.params[i], params[i]))
	}
}

func TestNStep(t *testing.T) {
	dir := t.TempDir()
	m := &model{params: []*mat.Dense{mat.NewDense(1, 1, []float64{7})}}

	c, err := NewNStep(3, m, FilenameEnumerator(0,
		filepath.Join(dir, "ckpt"), ".bin"))
	require.NoError(t, err)

	for step := 1; step <= 10; step++ {
		require.NoError(t, c.Checkpoint(step))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	params, err := Load(filepath.Join(dir, "ckpt3.bin"))
	require.NoError(t, err)
	require.Equal(t, 7.0, params[0].At(0, 0))
}

func TestNewNStepInvalid(t *testing.T) {
	m := &model{}
	_, err := NewNStep(0, m, FileTimer("f", ".bin"))
	require.Error(t, err)
	_, err = NewNStep(1, nil, FileTimer("f", ".bin"))
	require.Error(t, err)
	_, err = NewNStep(1, m, nil)
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
	params := []*mat.Dense{mat.NewDense(1, 2, []float64{1, 2})}

	err := encode(&failingCloser{}, params)
	require.Error(t, err)
	require.Contains(t, err.Error(), "disk full")
}

func TestFileTimerUnique(t *testing.T) {
	filename := FileTimer("ckpt", ".bin")

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		name := filename()
		require.True(t, strings.HasPrefix(name, "ckpt-"))
		require.True(t, strings.HasSuffix(name, ".bin"))
		require.False(t, seen[name], "duplicate filename %v", name)
		seen[name] = true
	}
}

func TestNewFilenamer(t *testing.T) {
	enum, err := NewFilenamer(Enumerated, "ckpt", ".bin")
	require.NoError(t, err)
	require.Equal(t, "ckpt1.bin", enum())
	require.Equal(t, "ckpt2.bin", enum())

	enum, err = NewFilenamer("", "ckpt", ".bin")
	require.NoError(t, err)
	require.Equal(t, "ckpt1.bin", enum())

	timer, err := NewFilenamer(Timestamped, "ckpt", ".bin")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(timer(), "ckpt-"))

	_, err = NewFilenamer("Random", "ckpt", ".bin")
	require.Error(t, err)
}
