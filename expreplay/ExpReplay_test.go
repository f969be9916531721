package expreplay

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/samuelfneumann/arcadeq/timestep"
)

// transition returns a distinguishable transition tagged by id
func transition(id int) timestep.Transition {
	return timestep.NewTransition([]float64{float64(id)}, id%4,
		float64(id), []float64{float64(id + 1)}, false)
}

func TestNewInvalidSize(t *testing.T) {
	_, err := New(0, 1)
	require.Error(t, err)
}

func TestStoreFifoBound(t *testing.T) {
	const maxSize = 5
	r, err := New(maxSize, 1)
	require.NoError(t, err)

	for i := 0; i < 23; i++ {
		r.Store(transition(i))
		require.LessOrEqual(t, r.Len(), maxSize)

		// The oldest surviving transition is always the (i - len + 1)th
		// transition that was stored
		oldest := i - r.Len() + 1
		require.Equal(t, float64(oldest), r.At(0).Reward)
		require.Equal(t, float64(i), r.At(r.Len()-1).Reward)
	}
	require.True(t, r.Full())
}

func TestStoreEvictsOldestFirst(t *testing.T) {
	r, err := New(3, 1)
	require.NoError(t, err)

	for i := 1; i <= 4; i++ {
		r.Store(transition(i))
	}

	require.Equal(t, 3, r.Len())
	for i := 0; i < r.Len(); i++ {
		require.Equal(t, float64(i+2), r.At(i).Reward)
	}
}

func TestBatchSampleWithoutReplacement(t *testing.T) {
	r, err := New(3, 42)
	require.NoError(t, err)

	// T1..T4 into a capacity 3 buffer leaves [T2, T3, T4]
	for i := 1; i <= 4; i++ {
		r.Store(transition(i))
	}

	for trial := 0; trial < 200; trial++ {
		batch, err := r.BatchSample(2)
		require.NoError(t, err)
		require.Len(t, batch, 2)

		require.NotEqual(t, batch[0].Reward, batch[1].Reward)
		for _, tr := range batch {
			require.Contains(t, []float64{2, 3, 4}, tr.Reward)
		}
	}
}

func TestBatchSampleAllPositions(t *testing.T) {
	r, err := New(50, 7)
	require.NoError(t, err)
	for i := 0; i < 80; i++ {
		r.Store(transition(i))
	}

	batch, err := r.BatchSample(r.Len())
	require.NoError(t, err)

	seen := make(map[float64]bool)
	for _, tr := range batch {
		require.False(t, seen[tr.Reward], "duplicate transition sampled")
		seen[tr.Reward] = true
	}
	require.Len(t, seen, 50)
}

func TestBatchSampleUnderflow(t *testing.T) {
	r, err := New(10, 1)
	require.NoError(t, err)
	r.Store(transition(0))
	r.Store(transition(1))

	_, err = r.BatchSample(3)
	require.Error(t, err)
	require.True(t, IsUnderflow(err))
	require.True(t, errors.Is(err, ErrUnderflow))

	var replayErr *ExpReplayError
	require.True(t, errors.As(err, &replayErr))
	require.Equal(t, "batchSample", replayErr.Op)
}

func TestBatchSampleDoesNotMutate(t *testing.T) {
	r, err := New(4, 3)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		r.Store(transition(i))
	}

	for i := 0; i < 10; i++ {
		_, err := r.BatchSample(3)
		require.NoError(t, err)
	}

	require.Equal(t, 4, r.Len())
	for i := 0; i < 4; i++ {
		require.Equal(t, float64(i), r.At(i).Reward)
	}
}
