// Package checkpointer implements checkpointers, which periodically
// save the parameters of a learned model to disk
package checkpointer

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/mat"
)

// Checkpointer saves a model at regular intervals of environment steps
type Checkpointer interface {
	// Checkpoint is called after each environment step with the total
	// number of steps taken in the experiment so far
	Checkpoint(totalSteps int) error
}

// Parameterized describes a model whose parameters can be checkpointed
type Parameterized interface {
	Parameters() []*mat.Dense
}

// Save gob encodes the parameters of model to filename
func Save(filename string, model Parameterized) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("save: could not create checkpoint file: %w", err)
	}
	return encode(file, model.Parameters())
}

// encode gob encodes params to w and closes w. An error closing w is
// returned if encoding succeeded.
func encode(w io.WriteCloser, params []*mat.Dense) (err error) {
	defer func() {
		if closeErr := w.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("save: could not close checkpoint file: %w",
				closeErr)
		}
	}()

	enc := gob.NewEncoder(w)
	if err := enc.Encode(len(params)); err != nil {
		return fmt.Errorf("save: could not encode parameters: %w", err)
	}
	for i, p := range params {
		data, err := p.MarshalBinary()
		if err != nil {
			return fmt.Errorf("save: could not marshal parameter %v: %w", i,
				err)
		}
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("save: could not encode parameter %v: %w", i,
				err)
		}
	}
	return nil
}

// Load loads parameters saved by a Checkpointer, in the order returned
// by the checkpointed model's Parameters() method
func Load(filename string) ([]*mat.Dense, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("load: could not open checkpoint file: %w",
			err)
	}
	defer file.Close()

	dec := gob.NewDecoder(file)
	var n int
	if err := dec.Decode(&n); err != nil {
		return nil, fmt.Errorf("load: could not decode parameters: %w", err)
	}

	params := make([]*mat.Dense, n)
	for i := range params {
		var data []byte
		if err := dec.Decode(&data); err != nil {
			return nil, fmt.Errorf("load: could not decode parameter %v: %w",
				i, err)
		}
		params[i] = &mat.Dense{}
		if err := params[i].UnmarshalBinary(data); err != nil {
			return nil, fmt.Errorf("load: could not unmarshal parameter "+
				"%v: %w", i, err)
		}
	}
	return params, nil
}
