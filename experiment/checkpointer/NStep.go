package checkpointer

import "fmt"

// nStep implements checkpointing every N steps
type nStep struct {
	interval int
	model    Parameterized

	// filename returns the filename of the file to save the model in.
	//
	// If each checkpoint should be saved in a separate file with an
	// incremented number as a suffix (e.g. file1.bin, file2.bin, ...,
	// fileK.bin), then use FilenameEnumerator. If the filename does not
	// matter, FileTimer can be used instead:
	//
	// n, err := NewNStep(10, model, FileTimer("filename", ".bin"))
	filename func() string
}

// NewNStep returns a checkpointer that checkpoints model every n steps.
func NewNStep(n int, model Parameterized,
	filename func() string) (Checkpointer, error) {
	if n < 1 {
		return nil, fmt.Errorf("newNStep: checkpoint interval must be "+
			"positive\n\thave(%v)", n)
	}
	if model == nil || filename == nil {
		return nil, fmt.Errorf("newNStep: model and filename function " +
			"must not be nil")
	}

	return &nStep{
		interval: n,
		model:    model,
		filename: filename,
	}, nil
}

// Checkpoint saves the tracked model if totalSteps is a multiple of the
// checkpoint interval
func (n *nStep) Checkpoint(totalSteps int) error {
	if totalSteps > 0 && totalSteps%n.interval == 0 {
		return Save(n.filename(), n.model)
	}
	return nil
}
