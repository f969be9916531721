package expreplay

import "errors"

// ExpReplayError implements errors unique to an experience replay
// buffer.
type ExpReplayError struct {
	Op  string
	Err error
}

// Error satisifes the error interface
func (e *ExpReplayError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *ExpReplayError) Unwrap() error {
	return e.Err
}

// ErrUnderflow is reported when more transitions are requested from a
// buffer than the buffer holds.
var ErrUnderflow = errors.New("insufficient transitions in buffer")

// IsUnderflow returns whether or not an error reports that there are
// fewer transitions in the buffer than were requested.
func IsUnderflow(err error) bool {
	return errors.Is(err, ErrUnderflow)
}
