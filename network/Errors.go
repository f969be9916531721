package network

import "fmt"

// ShapeMismatchError is returned when an input to a network does not
// have the shape that the network expects.
type ShapeMismatchError struct {
	Op    string
	Field string
	Want  []int
	Have  []int
}

// Error satisfies the error interface
func (s *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%v: invalid shape for %v\n\twant(%v)\n\thave(%v)",
		s.Op, s.Field, s.Want, s.Have)
}

func shapeError(op, field string, want, have []int) error {
	return &ShapeMismatchError{Op: op, Field: field, Want: want, Have: have}
}
