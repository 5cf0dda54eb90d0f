package landmark

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned for landmark sets the classifier cannot use.
var ErrInvalidInput = errors.New("landmark: invalid input")

// InputError carries the detail behind an ErrInvalidInput.
type InputError struct {
	Index  int // offending index, 0 when not specific to one point
	Reason string
}

// Error implements the error interface.
func (e *InputError) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("landmark: invalid input: index %d: %s", e.Index, e.Reason)
	}
	return "landmark: invalid input: " + e.Reason
}

// Is reports ErrInvalidInput as the matching sentinel.
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}
