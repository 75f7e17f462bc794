package autodiff

import (
	"errors"
	"fmt"
)

// Contract violations. The tape panics with an error wrapping one of these,
// so a recovered value can be matched with errors.Is.
var (
	ErrNoGradient      = errors.New("value has no gradient handle")
	ErrNotRecorded     = errors.New("value was never recorded on the tape")
	ErrForeignSlot     = errors.New("slot was not issued by this tape")
	ErrStaleSlot       = errors.New("slot belongs to a previous tape generation")
	ErrSeedShape       = errors.New("seed does not match slot shape")
	ErrAlreadyExecuted = errors.New("backward pass already executed")
	ErrShapeMismatch   = errors.New("value shape does not match slot shape")
)

// violation aborts the current operation with a wrapped contract error.
func violation(err error, format string, args ...any) {
	panic(fmt.Errorf("%w: "+format, append([]any{err}, args...)...))
}
