package processor

import (
	"errors"
	"fmt"
)

// ErrInPlaceStdin rejects in-place mode for the stdin buffer, which has no
// source file to replace.
var ErrInPlaceStdin = errors.New("in-place mode needs source files, stdin has none")

// ItemError is a failure contained to a single item. Op names the step that
// failed: read, transform, destination or write.
type ItemError struct {
	Path string
	Op   string
	Err  error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// MultipleOutputsError is returned when more than one result would be
// written to the single output stream.
type MultipleOutputsError struct {
	Count int
}

func (e *MultipleOutputsError) Error() string {
	return "cannot write multiple files to a single output, specify an output directory"
}

// RunError fails a run whose items did not all succeed. It is only returned
// after every item settled.
type RunError struct {
	Failed int
	First  error
}

// Error reports the first failure only; Failed carries the count.
func (e *RunError) Error() string {
	return e.First.Error()
}

func (e *RunError) Unwrap() error { return e.First }
