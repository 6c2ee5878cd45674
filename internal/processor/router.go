package processor

import "io"

// Route writes the single virtual result to w. With an output directory or
// in-place mode the results are already on disk and Route does nothing.
// More than one outcome is a conflict and nothing is written.
func Route(w io.Writer, outcomes []Outcome, opts Options) error {
	if !opts.virtual() {
		return nil
	}
	switch len(outcomes) {
	case 0:
		return nil
	case 1:
	default:
		return &MultipleOutputsError{Count: len(outcomes)}
	}

	out := outcomes[0]
	if out.Failed() {
		return nil
	}
	_, err := w.Write(out.Data)
	return err
}
