package processor

// SourceItem is one unit of work. Path is absolute for files and empty for
// the stdin buffer, whose bytes travel in Data.
type SourceItem struct {
	Path    string
	RelPath string
	Data    []byte
}

// InMemory reports whether the item carries its own bytes.
func (s SourceItem) InMemory() bool {
	return s.Path == ""
}

// Options are fixed for the lifetime of a run.
type Options struct {
	Cwd            string
	OutDir         string
	PreserveTree   bool
	InPlace        bool
	MaxConcurrency int
	IgnoreErrors   bool
}

// virtual reports whether results are routed to a single output stream
// instead of files.
func (o Options) virtual() bool {
	return o.OutDir == "" && !o.InPlace
}

// Outcome is the result of processing one SourceItem. Err is non-nil for a
// failed item. Data holds the optimized bytes only when the destination is
// virtual.
type Outcome struct {
	RelPath       string
	OriginalSize  int64
	OptimizedSize int64
	Destination   string
	Data          []byte
	Err           error
}

// Failed reports whether the item failed.
func (o Outcome) Failed() bool {
	return o.Err != nil
}
