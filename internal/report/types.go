// Package report accumulates per-item outcomes into run statistics and turns
// them into status events for a Sink.
package report

// Level selects which events reach the sink.
type Level int

const (
	Silent Level = iota
	Quiet
	Verbose
)

func (l Level) String() string {
	switch l {
	case Quiet:
		return "quiet"
	case Verbose:
		return "verbose"
	default:
		return "silent"
	}
}

// Item is the slice of an item outcome the aggregator needs.
type Item struct {
	Path          string
	OriginalSize  int64
	OptimizedSize int64
	Err           error
}

// Summary holds the running totals of a batch. Byte totals only count
// successful items.
type Summary struct {
	Succeeded     int
	Failed        int
	OriginalBytes int64
	SavedBytes    int64
}

// Total is the number of settled items.
func (s Summary) Total() int {
	return s.Succeeded + s.Failed
}

// Percent is the share of OriginalBytes that was saved.
func (s Summary) Percent() float64 {
	return percent(s.SavedBytes, s.OriginalBytes)
}

type EventKind int

const (
	ItemSucceeded EventKind = iota
	ItemFailed
	RunFinished
)

// Event is a single status notification. Done and Total locate an item event
// within the batch; Summary is only set on RunFinished.
type Event struct {
	Kind          EventKind
	Path          string
	OriginalSize  int64
	OptimizedSize int64
	Err           error
	Done          int
	Total         int
	Summary       Summary
}

// Saved is the byte difference between the original and optimized payload.
func (e Event) Saved() int64 {
	return e.OriginalSize - e.OptimizedSize
}

// Percent is the saved share of the original size.
func (e Event) Percent() float64 {
	return PercentSaved(e.OriginalSize, e.OptimizedSize)
}

// Sink receives events. Implementations must accept concurrent Emit calls.
type Sink interface {
	Emit(Event)
}

type discardSink struct{}

func (discardSink) Emit(Event) {}

// Discard drops every event.
var Discard Sink = discardSink{}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(ev Event) { f(ev) }
