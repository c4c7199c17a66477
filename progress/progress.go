// Package progress decouples transfer loops from progress display.
//
// Transfers report through a Sink after every chunk of bytes moved. The
// reported byte count is cumulative and never decreases for the lifetime of
// a transfer.
package progress

// Sink receives progress updates during a transfer.
// total is the expected size in bytes; 0 means unknown.
type Sink interface {
	Update(transferred, total int64)
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(transferred, total int64)

// Update implements Sink.
func (f SinkFunc) Update(transferred, total int64) {
	f(transferred, total)
}

// Discard is a Sink that drops all updates.
var Discard Sink = SinkFunc(func(int64, int64) {})

// Tracker accumulates transferred bytes and fans updates out to a sink.
// The transferred count is monotonically non-decreasing.
type Tracker struct {
	total       int64
	transferred int64
	sink        Sink
}

// NewTracker creates a tracker for a transfer of total bytes (0 if unknown).
func NewTracker(total int64, sink Sink) *Tracker {
	if sink == nil {
		sink = Discard
	}
	return &Tracker{total: total, sink: sink}
}

// Add records n more transferred bytes and notifies the sink.
// Non-positive n is ignored so keep-alive chunks never report.
func (t *Tracker) Add(n int64) {
	if n <= 0 {
		return
	}
	t.transferred += n
	t.sink.Update(t.transferred, t.total)
}

// Set records an absolute cumulative count, for sources that report totals
// rather than deltas. Counts below the current value are ignored.
func (t *Tracker) Set(transferred int64) {
	if transferred <= t.transferred {
		return
	}
	t.transferred = transferred
	t.sink.Update(t.transferred, t.total)
}

// Transferred returns the cumulative byte count so far.
func (t *Tracker) Transferred() int64 {
	return t.transferred
}

// Total returns the expected size, 0 if unknown.
func (t *Tracker) Total() int64 {
	return t.total
}
