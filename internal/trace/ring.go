package trace

import (
	"fmt"
	"io"
	"sync"
)

// DefaultRingSize is used when a ring is created with a non-positive size.
const DefaultRingSize = 1024

// RingTracer keeps the most recent events in memory. The CLI dumps it when
// a command fails or, in ring mode, when the command ends.
type RingTracer struct {
	mu      sync.Mutex
	buf     []Event
	written uint64 // total events ever stored
	level   Level
}

// NewRingTracer returns a ring holding up to capacity events.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = DefaultRingSize
	}
	return &RingTracer{buf: make([]Event, capacity), level: level}
}

// Emit stores a copy of ev, overwriting the oldest event when full.
// Scope filtering is left to the caller's level.
func (t *RingTracer) Emit(ev *Event) {
	if ev == nil || t.level == LevelOff {
		return
	}
	stored := *ev
	stored.Seq = NextSeq()

	t.mu.Lock()
	t.buf[t.written%uint64(len(t.buf))] = stored
	t.written++
	t.mu.Unlock()
}

// Len returns the number of events currently held.
func (t *RingTracer) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return int(min(t.written, uint64(len(t.buf)))) //nolint:gosec // bounded by len(buf)
}

// Dropped returns how many events were overwritten.
func (t *RingTracer) Dropped() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.written <= uint64(len(t.buf)) {
		return 0
	}
	return t.written - uint64(len(t.buf))
}

// Snapshot returns the held events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	size := uint64(len(t.buf))
	if t.written <= size {
		return append([]Event(nil), t.buf[:t.written]...)
	}
	start := t.written % size
	out := make([]Event, 0, size)
	out = append(out, t.buf[start:]...)
	return append(out, t.buf[:start]...)
}

// Count returns the number of held events in scope.
func (t *RingTracer) Count(scope Scope) int {
	n := 0
	for _, ev := range t.Snapshot() {
		if ev.Scope == scope {
			n++
		}
	}
	return n
}

// Dump writes the held events to w. A leading comment line reports
// overwritten events.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	if dropped := t.Dropped(); dropped > 0 && format != FormatNDJSON {
		if _, err := fmt.Fprintf(w, "# %d earlier event(s) dropped\n", dropped); err != nil {
			return err
		}
	}
	events := t.Snapshot()
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error { return nil }
func (t *RingTracer) Close() error { return nil }

// Level returns the ring's level.
func (t *RingTracer) Level() Level { return t.level }

// Enabled reports whether the ring records anything.
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
