package trace

import (
	"bufio"
	"errors"
	"io"
	"os"
	"sync"
)

// StreamTracer writes each admitted event as it arrives. File outputs are
// buffered and flushed on Flush and Close; stderr is written through.
type StreamTracer struct {
	mu     sync.Mutex
	out    io.Writer
	buf    *bufio.Writer // nil when writing through
	closer io.Closer
	level  Level
	format Format
}

// NewStreamTracer wraps w. FormatAuto means text.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	if format == FormatAuto {
		format = FormatText
	}
	t := &StreamTracer{out: w, level: level, format: format}
	if f, ok := w.(*os.File); ok {
		t.buf = bufio.NewWriter(f)
		t.out = t.buf
		t.closer = f
	}
	return t
}

// Emit writes ev when its scope is admitted. Write errors are dropped so
// tracing never fails a print.
func (t *StreamTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Scope) {
		return
	}
	ev.Seq = NextSeq()
	line := FormatEvent(ev, t.format)

	t.mu.Lock()
	_, _ = t.out.Write(line) //nolint:errcheck
	t.mu.Unlock()
}

// Flush drains the file buffer, if any.
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.buf == nil {
		return nil
	}
	return t.buf.Flush()
}

// Close flushes and closes a file output. Other writers are left open.
func (t *StreamTracer) Close() error {
	err := t.Flush()
	if t.closer != nil {
		err = errors.Join(err, t.closer.Close())
		t.closer = nil
	}
	return err
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
