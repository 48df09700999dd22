package trace

import "errors"

// MultiTracer fans events out to several tracers under one level.
type MultiTracer struct {
	level   Level
	tracers []Tracer
}

// NewMultiTracer combines tracers.
func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	return &MultiTracer{level: level, tracers: tracers}
}

// Emit hands each tracer its own copy; stream tracers stamp Seq in place.
func (t *MultiTracer) Emit(ev *Event) {
	if ev == nil {
		return
	}
	for _, tr := range t.tracers {
		cp := *ev
		tr.Emit(&cp)
	}
}

func (t *MultiTracer) each(fn func(Tracer) error) error {
	var errs []error
	for _, tr := range t.tracers {
		errs = append(errs, fn(tr))
	}
	return errors.Join(errs...)
}

// Flush flushes every tracer and joins their errors.
func (t *MultiTracer) Flush() error { return t.each(Tracer.Flush) }

// Close closes every tracer and joins their errors.
func (t *MultiTracer) Close() error { return t.each(Tracer.Close) }

func (t *MultiTracer) Level() Level  { return t.level }
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }

// Ring returns the first ring among the combined tracers.
func (t *MultiTracer) Ring() (*RingTracer, bool) {
	for _, tr := range t.tracers {
		if r, ok := tr.(*RingTracer); ok {
			return r, true
		}
	}
	return nil, false
}
