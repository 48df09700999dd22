package trace

import (
	"sync/atomic"
	"time"
)

// counters hands out process-wide sequence numbers and span IDs.
var counters struct {
	seq   atomic.Uint64
	spans atomic.Uint64
}

// NextSeq returns the next event sequence number.
func NextSeq() uint64 { return counters.seq.Add(1) }

// NextSpanID returns a fresh span ID. IDs start at 1; 0 means "no parent".
func NextSpanID() uint64 { return counters.spans.Add(1) }

// Span tracks one begin/end pair. A Span returned for a filtered scope is
// inert: End, Point and WithExtra are no-ops and ID is 0.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
	ended   atomic.Bool
}

var inert = &Span{tracer: Nop}

func emits(t Tracer, scope Scope) bool {
	return t != nil && t.Enabled() && t.Level().ShouldEmit(scope)
}

// Begin emits a span-begin event under parent (0 for a root span).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if !emits(t, scope) {
		return inert
	}
	s := &Span{
		tracer:  t,
		id:      NextSpanID(),
		parent:  parent,
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	t.Emit(&Event{
		Time:     s.started,
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: parent,
		Name:     name,
	})
	return s
}

// End emits the span-end event once and returns the elapsed time.
// Later calls return 0.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.id == 0 || s.ended.Swap(true) {
		return 0
	}
	now := time.Now()
	elapsed := now.Sub(s.started)
	s.tracer.Emit(&Event{
		Time:     now,
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     s.name,
		Detail:   detail,
		Elapsed:  elapsed,
		Extra:    s.extra,
	})
	return elapsed
}

// Fail ends the span with err as its detail.
func (s *Span) Fail(err error) time.Duration {
	if err == nil {
		return s.End("failed")
	}
	return s.End("failed: " + err.Error())
}

// WithExtra attaches key=value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.id == 0 {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// ID returns the span ID, 0 for an inert span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits an instant event parented to s.
func (s *Span) Point(scope Scope, name, detail string) {
	if s == nil || s.id == 0 {
		return
	}
	PointIn(s.tracer, scope, s.id, name, detail)
}

// Point emits a root-level instant event.
func Point(t Tracer, scope Scope, name, detail string) {
	PointIn(t, scope, 0, name, detail)
}

// PointIn emits an instant event under parent.
func PointIn(t Tracer, scope Scope, parent uint64, name, detail string) {
	if !emits(t, scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent,
		Name:     name,
		Detail:   detail,
	})
}
