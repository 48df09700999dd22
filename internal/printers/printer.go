// Package printers holds the structural printers for the futures library's
// internal types. Printer methods never fail: resolution errors degrade to
// a textual fallback or to an omitted child, and are reported to the
// tracer.
package printers

import (
	"futprint/internal/host"
	"futprint/internal/trace"
)

// Printer is what the host renderer consumes.
type Printer interface {
	// String is a single-line summary.
	String() string
	// Children is produced fresh per call and consumed once.
	Children() *Children
}

// Env carries the host collaborators a printer needs.
type Env struct {
	Types  host.TypeSystem
	Tracer trace.Tracer
}

func (e Env) tracer() trace.Tracer {
	if e.Tracer == nil {
		return trace.Nop
	}
	return e.Tracer
}

// fallback reports a degraded step.
func (e Env) fallback(printer, step string, err error) {
	t := e.tracer()
	if !t.Enabled() {
		return
	}
	trace.Point(t, trace.ScopePrinter, printer+"."+step, err.Error())
}
