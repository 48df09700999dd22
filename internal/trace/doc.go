// Package trace provides the levelled event tracer used by futprint.
//
// Printers, the registry and the renderer emit events while a value is
// being formatted so that fallbacks (unknown discriminants, missing types,
// unreadable memory) stay visible without ever aborting a print request.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	futprint print --trace=- --trace-level=value -i demo.fpi f_inline
//
// # Architecture
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer, dumped on failure
//   - MultiTracer: combines multiple tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: nothing is streamed; the CLI keeps a ring and dumps it when a command fails
//   - LevelSession: command and image boundaries
//   - LevelValue: one span per rendered value
//   - LevelPrinter: adds printer lookups and fallbacks
//   - LevelDebug: everything including memory reads
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeValue, "render:f_inline", 0)
//	defer span.End("")
package trace
