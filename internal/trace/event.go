package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1 // span start
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd // span end
	// KindPoint represents an instant event.
	KindPoint // instant event
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity level of the event.
// Lower numeric values represent coarser events.
type Scope uint8

const (
	// ScopeSession covers a CLI command or one loaded image.
	ScopeSession Scope = iota + 1
	// ScopeValue covers rendering of one top-level value.
	ScopeValue
	// ScopePrinter covers printer lookup, construction and fallbacks.
	ScopePrinter
	// ScopeRead covers individual memory reads.
	ScopeRead
)

// String returns the string representation of Scope.
func (s Scope) String() string {
	switch s {
	case ScopeSession:
		return "session"
	case ScopeValue:
		return "value"
	case ScopePrinter:
		return "printer"
	case ScopeRead:
		return "read"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time         // wall-clock timestamp
	Seq      uint64            // global sequence number (monotonic)
	Kind     Kind              // event kind
	Scope    Scope             // granularity level
	SpanID   uint64            // unique span identifier
	ParentID uint64            // parent span (0 if root)
	Name     string            // e.g. "lookup", "render:f_inline"
	Detail   string            // optional detail message
	Elapsed  time.Duration     // span duration, end events only
	Extra    map[string]string // extensible key-value pairs
}
