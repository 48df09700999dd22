package trace

import "fmt"

// Level controls tracing verbosity.
type Level uint8

const (
	// LevelOff disables tracing.
	LevelOff     Level = iota // no tracing
	LevelError                // only emit on errors
	LevelSession              // command + image boundaries
	LevelValue                // per rendered value
	LevelPrinter              // plus printer lookups and fallbacks
	LevelDebug                // everything including memory reads
)

// String returns the string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelSession:
		return "session"
	case LevelValue:
		return "value"
	case LevelPrinter:
		return "printer"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "off", "OFF", "":
		return LevelOff, nil
	case "error", "ERROR":
		return LevelError, nil
	case "session", "SESSION":
		return LevelSession, nil
	case "value", "VALUE":
		return LevelValue, nil
	case "printer", "PRINTER":
		return LevelPrinter, nil
	case "debug", "DEBUG":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|session|value|printer|debug)", s)
	}
}

// ShouldEmit reports whether events of scope pass this level. The error
// level streams nothing; its context lives in the ring the CLI keeps.
func (l Level) ShouldEmit(scope Scope) bool {
	return scope != 0 && scope <= deepest[l]
}

// deepest is the finest scope each level admits.
var deepest = map[Level]Scope{
	LevelSession: ScopeSession,
	LevelValue:   ScopeValue,
	LevelPrinter: ScopePrinter,
	LevelDebug:   ScopeRead,
}
