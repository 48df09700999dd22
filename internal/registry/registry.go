// Package registry dispatches values to the futures printers by their
// underlying type name and appends that dispatch to a host printer chain.
package registry

import (
	"strings"

	"futprint/internal/host"
	"futprint/internal/printers"
)

// Type-name conventions of the futures library.
const (
	FutureStatePrefix = "futures::detail::future_state"
	TypeIDSuffix      = "::type_id"
	MaybeEmptyPrefix  = "futures::detail::maybe_empty"
)

// Entry pairs a type-name predicate with a printer factory.
type Entry struct {
	Name  string
	Match func(typeName string) bool
	New   func(env printers.Env, value host.Value) printers.Printer
}

// DefaultEntries returns the futures entries in dispatch order. The
// type_id entry must precede the future_state one since both share a
// prefix.
func DefaultEntries() []Entry {
	return []Entry{
		{
			Name: "future_state::type_id",
			Match: func(name string) bool {
				return strings.HasPrefix(name, FutureStatePrefix) && strings.HasSuffix(name, TypeIDSuffix)
			},
			New: func(env printers.Env, v host.Value) printers.Printer { return printers.NewLabel(env, v) },
		},
		{
			Name:  "future_state",
			Match: func(name string) bool { return strings.HasPrefix(name, FutureStatePrefix) },
			New:   func(env printers.Env, v host.Value) printers.Printer { return printers.NewVariant(env, v) },
		},
		{
			Name:  "maybe_empty",
			Match: func(name string) bool { return strings.HasPrefix(name, MaybeEmptyPrefix) },
			New:   func(env printers.Env, v host.Value) printers.Printer { return printers.NewMaybeEmpty(env, v) },
		},
	}
}

// Registry evaluates its entries in order. It is immutable after New.
type Registry struct {
	env     printers.Env
	entries []Entry
}

// New builds a registry; with no entries the defaults are used.
func New(env printers.Env, entries ...Entry) *Registry {
	if len(entries) == 0 {
		entries = DefaultEntries()
	}
	return &Registry{env: env, entries: append([]Entry(nil), entries...)}
}

// Entries returns the entry names in dispatch order.
func (r *Registry) Entries() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// Lookup returns the printer for value, or nil when no entry matches.
func (r *Registry) Lookup(value host.Value) printers.Printer {
	if value == nil {
		return nil
	}
	name := host.UnderlyingTypeName(value)
	for _, e := range r.entries {
		if e.Match(name) {
			return e.New(r.env, value)
		}
	}
	return nil
}
