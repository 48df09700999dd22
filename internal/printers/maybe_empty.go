package printers

import (
	"strings"

	"futprint/internal/fault"
	"futprint/internal/host"
	"futprint/internal/typesig"
	"futprint/internal/variant"
)

const emptyPrefix = "empty type: "

// EmptyOptimizedField is a maybe_empty<T, I, E> member. Value is nil when
// the wrapped type is empty.
type EmptyOptimizedField struct {
	WrappedTypeName string
	Index           string
	IsEmpty         bool
	Value           host.Value
}

// ParseEmptyOptimized extracts the field shape from a maybe_empty type
// name. It needs exactly three generic arguments.
func ParseEmptyOptimized(typeName string) (EmptyOptimizedField, error) {
	sig, err := typesig.Parse(typeName)
	if err != nil {
		return EmptyOptimizedField{}, err
	}
	if len(sig.GenericArgs) != 3 {
		return EmptyOptimizedField{}, fault.Parse(typeName, len(typeName), "expected 3 generic arguments")
	}
	return EmptyOptimizedField{
		WrappedTypeName: sig.GenericArgs[0],
		Index:           sig.GenericArgs[1],
		IsEmpty:         strings.Contains(sig.GenericArgs[2], "true"),
	}, nil
}

// MaybeEmptyPrinter renders futures::detail::maybe_empty<...>.
type MaybeEmptyPrinter struct {
	env   Env
	value host.Value
	field EmptyOptimizedField
	err   error
}

// NewMaybeEmpty returns a printer for value.
func NewMaybeEmpty(env Env, value host.Value) *MaybeEmptyPrinter {
	p := &MaybeEmptyPrinter{env: env, value: value}
	p.field, p.err = ParseEmptyOptimized(host.UnderlyingTypeName(value))
	if p.err != nil {
		env.fallback("maybe_empty", "parse", p.err)
	}
	return p
}

// Field returns the parsed shape.
func (p *MaybeEmptyPrinter) Field() (EmptyOptimizedField, error) {
	return p.field, p.err
}

func (p *MaybeEmptyPrinter) String() string {
	switch {
	case p.err != nil:
		return variant.InvalidLabel
	case p.field.IsEmpty:
		return emptyPrefix + p.field.WrappedTypeName
	default:
		return p.field.WrappedTypeName
	}
}

// Children yields exactly one pair: the wrapped value, or ("empty", true).
func (p *MaybeEmptyPrinter) Children() *Children {
	if p.err != nil {
		return NoChildren()
	}
	return newChildren(func() (Child, bool) {
		if p.field.IsEmpty {
			return Child{Name: "empty", Value: true}, true
		}
		inner, err := p.value.Field("value_")
		if err != nil {
			p.env.fallback("maybe_empty", "value_", err)
			return Child{}, false
		}
		p.field.Value = inner
		return Child{Name: p.field.WrappedTypeName, Value: inner}, true
	})
}
