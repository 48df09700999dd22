package printers

import (
	"futprint/internal/host"
	"futprint/internal/variant"
)

// LabelPrinter renders a future_state<...>::type_id discriminant.
type LabelPrinter struct {
	env   Env
	value host.Value
}

// NewLabel returns a printer for a type_id value.
func NewLabel(env Env, value host.Value) *LabelPrinter {
	return &LabelPrinter{env: env, value: value}
}

// String returns the storage kind label, or "invalid type".
func (p *LabelPrinter) String() string {
	d, err := p.value.Int()
	if err != nil {
		p.env.fallback("type_id", "read", err)
		return variant.InvalidLabel
	}
	return variant.Label(d)
}

// Children is always empty.
func (p *LabelPrinter) Children() *Children {
	return NoChildren()
}
