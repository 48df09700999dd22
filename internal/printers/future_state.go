package printers

import (
	"futprint/internal/fault"
	"futprint/internal/host"
	"futprint/internal/reinterp"
	"futprint/internal/typesig"
	"futprint/internal/variant"
)

// Member names of future_state.
const (
	tagField     = "type_id_"
	storageField = "data_"
)

// VariantPrinter renders futures::detail::future_state<...>.
type VariantPrinter struct {
	env   Env
	value host.Value

	resolved bool
	desc     variant.Descriptor
	err      error // tag read, parse or discriminant failure
	typeErr  error // host could not resolve desc.ConcreteTypeName
}

// NewVariant returns a printer for value.
func NewVariant(env Env, value host.Value) *VariantPrinter {
	return &VariantPrinter{env: env, value: value}
}

// resolve reads the discriminant and names the stored type. It runs once
// per printer.
func (p *VariantPrinter) resolve() {
	if p.resolved {
		return
	}
	p.resolved = true

	tag, err := p.value.Field(tagField)
	if err != nil {
		p.fail("type_id_", err)
		return
	}
	d, err := tag.Int()
	if err != nil {
		p.fail("type_id_", err)
		return
	}
	p.desc, err = variant.Resolve(host.UnderlyingTypeName(p.value), d)
	if err != nil {
		p.fail("resolve", err)
		return
	}
	if p.env.Types == nil {
		p.typeErr = fault.TypeNotFound(p.desc.ConcreteTypeName)
	} else if _, err := p.env.Types.LookupType(p.desc.ConcreteTypeName); err != nil {
		p.typeErr = err
	}
	if p.typeErr != nil {
		p.env.fallback("future_state", "lookup", p.typeErr)
	}
}

func (p *VariantPrinter) fail(step string, err error) {
	p.err = err
	p.env.fallback("future_state", step, err)
}

// Descriptor returns the resolved discriminant.
func (p *VariantPrinter) Descriptor() (variant.Descriptor, error) {
	p.resolve()
	return p.desc, p.err
}

// String returns the concrete stored type name.
func (p *VariantPrinter) String() string {
	p.resolve()
	switch {
	case p.err != nil:
		return variant.InvalidLabel
	case p.typeErr != nil:
		return p.desc.ConcreteTypeName + " does NOT exist"
	default:
		return p.desc.ConcreteTypeName
	}
}

// Children yields the decoded value, "which" and "address", in that
// order. A failing step is omitted; an invalid discriminant yields none.
func (p *VariantPrinter) Children() *Children {
	p.resolve()
	if p.err != nil {
		return NoChildren()
	}
	return newChildren(p.decoded, p.which, p.address)
}

func (p *VariantPrinter) storage() (host.Value, error) {
	outer, err := p.value.Field(storageField)
	if err != nil {
		return nil, err
	}
	return outer.Field(storageField)
}

func (p *VariantPrinter) decoded() (Child, bool) {
	if p.typeErr != nil {
		return Child{}, false
	}
	storage, err := p.storage()
	if err != nil {
		p.env.fallback("future_state", "data_", err)
		return Child{}, false
	}
	view, err := reinterp.Reinterpret(p.env.Types, storage, p.desc.ConcreteTypeName)
	if err != nil {
		p.env.fallback("future_state", "reinterpret", err)
		return Child{}, false
	}
	return Child{Name: typesig.TrailingName(view.TypeName), Value: view.Value}, true
}

func (p *VariantPrinter) which() (Child, bool) {
	return Child{Name: "which", Value: p.desc.Discriminant}, true
}

func (p *VariantPrinter) address() (Child, bool) {
	storage, err := p.storage()
	if err == nil {
		var addr host.Address
		if addr, err = storage.Address(); err == nil {
			return Child{Name: "address", Value: addr}, true
		}
	}
	p.env.fallback("future_state", "address", err)
	return Child{}, false
}
