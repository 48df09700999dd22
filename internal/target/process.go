package target

import (
	"encoding/binary"
	"errors"
	"fmt"

	"fortio.org/safecast"

	"futprint/internal/fault"
	"futprint/internal/host"
)

// ErrNoSymbol reports a variable missing from the image.
var ErrNoSymbol = errors.New("no such symbol")

// Process is an opened image. It implements host.TypeSystem.
type Process struct {
	types   *TypeTable
	mem     *Memory
	symbols []Symbol
	byName  map[string]int
}

var _ host.TypeSystem = (*Process)(nil)

// Open validates img and indexes it.
func Open(img *Image) (*Process, error) {
	if img == nil {
		return nil, errors.New("target: nil image")
	}
	if img.Schema != Schema {
		return nil, fmt.Errorf("target: image schema %d, want %d", img.Schema, Schema)
	}
	types, err := NewTypeTable(img.Types)
	if err != nil {
		return nil, err
	}
	mem, err := NewMemory(img.Segments)
	if err != nil {
		return nil, err
	}
	p := &Process{
		types:   types,
		mem:     mem,
		symbols: append([]Symbol(nil), img.Symbols...),
		byName:  make(map[string]int, len(img.Symbols)),
	}
	for i, sym := range p.symbols {
		if _, dup := p.byName[sym.Name]; dup {
			return nil, fmt.Errorf("target: duplicate symbol %q", sym.Name)
		}
		if _, err := types.LookupType(sym.Type); err != nil {
			return nil, fmt.Errorf("target: symbol %q: %w", sym.Name, err)
		}
		p.byName[sym.Name] = i
	}
	return p, nil
}

// Memory exposes the mapped segments.
func (p *Process) Memory() *Memory { return p.mem }

// Types exposes the type table.
func (p *Process) Types() *TypeTable { return p.types }

func (p *Process) LookupType(name string) (host.Type, error) {
	return p.types.LookupType(name)
}

// CastAndDereference views the bytes at addr as t. The whole object must
// be mapped.
func (p *Process) CastAndDereference(addr host.Address, t host.Type) (host.Value, error) {
	typ, err := p.types.own(t)
	if err != nil {
		return nil, err
	}
	return p.valueAt(uint64(addr), typ)
}

func (p *Process) valueAt(addr uint64, typ *Type) (*Value, error) {
	if size := typ.Size(); size != 0 && !p.mem.Mapped(addr, size) {
		return nil, fault.MemoryAccess(addr, size, "object not mapped", nil)
	}
	return &Value{proc: p, typ: typ, addr: addr}, nil
}

// Variable returns the value of a symbol.
func (p *Process) Variable(name string) (host.Value, error) {
	i, ok := p.byName[name]
	if !ok {
		return nil, fmt.Errorf("target: %w: %s", ErrNoSymbol, name)
	}
	sym := p.symbols[i]
	t, err := p.types.LookupType(sym.Type)
	if err != nil {
		return nil, err
	}
	return p.valueAt(sym.Addr, t.(*Type))
}

// Symbols lists the image's symbols in declaration order.
func (p *Process) Symbols() []Symbol {
	return append([]Symbol(nil), p.symbols...)
}

// TypeNames lists the defined type names, sorted.
func (p *Process) TypeNames() []string {
	return p.types.Names()
}

// Value is a typed view of process memory.
type Value struct {
	proc *Process
	typ  *Type
	addr uint64
}

var _ host.Value = (*Value)(nil)

func (v *Value) Type() host.Type { return v.typ }

func (v *Value) Address() (host.Address, error) {
	return host.Address(v.addr), nil
}

// Field returns a member of a struct or union. References are followed
// first.
func (v *Value) Field(name string) (host.Value, error) {
	t := v.typ.concrete()
	if t.code == host.CodeReference {
		target, err := v.Dereference()
		if err != nil {
			return nil, err
		}
		return target.Field(name)
	}
	if t.code != host.CodeStruct && t.code != host.CodeUnion {
		return nil, fault.NoMember(v.typ.name, name)
	}
	f, ok := t.field(name)
	if !ok {
		return nil, fault.NoMember(v.typ.name, name)
	}
	return v.proc.valueAt(v.addr+f.Offset, f.Type.(*Type))
}

func (v *Value) raw() ([]byte, *Type, error) {
	t := v.typ.concrete()
	switch t.code {
	case host.CodeInt, host.CodeBool, host.CodeEnum, host.CodePointer, host.CodeReference:
	default:
		return nil, t, fmt.Errorf("target: %s is not a scalar", v.typ.name)
	}
	b, err := v.proc.mem.view(v.addr, t.size)
	return b, t, err
}

// Uint reads the value as an unsigned little-endian integer.
func (v *Value) Uint() (uint64, error) {
	b, _, err := v.raw()
	if err != nil {
		return 0, err
	}
	switch len(b) {
	case 1:
		return uint64(b[0]), nil
	case 2:
		return uint64(binary.LittleEndian.Uint16(b)), nil
	case 4:
		return uint64(binary.LittleEndian.Uint32(b)), nil
	case 8:
		return binary.LittleEndian.Uint64(b), nil
	}
	return 0, fmt.Errorf("target: unsupported scalar size %d for %s", len(b), v.typ.name)
}

// Int reads the value as an integer, sign-extending signed types.
func (v *Value) Int() (int64, error) {
	u, err := v.Uint()
	if err != nil {
		return 0, err
	}
	if t := v.typ.concrete(); t.signed {
		switch t.size {
		case 1:
			return int64(int8(u)), nil //nolint:gosec // truncation is the sign extension
		case 2:
			return int64(int16(u)), nil //nolint:gosec
		case 4:
			return int64(int32(u)), nil //nolint:gosec
		default:
			return int64(u), nil //nolint:gosec
		}
	}
	return safecast.Conv[int64](u)
}

// Bytes returns a copy of the value's bytes.
func (v *Value) Bytes() ([]byte, error) {
	b, err := v.proc.mem.view(v.addr, v.typ.Size())
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// Dereference follows a pointer or reference.
func (v *Value) Dereference() (host.Value, error) {
	t := v.typ.concrete()
	if t.code != host.CodePointer && t.code != host.CodeReference {
		return nil, fmt.Errorf("target: cannot dereference %s", v.typ.name)
	}
	if t.target == nil {
		return nil, fault.TypeNotFound(v.typ.name + " target")
	}
	addr, err := v.Uint()
	if err != nil {
		return nil, err
	}
	return v.proc.valueAt(addr, t.target)
}
