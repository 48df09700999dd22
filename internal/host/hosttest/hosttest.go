// Package hosttest provides an in-memory fake of the host interfaces for
// tests that do not need a debuggee image.
package hosttest

import (
	"futprint/internal/fault"
	"futprint/internal/host"
)

// Type is a fake host.Type.
type Type struct {
	name   string
	code   host.TypeCode
	size   uint64
	align  uint64
	target *Type
	base   *Type
	fields []host.Field
}

var _ host.Type = (*Type)(nil)

// Struct returns an aggregate type.
func Struct(name string, size, align uint64, fields ...host.Field) *Type {
	return &Type{name: name, code: host.CodeStruct, size: size, align: align, fields: fields}
}

// Scalar returns a type of the given scalar code (int, bool, enum).
func Scalar(name string, code host.TypeCode, size uint64) *Type {
	return &Type{name: name, code: code, size: size, align: size}
}

// Typedef returns an alias of target.
func Typedef(name string, target *Type) *Type {
	return &Type{name: name, code: host.CodeTypedef, size: target.size, align: target.align, target: target}
}

// Const returns a const-qualified view of t.
func Const(t *Type) *Type {
	cp := *t
	cp.name = "const " + t.name
	cp.base = t
	return &cp
}

// Array returns an array of n elements.
func Array(elem *Type, n uint64) *Type {
	return &Type{
		name:   elem.name + "[" + itoa(n) + "]",
		code:   host.CodeArray,
		size:   elem.size * n,
		align:  elem.align,
		target: elem,
	}
}

func (t *Type) Name() string        { return t.name }
func (t *Type) Code() host.TypeCode { return t.code }
func (t *Type) Size() uint64        { return t.size }
func (t *Type) Align() uint64       { return t.align }
func (t *Type) Fields() []host.Field {
	if t.code == host.CodeTypedef && t.target != nil {
		return t.target.Fields()
	}
	return t.fields
}

func (t *Type) Tag() string {
	switch t.code {
	case host.CodeStruct, host.CodeUnion, host.CodeEnum:
		return t.name
	}
	return ""
}

func (t *Type) Target() host.Type {
	if t.target == nil {
		return nil
	}
	return t.target
}

func (t *Type) Unqualified() host.Type {
	if t.base != nil {
		return t.base
	}
	return t
}

func (t *Type) StripTypedefs() host.Type {
	cur := t
	for cur.code == host.CodeTypedef && cur.target != nil {
		cur = cur.target
	}
	return cur
}

func (t *Type) Pointer() host.Type {
	return &Type{name: t.name + " *", code: host.CodePointer, size: 8, align: 8, target: t}
}

func (t *Type) Reference() host.Type {
	return &Type{name: t.name + " &", code: host.CodeReference, size: 8, align: 8, target: t}
}

// Member is a host.Field helper.
func Member(name string, t *Type, offset uint64) host.Field {
	return host.Field{Name: name, Type: t, Offset: offset}
}

// Value is a fake host.Value backed by explicit contents.
type Value struct {
	typ     host.Type
	addr    host.Address
	addrErr error
	readErr error
	num     int64
	raw     []byte
	fields  map[string]*Value
	target  *Value
}

var _ host.Value = (*Value)(nil)

// NewValue returns a value of type t at addr.
func NewValue(t host.Type, addr host.Address) *Value {
	return &Value{typ: t, addr: addr}
}

// WithInt sets the scalar contents.
func (v *Value) WithInt(n int64) *Value { v.num = n; return v }

// WithBytes sets the raw contents.
func (v *Value) WithBytes(b []byte) *Value { v.raw = append([]byte(nil), b...); return v }

// WithField attaches a member value.
func (v *Value) WithField(name string, f *Value) *Value {
	if v.fields == nil {
		v.fields = make(map[string]*Value)
	}
	v.fields[name] = f
	return v
}

// WithTarget sets what Dereference returns.
func (v *Value) WithTarget(target *Value) *Value { v.target = target; return v }

// WithReadErr makes Int, Uint and Bytes fail.
func (v *Value) WithReadErr(err error) *Value { v.readErr = err; return v }

// WithAddrErr makes Address fail.
func (v *Value) WithAddrErr(err error) *Value { v.addrErr = err; return v }

func (v *Value) Type() host.Type { return v.typ }

func (v *Value) Address() (host.Address, error) {
	if v.addrErr != nil {
		return 0, v.addrErr
	}
	return v.addr, nil
}

func (v *Value) Field(name string) (host.Value, error) {
	if f, ok := v.fields[name]; ok {
		return f, nil
	}
	return nil, fault.NoMember(v.typ.Name(), name)
}

func (v *Value) Int() (int64, error) {
	if v.readErr != nil {
		return 0, v.readErr
	}
	return v.num, nil
}

func (v *Value) Uint() (uint64, error) {
	if v.readErr != nil {
		return 0, v.readErr
	}
	return uint64(v.num), nil
}

func (v *Value) Bytes() ([]byte, error) {
	if v.readErr != nil {
		return nil, v.readErr
	}
	return append([]byte(nil), v.raw...), nil
}

func (v *Value) Dereference() (host.Value, error) {
	if v.target == nil {
		return nil, fault.NoMember(v.typ.Name(), "*")
	}
	return v.target, nil
}

// Cast records one CastAndDereference call.
type Cast struct {
	Addr host.Address
	Type string
}

// TypeSystem is a fake host.TypeSystem.
type TypeSystem struct {
	types  map[string]host.Type
	memory map[Cast]*Value
	Casts  []Cast
}

var _ host.TypeSystem = (*TypeSystem)(nil)

// NewTypeSystem returns a type system knowing types by name.
func NewTypeSystem(types ...host.Type) *TypeSystem {
	ts := &TypeSystem{
		types:  make(map[string]host.Type, len(types)),
		memory: make(map[Cast]*Value),
	}
	for _, t := range types {
		ts.Define(t.Name(), t)
	}
	return ts
}

// Define registers t under name (which may differ from t.Name()).
func (ts *TypeSystem) Define(name string, t host.Type) {
	ts.types[name] = t
}

// Bind sets the value CastAndDereference returns for (addr, typeName).
func (ts *TypeSystem) Bind(addr host.Address, typeName string, v *Value) {
	ts.memory[Cast{Addr: addr, Type: typeName}] = v
}

func (ts *TypeSystem) LookupType(name string) (host.Type, error) {
	if t, ok := ts.types[name]; ok {
		return t, nil
	}
	return nil, fault.TypeNotFound(name)
}

func (ts *TypeSystem) CastAndDereference(addr host.Address, t host.Type) (host.Value, error) {
	key := Cast{Addr: addr, Type: t.Name()}
	ts.Casts = append(ts.Casts, key)
	if v, ok := ts.memory[key]; ok {
		return v, nil
	}
	return NewValue(t, addr), nil
}

func itoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
