// Package host declares the narrow debugger capabilities the printers
// consume: type lookup, typed values over target memory, and the cast
// used to reinterpret raw storage.
package host

import "fmt"

// Address is a location in the debuggee's address space.
type Address uint64

// String renders the address as fixed-width hexadecimal.
func (a Address) String() string {
	return fmt.Sprintf("0x%016x", uint64(a))
}

// TypeCode classifies a type.
type TypeCode uint8

const (
	CodeInvalid TypeCode = iota
	CodeStruct
	CodeUnion
	CodeEnum
	CodeInt
	CodeBool
	CodePointer
	CodeReference
	CodeTypedef
	CodeArray
)

// String returns the code name.
func (c TypeCode) String() string {
	switch c {
	case CodeStruct:
		return "struct"
	case CodeUnion:
		return "union"
	case CodeEnum:
		return "enum"
	case CodeInt:
		return "int"
	case CodeBool:
		return "bool"
	case CodePointer:
		return "pointer"
	case CodeReference:
		return "reference"
	case CodeTypedef:
		return "typedef"
	case CodeArray:
		return "array"
	default:
		return "invalid"
	}
}

// Field is one member of an aggregate type.
type Field struct {
	Name   string
	Type   Type
	Offset uint64
}

// Type is a handle into the host's type system.
type Type interface {
	Name() string
	Code() TypeCode
	// Tag is the aggregate's name, or "" for types without one.
	Tag() string
	Size() uint64
	Align() uint64
	// Target is the pointee, referent, typedef target or array element.
	Target() Type
	Unqualified() Type
	StripTypedefs() Type
	Pointer() Type
	Reference() Type
	Fields() []Field
}

// Value is a typed, read-only view of debuggee memory.
type Value interface {
	Type() Type
	Address() (Address, error)
	// Field returns a member; references are followed first.
	Field(name string) (Value, error)
	Int() (int64, error)
	Uint() (uint64, error)
	// Bytes returns a copy of the value's bytes.
	Bytes() ([]byte, error)
	Dereference() (Value, error)
}

// TypeSystem resolves type names and reinterprets memory.
type TypeSystem interface {
	LookupType(name string) (Type, error)
	// CastAndDereference is "*(T*)addr": a view of the bytes at addr as t.
	CastAndDereference(addr Address, t Type) (Value, error)
}
