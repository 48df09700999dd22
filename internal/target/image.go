// Package target is an in-memory debuggee: a table of named types, a set
// of mapped memory segments and a list of symbols. It implements the host
// interfaces so the printers can run without a live debugger.
package target

import "futprint/internal/host"

// Schema is the snapshot format version. Bump it when Image changes.
const Schema uint16 = 1

// Image is a serializable debuggee snapshot.
type Image struct {
	Schema   uint16    `msgpack:"schema"`
	Types    []TypeDef `msgpack:"types"`
	Segments []Segment `msgpack:"segments"`
	Symbols  []Symbol  `msgpack:"symbols"`
}

// TypeDef describes one named type.
//
// Target names the pointee of pointers and references, the aliased type of
// typedefs and the element of arrays. Base names the unqualified type of a
// cv-qualified entry; such entries inherit everything else from Base.
type TypeDef struct {
	Name   string        `msgpack:"name"`
	Code   host.TypeCode `msgpack:"code"`
	Size   uint64        `msgpack:"size"`
	Align  uint64        `msgpack:"align"`
	Signed bool          `msgpack:"signed,omitempty"`
	Target string        `msgpack:"target,omitempty"`
	Count  uint64        `msgpack:"count,omitempty"`
	Base   string        `msgpack:"base,omitempty"`
	Fields []FieldDef    `msgpack:"fields,omitempty"`
}

// FieldDef is one member of a struct or union.
type FieldDef struct {
	Name   string `msgpack:"name"`
	Type   string `msgpack:"type"`
	Offset uint64 `msgpack:"offset"`
}

// Segment is a mapped memory range starting at Base.
type Segment struct {
	Base uint64 `msgpack:"base"`
	Data []byte `msgpack:"data"`
}

// Symbol is a named, typed variable.
type Symbol struct {
	Name string `msgpack:"name"`
	Type string `msgpack:"type"`
	Addr uint64 `msgpack:"addr"`
}
