package target

import (
	"encoding/binary"
	"fmt"
	"strings"

	"fortio.org/safecast"
)

// Builder assembles an image with a bump allocator over one arena
// segment. The first error sticks and is returned by Image.
type Builder struct {
	base    uint64
	arena   []byte
	types   []TypeDef
	index   map[string]int
	symbols []Symbol
	err     error
}

// NewBuilder returns a builder whose arena starts at base.
func NewBuilder(base uint64) *Builder {
	return &Builder{base: base, index: make(map[string]int)}
}

func (b *Builder) fail(format string, args ...any) {
	if b.err == nil {
		b.err = fmt.Errorf("target: builder: "+format, args...)
	}
}

// Err returns the first error.
func (b *Builder) Err() error { return b.err }

// Type adds a type definition.
func (b *Builder) Type(def TypeDef) *Builder {
	if _, dup := b.index[def.Name]; dup {
		b.fail("duplicate type %q", def.Name)
		return b
	}
	b.index[def.Name] = len(b.types)
	b.types = append(b.types, def)
	return b
}

// layout returns size and alignment of a named type, following typedefs
// and cv bases within the builder.
func (b *Builder) layout(name string) (uint64, uint64, bool) {
	for range len(b.types) + 1 {
		name = strings.TrimSpace(name)
		if strings.HasSuffix(name, "*") || strings.HasSuffix(name, "&") {
			return PointerSize, PointerSize, true
		}
		i, ok := b.index[name]
		if !ok {
			return 0, 0, false
		}
		def := b.types[i]
		switch {
		case def.Base != "":
			name = def.Base
		case def.Align == 0 && def.Target != "":
			name = def.Target
		default:
			return def.Size, def.Align, true
		}
	}
	return 0, 0, false
}

// Alloc reserves size bytes aligned to align and returns their address.
func (b *Builder) Alloc(size, align uint64) uint64 {
	if b.err != nil {
		return 0
	}
	if align == 0 {
		align = 1
	}
	used, err := safecast.Conv[uint64](len(b.arena))
	if err != nil {
		b.fail("%v", err)
		return 0
	}
	addr := b.base + used
	if rem := addr % align; rem != 0 {
		addr += align - rem
	}
	end, err := safecast.Conv[int](addr + size - b.base)
	if err != nil {
		b.fail("arena too large: %v", err)
		return 0
	}
	b.arena = append(b.arena, make([]byte, end-len(b.arena))...)
	return addr
}

// New allocates storage for one object of the named type.
func (b *Builder) New(typeName string) uint64 {
	size, align, ok := b.layout(typeName)
	if !ok {
		b.fail("unknown type %q", typeName)
		return 0
	}
	return b.Alloc(size, align)
}

func (b *Builder) slice(addr uint64, n int) []byte {
	if b.err != nil {
		return nil
	}
	if addr < b.base {
		b.fail("write at 0x%x below arena", addr)
		return nil
	}
	off, err := safecast.Conv[int](addr - b.base)
	if err != nil || off+n > len(b.arena) {
		b.fail("write of %d byte(s) at 0x%x outside arena", n, addr)
		return nil
	}
	return b.arena[off : off+n]
}

// PutUint stores v little-endian in size bytes (1, 2, 4 or 8) at addr.
func (b *Builder) PutUint(addr uint64, size int, v uint64) {
	dst := b.slice(addr, size)
	if dst == nil {
		return
	}
	switch size {
	case 1:
		dst[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(dst, uint16(v)) //nolint:gosec
	case 4:
		binary.LittleEndian.PutUint32(dst, uint32(v)) //nolint:gosec
	case 8:
		binary.LittleEndian.PutUint64(dst, v)
	default:
		b.fail("unsupported integer size %d", size)
	}
}

// PutBytes copies data to addr.
func (b *Builder) PutBytes(addr uint64, data []byte) {
	if dst := b.slice(addr, len(data)); dst != nil {
		copy(dst, data)
	}
}

// Symbol declares a variable.
func (b *Builder) Symbol(name, typeName string, addr uint64) {
	b.symbols = append(b.symbols, Symbol{Name: name, Type: typeName, Addr: addr})
}

// Image validates and returns the assembled image.
func (b *Builder) Image() (*Image, error) {
	if b.err != nil {
		return nil, b.err
	}
	img := &Image{
		Schema:  Schema,
		Types:   append([]TypeDef(nil), b.types...),
		Symbols: append([]Symbol(nil), b.symbols...),
	}
	if len(b.arena) != 0 {
		img.Segments = []Segment{{Base: b.base, Data: append([]byte(nil), b.arena...)}}
	}
	if _, err := Open(img); err != nil {
		return nil, err
	}
	return img, nil
}
