// Package reinterp views a variant's raw storage as a concrete type
// without copying the bytes.
package reinterp

import (
	"fmt"

	"futprint/internal/fault"
	"futprint/internal/host"
)

// View is a typed window over storage owned by the debuggee.
type View struct {
	TypeName string
	Address  host.Address
	Value    host.Value
}

// Reinterpret resolves concreteTypeName and casts storage's address to it.
// Misaligned storage and types larger than the storage region fail with a
// memory access error; the out-of-line encoding is never reinterpreted.
func Reinterpret(types host.TypeSystem, storage host.Value, concreteTypeName string) (View, error) {
	if types == nil || storage == nil {
		return View{}, fault.TypeNotFound(concreteTypeName)
	}
	typ, err := types.LookupType(concreteTypeName)
	if err != nil {
		return View{}, err
	}
	if typ == nil {
		return View{}, fault.TypeNotFound(concreteTypeName)
	}

	region := uint64(0)
	if st := storage.Type(); st != nil {
		region = st.Size()
	}
	addr, err := storage.Address()
	if err != nil {
		return View{}, fault.MemoryAccess(0, region, "storage has no address", err)
	}

	need := typ.Size()
	if align := typ.Align(); align > 1 && uint64(addr)%align != 0 {
		return View{}, fault.MemoryAccess(uint64(addr), need,
			fmt.Sprintf("storage misaligned for %s (align %d)", typ.Name(), align), nil)
	}
	if region != 0 && need > region {
		return View{}, fault.MemoryAccess(uint64(addr), need,
			fmt.Sprintf("%s does not fit in %d byte(s) of storage", typ.Name(), region), nil)
	}

	val, err := types.CastAndDereference(addr, typ)
	if err != nil {
		return View{}, err
	}
	return View{TypeName: typ.Name(), Address: addr, Value: val}, nil
}
