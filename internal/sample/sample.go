// Package sample builds a debuggee image holding one future_state per
// storage kind, laid out the way the futures library lays them out.
package sample

import (
	"futprint/internal/host"
	"futprint/internal/target"
)

// Type names used by the image.
const (
	OpState     = "futures::detail::operation_state<int,futures::detail::future_options<>>"
	OuterType   = "futures::detail::future_state<int," + OpState + ">"
	TypeIDType  = OuterType + "::type_id"
	StorageType = "futures::detail::operation_state_storage<int>"
	AlignedType = "futures::detail::aligned_storage<16,8>"
	EmptyValue  = "futures::detail::empty_value_type"
	MaybeInt    = "futures::detail::maybe_empty<int,0,false>"
	Executor    = "futures::detail::inline_executor"
	MaybeExec   = "futures::detail::maybe_empty<" + Executor + ",0,true>"
	SharedStore = "std::shared_ptr<" + StorageType + ">"
	SharedState = "std::shared_ptr<" + OpState + ">"
	Alias       = "my_future_t"
)

// Base is where the sample arena is mapped.
const Base = 0x7f0000001000

// Symbols lists the variables in declaration order.
var Symbols = []string{
	"f_empty", "f_direct", "f_shared", "f_inline", "f_shared_state",
	"f_invalid", "f_alias", "f_ref",
}

func types() []target.TypeDef {
	scalar := func(name string, code host.TypeCode, size uint64, signed bool) target.TypeDef {
		return target.TypeDef{Name: name, Code: code, Size: size, Align: size, Signed: signed}
	}
	typedef := func(name, to string) target.TypeDef {
		return target.TypeDef{Name: name, Code: host.CodeTypedef, Target: to}
	}
	pointer := func(to string) target.TypeDef {
		return target.TypeDef{Name: to + " *", Code: host.CodePointer, Size: 8, Align: 8, Target: to}
	}
	return []target.TypeDef{
		scalar("int", host.CodeInt, 4, true),
		scalar("long", host.CodeInt, 8, true),
		scalar("bool", host.CodeBool, 1, false),
		scalar("unsigned char", host.CodeInt, 1, false),
		scalar(TypeIDType, host.CodeEnum, 1, false),
		{Name: "unsigned char[16]", Code: host.CodeArray, Size: 16, Align: 1, Target: "unsigned char", Count: 16},
		{Name: AlignedType, Code: host.CodeStruct, Size: 16, Align: 8, Fields: []target.FieldDef{
			{Name: "data_", Type: "unsigned char[16]"},
		}},
		{Name: OuterType, Code: host.CodeStruct, Size: 24, Align: 8, Fields: []target.FieldDef{
			{Name: "data_", Type: AlignedType, Offset: 0},
			{Name: "type_id_", Type: TypeIDType, Offset: 16},
		}},
		{Name: EmptyValue, Code: host.CodeStruct, Size: 1, Align: 1},
		{Name: MaybeInt, Code: host.CodeStruct, Size: 4, Align: 4, Fields: []target.FieldDef{
			{Name: "value_", Type: "int"},
		}},
		{Name: StorageType, Code: host.CodeStruct, Size: 8, Align: 4, Fields: []target.FieldDef{
			{Name: "value_", Type: MaybeInt, Offset: 0},
			{Name: "has_value_", Type: "bool", Offset: 4},
		}},
		{Name: Executor, Code: host.CodeStruct, Size: 1, Align: 1},
		{Name: MaybeExec, Code: host.CodeStruct, Size: 1, Align: 1},
		{Name: OpState, Code: host.CodeStruct, Size: 12, Align: 4, Fields: []target.FieldDef{
			{Name: "storage_", Type: StorageType, Offset: 0},
			{Name: "ready_", Type: "bool", Offset: 8},
			{Name: "executor_", Type: MaybeExec, Offset: 9},
		}},
		pointer(StorageType),
		pointer(OpState),
		{Name: SharedStore, Code: host.CodeStruct, Size: 16, Align: 8, Fields: []target.FieldDef{
			{Name: "_M_ptr", Type: StorageType + " *", Offset: 0},
			{Name: "_M_use_count", Type: "long", Offset: 8},
		}},
		{Name: SharedState, Code: host.CodeStruct, Size: 16, Align: 8, Fields: []target.FieldDef{
			{Name: "_M_ptr", Type: OpState + " *", Offset: 0},
			{Name: "_M_use_count", Type: "long", Offset: 8},
		}},
		typedef(OuterType+"::empty_t", EmptyValue),
		typedef(OuterType+"::operation_storage_t", StorageType),
		typedef(OuterType+"::shared_storage_t", SharedStore),
		typedef(OuterType+"::operation_state_t", OpState),
		typedef(OuterType+"::shared_state_t", SharedState),
		typedef(Alias, OuterType),
	}
}

// FuturesImage returns the sample debuggee.
func FuturesImage() (*target.Image, error) {
	b := target.NewBuilder(Base)
	for _, def := range types() {
		b.Type(def)
	}

	// storage writes an operation_state_storage<int> holding v.
	storage := func(at uint64, v int32) {
		b.PutUint(at, 4, uint64(uint32(v))) //nolint:gosec
		b.PutUint(at+4, 1, 1)
	}
	future := func(name string, d uint8) uint64 {
		f := b.New(OuterType)
		b.PutUint(f+16, 1, uint64(d))
		b.Symbol(name, OuterType, f)
		return f
	}

	future("f_empty", 0)

	direct := future("f_direct", 1)
	storage(direct, 42)

	heapStorage := b.New(StorageType)
	storage(heapStorage, 7)
	shared := future("f_shared", 2)
	b.PutUint(shared, 8, heapStorage)
	b.PutUint(shared+8, 8, 2)

	inline := future("f_inline", 3)
	storage(inline, 3)
	b.PutUint(inline+8, 1, 1)

	heapState := b.New(OpState)
	storage(heapState, 4)
	b.PutUint(heapState+8, 1, 1)
	sharedState := future("f_shared_state", 4)
	b.PutUint(sharedState, 8, heapState)
	b.PutUint(sharedState+8, 8, 1)

	invalid := future("f_invalid", 7)
	b.PutBytes(invalid, []byte{0xde, 0xad, 0xbe, 0xef})

	b.Symbol("f_alias", Alias, inline)

	ref := b.New("const " + Alias + " &")
	b.PutUint(ref, 8, direct)
	b.Symbol("f_ref", "const "+Alias+" &", ref)

	return b.Image()
}
