package target

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"futprint/internal/fault"
	"futprint/internal/host"
	"futprint/internal/typesig"
)

// PointerSize is the size and alignment of derived pointers and references.
const PointerSize = 8

// Type is a host.Type backed by a TypeTable.
type Type struct {
	table  *TypeTable
	name   string
	code   host.TypeCode
	size   uint64
	align  uint64
	signed bool
	count  uint64
	target *Type
	base   *Type
	fields []host.Field
}

var _ host.Type = (*Type)(nil)

func (t *Type) Name() string        { return t.name }
func (t *Type) Code() host.TypeCode { return t.code }
func (t *Type) Size() uint64        { return t.size }
func (t *Type) Align() uint64       { return t.align }

// Signed reports whether integer reads sign-extend.
func (t *Type) Signed() bool { return t.signed }

// Count is the element count of an array.
func (t *Type) Count() uint64 { return t.count }

func (t *Type) Tag() string {
	if t.base != nil {
		return ""
	}
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
	return t.stripped()
}

func (t *Type) stripped() *Type {
	cur := t
	for i := 0; cur.code == host.CodeTypedef && cur.target != nil; i++ {
		if i > len(t.table.byName) {
			break
		}
		cur = cur.target
	}
	return cur
}

// concrete drops cv-qualifiers and typedefs.
func (t *Type) concrete() *Type {
	cur := t
	for i := 0; i <= len(t.table.byName); i++ {
		switch {
		case cur.base != nil:
			cur = cur.base
		case cur.code == host.CodeTypedef && cur.target != nil:
			cur = cur.target
		default:
			return cur
		}
	}
	return cur
}

func (t *Type) Fields() []host.Field {
	return t.concrete().fields
}

func (t *Type) field(name string) (host.Field, bool) {
	for _, f := range t.fields {
		if f.Name == name {
			return f, true
		}
	}
	return host.Field{}, false
}

func (t *Type) Pointer() host.Type {
	return t.table.derive(t, host.CodePointer, " *")
}

func (t *Type) Reference() host.Type {
	return t.table.derive(t, host.CodeReference, " &")
}

// TypeTable resolves type names for one image.
type TypeTable struct {
	byName map[string]*Type

	mu      sync.Mutex
	derived map[string]*Type
}

// NewTypeTable validates defs and links them. Names must be unique, every
// referenced type must be defined and alignments must be non-zero.
func NewTypeTable(defs []TypeDef) (*TypeTable, error) {
	tt := &TypeTable{
		byName:  make(map[string]*Type, len(defs)),
		derived: make(map[string]*Type),
	}
	for _, def := range defs {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			return nil, fmt.Errorf("target: type with empty name")
		}
		if _, dup := tt.byName[name]; dup {
			return nil, fmt.Errorf("target: duplicate type %q", name)
		}
		if def.Base == "" && def.Code != host.CodeTypedef && def.Align == 0 {
			return nil, fmt.Errorf("target: type %q: zero alignment", name)
		}
		tt.byName[name] = &Type{
			table:  tt,
			name:   name,
			code:   def.Code,
			size:   def.Size,
			align:  def.Align,
			signed: def.Signed,
			count:  def.Count,
		}
	}
	for _, def := range defs {
		if err := tt.link(def); err != nil {
			return nil, err
		}
	}
	for _, def := range defs {
		if err := tt.inherit(tt.byName[strings.TrimSpace(def.Name)], 0); err != nil {
			return nil, err
		}
	}
	return tt, nil
}

func (tt *TypeTable) ref(owner, name string) (*Type, error) {
	t, ok := tt.byName[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("target: type %q refers to unknown type %q", owner, name)
	}
	return t, nil
}

func (tt *TypeTable) link(def TypeDef) error {
	t := tt.byName[strings.TrimSpace(def.Name)]
	var err error
	if def.Base != "" {
		if t.base, err = tt.ref(t.name, def.Base); err != nil {
			return err
		}
	}
	switch def.Code {
	case host.CodePointer, host.CodeReference, host.CodeTypedef, host.CodeArray:
		if def.Base != "" {
			break
		}
		if def.Target == "" {
			return fmt.Errorf("target: %s type %q has no target", def.Code, t.name)
		}
		if t.target, err = tt.ref(t.name, def.Target); err != nil {
			return err
		}
	}
	for _, f := range def.Fields {
		ft, err := tt.ref(t.name, f.Type)
		if err != nil {
			return err
		}
		if def.Size != 0 && f.Offset+ft.size > def.Size && ft.base == nil {
			return fmt.Errorf("target: field %s.%s overflows the type", t.name, f.Name)
		}
		t.fields = append(t.fields, host.Field{Name: f.Name, Type: ft, Offset: f.Offset})
	}
	return nil
}

// inherit fills cv-qualified entries from their base and unsized
// typedefs from their target.
func (tt *TypeTable) inherit(t *Type, depth int) error {
	if depth > len(tt.byName) {
		return fmt.Errorf("target: type cycle at %q", t.name)
	}
	if t.base == nil {
		if t.code == host.CodeTypedef && t.align == 0 {
			if err := tt.inherit(t.target, depth+1); err != nil {
				return err
			}
			t.size, t.align = t.target.size, t.target.align
		}
		return nil
	}
	if err := tt.inherit(t.base, depth+1); err != nil {
		return err
	}
	b := t.base
	t.code, t.size, t.align, t.signed, t.count = b.code, b.size, b.align, b.signed, b.count
	t.target, t.fields = b.target, b.fields
	return nil
}

func (tt *TypeTable) derive(of *Type, code host.TypeCode, suffix string) *Type {
	name := of.name + suffix
	if t, ok := tt.byName[name]; ok {
		return t
	}
	tt.mu.Lock()
	defer tt.mu.Unlock()
	if t, ok := tt.derived[name]; ok {
		return t
	}
	t := &Type{table: tt, name: name, code: code, size: PointerSize, align: PointerSize, target: of}
	tt.derived[name] = t
	return t
}

// LookupType resolves name. Names with qualifiers that are not defined
// verbatim are derived from their base type.
func (tt *TypeTable) LookupType(name string) (host.Type, error) {
	name = strings.TrimSpace(name)
	if t, ok := tt.byName[name]; ok {
		return t, nil
	}
	base, quals := typesig.StripQualifiers(name)
	if base == name {
		return nil, fault.TypeNotFound(name)
	}
	bt, ok := tt.byName[base]
	if !ok {
		return nil, fault.TypeNotFound(name)
	}
	return typesig.ApplyQualifiers[host.Type](bt, quals), nil
}

// Names returns every defined type name, sorted.
func (tt *TypeTable) Names() []string {
	names := make([]string, 0, len(tt.byName))
	for name := range tt.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// own maps t onto this table.
func (tt *TypeTable) own(t host.Type) (*Type, error) {
	if t == nil {
		return nil, fault.TypeNotFound("<nil>")
	}
	if mine, ok := t.(*Type); ok && mine.table == tt {
		return mine, nil
	}
	found, err := tt.LookupType(t.Name())
	if err != nil {
		return nil, err
	}
	return found.(*Type), nil
}
