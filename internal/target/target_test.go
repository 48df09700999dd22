package target

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"futprint/internal/fault"
	"futprint/internal/host"
)

func widgetImage(t *testing.T) *Image {
	t.Helper()
	b := NewBuilder(0x10000)
	b.Type(TypeDef{Name: "int", Code: host.CodeInt, Size: 4, Align: 4, Signed: true}).
		Type(TypeDef{Name: "unsigned char", Code: host.CodeInt, Size: 1, Align: 1}).
		Type(TypeDef{Name: "bool", Code: host.CodeBool, Size: 1, Align: 1}).
		Type(TypeDef{Name: "Widget", Code: host.CodeStruct, Size: 16, Align: 8, Fields: []FieldDef{
			{Name: "id", Type: "int", Offset: 0},
			{Name: "ready", Type: "bool", Offset: 4},
			{Name: "next", Type: "Widget *", Offset: 8},
		}}).
		Type(TypeDef{Name: "Widget *", Code: host.CodePointer, Size: 8, Align: 8, Target: "Widget"}).
		Type(TypeDef{Name: "widget_t", Code: host.CodeTypedef, Target: "Widget"}).
		Type(TypeDef{Name: "const widget_t", Base: "widget_t"}).
		Type(TypeDef{Name: "bytes4", Code: host.CodeArray, Size: 4, Align: 1, Target: "unsigned char", Count: 4})

	first := b.New("Widget")
	second := b.New("widget_t")
	b.PutUint(first, 4, uint64(0xfffffffe)) // -2
	b.PutUint(first+4, 1, 1)
	b.PutUint(first+8, 8, second)
	b.PutUint(second, 4, 7)
	ref := b.New("widget_t &")
	b.PutUint(ref, 8, second)
	raw := b.New("bytes4")
	b.PutBytes(raw, []byte{0xde, 0xad, 0xbe, 0xef})

	b.Symbol("first", "Widget", first)
	b.Symbol("second", "const widget_t &", ref)
	b.Symbol("raw", "bytes4", raw)
	img, err := b.Image()
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	return img
}

func openWidgets(t *testing.T) *Process {
	t.Helper()
	p, err := Open(widgetImage(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return p
}

func TestValueFieldsAndScalars(t *testing.T) {
	p := openWidgets(t)
	first, err := p.Variable("first")
	if err != nil {
		t.Fatalf("Variable: %v", err)
	}
	id, err := first.Field("id")
	if err != nil {
		t.Fatalf("Field(id): %v", err)
	}
	if n, err := id.Int(); err != nil || n != -2 {
		t.Fatalf("id.Int() = %d, %v", n, err)
	}
	ready, _ := first.Field("ready")
	if n, err := ready.Uint(); err != nil || n != 1 {
		t.Fatalf("ready = %d, %v", n, err)
	}
	next, _ := first.Field("next")
	target, err := next.Dereference()
	if err != nil {
		t.Fatalf("Dereference: %v", err)
	}
	nid, _ := target.Field("id")
	if n, _ := nid.Int(); n != 7 {
		t.Fatalf("next->id = %d", n)
	}
	if _, err := first.Field("missing"); !errors.Is(err, fault.ErrTypeResolution) {
		t.Fatalf("expected type resolution error, got %v", err)
	}
	if _, err := id.Field("x"); !errors.Is(err, fault.ErrTypeResolution) {
		t.Fatalf("field of scalar: %v", err)
	}
}

func TestQualifiedSymbolResolvesThroughTypedef(t *testing.T) {
	p := openWidgets(t)
	second, err := p.Variable("second")
	if err != nil {
		t.Fatalf("Variable: %v", err)
	}
	if second.Type().Code() != host.CodeReference {
		t.Fatalf("code = %s", second.Type().Code())
	}
	if got := host.UnderlyingTypeName(second); got != "Widget" {
		t.Fatalf("UnderlyingTypeName = %q", got)
	}
	target, err := second.Dereference()
	if err != nil {
		t.Fatalf("Dereference: %v", err)
	}
	id, err := target.Field("id")
	if err != nil {
		t.Fatalf("Field through const typedef: %v", err)
	}
	if n, _ := id.Int(); n != 7 {
		t.Fatalf("id = %d", n)
	}
}

func TestLookupTypeDerivesQualifiers(t *testing.T) {
	p := openWidgets(t)
	ptr, err := p.LookupType("Widget * &")
	if err != nil {
		t.Fatalf("LookupType: %v", err)
	}
	if ptr.Code() != host.CodeReference || ptr.Size() != PointerSize {
		t.Fatalf("unexpected derived type %s %s", ptr.Name(), ptr.Code())
	}
	if inner := ptr.Target(); inner.Code() != host.CodePointer || inner.Target().Name() != "Widget" {
		t.Fatalf("reference target = %s", inner.Name())
	}
	if again, _ := p.LookupType("Widget * &"); again != ptr {
		t.Fatal("derived types should be cached")
	}
	if got, _ := p.LookupType(" const int "); got.Name() != "int" {
		t.Fatalf("const int resolved to %q", got.Name())
	}
	if _, err := p.LookupType("Gadget *"); !errors.Is(err, fault.ErrTypeResolution) {
		t.Fatalf("expected type resolution error, got %v", err)
	}
}

func TestMemoryReads(t *testing.T) {
	mem, err := NewMemory([]Segment{{Base: 0x2000, Data: []byte{1, 2, 3, 4}}, {Base: 0x1000, Data: []byte{9}}})
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	buf := make([]byte, 8)
	n, err := mem.ReadMemory(0x2002, buf)
	if err != nil || n != 2 || buf[0] != 3 || buf[1] != 4 {
		t.Fatalf("partial read = %d %v %v", n, buf[:n], err)
	}
	if _, err := mem.ReadMemory(0x3000, buf); !errors.Is(err, fault.ErrMemoryAccess) {
		t.Fatalf("expected memory access error, got %v", err)
	}
	if mem.Mapped(0x2002, 4) || !mem.Mapped(0x1000, 1) {
		t.Fatal("Mapped reported wrong ranges")
	}
	segs := mem.Segments()
	segs[0].Data[0] = 0xff
	if n, _ := mem.ReadMemory(0x1000, buf[:1]); n != 1 || buf[0] != 9 {
		t.Fatal("Segments must return copies")
	}
	if _, err := NewMemory([]Segment{{Base: 0, Data: []byte{1, 2}}, {Base: 1, Data: []byte{3}}}); err == nil {
		t.Fatal("overlapping segments accepted")
	}
}

func TestCastAndDereferenceChecksMapping(t *testing.T) {
	p := openWidgets(t)
	widget, _ := p.LookupType("Widget")
	if _, err := p.CastAndDereference(0x90000, widget); !errors.Is(err, fault.ErrMemoryAccess) {
		t.Fatalf("expected memory access error, got %v", err)
	}
	raw, _ := p.Variable("raw")
	b, err := raw.Bytes()
	if err != nil || !bytes.Equal(b, []byte{0xde, 0xad, 0xbe, 0xef}) {
		t.Fatalf("Bytes() = %x, %v", b, err)
	}
	b[0] = 0
	again, _ := raw.Bytes()
	if again[0] != 0xde {
		t.Fatal("Bytes must return a copy")
	}
}

func TestTypeTableValidation(t *testing.T) {
	cases := []struct {
		name string
		defs []TypeDef
	}{
		{"duplicate", []TypeDef{{Name: "A", Code: host.CodeInt, Size: 1, Align: 1}, {Name: "A", Code: host.CodeInt, Size: 1, Align: 1}}},
		{"zero align", []TypeDef{{Name: "A", Code: host.CodeStruct, Size: 4}}},
		{"unknown target", []TypeDef{{Name: "A *", Code: host.CodePointer, Size: 8, Align: 8, Target: "A"}}},
		{"unknown field", []TypeDef{{Name: "A", Code: host.CodeStruct, Size: 4, Align: 4, Fields: []FieldDef{{Name: "x", Type: "B"}}}}},
		{"typedef cycle", []TypeDef{{Name: "A", Code: host.CodeTypedef, Target: "B"}, {Name: "B", Code: host.CodeTypedef, Target: "A"}}},
	}
	for _, tc := range cases {
		if _, err := NewTypeTable(tc.defs); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestImageRoundTrip(t *testing.T) {
	img := widgetImage(t)
	var buf bytes.Buffer
	if err := WriteImage(&buf, img); err != nil {
		t.Fatalf("WriteImage: %v", err)
	}
	got, err := ReadImage(&buf)
	if err != nil {
		t.Fatalf("ReadImage: %v", err)
	}
	if len(got.Types) != len(img.Types) || len(got.Symbols) != len(img.Symbols) || len(got.Segments) != 1 {
		t.Fatalf("round trip lost data: %+v", got)
	}
	if !bytes.Equal(got.Segments[0].Data, img.Segments[0].Data) || got.Segments[0].Base != img.Segments[0].Base {
		t.Fatal("segment contents changed")
	}
	for i := range img.Symbols {
		if got.Symbols[i] != img.Symbols[i] {
			t.Fatalf("symbol %d: %+v != %+v", i, got.Symbols[i], img.Symbols[i])
		}
	}
	if got.Types[3].Name != "Widget" || len(got.Types[3].Fields) != 3 {
		t.Fatalf("type lost fields: %+v", got.Types[3])
	}
}

func TestSaveLoadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "widgets.fpi")
	if err := SaveImage(path, widgetImage(t)); err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	img, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	p, err := Open(img)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if names := p.TypeNames(); len(names) != 8 || names[0] != "Widget" {
		t.Fatalf("TypeNames() = %v", names)
	}
}

func TestOpenRejectsSchemaAndSymbols(t *testing.T) {
	img := widgetImage(t)
	img.Schema = Schema + 1
	if _, err := Open(img); err == nil {
		t.Fatal("schema mismatch accepted")
	}
	img = widgetImage(t)
	img.Symbols = append(img.Symbols, Symbol{Name: "ghost", Type: "Gadget", Addr: 0x10000})
	if _, err := Open(img); !errors.Is(err, fault.ErrTypeResolution) {
		t.Fatalf("expected type resolution error, got %v", err)
	}
	p := openWidgets(t)
	if _, err := p.Variable("ghost"); !errors.Is(err, ErrNoSymbol) {
		t.Fatalf("expected ErrNoSymbol, got %v", err)
	}
}

func TestBuilderStickyError(t *testing.T) {
	b := NewBuilder(0x1000)
	b.PutUint(0x5000, 4, 1)
	b.Type(TypeDef{Name: "int", Code: host.CodeInt, Size: 4, Align: 4})
	if b.Err() == nil {
		t.Fatal("write outside arena not reported")
	}
	if _, err := b.Image(); err == nil {
		t.Fatal("Image must return the sticky error")
	}
	b = NewBuilder(0x1001)
	addr := b.Alloc(8, 8)
	if addr%8 != 0 || addr < 0x1001 {
		t.Fatalf("Alloc returned misaligned 0x%x", addr)
	}
}
