package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"futprint/internal/host"
	"futprint/internal/host/hosttest"
	"futprint/internal/printers"
	"futprint/internal/registry"
	"futprint/internal/sample"
	"futprint/internal/target"
	"futprint/internal/trace"
)

var (
	intT  = hosttest.Scalar("int", host.CodeInt, 4)
	boolT = hosttest.Scalar("bool", host.CodeBool, 1)
	byteT = hosttest.Scalar("unsigned char", host.CodeInt, 1)
)

func widget() *hosttest.Value {
	tagT := hosttest.Array(byteT, 10)
	wt := hosttest.Struct("Widget", 16, 4,
		hosttest.Member("id", intT, 0),
		hosttest.Member("ok", boolT, 4),
		hosttest.Member("tag_bytes", tagT, 5),
	)
	return hosttest.NewValue(wt, 0x100).
		WithField("id", hosttest.NewValue(intT, 0x100).WithInt(5)).
		WithField("ok", hosttest.NewValue(boolT, 0x104).WithInt(1)).
		WithField("tag_bytes", hosttest.NewValue(tagT, 0x105).WithBytes([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}))
}

func TestWriteDefaultFormatting(t *testing.T) {
	var buf bytes.Buffer
	r := New(nil, Options{})
	if err := r.Render(context.Background(), &buf, "w", widget()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := strings.Join([]string{
		"w = Widget",
		"  id        = 5",
		"  ok        = true",
		"  tag_bytes = [10 bytes] 00 01 02 03 04 05 06 07 …",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Fatalf("output mismatch:\n%s\nwant:\n%s", got, want)
	}
}

func TestMaxDepthElides(t *testing.T) {
	inner := widget()
	outerT := hosttest.Struct("Holder", 16, 4, hosttest.Member("w", inner.Type().(*hosttest.Type), 0))
	holder := hosttest.NewValue(outerT, 0x100).WithField("w", inner)

	n := New(nil, Options{MaxDepth: 1}).Tree(context.Background(), "h", holder)
	if len(n.Children) != 1 || n.Children[0].Summary != "Widget" {
		t.Fatalf("unexpected first level %+v", n.Children)
	}
	for _, c := range n.Children[0].Children {
		if c.Summary != Elided || len(c.Children) != 0 {
			t.Fatalf("child %q not elided: %+v", c.Name, c)
		}
	}
}

func TestReadFailuresRenderInline(t *testing.T) {
	ring := trace.NewRingTracer(32, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)

	wt := hosttest.Struct("Widget2", 8, 4, hosttest.Member("id", intT, 0), hosttest.Member("gone", intT, 4))
	v := hosttest.NewValue(wt, 0x100).WithField("id", hosttest.NewValue(intT, 0x100).WithReadErr(errors.New("unmapped")))
	n := New(nil, Options{}).Tree(ctx, "v", v)
	if len(n.Children) != 2 {
		t.Fatalf("children = %+v", n.Children)
	}
	for _, c := range n.Children {
		if !c.Failed || !strings.HasPrefix(c.Summary, "<error: ") {
			t.Fatalf("child %q should have failed: %+v", c.Name, c)
		}
	}
	if reads := ring.Count(trace.ScopeRead); reads != 2 {
		t.Fatalf("expected 2 read trace points, got %d", reads)
	}
}

func TestChildValueKinds(t *testing.T) {
	r := New(nil, Options{})
	ctx := context.Background()
	cases := []struct {
		v    any
		want string
	}{
		{int64(-3), "-3"},
		{true, "true"},
		{host.Address(0x10), "0x0000000000000010"},
		{"abc", `"abc"`},
		{nil, "<nil>"},
	}
	for _, tc := range cases {
		if got := r.Tree(ctx, "x", tc.v).Summary; got != tc.want {
			t.Fatalf("Tree(%v).Summary = %q, want %q", tc.v, got, tc.want)
		}
	}
}

func sampleRenderer(t *testing.T, opts Options) (*Renderer, *target.Process) {
	t.Helper()
	img, err := sample.FuturesImage()
	if err != nil {
		t.Fatalf("FuturesImage: %v", err)
	}
	p, err := target.Open(img)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	chain := registry.NewChain()
	registry.Register(chain, registry.New(printers.Env{Types: p}))
	return New(chain, opts), p
}

// find follows child names from n.
func find(t *testing.T, n *Node, path ...string) *Node {
	t.Helper()
	for _, name := range path {
		var next *Node
		for _, c := range n.Children {
			if c.Name == name {
				next = c
				break
			}
		}
		if next == nil {
			t.Fatalf("%q has no child %q", n.Name, name)
		}
		n = next
	}
	return n
}

func TestRenderSampleImage(t *testing.T) {
	r, p := sampleRenderer(t, Options{})
	ctx := context.Background()
	trees := make(map[string]*Node)
	var buf bytes.Buffer
	for _, name := range sample.Symbols {
		v, err := p.Variable(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		trees[name] = r.Tree(ctx, name, v)
		if err := r.Write(&buf, trees[name]); err != nil {
			t.Fatalf("Write(%s): %v", name, err)
		}
	}

	inline := trees["f_inline"]
	if inline.Summary != sample.OuterType+"::operation_state_t" {
		t.Fatalf("f_inline = %q", inline.Summary)
	}
	if got := find(t, inline, "which").Summary; got != "3" {
		t.Fatalf("which = %q", got)
	}
	if got := find(t, inline, "operation_state_t", "storage_", "value_", "int").Summary; got != "3" {
		t.Fatalf("inline value = %q", got)
	}
	exec := find(t, inline, "operation_state_t", "executor_")
	if exec.Summary != "empty type: "+sample.Executor || find(t, exec, "empty").Summary != "true" {
		t.Fatalf("executor_ = %+v", exec)
	}
	if got := find(t, trees["f_shared"], "shared_storage_t", "_M_use_count").Summary; got != "2" {
		t.Fatalf("use count = %q", got)
	}
	if got := find(t, trees["f_ref"], "operation_storage_t", "value_", "int").Summary; got != "42" {
		t.Fatalf("f_ref value = %q", got)
	}
	if n := trees["f_invalid"]; n.Summary != "invalid type" || len(n.Children) != 0 {
		t.Fatalf("f_invalid = %+v", n)
	}

	out := buf.String()
	for _, want := range []string{
		"f_empty = " + sample.OuterType + "::empty_t\n",
		fmt.Sprintf("  %-17s = 3\n", "which"),
		"f_invalid = invalid type\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRawSkipsPrinters(t *testing.T) {
	r, p := sampleRenderer(t, Options{Raw: true})
	v, _ := p.Variable("f_inline")
	n := r.Tree(context.Background(), "f_inline", v)
	if n.Summary != sample.OuterType {
		t.Fatalf("raw summary = %q", n.Summary)
	}
	if len(n.Children) != 2 || n.Children[0].Name != "data_" || n.Children[1].Name != "type_id_" {
		t.Fatalf("raw children = %+v", n.Children)
	}
	if n.Children[1].Summary != "3" {
		t.Fatalf("raw type_id_ = %q", n.Children[1].Summary)
	}
}
