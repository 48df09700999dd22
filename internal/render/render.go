// Package render walks values through a printer chain and writes them as
// an indented tree, one "name = summary" line per node.
package render

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"futprint/internal/host"
	"futprint/internal/printers"
	"futprint/internal/trace"
)

// Elided is the summary of a node beyond the depth limit.
const Elided = "{...}"

// previewBytes is how many array bytes the default formatter shows.
const previewBytes = 8

// Lookup finds a printer for a value; *registry.Chain implements it.
type Lookup interface {
	Lookup(host.Value) printers.Printer
}

// Options control rendering.
type Options struct {
	// MaxDepth limits nesting below the root; 0 means unlimited.
	MaxDepth int
	Color    bool
	// Raw skips the printer chain and uses default formatting only.
	Raw bool
}

// Node is one rendered line and its children.
type Node struct {
	Name     string
	Summary  string
	Children []*Node
	Failed   bool
}

// Renderer builds and writes trees.
type Renderer struct {
	chain  Lookup
	opts   Options
	styles styles
}

// New returns a renderer over chain. A nil chain renders raw.
func New(chain Lookup, opts Options) *Renderer {
	if chain == nil {
		opts.Raw = true
	}
	return &Renderer{chain: chain, opts: opts, styles: newStyles(opts.Color)}
}

// Tree renders v, which is a host.Value or a printer child value.
func (r *Renderer) Tree(ctx context.Context, name string, v any) *Node {
	return r.node(ctx, name, v, 0)
}

func (r *Renderer) node(ctx context.Context, name string, v any, depth int) *Node {
	switch x := v.(type) {
	case host.Value:
		return r.value(ctx, name, x, depth)
	case nil:
		return &Node{Name: name, Summary: "<nil>"}
	case int64:
		return &Node{Name: name, Summary: strconv.FormatInt(x, 10)}
	case bool:
		return &Node{Name: name, Summary: strconv.FormatBool(x)}
	case host.Address:
		return &Node{Name: name, Summary: x.String()}
	case string:
		return &Node{Name: name, Summary: strconv.Quote(x)}
	default:
		return &Node{Name: name, Summary: fmt.Sprint(x)}
	}
}

func (r *Renderer) value(ctx context.Context, name string, v host.Value, depth int) *Node {
	if r.opts.MaxDepth > 0 && depth > r.opts.MaxDepth {
		return &Node{Name: name, Summary: Elided}
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeValue, name, trace.CurrentSpan(ctx)).
		WithExtra("type", typeName(v))
	ctx = trace.WithSpan(ctx, span)

	var n *Node
	if p := r.lookup(v); p != nil {
		n = &Node{Name: name, Summary: p.String()}
		children := p.Children()
		for {
			child, ok := children.Next()
			if !ok {
				break
			}
			n.Children = append(n.Children, r.node(ctx, child.Name, child.Value, depth+1))
		}
	} else {
		n = r.fallback(ctx, name, v, depth)
	}
	span.End(n.Summary)
	return n
}

func (r *Renderer) lookup(v host.Value) printers.Printer {
	if r.opts.Raw {
		return nil
	}
	return r.chain.Lookup(v)
}

// fallback is the default formatting by type code.
func (r *Renderer) fallback(ctx context.Context, name string, v host.Value, depth int) *Node {
	t := host.Concrete(v.Type())
	if t == nil {
		return &Node{Name: name, Summary: "<no type>"}
	}
	switch t.Code() {
	case host.CodeStruct, host.CodeUnion:
		n := &Node{Name: name, Summary: v.Type().Name()}
		for _, f := range t.Fields() {
			fv, err := v.Field(f.Name)
			if err != nil {
				n.Children = append(n.Children, failed(ctx, f.Name, err))
				continue
			}
			n.Children = append(n.Children, r.value(ctx, f.Name, fv, depth+1))
		}
		return n
	case host.CodeInt, host.CodeEnum:
		i, err := v.Int()
		if err != nil {
			if u, uerr := v.Uint(); uerr == nil {
				return &Node{Name: name, Summary: strconv.FormatUint(u, 10)}
			}
			return failed(ctx, name, err)
		}
		return &Node{Name: name, Summary: strconv.FormatInt(i, 10)}
	case host.CodeBool:
		u, err := v.Uint()
		if err != nil {
			return failed(ctx, name, err)
		}
		return &Node{Name: name, Summary: strconv.FormatBool(u != 0)}
	case host.CodePointer:
		u, err := v.Uint()
		if err != nil {
			return failed(ctx, name, err)
		}
		return &Node{Name: name, Summary: host.Address(u).String()}
	case host.CodeReference:
		target, err := v.Dereference()
		if err != nil {
			return failed(ctx, name, err)
		}
		return r.value(ctx, name, target, depth)
	case host.CodeArray:
		b, err := v.Bytes()
		if err != nil {
			return failed(ctx, name, err)
		}
		return &Node{Name: name, Summary: byteSummary(b)}
	default:
		return &Node{Name: name, Summary: v.Type().Name()}
	}
}

func failed(ctx context.Context, name string, err error) *Node {
	trace.Point(trace.FromContext(ctx), trace.ScopeRead, name, err.Error())
	return &Node{Name: name, Summary: "<error: " + err.Error() + ">", Failed: true}
}

func byteSummary(b []byte) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%d bytes]", len(b))
	shown := b
	if len(shown) > previewBytes {
		shown = shown[:previewBytes]
	}
	for _, c := range shown {
		fmt.Fprintf(&sb, " %02x", c)
	}
	if len(b) > previewBytes {
		sb.WriteString(" …")
	}
	return sb.String()
}

func typeName(v host.Value) string {
	if t := v.Type(); t != nil {
		return t.Name()
	}
	return ""
}
