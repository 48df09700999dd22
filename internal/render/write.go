package render

import (
	"context"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

type styles struct {
	name    *color.Color
	summary *color.Color
	failed  *color.Color
	elided  *color.Color
}

func newStyles(enabled bool) styles {
	s := styles{
		name:    color.New(color.FgCyan),
		summary: color.New(color.FgWhite),
		failed:  color.New(color.FgRed, color.Bold),
		elided:  color.New(color.Faint),
	}
	for _, c := range []*color.Color{s.name, s.summary, s.failed, s.elided} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// Write prints n and its descendants. Sibling "=" signs line up by
// display width.
func (r *Renderer) Write(w io.Writer, n *Node) error {
	ew := &errWriter{w: w}
	r.write(ew, n, "", runewidth.StringWidth(n.Name))
	return ew.err
}

func (r *Renderer) write(w *errWriter, n *Node, indent string, nameWidth int) {
	w.str(indent)
	w.str(r.styles.name.Sprint(n.Name))
	w.str(strings.Repeat(" ", max(0, nameWidth-runewidth.StringWidth(n.Name))))
	w.str(" = ")
	switch {
	case n.Failed:
		w.str(r.styles.failed.Sprint(n.Summary))
	case n.Summary == Elided:
		w.str(r.styles.elided.Sprint(n.Summary))
	default:
		w.str(r.styles.summary.Sprint(n.Summary))
	}
	w.str("\n")

	width := 0
	for _, c := range n.Children {
		width = max(width, runewidth.StringWidth(c.Name))
	}
	for _, c := range n.Children {
		r.write(w, c, indent+"  ", width)
	}
}

// Render builds the tree for v and writes it.
func (r *Renderer) Render(ctx context.Context, w io.Writer, name string, v any) error {
	return r.Write(w, r.Tree(ctx, name, v))
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) str(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s)
}
