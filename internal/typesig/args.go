// Package typesig parses textual type signatures.
//
// It splits generic parameter packs at bracket depth zero, separates a
// type's base name from its qualifiers and replays recorded qualifiers
// onto a host type.
package typesig

import (
	"strings"

	"futprint/internal/fault"
)

// Args is a lazy, finite, non-restartable sequence of generic arguments.
// Use it like bufio.Scanner:
//
//	args := SplitGenericArgs("A<B,C>, D")
//	for args.Next() {
//		_ = args.Text()
//	}
//	if err := args.Err(); err != nil { ... }
//
// Once Next has returned false the sequence stays exhausted.
type Args struct {
	text  string
	pos   int
	depth int
	cur   string
	err   error
	done  bool
}

// SplitGenericArgs returns a scanner over the comma-separated arguments
// of pack. Commas nested inside <...> do not split.
func SplitGenericArgs(pack string) *Args {
	a := &Args{text: pack}
	if strings.TrimSpace(pack) == "" {
		a.done = true
	}
	return a
}

// Next advances to the next argument.
func (a *Args) Next() bool {
	if a == nil || a.done {
		return false
	}
	for i := a.pos; i < len(a.text); i++ {
		switch a.text[i] {
		case '<':
			a.depth++
		case '>':
			a.depth--
			if a.depth < 0 {
				return a.fail(i, "unmatched '>'")
			}
		case ',':
			if a.depth == 0 {
				return a.emit(a.pos, i, i+1)
			}
		}
	}
	if a.depth != 0 {
		return a.fail(len(a.text), "unclosed '<'")
	}
	a.done = true
	return a.emit(a.pos, len(a.text), len(a.text))
}

func (a *Args) emit(start, end, next int) bool {
	arg := strings.TrimSpace(a.text[start:end])
	if arg == "" {
		return a.fail(start, "empty generic argument")
	}
	a.cur = arg
	a.pos = next
	return true
}

func (a *Args) fail(offset int, msg string) bool {
	a.err = fault.Parse(a.text, offset, msg)
	a.cur = ""
	a.done = true
	return false
}

// Text returns the current argument.
func (a *Args) Text() string {
	if a == nil {
		return ""
	}
	return a.cur
}

// Err returns the parse error that stopped the sequence, if any.
func (a *Args) Err() error {
	if a == nil {
		return nil
	}
	return a.err
}

// SplitAll drains SplitGenericArgs into a slice.
func SplitAll(pack string) ([]string, error) {
	args := SplitGenericArgs(pack)
	var out []string
	for args.Next() {
		out = append(out, args.Text())
	}
	if err := args.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
