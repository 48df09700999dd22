package typesig

import (
	"strings"

	"futprint/internal/fault"
)

// Signature is the structured form of a type's text.
type Signature struct {
	BaseName    string
	Qualifiers  []Qualifier
	GenericArgs []string
}

// Parse splits typeText into base name, qualifiers and generic arguments.
// Only the outermost trailing <...> pack is split; a nested name such as
// "A<B>::type_id" keeps its pack inside BaseName.
func Parse(typeText string) (Signature, error) {
	if err := checkBalanced(typeText); err != nil {
		return Signature{}, err
	}
	base, quals := StripQualifiers(typeText)
	sig := Signature{BaseName: base, Qualifiers: quals}
	if !strings.HasSuffix(base, ">") {
		return sig, nil
	}
	open := matchingOpen(base)
	if open < 0 {
		return Signature{}, fault.Parse(typeText, len(typeText), "unmatched '>'")
	}
	args, err := SplitAll(base[open+1 : len(base)-1])
	if err != nil {
		return Signature{}, err
	}
	sig.BaseName = strings.TrimSpace(base[:open])
	sig.GenericArgs = args
	return sig, nil
}

// String renders the canonical text of the signature. Const and volatile
// are not rendered.
func (s Signature) String() string {
	base := s.BaseName
	if len(s.GenericArgs) != 0 {
		base += "<" + strings.Join(s.GenericArgs, ",") + ">"
	}
	return ApplyText(base, s.Qualifiers)
}

// TrailingName returns the text after the last "::" found outside any
// generic pack, or name itself when there is none.
func TrailingName(name string) string {
	depth := 0
	last := -1
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ':':
			if depth == 0 && i+1 < len(name) && name[i+1] == ':' {
				last = i
				i++
			}
		}
	}
	if last < 0 {
		return name
	}
	return name[last+2:]
}

// matchingOpen returns the index of the '<' matching the final '>' of s.
func matchingOpen(s string) int {
	depth := 0
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case '>':
			depth++
		case '<':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func checkBalanced(s string) error {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth < 0 {
				return fault.Parse(s, i, "unmatched '>'")
			}
		}
	}
	if depth != 0 {
		return fault.Parse(s, len(s), "unclosed '<'")
	}
	return nil
}
