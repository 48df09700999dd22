package typesig

import "strings"

// Qualifier is a type modifier stripped from or applied to a base type.
type Qualifier uint8

const (
	Pointer Qualifier = iota + 1
	Reference
	Const
	Volatile
)

// String returns the qualifier token.
func (q Qualifier) String() string {
	switch q {
	case Pointer:
		return "*"
	case Reference:
		return "&"
	case Const:
		return "const"
	case Volatile:
		return "volatile"
	default:
		return "?"
	}
}

var trailing = []struct {
	tok  string
	qual Qualifier
	word bool
}{
	{"&", Reference, false},
	{"*", Pointer, false},
	{"const", Const, true},
	{"volatile", Volatile, true},
}

// StripQualifiers removes trailing &, *, const and volatile tokens
// right-to-left, then leading const and volatile left-to-right. The
// returned qualifiers are in reapplication order: replaying them onto
// base with ApplyQualifiers rebuilds an equivalent type.
func StripQualifiers(typeText string) (string, []Qualifier) {
	var seen []Qualifier
	s := typeText

	for {
		s = strings.TrimRightFunc(s, isSpace)
		q, n, ok := trailingQualifier(s)
		if !ok {
			break
		}
		s = s[:len(s)-n]
		seen = append(seen, q)
	}

	for {
		s = strings.TrimLeftFunc(s, isSpace)
		q, n, ok := leadingQualifier(s)
		if !ok {
			break
		}
		s = s[n:]
		seen = append(seen, q)
	}

	for i, j := 0, len(seen)-1; i < j; i, j = i+1, j-1 {
		seen[i], seen[j] = seen[j], seen[i]
	}
	return strings.TrimSpace(s), seen
}

func trailingQualifier(s string) (Qualifier, int, bool) {
	for _, t := range trailing {
		if !strings.HasSuffix(s, t.tok) {
			continue
		}
		rest := s[:len(s)-len(t.tok)]
		if t.word && rest != "" && isIdent(rest[len(rest)-1]) {
			continue
		}
		return t.qual, len(t.tok), true
	}
	return 0, 0, false
}

func leadingQualifier(s string) (Qualifier, int, bool) {
	for _, t := range trailing[2:] {
		if !strings.HasPrefix(s, t.tok) {
			continue
		}
		rest := s[len(t.tok):]
		if rest != "" && isIdent(rest[0]) {
			continue
		}
		return t.qual, len(t.tok), true
	}
	return 0, 0, false
}

// Qualifiable is any type handle that can derive pointer and reference types.
type Qualifiable[T any] interface {
	Pointer() T
	Reference() T
}

// ApplyQualifiers replays qualifiers onto base in order. Pointer wraps in
// a pointer and Reference in a reference; const, volatile and unknown
// qualifiers are ignored.
func ApplyQualifiers[T Qualifiable[T]](base T, qualifiers []Qualifier) T {
	t := base
	for _, q := range qualifiers {
		switch q {
		case Pointer:
			t = t.Pointer()
		case Reference:
			t = t.Reference()
		}
	}
	return t
}

// ApplyText is ApplyQualifiers over type text.
func ApplyText(base string, qualifiers []Qualifier) string {
	var sb strings.Builder
	sb.WriteString(base)
	for _, q := range qualifiers {
		switch q {
		case Pointer, Reference:
			sb.WriteByte(' ')
			sb.WriteString(q.String())
		}
	}
	return sb.String()
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isIdent(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
