package host

// ResolveUnderlying strips one reference, cv-qualifiers and typedefs.
// It returns nil when the result has no tag.
func ResolveUnderlying(t Type) Type {
	if t == nil {
		return nil
	}
	if t.Code() == CodeReference {
		if target := t.Target(); target != nil {
			t = target
		}
	}
	if u := t.Unqualified(); u != nil {
		t = u
	}
	if s := t.StripTypedefs(); s != nil {
		t = s
	}
	if t.Tag() == "" {
		return nil
	}
	return t
}

// UnderlyingTypeName is the name printers dispatch on: the underlying
// tagged type's name, or the declared name when there is no tag.
func UnderlyingTypeName(v Value) string {
	if v == nil || v.Type() == nil {
		return ""
	}
	if t := ResolveUnderlying(v.Type()); t != nil {
		return t.Name()
	}
	return v.Type().Name()
}

// Concrete strips typedefs and qualifiers without following references.
func Concrete(t Type) Type {
	if t == nil {
		return nil
	}
	if u := t.Unqualified(); u != nil {
		t = u
	}
	if s := t.StripTypedefs(); s != nil {
		t = s
	}
	return t
}
