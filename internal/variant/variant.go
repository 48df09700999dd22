// Package variant maps a future_state discriminant to its storage kind and
// to the name of the concrete type held in the variant's raw storage.
package variant

import (
	"futprint/internal/fault"
	"futprint/internal/typesig"
)

// StorageKind is one alternative of the variant.
type StorageKind uint8

const (
	KindEmpty StorageKind = iota
	KindDirectStorage
	KindSharedStorage
	KindInlineState
	KindSharedState
)

// InvalidLabel is shown for any discriminant outside the table.
const InvalidLabel = "invalid type"

var kinds = [...]struct {
	label  string
	suffix string
}{
	KindEmpty:         {"empty", "empty_t"},
	KindDirectStorage: {"direct_storage", "operation_storage_t"},
	KindSharedStorage: {"shared_storage", "shared_storage_t"},
	KindInlineState:   {"inline_state", "operation_state_t"},
	KindSharedState:   {"shared_state", "shared_state_t"},
}

// String returns the storage kind label.
func (k StorageKind) String() string {
	if int(k) < len(kinds) {
		return kinds[k].label
	}
	return InvalidLabel
}

// Suffix returns the nested typedef naming the stored type.
func (k StorageKind) Suffix() string {
	if int(k) < len(kinds) {
		return kinds[k].suffix
	}
	return ""
}

// Kinds lists every storage kind in discriminant order.
func Kinds() []StorageKind {
	return []StorageKind{KindEmpty, KindDirectStorage, KindSharedStorage, KindInlineState, KindSharedState}
}

// KindOf maps d to its storage kind. Negative values, including the
// out-of-line encoding, are rejected like any other unknown value.
func KindOf(d int64) (StorageKind, error) {
	if d < 0 || d >= int64(len(kinds)) {
		return 0, fault.UnknownDiscriminant(d)
	}
	return StorageKind(d), nil
}

// Label returns the storage kind label for d, or InvalidLabel.
func Label(d int64) string {
	k, err := KindOf(d)
	if err != nil {
		return InvalidLabel
	}
	return k.String()
}

// Descriptor is a resolved discriminant.
type Descriptor struct {
	Discriminant     int64
	Kind             StorageKind
	StorageKindName  string
	ConcreteTypeName string
}

// Resolve validates variantTypeText and composes the concrete type name
// for d. The result is textual; the host resolves it to a type.
func Resolve(variantTypeText string, d int64) (Descriptor, error) {
	if _, err := typesig.Parse(variantTypeText); err != nil {
		return Descriptor{}, err
	}
	k, err := KindOf(d)
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{
		Discriminant:     d,
		Kind:             k,
		StorageKindName:  k.String(),
		ConcreteTypeName: variantTypeText + "::" + k.Suffix(),
	}, nil
}

// ResolveConcreteType returns only the concrete type name of Resolve.
func ResolveConcreteType(variantTypeText string, d int64) (string, error) {
	desc, err := Resolve(variantTypeText, d)
	if err != nil {
		return "", err
	}
	return desc.ConcreteTypeName, nil
}
