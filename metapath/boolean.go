package metapath

import (
	"strings"
)

// EffectiveBooleanValue coerces a sequence to a boolean:
//
//   - an empty sequence is false
//   - a sequence starting with a node is true
//   - a single boolean is its own value
//   - a single string, uri or untyped value is true when not blank
//   - a single numeric value is true when not zero
//
// Any other sequence is an invalid argument.
func EffectiveBooleanValue(seq Sequence) (bool, error) {
	first, ok := seq.First()
	if !ok {
		return false, nil
	}
	if _, ok := first.(NodeItem); ok {
		return true, nil
	}
	item, err := seq.One()
	if err != nil {
		return false, argumentError(CodeArgumentType, "effective boolean value is not defined for a sequence of more than one atomic value")
	}
	switch i := item.(type) {
	case booleanItem:
		return bool(i), nil
	case stringItem:
		return strings.TrimSpace(string(i)) != "", nil
	case uriItem:
		return strings.TrimSpace(string(i)) != "", nil
	case untypedItem:
		return strings.TrimSpace(string(i)) != "", nil
	case numericItem:
		return !i.zero(), nil
	default:
		return false, argumentError(CodeArgumentType, "effective boolean value is not defined for %s", item.Type())
	}
}
