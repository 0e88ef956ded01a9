package metapath

import (
	"strings"
)

// ItemType classifies items. Types form a tree rooted at item().
type ItemType struct {
	name   string
	parent *ItemType
}

func derive(name string, parent *ItemType) *ItemType {
	t := ItemType{
		name:   name,
		parent: parent,
	}
	types[name] = &t
	return &t
}

var types = make(map[string]*ItemType)

var (
	TypeItem = derive("item()", nil)

	TypeNode     = derive("node()", TypeItem)
	TypeDocument = derive("document-node()", TypeNode)
	TypeAssembly = derive("assembly()", TypeNode)
	TypeField    = derive("field()", TypeNode)
	TypeFlag     = derive("flag()", TypeNode)

	TypeFunction = derive("function(*)", TypeItem)
	TypeMap      = derive("map(*)", TypeFunction)
	TypeArray    = derive("array(*)", TypeFunction)

	TypeAnyAtomic         = derive("any-atomic-type", TypeItem)
	TypeUntyped           = derive("untyped-atomic", TypeAnyAtomic)
	TypeString            = derive("string", TypeAnyAtomic)
	TypeURI               = derive("uri", TypeAnyAtomic)
	TypeBoolean           = derive("boolean", TypeAnyAtomic)
	TypeNumeric           = derive("numeric", TypeAnyAtomic)
	TypeDecimal           = derive("decimal", TypeNumeric)
	TypeInteger           = derive("integer", TypeDecimal)
	TypeDate              = derive("date", TypeAnyAtomic)
	TypeDateTime          = derive("date-time", TypeAnyAtomic)
	TypeTime              = derive("time", TypeAnyAtomic)
	TypeDuration          = derive("duration", TypeAnyAtomic)
	TypeDayTimeDuration   = derive("day-time-duration", TypeDuration)
	TypeYearMonthDuration = derive("year-month-duration", TypeDuration)
	TypeBase64Binary      = derive("base64", TypeAnyAtomic)
	TypeHexBinary         = derive("hex-binary", TypeAnyAtomic)
)

// LookupType finds a type by its name, with or without the "meta:" prefix
// used in sequence type declarations.
func LookupType(name string) (*ItemType, error) {
	name = strings.TrimPrefix(name, "meta:")
	t, ok := types[name]
	if !ok {
		return nil, staticError(CodeUnknownType, "unknown type %q", name)
	}
	return t, nil
}

func (t *ItemType) Name() string {
	return t.name
}

func (t *ItemType) String() string {
	return t.name
}

func (t *ItemType) Parent() *ItemType {
	return t.parent
}

// Derives reports whether t is base or one of its subtypes.
func (t *ItemType) Derives(base *ItemType) bool {
	for curr := t; curr != nil; curr = curr.parent {
		if curr == base {
			return true
		}
	}
	return false
}

func (t *ItemType) Atomic() bool {
	return t.Derives(TypeAnyAtomic)
}

func (t *ItemType) Matches(item Item) bool {
	if item == nil {
		return false
	}
	return item.Type().Derives(t)
}

// CommonType returns the most specific type from which all the given types
// derive. Without types, item() is returned.
func CommonType(list ...*ItemType) *ItemType {
	if len(list) == 0 {
		return TypeItem
	}
	common := list[0]
	for _, t := range list[1:] {
		for !t.Derives(common) {
			common = common.parent
			if common == nil {
				return TypeItem
			}
		}
	}
	return common
}

// analyzeStaticType narrows base to the common type of the static types of the
// given expressions when that type derives from base.
func analyzeStaticType(base *ItemType, list []Expr) *ItemType {
	if len(list) == 0 {
		return base
	}
	all := make([]*ItemType, 0, len(list))
	for _, e := range list {
		all = append(all, e.StaticType())
	}
	if common := CommonType(all...); common.Derives(base) {
		return common
	}
	return base
}

type Occurrence int8

const (
	ZeroOrMore Occurrence = iota
	Zero
	One
	ZeroOrOne
	OneOrMore
)

func (o Occurrence) String() string {
	switch o {
	case ZeroOrOne:
		return "?"
	case ZeroOrMore:
		return "*"
	case OneOrMore:
		return "+"
	default:
		return ""
	}
}

// Check verifies that the number of items of seq is allowed by o.
func (o Occurrence) Check(seq Sequence) error {
	size := seq.Len()
	switch o {
	case Zero:
		if size != 0 {
			return argumentError(CodeArgumentType, "an empty sequence is expected, got %d items", size)
		}
	case One:
		if size != 1 {
			return argumentError(CodeExactlyOne, "a sequence of exactly one item is expected, got %d items", size)
		}
	case ZeroOrOne:
		if size > 1 {
			return argumentError(CodeZeroOrOne, "a sequence of zero or one item is expected, got %d items", size)
		}
	case OneOrMore:
		if size == 0 {
			return argumentError(CodeOneOrMore, "a sequence of one or more items is expected")
		}
	default:
	}
	return nil
}

type SequenceType struct {
	Type       *ItemType
	Occurrence Occurrence
}

func Exactly(t *ItemType) SequenceType {
	return SequenceType{Type: t, Occurrence: One}
}

func Optional(t *ItemType) SequenceType {
	return SequenceType{Type: t, Occurrence: ZeroOrOne}
}

func Many(t *ItemType) SequenceType {
	return SequenceType{Type: t, Occurrence: ZeroOrMore}
}

func AtLeastOne(t *ItemType) SequenceType {
	return SequenceType{Type: t, Occurrence: OneOrMore}
}

var EmptyType = SequenceType{Type: TypeItem, Occurrence: Zero}

func (s SequenceType) String() string {
	if s.Occurrence == Zero {
		return "empty-sequence()"
	}
	if s.Type == nil {
		return TypeItem.String() + s.Occurrence.String()
	}
	return s.Type.String() + s.Occurrence.String()
}

// Matches reports whether every item of seq has the expected type and seq
// has an allowed number of items.
func (s SequenceType) Matches(seq Sequence) bool {
	if s.Occurrence.Check(seq) != nil {
		return false
	}
	if s.Type == nil {
		return true
	}
	for item := range seq.All() {
		if !s.Type.Matches(item) {
			return false
		}
	}
	return true
}
