package metapath

import (
	"bytes"
	"cmp"
	"strings"
	"time"
)

type CompareOp int8

const (
	OpEqual CompareOp = iota
	OpNotEqual
	OpLess
	OpLessOrEqual
	OpGreater
	OpGreaterOrEqual
)

func (o CompareOp) String() string {
	switch o {
	case OpEqual:
		return "="
	case OpNotEqual:
		return "!="
	case OpLess:
		return "<"
	case OpLessOrEqual:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterOrEqual:
		return ">="
	default:
		return "<cmp>"
	}
}

// Keyword gives the operator used by value comparisons.
func (o CompareOp) Keyword() string {
	switch o {
	case OpEqual:
		return "eq"
	case OpNotEqual:
		return "ne"
	case OpLess:
		return "lt"
	case OpLessOrEqual:
		return "le"
	case OpGreater:
		return "gt"
	case OpGreaterOrEqual:
		return "ge"
	default:
		return "<cmp>"
	}
}

func (o CompareOp) ordering() bool {
	return o != OpEqual && o != OpNotEqual
}

func (o CompareOp) test(c int) bool {
	switch o {
	case OpEqual:
		return c == 0
	case OpNotEqual:
		return c != 0
	case OpLess:
		return c < 0
	case OpLessOrEqual:
		return c <= 0
	case OpGreater:
		return c > 0
	case OpGreaterOrEqual:
		return c >= 0
	default:
		return false
	}
}

type valueCompare struct {
	op    CompareOp
	left  Expr
	right Expr
}

// ValueCompare compares two single values. The result is empty when one of
// the operands is empty.
func ValueCompare(op CompareOp, left, right Expr) Expr {
	return valueCompare{
		op:    op,
		left:  left,
		right: right,
	}
}

func (e valueCompare) Children() []Expr {
	return []Expr{e.left, e.right}
}

func (_ valueCompare) BaseType() *ItemType {
	return TypeBoolean
}

func (_ valueCompare) StaticType() *ItemType {
	return TypeBoolean
}

func (e valueCompare) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	left, err := atomicOperand(ctx, e.left, focus)
	if err != nil || left == nil {
		return EmptySequence(), err
	}
	right, err := atomicOperand(ctx, e.right, focus)
	if err != nil || right == nil {
		return EmptySequence(), err
	}
	ok, err := CompareValues(ctx, e.op, untypedAsString(left), untypedAsString(right))
	if err != nil {
		return EmptySequence(), err
	}
	return Singleton(NewBoolean(ok)), nil
}

func untypedAsString(item Atomic) Atomic {
	if u, ok := item.(untypedItem); ok {
		return NewString(string(u))
	}
	return item
}

type generalCompare struct {
	op    CompareOp
	left  Expr
	right Expr
}

// GeneralCompare is true when at least one pair of values taken from the two
// operands satisfies op.
func GeneralCompare(op CompareOp, left, right Expr) Expr {
	return generalCompare{
		op:    op,
		left:  left,
		right: right,
	}
}

func (e generalCompare) Children() []Expr {
	return []Expr{e.left, e.right}
}

func (_ generalCompare) BaseType() *ItemType {
	return TypeBoolean
}

func (_ generalCompare) StaticType() *ItemType {
	return TypeBoolean
}

func (e generalCompare) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	left, err := atomizedOperand(ctx, e.left, focus)
	if err != nil {
		return EmptySequence(), err
	}
	right, err := atomizedOperand(ctx, e.right, focus)
	if err != nil {
		return EmptySequence(), err
	}
	for _, x := range left {
		for _, y := range right {
			a, b, err := generalOperands(x.(Atomic), y.(Atomic))
			if err != nil {
				return EmptySequence(), err
			}
			ok, err := CompareValues(ctx, e.op, a, b)
			if err != nil {
				return EmptySequence(), err
			}
			if ok {
				return Singleton(True), nil
			}
		}
	}
	return Singleton(False), nil
}

func atomizedOperand(ctx *DynamicContext, expr Expr, focus Sequence) ([]Item, error) {
	res, err := expr.Evaluate(ctx, focus)
	if err != nil {
		return nil, err
	}
	if res, err = res.Atomize(); err != nil {
		return nil, err
	}
	return res.Items(), nil
}

// generalOperands casts an untyped value toward the type of the other value.
func generalOperands(left, right Atomic) (Atomic, Atomic, error) {
	var err error
	_, ux := left.(untypedItem)
	_, uy := right.(untypedItem)
	switch {
	case ux && uy:
		return NewString(left.String()), NewString(right.String()), nil
	case ux:
		left, err = castToward(left, right)
	case uy:
		right, err = castToward(right, left)
	}
	return left, right, err
}

func castToward(item, other Atomic) (Atomic, error) {
	switch other.(type) {
	case numericItem:
		return toNumeric(item)
	case stringItem, uriItem:
		return NewString(item.String()), nil
	default:
		return CastAs(item, other.Type())
	}
}

// CompareValues applies op to two atomic values.
func CompareValues(ctx *DynamicContext, op CompareOp, left, right Atomic) (bool, error) {
	var zone *time.Location
	if ctx != nil {
		zone = ctx.Timezone()
	}
	if isStringLike(left) && isStringLike(right) {
		return op.test(strings.Compare(left.String(), right.String())), nil
	}
	switch x := left.(type) {
	case numericItem:
		if y, ok := right.(numericItem); ok {
			return op.test(compareNumeric(x, y)), nil
		}
	case booleanItem:
		if y, ok := right.(booleanItem); ok {
			return op.test(compareBool(bool(x), bool(y))), nil
		}
	case dateItem, dateTimeItem:
		switch right.(type) {
		case dateItem, dateTimeItem:
			a := x.(temporal).instant(zone)
			b := right.(temporal).instant(zone)
			return op.test(a.Compare(b)), nil
		}
	case timeItem:
		if y, ok := right.(timeItem); ok {
			return op.test(x.instant(zone).Compare(y.instant(zone))), nil
		}
	case dayTimeItem:
		switch y := right.(type) {
		case dayTimeItem:
			return op.test(cmp.Compare(x, y)), nil
		case yearMonthItem:
			return compareMixedDurations(op, x == 0 && y == 0)
		}
	case yearMonthItem:
		switch y := right.(type) {
		case yearMonthItem:
			return op.test(cmp.Compare(x, y)), nil
		case dayTimeItem:
			return compareMixedDurations(op, x == 0 && y == 0)
		}
	case base64Item, hexItem:
		switch right.(type) {
		case base64Item, hexItem:
			a, b := left.Value().([]byte), right.Value().([]byte)
			return op.test(bytes.Compare(a, b)), nil
		}
	}
	return false, typeError("invalid types for comparison: %s %s %s", left.Type(), op, right.Type())
}

func compareMixedDurations(op CompareOp, equal bool) (bool, error) {
	if op.ordering() {
		return false, typeError("durations of different kinds can not be ordered")
	}
	if op == OpEqual {
		return equal, nil
	}
	return !equal, nil
}

func isStringLike(item Atomic) bool {
	switch item.(type) {
	case stringItem, uriItem, untypedItem:
		return true
	default:
		return false
	}
}

func compareBool(left, right bool) int {
	switch {
	case left == right:
		return 0
	case !left:
		return -1
	default:
		return 1
	}
}

// sameKey is the equality used by maps and by the distinct-values and
// index-of functions.
func sameKey(left, right Atomic) bool {
	return left.key() == right.key()
}
