package metapath

import (
	"errors"
	"math/big"
	"net/url"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

func castError(value string, t *ItemType) error {
	return argumentError(CodeInvalidCast, "cannot cast %q to %s", value, t)
}

type castFunc func(Atomic) (Atomic, error)

var castTargets map[*ItemType]castFunc

func init() {
	castTargets = map[*ItemType]castFunc{
		TypeAnyAtomic:         castToAtomic,
		TypeString:            castToString,
		TypeUntyped:           castToUntyped,
		TypeURI:               castToURI,
		TypeBoolean:           castToBoolean,
		TypeNumeric:           castToNumeric,
		TypeDecimal:           castToDecimal,
		TypeInteger:           castToInteger,
		TypeDate:              castToDate,
		TypeDateTime:          castToDateTime,
		TypeTime:              castToTime,
		TypeDuration:          castToDuration,
		TypeDayTimeDuration:   castToDayTime,
		TypeYearMonthDuration: castToYearMonth,
		TypeBase64Binary:      castToBase64,
		TypeHexBinary:         castToHex,
	}
}

// CastAs converts item to the atomic type t.
func CastAs(item Atomic, t *ItemType) (Atomic, error) {
	if item.Type() == t {
		return item, nil
	}
	fn, ok := castTargets[t]
	if !ok {
		return nil, typeError("%s is not an atomic type", t)
	}
	return fn(item)
}

// Castable reports whether item can be converted to t.
func Castable(item Atomic, t *ItemType) bool {
	_, err := CastAs(item, t)
	return err == nil
}

func lexical(item Atomic) (string, bool) {
	switch i := item.(type) {
	case stringItem:
		return string(i), true
	case untypedItem:
		return string(i), true
	case uriItem:
		return string(i), true
	default:
		return "", false
	}
}

func castToAtomic(item Atomic) (Atomic, error) {
	return item, nil
}

func castToString(item Atomic) (Atomic, error) {
	return NewString(item.String()), nil
}

func castToUntyped(item Atomic) (Atomic, error) {
	return NewUntyped(item.String()), nil
}

func castToURI(item Atomic) (Atomic, error) {
	str, ok := lexical(item)
	if !ok {
		return nil, castError(item.String(), TypeURI)
	}
	str = strings.TrimSpace(str)
	if _, err := url.Parse(str); err != nil {
		return nil, castError(str, TypeURI)
	}
	return NewURI(str), nil
}

func castToBoolean(item Atomic) (Atomic, error) {
	if n, ok := item.(numericItem); ok {
		return NewBoolean(!n.zero()), nil
	}
	str, ok := lexical(item)
	if !ok {
		return nil, castError(item.String(), TypeBoolean)
	}
	switch strings.TrimSpace(str) {
	case "true", "1":
		return True, nil
	case "false", "0":
		return False, nil
	default:
		return nil, castError(str, TypeBoolean)
	}
}

func castToNumeric(item Atomic) (Atomic, error) {
	switch i := item.(type) {
	case numericItem:
		return i, nil
	case booleanItem:
		return castToInteger(i)
	}
	str, ok := lexical(item)
	if !ok {
		return nil, castError(item.String(), TypeNumeric)
	}
	n, err := parseNumber(str)
	if err != nil {
		return nil, castError(str, TypeNumeric)
	}
	return n, nil
}

func castToDecimal(item Atomic) (Atomic, error) {
	switch i := item.(type) {
	case decimalItem:
		return i, nil
	case integerItem:
		return decimalResult(i.decimal()), nil
	case booleanItem:
		if i {
			return decimalResult(apd.New(1, 0)), nil
		}
		return decimalResult(apd.New(0, 0)), nil
	}
	str, ok := lexical(item)
	if !ok {
		return nil, castError(item.String(), TypeDecimal)
	}
	return ParseDecimal(str)
}

func castToInteger(item Atomic) (Atomic, error) {
	switch i := item.(type) {
	case integerItem:
		return i, nil
	case decimalItem:
		n, err := integerOf(i.value)
		if err != nil {
			return nil, err
		}
		return integerItem{value: n}, nil
	case booleanItem:
		if i {
			return integerItem{value: big.NewInt(1)}, nil
		}
		return integerItem{value: big.NewInt(0)}, nil
	}
	str, ok := lexical(item)
	if !ok {
		return nil, castError(item.String(), TypeInteger)
	}
	return ParseInteger(str)
}

func castToDate(item Atomic) (Atomic, error) {
	switch i := item.(type) {
	case dateItem:
		return i, nil
	case dateTimeItem:
		return NewDate(i.value, i.tz), nil
	}
	str, ok := lexical(item)
	if !ok {
		return nil, castError(item.String(), TypeDate)
	}
	return ParseDate(str)
}

func castToDateTime(item Atomic) (Atomic, error) {
	switch i := item.(type) {
	case dateTimeItem:
		return i, nil
	case dateItem:
		return dateTimeItem(i), nil
	}
	str, ok := lexical(item)
	if !ok {
		return nil, castError(item.String(), TypeDateTime)
	}
	return ParseDateTime(str)
}

func castToTime(item Atomic) (Atomic, error) {
	switch i := item.(type) {
	case timeItem:
		return i, nil
	case dateTimeItem:
		return NewTime(i.value, i.tz), nil
	}
	str, ok := lexical(item)
	if !ok {
		return nil, castError(item.String(), TypeTime)
	}
	return ParseTime(str)
}

func castToDuration(item Atomic) (Atomic, error) {
	switch i := item.(type) {
	case dayTimeItem:
		return i, nil
	case yearMonthItem:
		return i, nil
	}
	str, ok := lexical(item)
	if !ok {
		return nil, castError(item.String(), TypeDuration)
	}
	if d, err := ParseYearMonthDuration(str); err == nil {
		return d, nil
	}
	return ParseDayTimeDuration(str)
}

func castToDayTime(item Atomic) (Atomic, error) {
	switch i := item.(type) {
	case dayTimeItem:
		return i, nil
	case yearMonthItem:
		return dayTimeItem(0), nil
	}
	str, ok := lexical(item)
	if !ok {
		return nil, castError(item.String(), TypeDayTimeDuration)
	}
	return ParseDayTimeDuration(str)
}

func castToYearMonth(item Atomic) (Atomic, error) {
	switch i := item.(type) {
	case yearMonthItem:
		return i, nil
	case dayTimeItem:
		return yearMonthItem(0), nil
	}
	str, ok := lexical(item)
	if !ok {
		return nil, castError(item.String(), TypeYearMonthDuration)
	}
	return ParseYearMonthDuration(str)
}

func castToBase64(item Atomic) (Atomic, error) {
	switch i := item.(type) {
	case base64Item:
		return i, nil
	case hexItem:
		return base64Item(i), nil
	}
	str, ok := lexical(item)
	if !ok {
		return nil, castError(item.String(), TypeBase64Binary)
	}
	return ParseBase64Binary(str)
}

func castToHex(item Atomic) (Atomic, error) {
	switch i := item.(type) {
	case hexItem:
		return i, nil
	case base64Item:
		return hexItem(i), nil
	}
	str, ok := lexical(item)
	if !ok {
		return nil, castError(item.String(), TypeHexBinary)
	}
	return ParseHexBinary(str)
}

type cast struct {
	expr       Expr
	target     *ItemType
	allowEmpty bool
}

// Cast converts the atomized value of expr to target. An empty operand is
// accepted only when allowEmpty is set.
func Cast(expr Expr, target *ItemType, allowEmpty bool) Expr {
	return cast{
		expr:       expr,
		target:     target,
		allowEmpty: allowEmpty,
	}
}

func (e cast) Children() []Expr {
	return []Expr{e.expr}
}

func (e cast) BaseType() *ItemType {
	return e.target
}

func (e cast) StaticType() *ItemType {
	return e.target
}

func (e cast) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	item, err := atomicOperand(ctx, e.expr, focus)
	if err != nil {
		return EmptySequence(), err
	}
	if item == nil {
		if e.allowEmpty {
			return EmptySequence(), nil
		}
		return EmptySequence(), typeError("cast to %s: empty sequence is not allowed", e.target)
	}
	res, err := CastAs(item, e.target)
	if err != nil {
		return EmptySequence(), err
	}
	return Singleton(res), nil
}

type castable struct {
	expr       Expr
	target     *ItemType
	allowEmpty bool
}

func CastableAs(expr Expr, target *ItemType, allowEmpty bool) Expr {
	return castable{
		expr:       expr,
		target:     target,
		allowEmpty: allowEmpty,
	}
}

func (e castable) Children() []Expr {
	return []Expr{e.expr}
}

func (_ castable) BaseType() *ItemType {
	return TypeBoolean
}

func (_ castable) StaticType() *ItemType {
	return TypeBoolean
}

func (e castable) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	item, err := atomicOperand(ctx, e.expr, focus)
	if err != nil {
		if errors.Is(err, ErrType) {
			return Singleton(False), nil
		}
		return EmptySequence(), err
	}
	if item == nil {
		return Singleton(NewBoolean(e.allowEmpty)), nil
	}
	return Singleton(NewBoolean(Castable(item, e.target))), nil
}

type instanceOf struct {
	expr   Expr
	target SequenceType
}

func InstanceOf(expr Expr, target SequenceType) Expr {
	return instanceOf{
		expr:   expr,
		target: target,
	}
}

func (e instanceOf) Children() []Expr {
	return []Expr{e.expr}
}

func (_ instanceOf) BaseType() *ItemType {
	return TypeBoolean
}

func (_ instanceOf) StaticType() *ItemType {
	return TypeBoolean
}

func (e instanceOf) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	res, err := e.expr.Evaluate(ctx, focus)
	if err != nil {
		return EmptySequence(), err
	}
	return Singleton(NewBoolean(e.target.Matches(res.Materialize()))), nil
}

type treat struct {
	expr   Expr
	target SequenceType
}

// Treat returns the result of expr unchanged when it matches target and fails
// otherwise.
func Treat(expr Expr, target SequenceType) Expr {
	return treat{
		expr:   expr,
		target: target,
	}
}

func (e treat) Children() []Expr {
	return []Expr{e.expr}
}

func (e treat) BaseType() *ItemType {
	if e.target.Type == nil {
		return TypeItem
	}
	return e.target.Type
}

func (e treat) StaticType() *ItemType {
	return e.BaseType()
}

func (e treat) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	res, err := e.expr.Evaluate(ctx, focus)
	if err != nil {
		return EmptySequence(), err
	}
	res = res.Materialize()
	if !e.target.Matches(res) {
		return EmptySequence(), dynamicError(CodeTreatMismatch, "result does not match %s", e.target)
	}
	return res, nil
}
