package metapath

import (
	"math"
	"math/big"
	"time"

	"github.com/cockroachdb/apd/v3"
)

type ArithmeticOp int8

const (
	OpAdd ArithmeticOp = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpIntegerDivide
	OpModulo
)

func (o ArithmeticOp) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "div"
	case OpIntegerDivide:
		return "idiv"
	case OpModulo:
		return "mod"
	default:
		return "<op>"
	}
}

type arithmetic struct {
	op    ArithmeticOp
	left  Expr
	right Expr
}

func Add(left, right Expr) Expr {
	return arithmetic{op: OpAdd, left: left, right: right}
}

func Subtract(left, right Expr) Expr {
	return arithmetic{op: OpSubtract, left: left, right: right}
}

func Multiply(left, right Expr) Expr {
	return arithmetic{op: OpMultiply, left: left, right: right}
}

func Divide(left, right Expr) Expr {
	return arithmetic{op: OpDivide, left: left, right: right}
}

func IntegerDivide(left, right Expr) Expr {
	return arithmetic{op: OpIntegerDivide, left: left, right: right}
}

func Modulo(left, right Expr) Expr {
	return arithmetic{op: OpModulo, left: left, right: right}
}

func (e arithmetic) Children() []Expr {
	return []Expr{e.left, e.right}
}

func (_ arithmetic) BaseType() *ItemType {
	return TypeAnyAtomic
}

func (e arithmetic) StaticType() *ItemType {
	return arithmeticType(e.op, e.left.StaticType(), e.right.StaticType())
}

func (e arithmetic) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	left, err := atomicOperand(ctx, e.left, focus)
	if err != nil || left == nil {
		return EmptySequence(), err
	}
	right, err := atomicOperand(ctx, e.right, focus)
	if err != nil || right == nil {
		return EmptySequence(), err
	}
	res, err := Compute(ctx, e.op, left, right)
	if err != nil {
		return EmptySequence(), err
	}
	return Singleton(res), nil
}

type negate struct {
	expr Expr
}

// Negate is the unary minus.
func Negate(expr Expr) Expr {
	return negate{expr: expr}
}

func (e negate) Children() []Expr {
	return []Expr{e.expr}
}

func (_ negate) BaseType() *ItemType {
	return TypeAnyAtomic
}

func (e negate) StaticType() *ItemType {
	if e.expr.StaticType().Derives(TypeUntyped) {
		return TypeDecimal
	}
	return analyzeStaticType(TypeAnyAtomic, e.Children())
}

func (e negate) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	item, err := atomicOperand(ctx, e.expr, focus)
	if err != nil || item == nil {
		return EmptySequence(), err
	}
	res, err := opNegate(item)
	if err != nil {
		return EmptySequence(), err
	}
	return Singleton(res), nil
}

func opNegate(item Atomic) (Atomic, error) {
	switch i := item.(type) {
	case untypedItem:
		n, err := toNumeric(i)
		if err != nil {
			return nil, err
		}
		return opNegate(n)
	case integerItem:
		return integerItem{value: new(big.Int).Neg(i.value)}, nil
	case decimalItem:
		return decimalItem{value: new(apd.Decimal).Neg(i.value)}, nil
	case dayTimeItem:
		if i == math.MinInt64 {
			return nil, durationOverflow()
		}
		return -i, nil
	case yearMonthItem:
		return -i, nil
	default:
		return nil, typeError("unary minus is not defined for %s", item.Type())
	}
}

type operandKind int8

const (
	kindOther operandKind = iota
	kindNumeric
	kindDate
	kindDateTime
	kindTime
	kindDayTime
	kindYearMonth
)

// kindOfType is the static counterpart of kindOf.
func kindOfType(t *ItemType) operandKind {
	switch {
	case t.Derives(TypeNumeric), t.Derives(TypeUntyped):
		return kindNumeric
	case t.Derives(TypeDate):
		return kindDate
	case t.Derives(TypeDateTime):
		return kindDateTime
	case t.Derives(TypeTime):
		return kindTime
	case t.Derives(TypeDayTimeDuration):
		return kindDayTime
	case t.Derives(TypeYearMonthDuration):
		return kindYearMonth
	default:
		return kindOther
	}
}

func kindOf(item Atomic) operandKind {
	switch item.(type) {
	case numericItem:
		return kindNumeric
	case dateItem:
		return kindDate
	case dateTimeItem:
		return kindDateTime
	case timeItem:
		return kindTime
	case dayTimeItem:
		return kindDayTime
	case yearMonthItem:
		return kindYearMonth
	default:
		return kindOther
	}
}

type opKey struct {
	op    ArithmeticOp
	left  operandKind
	right operandKind
}

type arithmeticFunc func(*DynamicContext, Atomic, Atomic) (Atomic, error)

type arithmeticRule struct {
	apply arithmeticFunc
	// nil for numeric operands: the result depends on the operand types.
	result *ItemType
}

var arithmeticOps map[opKey]arithmeticRule

func init() {
	arithmeticOps = map[opKey]arithmeticRule{
		{OpAdd, kindNumeric, kindNumeric}:           {apply: numericOp(OpAdd)},
		{OpSubtract, kindNumeric, kindNumeric}:      {apply: numericOp(OpSubtract)},
		{OpMultiply, kindNumeric, kindNumeric}:      {apply: numericOp(OpMultiply)},
		{OpDivide, kindNumeric, kindNumeric}:        {apply: numericOp(OpDivide)},
		{OpIntegerDivide, kindNumeric, kindNumeric}: {apply: numericOp(OpIntegerDivide)},
		{OpModulo, kindNumeric, kindNumeric}:        {apply: numericOp(OpModulo)},

		{OpAdd, kindDate, kindYearMonth}:          {opAddMonths, TypeDate},
		{OpAdd, kindYearMonth, kindDate}:          {swap(opAddMonths), TypeDate},
		{OpAdd, kindDateTime, kindYearMonth}:      {opAddMonths, TypeDateTime},
		{OpAdd, kindYearMonth, kindDateTime}:      {swap(opAddMonths), TypeDateTime},
		{OpSubtract, kindDate, kindYearMonth}:     {opSubtractMonths, TypeDate},
		{OpSubtract, kindDateTime, kindYearMonth}: {opSubtractMonths, TypeDateTime},

		{OpAdd, kindDate, kindDayTime}:          {opAddDayTime, TypeDate},
		{OpAdd, kindDayTime, kindDate}:          {swap(opAddDayTime), TypeDate},
		{OpAdd, kindDateTime, kindDayTime}:      {opAddDayTime, TypeDateTime},
		{OpAdd, kindDayTime, kindDateTime}:      {swap(opAddDayTime), TypeDateTime},
		{OpAdd, kindTime, kindDayTime}:          {opAddDayTime, TypeTime},
		{OpAdd, kindDayTime, kindTime}:          {swap(opAddDayTime), TypeTime},
		{OpSubtract, kindDate, kindDayTime}:     {opSubtractDayTime, TypeDate},
		{OpSubtract, kindDateTime, kindDayTime}: {opSubtractDayTime, TypeDateTime},
		{OpSubtract, kindTime, kindDayTime}:     {opSubtractDayTime, TypeTime},

		{OpSubtract, kindDate, kindDate}:         {opSubtractTemporal, TypeDayTimeDuration},
		{OpSubtract, kindDateTime, kindDateTime}: {opSubtractTemporal, TypeDayTimeDuration},
		{OpSubtract, kindTime, kindTime}:         {opSubtractTemporal, TypeDayTimeDuration},

		{OpAdd, kindDayTime, kindDayTime}:          {opAddDayTimeDurations, TypeDayTimeDuration},
		{OpSubtract, kindDayTime, kindDayTime}:     {opSubtractDayTimeDurations, TypeDayTimeDuration},
		{OpAdd, kindYearMonth, kindYearMonth}:      {opAddYearMonthDurations, TypeYearMonthDuration},
		{OpSubtract, kindYearMonth, kindYearMonth}: {opSubtractYearMonthDurations, TypeYearMonthDuration},

		{OpMultiply, kindDayTime, kindNumeric}:   {opScaleDuration(false), TypeDayTimeDuration},
		{OpMultiply, kindNumeric, kindDayTime}:   {swap(opScaleDuration(false)), TypeDayTimeDuration},
		{OpMultiply, kindYearMonth, kindNumeric}: {opScaleDuration(false), TypeYearMonthDuration},
		{OpMultiply, kindNumeric, kindYearMonth}: {swap(opScaleDuration(false)), TypeYearMonthDuration},
		{OpDivide, kindDayTime, kindNumeric}:     {opScaleDuration(true), TypeDayTimeDuration},
		{OpDivide, kindYearMonth, kindNumeric}:   {opScaleDuration(true), TypeYearMonthDuration},
		{OpDivide, kindDayTime, kindDayTime}:     {opDivideDurations, TypeDecimal},
		{OpDivide, kindYearMonth, kindYearMonth}: {opDivideDurations, TypeDecimal},
	}
}

// arithmeticType gives the type of the result of op applied to operands of
// the given static types, or any-atomic-type when it cannot be known.
func arithmeticType(op ArithmeticOp, left, right *ItemType) *ItemType {
	key := opKey{
		op:    op,
		left:  kindOfType(left),
		right: kindOfType(right),
	}
	rule, ok := arithmeticOps[key]
	if !ok {
		return TypeAnyAtomic
	}
	if rule.result != nil {
		return rule.result
	}
	switch {
	case op == OpIntegerDivide:
		return TypeInteger
	case op != OpDivide && left.Derives(TypeInteger) && right.Derives(TypeInteger):
		return TypeInteger
	default:
		return TypeDecimal
	}
}

// Compute applies op to two atomic values. Untyped values are taken as
// numbers.
func Compute(ctx *DynamicContext, op ArithmeticOp, left, right Atomic) (Atomic, error) {
	var err error
	if _, ok := left.(untypedItem); ok {
		if left, err = toNumeric(left); err != nil {
			return nil, err
		}
	}
	if _, ok := right.(untypedItem); ok {
		if right, err = toNumeric(right); err != nil {
			return nil, err
		}
	}
	key := opKey{
		op:    op,
		left:  kindOf(left),
		right: kindOf(right),
	}
	rule, ok := arithmeticOps[key]
	if !ok {
		return nil, typeError("operator %s is not defined for %s and %s", op, left.Type(), right.Type())
	}
	return rule.apply(ctx, left, right)
}

func swap(fn arithmeticFunc) arithmeticFunc {
	return func(ctx *DynamicContext, left, right Atomic) (Atomic, error) {
		return fn(ctx, right, left)
	}
}

func numericOp(op ArithmeticOp) arithmeticFunc {
	return func(_ *DynamicContext, left, right Atomic) (Atomic, error) {
		x, y := left.(numericItem), right.(numericItem)
		return computeNumeric(op, x, y)
	}
}

func computeNumeric(op ArithmeticOp, left, right numericItem) (Atomic, error) {
	if (op == OpDivide || op == OpIntegerDivide || op == OpModulo) && right.zero() {
		return nil, divisionByZero()
	}
	x, ok1 := left.(integerItem)
	y, ok2 := right.(integerItem)
	if ok1 && ok2 {
		switch op {
		case OpAdd:
			return integerItem{value: new(big.Int).Add(x.value, y.value)}, nil
		case OpSubtract:
			return integerItem{value: new(big.Int).Sub(x.value, y.value)}, nil
		case OpMultiply:
			return integerItem{value: new(big.Int).Mul(x.value, y.value)}, nil
		case OpIntegerDivide:
			return integerItem{value: new(big.Int).Quo(x.value, y.value)}, nil
		case OpModulo:
			return integerItem{value: new(big.Int).Rem(x.value, y.value)}, nil
		default:
		}
	}
	var (
		res apd.Decimal
		err error
		a   = left.decimal()
		b   = right.decimal()
	)
	switch op {
	case OpAdd:
		_, err = decimalContext.Add(&res, a, b)
	case OpSubtract:
		_, err = decimalContext.Sub(&res, a, b)
	case OpMultiply:
		_, err = decimalContext.Mul(&res, a, b)
	case OpDivide:
		_, err = decimalContext.Quo(&res, a, b)
	case OpIntegerDivide:
		if _, err = decimalContext.QuoInteger(&res, a, b); err != nil {
			break
		}
		n, err := integerOf(&res)
		if err != nil {
			return nil, err
		}
		return integerItem{value: n}, nil
	case OpModulo:
		_, err = decimalContext.Rem(&res, a, b)
	default:
		return nil, typeError("unsupported operator %s", op)
	}
	if err != nil {
		return nil, arithmeticError(CodeOverflow, "%s %s %s: %s", left, op, right, err)
	}
	return decimalResult(&res), nil
}

func opAddMonths(_ *DynamicContext, left, right Atomic) (Atomic, error) {
	return shiftMonths(left, int64(right.(yearMonthItem)))
}

func opSubtractMonths(_ *DynamicContext, left, right Atomic) (Atomic, error) {
	return shiftMonths(left, -int64(right.(yearMonthItem)))
}

func shiftMonths(item Atomic, months int64) (Atomic, error) {
	switch i := item.(type) {
	case dateItem:
		return dateItem{value: addMonths(i.value, months), tz: i.tz}, nil
	case dateTimeItem:
		return dateTimeItem{value: addMonths(i.value, months), tz: i.tz}, nil
	default:
		return nil, typeError("months can not be added to %s", item.Type())
	}
}

func opAddDayTime(_ *DynamicContext, left, right Atomic) (Atomic, error) {
	return shiftTime(left, time.Duration(right.(dayTimeItem)))
}

func opSubtractDayTime(_ *DynamicContext, left, right Atomic) (Atomic, error) {
	d := time.Duration(right.(dayTimeItem))
	if d == math.MinInt64 {
		return nil, durationOverflow()
	}
	return shiftTime(left, -d)
}

func shiftTime(item Atomic, d time.Duration) (Atomic, error) {
	switch i := item.(type) {
	case dateItem:
		return NewDate(i.value.Add(d), i.tz), nil
	case dateTimeItem:
		return dateTimeItem{value: i.value.Add(d), tz: i.tz}, nil
	case timeItem:
		t := i.value.Add(d)
		return timeItem{value: onReferenceDate(t, t.Location()), tz: i.tz}, nil
	default:
		return nil, typeError("a duration can not be added to %s", item.Type())
	}
}

// opSubtractTemporal gives the duration between two dates, date-times or
// times. Values without timezone adopt the implicit timezone.
func opSubtractTemporal(ctx *DynamicContext, left, right Atomic) (Atomic, error) {
	var zone *time.Location
	if ctx != nil {
		zone = ctx.Timezone()
	}
	x, y := left.(temporal), right.(temporal)
	return subtractInstants(x.instant(zone), y.instant(zone))
}

func opAddDayTimeDurations(_ *DynamicContext, left, right Atomic) (Atomic, error) {
	return addDurations(time.Duration(left.(dayTimeItem)), time.Duration(right.(dayTimeItem)))
}

func opSubtractDayTimeDurations(_ *DynamicContext, left, right Atomic) (Atomic, error) {
	return subtractDurations(time.Duration(left.(dayTimeItem)), time.Duration(right.(dayTimeItem)))
}

func opAddYearMonthDurations(_ *DynamicContext, left, right Atomic) (Atomic, error) {
	return monthsOf(int64(left.(yearMonthItem)) + int64(right.(yearMonthItem)))
}

func opSubtractYearMonthDurations(_ *DynamicContext, left, right Atomic) (Atomic, error) {
	return monthsOf(int64(left.(yearMonthItem)) - int64(right.(yearMonthItem)))
}

func opScaleDuration(divide bool) arithmeticFunc {
	return func(_ *DynamicContext, left, right Atomic) (Atomic, error) {
		factor := right.(numericItem).decimal()
		switch d := left.(type) {
		case dayTimeItem:
			n, err := scaleDuration(int64(d), factor, divide)
			if err != nil {
				return nil, err
			}
			return dayTimeItem(n), nil
		case yearMonthItem:
			n, err := scaleDuration(int64(d), factor, divide)
			if err != nil {
				return nil, err
			}
			return monthsOf(n)
		default:
			return nil, typeError("%s is not a duration", left.Type())
		}
	}
}

func opDivideDurations(_ *DynamicContext, left, right Atomic) (Atomic, error) {
	var x, y int64
	switch d := left.(type) {
	case dayTimeItem:
		x, y = int64(d), int64(right.(dayTimeItem))
	case yearMonthItem:
		x, y = int64(d), int64(right.(yearMonthItem))
	}
	if y == 0 {
		return nil, divisionByZero()
	}
	var res apd.Decimal
	if _, err := decimalContext.Quo(&res, apd.New(x, 0), apd.New(y, 0)); err != nil {
		return nil, arithmeticError(CodeOverflow, "%s div %s: %s", left, right, err)
	}
	return decimalResult(&res), nil
}
