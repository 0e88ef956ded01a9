package metapath

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAtomic(t *testing.T, parse func(string) (Atomic, error), str string) Atomic {
	t.Helper()
	a, err := parse(str)
	require.NoError(t, err)
	return a
}

func TestArithmetic(t *testing.T) {
	var (
		integer  = func(str string) Atomic { return mustAtomic(t, ParseInteger, str) }
		decimal  = func(str string) Atomic { return mustAtomic(t, ParseDecimal, str) }
		date     = func(str string) Atomic { return mustAtomic(t, ParseDate, str) }
		datetime = func(str string) Atomic { return mustAtomic(t, ParseDateTime, str) }
		clock    = func(str string) Atomic { return mustAtomic(t, ParseTime, str) }
		daytime  = func(str string) Atomic { return mustAtomic(t, ParseDayTimeDuration, str) }
		months   = func(str string) Atomic { return mustAtomic(t, ParseYearMonthDuration, str) }
	)
	tests := []struct {
		Name     string
		Op       ArithmeticOp
		Left     Atomic
		Right    Atomic
		Expected string
		Type     *ItemType
	}{
		{Name: "add-integers", Op: OpAdd, Left: integer("1"), Right: integer("2"), Expected: "3", Type: TypeInteger},
		{Name: "big-integers", Op: OpMultiply, Left: integer("9223372036854775807"), Right: integer("2"), Expected: "18446744073709551614", Type: TypeInteger},
		{Name: "add-decimals", Op: OpAdd, Left: decimal("0.1"), Right: decimal("0.2"), Expected: "0.3", Type: TypeDecimal},
		{Name: "mixed", Op: OpSubtract, Left: integer("3"), Right: decimal("0.5"), Expected: "2.5", Type: TypeDecimal},
		{Name: "divide", Op: OpDivide, Left: integer("7"), Right: integer("2"), Expected: "3.5", Type: TypeDecimal},
		{Name: "divide-exact", Op: OpDivide, Left: integer("6"), Right: integer("2"), Expected: "3", Type: TypeDecimal},
		{Name: "integer-divide", Op: OpIntegerDivide, Left: integer("7"), Right: integer("2"), Expected: "3", Type: TypeInteger},
		{Name: "integer-divide-negative", Op: OpIntegerDivide, Left: integer("-7"), Right: integer("2"), Expected: "-3", Type: TypeInteger},
		{Name: "integer-divide-decimal", Op: OpIntegerDivide, Left: decimal("7.5"), Right: integer("2"), Expected: "3", Type: TypeInteger},
		{Name: "modulo", Op: OpModulo, Left: integer("-7"), Right: integer("2"), Expected: "-1", Type: TypeInteger},
		{Name: "modulo-decimal", Op: OpModulo, Left: decimal("5.5"), Right: integer("2"), Expected: "1.5", Type: TypeDecimal},
		{Name: "untyped", Op: OpAdd, Left: NewUntyped("40"), Right: integer("2"), Expected: "42", Type: TypeInteger},
		{Name: "date-plus-months", Op: OpAdd, Left: date("2024-01-31"), Right: months("P1M"), Expected: "2024-02-29", Type: TypeDate},
		{Name: "months-plus-date", Op: OpAdd, Left: months("P1Y"), Right: date("2023-03-15"), Expected: "2024-03-15", Type: TypeDate},
		{Name: "date-minus-months", Op: OpSubtract, Left: date("2024-03-31"), Right: months("P1M"), Expected: "2024-02-29", Type: TypeDate},
		{Name: "datetime-plus-duration", Op: OpAdd, Left: datetime("2024-01-01T23:00:00Z"), Right: daytime("PT2H"), Expected: "2024-01-02T01:00:00Z", Type: TypeDateTime},
		{Name: "date-plus-duration", Op: OpAdd, Left: date("2024-01-01"), Right: daytime("P1DT12H"), Expected: "2024-01-02", Type: TypeDate},
		{Name: "time-wraps", Op: OpAdd, Left: clock("23:30:00"), Right: daytime("PT1H"), Expected: "00:30:00", Type: TypeTime},
		{Name: "date-difference", Op: OpSubtract, Left: date("2024-03-01Z"), Right: date("2024-02-01Z"), Expected: "P29D", Type: TypeDayTimeDuration},
		{Name: "time-difference", Op: OpSubtract, Left: clock("10:15:30Z"), Right: clock("08:00:00Z"), Expected: "PT2H15M30S", Type: TypeDayTimeDuration},
		{Name: "add-durations", Op: OpAdd, Left: daytime("PT1H"), Right: daytime("PT30M"), Expected: "PT1H30M", Type: TypeDayTimeDuration},
		{Name: "add-months", Op: OpAdd, Left: months("P1Y"), Right: months("P2M"), Expected: "P1Y2M", Type: TypeYearMonthDuration},
		{Name: "subtract-months", Op: OpSubtract, Left: months("P1Y"), Right: months("P2M"), Expected: "P10M", Type: TypeYearMonthDuration},
		{Name: "scale-duration", Op: OpMultiply, Left: daytime("PT1H"), Right: decimal("1.5"), Expected: "PT1H30M", Type: TypeDayTimeDuration},
		{Name: "scale-months", Op: OpMultiply, Left: integer("2"), Right: months("P5M"), Expected: "P10M", Type: TypeYearMonthDuration},
		{Name: "divide-duration", Op: OpDivide, Left: daytime("PT1H"), Right: integer("4"), Expected: "PT15M", Type: TypeDayTimeDuration},
		{Name: "divide-durations", Op: OpDivide, Left: daytime("PT1H"), Right: daytime("PT30M"), Expected: "2", Type: TypeDecimal},
		{Name: "divide-months", Op: OpDivide, Left: months("P1Y"), Right: months("P3M"), Expected: "4", Type: TypeDecimal},
	}
	ctx := NewDynamicContext(nil, WithTimezone(time.UTC))
	for _, c := range tests {
		t.Run(c.Name, func(t *testing.T) {
			got, err := Compute(ctx, c.Op, c.Left, c.Right)
			require.NoError(t, err)
			assert.Equal(t, c.Expected, got.String())
			assert.Equal(t, c.Type, got.Type())
		})
	}
}

func TestArithmeticErrors(t *testing.T) {
	tests := []struct {
		Name  string
		Op    ArithmeticOp
		Left  Atomic
		Right Atomic
		Code  string
	}{
		{Name: "divide-by-zero", Op: OpDivide, Left: NewInteger(1), Right: NewInteger(0), Code: CodeDivisionByZero},
		{Name: "integer-divide-by-zero", Op: OpIntegerDivide, Left: NewInteger(1), Right: NewInteger(0), Code: CodeDivisionByZero},
		{Name: "modulo-by-zero", Op: OpModulo, Left: NewInteger(1), Right: NewInteger(0), Code: CodeDivisionByZero},
		{Name: "string-operand", Op: OpAdd, Left: NewString("1"), Right: NewInteger(1), Code: CodeTypeMismatch},
		{Name: "boolean-operand", Op: OpMultiply, Left: True, Right: NewInteger(2), Code: CodeTypeMismatch},
		{Name: "mixed-durations", Op: OpAdd, Left: NewDayTimeDuration(time.Hour), Right: NewYearMonthDuration(1), Code: CodeTypeMismatch},
		{Name: "duration-overflow", Op: OpAdd, Left: NewDayTimeDuration(time.Duration(1<<63 - 1)), Right: NewDayTimeDuration(1), Code: CodeDurationOverflow},
		{Name: "duration-divide-by-zero", Op: OpDivide, Left: NewDayTimeDuration(time.Hour), Right: NewInteger(0), Code: CodeDivisionByZero},
		{Name: "date-span-overflow", Op: OpSubtract, Left: mustAtomic(t, ParseDate, "2400-01-01"), Right: mustAtomic(t, ParseDate, "1900-01-01"), Code: CodeDurationOverflow},
	}
	ctx := NewDynamicContext(nil)
	for _, c := range tests {
		t.Run(c.Name, func(t *testing.T) {
			_, err := Compute(ctx, c.Op, c.Left, c.Right)
			require.Error(t, err)
			assert.True(t, HasCode(err, c.Code), "expected %s, got %s", c.Code, err)
		})
	}
	t.Run("parse-out-of-range", func(t *testing.T) {
		_, err := ParseDayTimeDuration("P200000D")
		require.Error(t, err)
		assert.True(t, HasCode(err, CodeDurationOverflow), "expected %s, got %s", CodeDurationOverflow, err)

		_, err = ParseDayTimeDuration("P100000D")
		assert.NoError(t, err)
	})
}

func TestArithmeticExpr(t *testing.T) {
	t.Run("empty-operand", func(t *testing.T) {
		res := evaluate(t, Add(Empty(), IntegerLiteral(1)), EmptySequence())
		assert.True(t, res.IsEmpty())
	})
	t.Run("many-items", func(t *testing.T) {
		_, err := Evaluate(Add(integers(1, 2), IntegerLiteral(1)), NewDynamicContext(nil), EmptySequence())
		assert.ErrorIs(t, err, ErrType)
	})
	t.Run("negate", func(t *testing.T) {
		res := evaluate(t, Negate(Literal(NewUntyped("4"))), EmptySequence())
		assert.Equal(t, []string{"-4"}, values(t, res))
	})
	t.Run("negate-duration", func(t *testing.T) {
		res := evaluate(t, Negate(Literal(NewDayTimeDuration(90*time.Minute))), EmptySequence())
		assert.Equal(t, []string{"-PT1H30M"}, values(t, res))
	})
	t.Run("nested", func(t *testing.T) {
		expr := Multiply(Add(IntegerLiteral(1), IntegerLiteral(2)), Subtract(IntegerLiteral(10), IntegerLiteral(4)))
		res := evaluate(t, expr, EmptySequence())
		assert.Equal(t, []string{"18"}, values(t, res))
	})
}

func TestArithmeticStaticType(t *testing.T) {
	var (
		date     = Literal(mustAtomic(t, ParseDate, "2024-03-01"))
		datetime = Literal(mustAtomic(t, ParseDateTime, "2024-03-01T12:00:00Z"))
		daytime  = Literal(mustAtomic(t, ParseDayTimeDuration, "PT2H"))
		months   = Literal(mustAtomic(t, ParseYearMonthDuration, "P1Y6M"))
	)
	tests := []struct {
		Name     string
		Expr     Expr
		Expected *ItemType
	}{
		{Name: "date-date", Expr: Subtract(date, Literal(mustAtomic(t, ParseDate, "2024-02-01"))), Expected: TypeDayTimeDuration},
		{Name: "datetime-datetime", Expr: Subtract(datetime, Literal(mustAtomic(t, ParseDateTime, "2024-03-01T10:00:00Z"))), Expected: TypeDayTimeDuration},
		{Name: "yearmonth-div-yearmonth", Expr: Divide(months, Literal(mustAtomic(t, ParseYearMonthDuration, "P6M"))), Expected: TypeDecimal},
		{Name: "daytime-div-daytime", Expr: Divide(daytime, Literal(mustAtomic(t, ParseDayTimeDuration, "PT30M"))), Expected: TypeDecimal},
		{Name: "date-plus-months", Expr: Add(date, months), Expected: TypeDate},
		{Name: "daytime-times-integer", Expr: Multiply(IntegerLiteral(3), daytime), Expected: TypeDayTimeDuration},
		{Name: "add-integers", Expr: Add(IntegerLiteral(1), IntegerLiteral(2)), Expected: TypeInteger},
		{Name: "divide-integers", Expr: Divide(IntegerLiteral(7), IntegerLiteral(2)), Expected: TypeDecimal},
		{Name: "integer-divide", Expr: IntegerDivide(Literal(mustAtomic(t, ParseDecimal, "7.5")), IntegerLiteral(2)), Expected: TypeInteger},
		{Name: "untyped-operand", Expr: Add(Literal(NewUntyped("4")), IntegerLiteral(1)), Expected: TypeDecimal},
		{Name: "negate-untyped", Expr: Negate(Literal(NewUntyped("4"))), Expected: TypeDecimal},
	}
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			assert.Same(t, tt.Expected, tt.Expr.StaticType())

			res := evaluate(t, tt.Expr, EmptySequence())
			require.Equal(t, 1, res.Len())
			item, _ := res.First()
			assert.Truef(t, item.Type().Derives(tt.Expr.StaticType()), "%s does not derive %s", item.Type(), tt.Expr.StaticType())
		})
	}
	t.Run("undefined", func(t *testing.T) {
		expr := Add(date, datetime)
		assert.Same(t, TypeAnyAtomic, expr.StaticType())
	})
}
