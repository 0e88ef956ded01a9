package metapath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCastAs(t *testing.T) {
	tests := []struct {
		Name     string
		Input    Atomic
		Target   *ItemType
		Expected string
	}{
		{Name: "string-integer", Input: NewString(" 42 "), Target: TypeInteger, Expected: "42"},
		{Name: "untyped-decimal", Input: NewUntyped("3.25"), Target: TypeDecimal, Expected: "3.25"},
		{Name: "decimal-integer", Input: mustAtomic(t, ParseDecimal, "3.7"), Target: TypeInteger, Expected: "3"},
		{Name: "negative-decimal-integer", Input: mustAtomic(t, ParseDecimal, "-3.7"), Target: TypeInteger, Expected: "-3"},
		{Name: "integer-decimal", Input: NewInteger(7), Target: TypeDecimal, Expected: "7"},
		{Name: "boolean-integer", Input: True, Target: TypeInteger, Expected: "1"},
		{Name: "string-numeric", Input: NewString("1.5"), Target: TypeNumeric, Expected: "1.5"},
		{Name: "string-boolean", Input: NewString("1"), Target: TypeBoolean, Expected: "true"},
		{Name: "zero-boolean", Input: NewInteger(0), Target: TypeBoolean, Expected: "false"},
		{Name: "integer-string", Input: NewInteger(42), Target: TypeString, Expected: "42"},
		{Name: "integer-untyped", Input: NewInteger(42), Target: TypeUntyped, Expected: "42"},
		{Name: "string-uri", Input: NewString("https://example.com/a"), Target: TypeURI, Expected: "https://example.com/a"},
		{Name: "untyped-date", Input: NewUntyped("2024-02-29"), Target: TypeDate, Expected: "2024-02-29"},
		{Name: "datetime-date", Input: mustAtomic(t, ParseDateTime, "2024-01-01T10:00:00Z"), Target: TypeDate, Expected: "2024-01-01Z"},
		{Name: "datetime-time", Input: mustAtomic(t, ParseDateTime, "2024-01-01T10:00:00Z"), Target: TypeTime, Expected: "10:00:00Z"},
		{Name: "string-year-month", Input: NewString("P1Y2M"), Target: TypeYearMonthDuration, Expected: "P1Y2M"},
		{Name: "string-duration-months", Input: NewString("P14M"), Target: TypeDuration, Expected: "P1Y2M"},
		{Name: "string-duration-clock", Input: NewString("PT90M"), Target: TypeDuration, Expected: "PT1H30M"},
		{Name: "year-month-day-time", Input: NewYearMonthDuration(5), Target: TypeDayTimeDuration, Expected: "PT0S"},
		{Name: "string-base64", Input: NewString("AQI="), Target: TypeBase64Binary, Expected: "AQI="},
		{Name: "base64-hex", Input: NewBase64Binary([]byte{1, 2, 255}), Target: TypeHexBinary, Expected: "0102FF"},
		{Name: "hex-base64", Input: NewHexBinary([]byte{1, 2}), Target: TypeBase64Binary, Expected: "AQI="},
		{Name: "any-atomic", Input: NewInteger(1), Target: TypeAnyAtomic, Expected: "1"},
	}
	for _, c := range tests {
		t.Run(c.Name, func(t *testing.T) {
			got, err := CastAs(c.Input, c.Target)
			require.NoError(t, err)
			assert.Equal(t, c.Expected, got.String())
			if c.Target != TypeAnyAtomic && c.Target != TypeNumeric && c.Target != TypeDuration {
				assert.Equal(t, c.Target, got.Type())
			}
			assert.True(t, Castable(c.Input, c.Target))
		})
	}
}

func TestCastAsErrors(t *testing.T) {
	tests := []struct {
		Name   string
		Input  Atomic
		Target *ItemType
		Err    error
	}{
		{Name: "not-integer", Input: NewString("abc"), Target: TypeInteger, Err: ErrArgument},
		{Name: "not-boolean", Input: NewString("yes"), Target: TypeBoolean, Err: ErrArgument},
		{Name: "not-date", Input: NewUntyped("2024-02-30"), Target: TypeDate, Err: ErrArgument},
		{Name: "integer-date", Input: NewInteger(1), Target: TypeDate, Err: ErrArgument},
		{Name: "boolean-duration", Input: True, Target: TypeDuration, Err: ErrArgument},
		{Name: "node-target", Input: NewString("x"), Target: TypeNode, Err: ErrType},
	}
	for _, c := range tests {
		t.Run(c.Name, func(t *testing.T) {
			_, err := CastAs(c.Input, c.Target)
			require.Error(t, err)
			assert.ErrorIs(t, err, c.Err)
			assert.False(t, Castable(c.Input, c.Target))
		})
	}
}

func TestCastExpr(t *testing.T) {
	t.Run("cast", func(t *testing.T) {
		res := evaluate(t, Cast(StringLiteral("12"), TypeInteger, false), EmptySequence())
		assert.Equal(t, []string{"12"}, values(t, res))
	})
	t.Run("cast-empty-allowed", func(t *testing.T) {
		res := evaluate(t, Cast(Empty(), TypeInteger, true), EmptySequence())
		assert.True(t, res.IsEmpty())
	})
	t.Run("cast-empty", func(t *testing.T) {
		_, err := Evaluate(Cast(Empty(), TypeInteger, false), NewDynamicContext(nil), EmptySequence())
		assert.ErrorIs(t, err, ErrType)
	})
	t.Run("cast-many", func(t *testing.T) {
		_, err := Evaluate(Cast(integers(1, 2), TypeString, false), NewDynamicContext(nil), EmptySequence())
		assert.ErrorIs(t, err, ErrType)
	})
	t.Run("cast-invalid", func(t *testing.T) {
		_, err := Evaluate(Cast(StringLiteral("x"), TypeInteger, false), NewDynamicContext(nil), EmptySequence())
		assert.True(t, HasCode(err, CodeInvalidCast))
	})
}

func TestCastableExpr(t *testing.T) {
	tests := []struct {
		Name     string
		Expr     Expr
		Expected string
	}{
		{Name: "castable", Expr: CastableAs(StringLiteral("12"), TypeInteger, false), Expected: "true"},
		{Name: "not-castable", Expr: CastableAs(StringLiteral("x"), TypeInteger, false), Expected: "false"},
		{Name: "empty", Expr: CastableAs(Empty(), TypeInteger, false), Expected: "false"},
		{Name: "empty-allowed", Expr: CastableAs(Empty(), TypeInteger, true), Expected: "true"},
		{Name: "many", Expr: CastableAs(integers(1, 2), TypeInteger, true), Expected: "false"},
	}
	for _, c := range tests {
		t.Run(c.Name, func(t *testing.T) {
			res := evaluate(t, c.Expr, EmptySequence())
			assert.Equal(t, []string{c.Expected}, values(t, res))
		})
	}
}

func TestInstanceOf(t *testing.T) {
	doc, _ := catalog(t)
	tests := []struct {
		Name     string
		Expr     Expr
		Type     SequenceType
		Expected bool
	}{
		{Name: "integer", Expr: IntegerLiteral(1), Type: Exactly(TypeInteger), Expected: true},
		{Name: "derived", Expr: IntegerLiteral(1), Type: Exactly(TypeDecimal), Expected: true},
		{Name: "base", Expr: atomic(t, ParseDecimal, "1.5"), Type: Exactly(TypeInteger)},
		{Name: "many", Expr: integers(1, 2), Type: Exactly(TypeInteger)},
		{Name: "many-allowed", Expr: integers(1, 2), Type: Many(TypeInteger), Expected: true},
		{Name: "at-least-one", Expr: Empty(), Type: AtLeastOne(TypeItem)},
		{Name: "optional", Expr: Empty(), Type: Optional(TypeString), Expected: true},
		{Name: "empty-sequence", Expr: Empty(), Type: EmptyType, Expected: true},
		{Name: "not-empty-sequence", Expr: IntegerLiteral(1), Type: EmptyType},
		{Name: "mixed", Expr: Comma(IntegerLiteral(1), StringLiteral("a")), Type: Many(TypeAnyAtomic), Expected: true},
		{Name: "mixed-numeric", Expr: Comma(IntegerLiteral(1), StringLiteral("a")), Type: Many(TypeNumeric)},
		{Name: "node", Expr: child(t, "catalog"), Type: Exactly(TypeAssembly), Expected: true},
		{Name: "node-kind", Expr: child(t, "catalog"), Type: Exactly(TypeNode), Expected: true},
		{Name: "node-not-atomic", Expr: child(t, "catalog"), Type: Exactly(TypeAnyAtomic)},
		{Name: "map", Expr: MapConstructor(), Type: Exactly(TypeFunction), Expected: true},
	}
	for _, c := range tests {
		t.Run(c.Name, func(t *testing.T) {
			res, err := Find(InstanceOf(c.Expr, c.Type), NewDynamicContext(nil), doc)
			require.NoError(t, err)
			assert.Equal(t, []string{NewBoolean(c.Expected).String()}, values(t, res))
		})
	}
}

func TestTreat(t *testing.T) {
	res := evaluate(t, Treat(integers(1, 2), Many(TypeInteger)), EmptySequence())
	assert.Equal(t, []string{"1", "2"}, values(t, res))

	_, err := Evaluate(Treat(StringLiteral("a"), Exactly(TypeInteger)), NewDynamicContext(nil), EmptySequence())
	assert.True(t, HasCode(err, CodeTreatMismatch))

	_, err = Evaluate(Treat(Empty(), Exactly(TypeInteger)), NewDynamicContext(nil), EmptySequence())
	assert.ErrorIs(t, err, ErrDynamic)
}
