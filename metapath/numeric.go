package metapath

import (
	"math/big"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// decimalContext is used by every decimal operation: 34 significant digits
// like a decimal128.
var decimalContext = apd.BaseContext.WithPrecision(34)

type numericItem interface {
	Atomic
	decimal() *apd.Decimal
	zero() bool
}

type integerItem struct {
	value *big.Int
}

func NewInteger(n int64) Atomic {
	return integerItem{value: big.NewInt(n)}
}

func NewBigInteger(n *big.Int) Atomic {
	return integerItem{value: new(big.Int).Set(n)}
}

func ParseInteger(str string) (Atomic, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(str), 10)
	if !ok {
		return nil, castError(str, TypeInteger)
	}
	return integerItem{value: n}, nil
}

func (_ integerItem) Type() *ItemType {
	return TypeInteger
}

func (i integerItem) Value() any {
	return new(big.Int).Set(i.value)
}

func (i integerItem) String() string {
	return i.value.String()
}

func (i integerItem) key() atomicKey {
	return atomicKey{class: "numeric", value: i.value.String()}
}

func (i integerItem) decimal() *apd.Decimal {
	return apd.NewWithBigInt(new(apd.BigInt).SetMathBigInt(i.value), 0)
}

func (i integerItem) zero() bool {
	return i.value.Sign() == 0
}

// Int returns the value as an int when it fits.
func (i integerItem) Int() (int, bool) {
	if !i.value.IsInt64() {
		return 0, false
	}
	n := i.value.Int64()
	if int64(int(n)) != n {
		return 0, false
	}
	return int(n), true
}

type decimalItem struct {
	value *apd.Decimal
}

func NewDecimal(d *apd.Decimal) Atomic {
	return decimalItem{value: new(apd.Decimal).Set(d)}
}

func ParseDecimal(str string) (Atomic, error) {
	str = strings.TrimSpace(str)
	if str == "" || strings.ContainsAny(str, "eEinfINFnaNA") {
		return nil, castError(str, TypeDecimal)
	}
	d, _, err := apd.NewFromString(str)
	if err != nil {
		return nil, castError(str, TypeDecimal)
	}
	return decimalItem{value: d}, nil
}

func (_ decimalItem) Type() *ItemType {
	return TypeDecimal
}

func (i decimalItem) Value() any {
	return new(apd.Decimal).Set(i.value)
}

func (i decimalItem) String() string {
	return formatDecimal(i.value)
}

func (i decimalItem) key() atomicKey {
	return atomicKey{class: "numeric", value: formatDecimal(i.value)}
}

func (i decimalItem) decimal() *apd.Decimal {
	return i.value
}

func (i decimalItem) zero() bool {
	return i.value.IsZero()
}

// formatDecimal writes d without exponent and without trailing zeros in its
// fractional part.
func formatDecimal(d *apd.Decimal) string {
	str := d.Text('f')
	if strings.Contains(str, ".") {
		str = strings.TrimRight(str, "0")
		str = strings.TrimSuffix(str, ".")
	}
	if str == "-0" || str == "" {
		str = "0"
	}
	return str
}

// integerOf truncates d to its integer part.
func integerOf(d *apd.Decimal) (*big.Int, error) {
	var integ, frac apd.Decimal
	d.Modf(&integ, &frac)
	str, _, _ := strings.Cut(integ.Text('f'), ".")
	n, ok := new(big.Int).SetString(str, 10)
	if !ok {
		return nil, arithmeticError(CodeOverflow, "%s can not be converted to an integer", d.Text('f'))
	}
	return n, nil
}

func decimalResult(d *apd.Decimal) Atomic {
	return decimalItem{value: d}
}

// toNumeric converts an atomic item to a numeric item. Untyped values and
// strings are parsed as decimals.
func toNumeric(item Atomic) (numericItem, error) {
	switch i := item.(type) {
	case numericItem:
		return i, nil
	case untypedItem:
		n, err := parseNumber(string(i))
		if err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, typeError("%s is not a numeric value", item.Type())
	}
}

func parseNumber(str string) (numericItem, error) {
	str = strings.TrimSpace(str)
	if !strings.ContainsAny(str, ".") {
		if n, err := ParseInteger(str); err == nil {
			return n.(numericItem), nil
		}
	}
	n, err := ParseDecimal(str)
	if err != nil {
		return nil, err
	}
	return n.(numericItem), nil
}

func isInteger(item Atomic) bool {
	_, ok := item.(integerItem)
	return ok
}

func compareNumeric(left, right numericItem) int {
	if x, ok := left.(integerItem); ok {
		if y, ok := right.(integerItem); ok {
			return x.value.Cmp(y.value)
		}
	}
	return left.decimal().Cmp(right.decimal())
}
