package metapath

import (
	"math/big"

	"github.com/cockroachdb/apd/v3"
)

func numericFunctions() []*Function {
	var (
		num    = arg("arg", Optional(TypeNumeric))
		values = arg("values", Many(TypeAnyAtomic))
	)
	return []*Function{
		builtin(fnName("abs"), Optional(TypeNumeric), numericMapper(absNumeric), num),
		builtin(fnName("ceiling"), Optional(TypeNumeric), numericMapper(decimalRounder(decimalContext.Ceil)), num),
		builtin(fnName("floor"), Optional(TypeNumeric), numericMapper(decimalRounder(decimalContext.Floor)), num),
		builtin(fnName("round"), Optional(TypeNumeric), fnRound, num),
		builtin(fnName("round"), Optional(TypeNumeric), fnRound, num, arg("precision", Exactly(TypeInteger))),
		builtin(fnName("sum"), Exactly(TypeAnyAtomic), fnSum, values),
		builtin(fnName("sum"), Optional(TypeAnyAtomic), fnSum, values, arg("zero", Optional(TypeAnyAtomic))),
		contextual(builtin(fnName("avg"), Optional(TypeAnyAtomic), fnAvg, values)),
		contextual(builtin(fnName("min"), Optional(TypeAnyAtomic), fnExtremum(OpLess), values)),
		contextual(builtin(fnName("max"), Optional(TypeAnyAtomic), fnExtremum(OpGreater), values)),
	}
}

func numericMapper(apply func(numericItem) (Atomic, error)) Body {
	return func(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
		a, ok := firstAtomic(args[0])
		if !ok {
			return EmptySequence(), nil
		}
		n, err := toNumeric(a)
		if err != nil {
			return EmptySequence(), err
		}
		res, err := apply(n)
		if err != nil {
			return EmptySequence(), err
		}
		return Singleton(res), nil
	}
}

func absNumeric(n numericItem) (Atomic, error) {
	if i, ok := n.(integerItem); ok {
		return NewBigInteger(new(big.Int).Abs(i.value)), nil
	}
	var d apd.Decimal
	if _, err := decimalContext.Abs(&d, n.decimal()); err != nil {
		return nil, arithmeticError(CodeOverflow, "%s", err)
	}
	return decimalResult(&d), nil
}

func decimalRounder(round func(*apd.Decimal, *apd.Decimal) (apd.Condition, error)) func(numericItem) (Atomic, error) {
	return func(n numericItem) (Atomic, error) {
		if _, ok := n.(integerItem); ok {
			return n, nil
		}
		var d apd.Decimal
		if _, err := round(&d, n.decimal()); err != nil {
			return nil, arithmeticError(CodeOverflow, "%s", err)
		}
		return decimalResult(&d), nil
	}
}

// roundHalfUp rounds d to the given number of fractional digits. Halves are
// rounded toward positive infinity.
func roundHalfUp(d *apd.Decimal, precision int32) (*apd.Decimal, error) {
	var scaled apd.Decimal
	scaled.Set(d)
	scaled.Exponent += precision
	if _, err := decimalContext.Add(&scaled, &scaled, apd.New(5, -1)); err != nil {
		return nil, arithmeticError(CodeOverflow, "%s", err)
	}
	if _, err := decimalContext.Floor(&scaled, &scaled); err != nil {
		return nil, arithmeticError(CodeOverflow, "%s", err)
	}
	scaled.Exponent -= precision
	return &scaled, nil
}

func roundedArg(seq Sequence) (int64, error) {
	a, ok := firstAtomic(seq)
	if !ok {
		return 0, typeError("a numeric value is expected")
	}
	n, err := toNumeric(a)
	if err != nil {
		return 0, err
	}
	if i, ok := n.(integerItem); ok {
		if !i.value.IsInt64() {
			return 0, arithmeticError(CodeOverflow, "%s is too large", i)
		}
		return i.value.Int64(), nil
	}
	d, err := roundHalfUp(n.decimal(), 0)
	if err != nil {
		return 0, err
	}
	v, err := d.Int64()
	if err != nil {
		return 0, arithmeticError(CodeOverflow, "%s", err)
	}
	return v, nil
}

func fnRound(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	a, ok := firstAtomic(args[0])
	if !ok {
		return EmptySequence(), nil
	}
	n, err := toNumeric(a)
	if err != nil {
		return EmptySequence(), err
	}
	var precision int
	if len(args) > 1 {
		if precision, err = intArg(args[1]); err != nil {
			return EmptySequence(), err
		}
	}
	_, isInt := n.(integerItem)
	if isInt && precision >= 0 {
		return Singleton(n), nil
	}
	d, err := roundHalfUp(n.decimal(), int32(precision))
	if err != nil {
		return EmptySequence(), err
	}
	if isInt {
		i, err := integerOf(d)
		if err != nil {
			return EmptySequence(), err
		}
		return Singleton(NewBigInteger(i)), nil
	}
	return Singleton(decimalResult(d)), nil
}

// sumValues adds all the values. Untyped values are treated as numbers.
func sumValues(ctx *DynamicContext, values []Item) (Atomic, error) {
	total, err := numericOrSelf(values[0].(Atomic))
	if err != nil {
		return nil, err
	}
	for _, v := range values[1:] {
		next, err := numericOrSelf(v.(Atomic))
		if err != nil {
			return nil, err
		}
		if total, err = Compute(ctx, OpAdd, total, next); err != nil {
			return nil, argumentError(CodeArgumentType, "values can not be added: %s", err)
		}
	}
	return total, nil
}

func numericOrSelf(item Atomic) (Atomic, error) {
	if _, ok := item.(untypedItem); !ok {
		return item, nil
	}
	n, err := toNumeric(item)
	if err != nil {
		return nil, argumentError(CodeArgumentType, "%s is not a number", item)
	}
	return n, nil
}

func fnSum(ctx *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	values := args[0].Items()
	if len(values) == 0 {
		if len(args) > 1 {
			return args[1], nil
		}
		return integerResult(0)
	}
	total, err := sumValues(ctx, values)
	if err != nil {
		return EmptySequence(), err
	}
	return Singleton(total), nil
}

func fnAvg(ctx *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	values := args[0].Items()
	if len(values) == 0 {
		return EmptySequence(), nil
	}
	total, err := sumValues(ctx, values)
	if err != nil {
		return EmptySequence(), err
	}
	avg, err := Compute(ctx, OpDivide, total, NewInteger(int64(len(values))))
	if err != nil {
		return EmptySequence(), err
	}
	return Singleton(avg), nil
}

func fnExtremum(op CompareOp) Body {
	return func(ctx *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
		var best Atomic
		for item := range args[0].All() {
			curr, err := numericOrSelf(item.(Atomic))
			if err != nil {
				return EmptySequence(), err
			}
			if best == nil {
				best = curr
				continue
			}
			ok, err := CompareValues(ctx, op, curr, best)
			if err != nil {
				return EmptySequence(), argumentError(CodeArgumentType, "values can not be compared: %s", err)
			}
			if ok {
				best = curr
			}
		}
		if best == nil {
			return EmptySequence(), nil
		}
		return Singleton(best), nil
	}
}
