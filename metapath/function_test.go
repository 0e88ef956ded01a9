package metapath

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midbel/metapath/node"
)

func countingFunction(props Props, calls *int) *Function {
	return &Function{
		Name:   node.ExpandedName("urn:test", "double"),
		Params: []Param{{Name: "n", Type: Exactly(TypeInteger)}},
		Result: Exactly(TypeInteger),
		Props:  props,
		Body: func(ctx *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
			*calls++
			n, _ := args[0].First()
			return Singleton(n), nil
		},
	}
}

func TestFunctionCache(t *testing.T) {
	tests := []struct {
		Name     string
		Props    Props
		Args     []Expr
		Expected int
	}{
		{Name: "deterministic", Props: Deterministic, Args: []Expr{IntegerLiteral(1), IntegerLiteral(1)}, Expected: 1},
		{Name: "deterministic-untyped", Props: Deterministic, Args: []Expr{IntegerLiteral(1), Literal(NewUntyped("1"))}, Expected: 1},
		{Name: "distinct-arguments", Props: Deterministic, Args: []Expr{IntegerLiteral(1), IntegerLiteral(2)}, Expected: 2},
		{Name: "not-deterministic", Props: ContextDependent, Args: []Expr{IntegerLiteral(1), IntegerLiteral(1)}, Expected: 2},
	}
	for _, c := range tests {
		t.Run(c.Name, func(t *testing.T) {
			var (
				calls int
				fn    = countingFunction(c.Props, &calls)
				list  []Expr
			)
			for _, a := range c.Args {
				list = append(list, FunctionCall(fn, a))
			}
			res := evaluate(t, Comma(list...), EmptySequence())
			assert.Equal(t, len(c.Args), res.Len())
			assert.Equal(t, c.Expected, calls)
		})
	}
}

func TestFunctionCacheScope(t *testing.T) {
	var (
		calls int
		fn    = countingFunction(Deterministic, &calls)
		expr  = FunctionCall(fn, IntegerLiteral(1))
	)
	for range 2 {
		_, err := Evaluate(expr, NewDynamicContext(nil), EmptySequence())
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)

	calls = 0
	ctx := NewDynamicContext(nil)
	for range 2 {
		_, err := Evaluate(expr, ctx.Sub(), EmptySequence())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, calls)
}

func TestFunctionCacheArgumentTypes(t *testing.T) {
	tests := []struct {
		Name  string
		Left  Expr
		Right Expr
		Types []*ItemType
	}{
		{
			Name:  "integer-decimal",
			Left:  IntegerLiteral(1),
			Right: atomic(t, ParseDecimal, "1.0"),
			Types: []*ItemType{TypeInteger, TypeDecimal},
		},
		{
			Name:  "decimal-integer",
			Left:  atomic(t, ParseDecimal, "1.0"),
			Right: IntegerLiteral(1),
			Types: []*ItemType{TypeDecimal, TypeInteger},
		},
	}
	for _, c := range tests {
		t.Run(c.Name, func(t *testing.T) {
			ctx := NewDynamicContext(nil)
			expr := Comma(fn(t, "abs", c.Left), fn(t, "abs", c.Right))
			res, err := Evaluate(expr, ctx, EmptySequence())
			require.NoError(t, err)
			items := res.Items()
			require.Len(t, items, len(c.Types))
			for i := range items {
				assert.Equal(t, c.Types[i], items[i].Type())
			}
		})
	}

	t.Run("string-untyped", func(t *testing.T) {
		ctx := NewDynamicContext(nil)
		expr := Comma(fn(t, "data", StringLiteral("x")), fn(t, "data", Literal(NewUntyped("x"))))
		res, err := Evaluate(expr, ctx, EmptySequence())
		require.NoError(t, err)
		items := res.Items()
		require.Len(t, items, 2)
		assert.Equal(t, TypeString, items[0].Type())
		assert.Equal(t, TypeUntyped, items[1].Type())
	})
}

func TestFunctionArguments(t *testing.T) {
	var calls int
	fn := countingFunction(0, &calls)

	res := evaluate(t, FunctionCall(fn, Literal(NewUntyped("12"))), EmptySequence())
	assert.Equal(t, []string{"12"}, values(t, res))
	assert.Equal(t, TypeInteger, mustFirst(t, res).Type())

	tests := []struct {
		Name string
		Arg  Expr
		Err  error
		Code string
	}{
		{Name: "wrong-type", Arg: StringLiteral("12"), Err: ErrType},
		{Name: "empty", Arg: Empty(), Code: CodeExactlyOne},
		{Name: "many", Arg: integers(1, 2), Code: CodeExactlyOne},
		{Name: "invalid-untyped", Arg: Literal(NewUntyped("x")), Code: CodeInvalidCast},
	}
	for _, c := range tests {
		t.Run(c.Name, func(t *testing.T) {
			_, err := Evaluate(FunctionCall(fn, c.Arg), NewDynamicContext(nil), EmptySequence())
			require.Error(t, err)
			if c.Err != nil {
				assert.ErrorIs(t, err, c.Err)
			}
			if c.Code != "" {
				assert.True(t, HasCode(err, c.Code), "expected %s, got %s", c.Code, err)
			}
		})
	}

	_, err := Evaluate(FunctionCall(fn), NewDynamicContext(nil), EmptySequence())
	assert.True(t, HasCode(err, CodeNoFunction))
}

func mustFirst(t *testing.T, seq Sequence) Item {
	t.Helper()
	item, ok := seq.First()
	require.True(t, ok)
	return item
}

func TestLibrary(t *testing.T) {
	var (
		calls int
		lib   = NewLibrary()
		one   = countingFunction(Deterministic, &calls)
		many  = variadic(builtin(one.Name, Many(TypeItem), fnCount, arg("items", Many(TypeItem))))
	)
	lib.Register(one)
	lib.Register(many)
	assert.Equal(t, 2, lib.Len())

	got, err := lib.Lookup(one.Name, 1)
	require.NoError(t, err)
	assert.Same(t, one, got)

	got, err = lib.Lookup(one.Name, 3)
	require.NoError(t, err)
	assert.Same(t, many, got)

	_, err = lib.Lookup(one.Name, 0)
	assert.True(t, HasCode(err, CodeNoFunction))

	_, err = lib.Lookup(node.ExpandedName("urn:test", "missing"), 1)
	assert.True(t, HasCode(err, CodeNoFunction))

	other := countingFunction(Deterministic, &calls)
	lib.Register(other)
	assert.Equal(t, 2, lib.Len())
	got, _ = lib.Lookup(one.Name, 1)
	assert.Same(t, other, got)
}

func TestDefaultLibrary(t *testing.T) {
	lib := DefaultLibrary()
	list := lib.Functions()
	require.NotEmpty(t, list)
	assert.Equal(t, lib.Len(), len(list))
	for i := 1; i < len(list); i++ {
		prev, curr := displayName(list[i-1].Name), displayName(list[i].Name)
		assert.LessOrEqual(t, prev, curr)
	}
	for _, name := range []string{"count", "string-join", "round", "doc"} {
		_, err := lib.Lookup(fnName(name), 1)
		assert.NoError(t, err, name)
	}
	fn, err := lib.Lookup(fnName("concat"), 5)
	require.NoError(t, err)
	assert.True(t, fn.Variadic)
	assert.Equal(t, "fn:concat($arg1 as any-atomic-type?, $arg2 as any-atomic-type?, ...) as string", fn.Signature())
}

func TestStaticFunctionCall(t *testing.T) {
	_, err := StaticFunctionCall(nil, fnName("count"), IntegerLiteral(1), IntegerLiteral(2))
	assert.True(t, HasCode(err, CodeNoFunction))

	_, err = StaticFunctionCall(nil, fnName("no-such-function"))
	assert.ErrorIs(t, err, ErrStatic)

	var calls int
	lib := NewLibrary()
	lib.Register(countingFunction(Deterministic, &calls))
	static, err := NewStaticContext(WithLibrary(lib), WithNamespace("t", "urn:test"))
	require.NoError(t, err)

	name, err := static.ResolveFunctionName("t", "double")
	require.NoError(t, err)
	expr, err := StaticFunctionCall(static, name, IntegerLiteral(21))
	require.NoError(t, err)
	res, err := Evaluate(expr, NewDynamicContext(static), EmptySequence())
	require.NoError(t, err)
	assert.Equal(t, []string{"21"}, values(t, res))

	_, err = StaticFunctionCall(static, fnName("count"), IntegerLiteral(1))
	assert.True(t, HasCode(err, CodeNoFunction))
}

func TestInlineFunction(t *testing.T) {
	var (
		x     = QName{Name: "x"}
		y     = QName{Name: "y"}
		f     = QName{Name: "f"}
		adder = InlineFunction(
			[]Param{{Name: "y", Type: Exactly(TypeInteger)}},
			Exactly(TypeInteger),
			Add(VariableRef(x), VariableRef(y)),
		)
	)
	t.Run("closure", func(t *testing.T) {
		expr := Let(x, IntegerLiteral(10), Let(f, adder, DynamicFunctionCall(VariableRef(f), IntegerLiteral(5))))
		res := evaluate(t, expr, EmptySequence())
		assert.Equal(t, []string{"15"}, values(t, res))
	})
	t.Run("captured-scope", func(t *testing.T) {
		expr := Let(x, IntegerLiteral(1), Let(f, adder, Let(x, IntegerLiteral(100), DynamicFunctionCall(VariableRef(f), IntegerLiteral(1)))))
		res := evaluate(t, expr, EmptySequence())
		assert.Equal(t, []string{"2"}, values(t, res))
	})
	t.Run("arity", func(t *testing.T) {
		expr := Let(x, IntegerLiteral(1), DynamicFunctionCall(adder))
		_, err := Evaluate(expr, NewDynamicContext(nil), EmptySequence())
		assert.True(t, HasCode(err, CodeNoFunction))
	})
	t.Run("not-a-function", func(t *testing.T) {
		_, err := Evaluate(DynamicFunctionCall(IntegerLiteral(1)), NewDynamicContext(nil), EmptySequence())
		assert.ErrorIs(t, err, ErrType)
	})
	t.Run("named-reference", func(t *testing.T) {
		upper, err := DefaultLibrary().Lookup(fnName("upper-case"), 1)
		require.NoError(t, err)
		res := evaluate(t, DynamicFunctionCall(NamedFunctionRef(upper), StringLiteral("x")), EmptySequence())
		assert.Equal(t, []string{"X"}, values(t, res))
	})
}

func TestFocusDependentFunction(t *testing.T) {
	_, nodes := catalog(t)
	expr := SimpleMap(RootSearch(child(t, "control")), fn(t, "string", flag(t, "id")))
	res, err := Find(expr, NewDynamicContext(nil), nodes["c2"])
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2", "c3"}, values(t, res))

	expr = SimpleMap(RootSearch(child(t, "group")), fn(t, "count", mustStep(t, AxisChild, AnyName())))
	res, err = Find(expr, NewDynamicContext(nil), nodes["c2"])
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1"}, values(t, res))
}

func TestTracer(t *testing.T) {
	var (
		buf   bytes.Buffer
		calls int
		fn    = countingFunction(Deterministic, &calls)
		ctx   = NewDynamicContext(nil, WithTracer(TraceWriter(&buf)))
		expr  = Comma(FunctionCall(fn, IntegerLiteral(1)), FunctionCall(fn, IntegerLiteral(1)))
	)
	_, err := Evaluate(expr, ctx, EmptySequence())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "start call")
	assert.Contains(t, out, "done call")
	assert.Contains(t, out, "cached result")
	assert.Contains(t, out, "double")

	buf.Reset()
	broken := countingFunction(0, &calls)
	broken.Body = func(_ *DynamicContext, _ []Sequence, _ Item) (Sequence, error) {
		return EmptySequence(), errFailing
	}
	_, err = Evaluate(FunctionCall(broken, IntegerLiteral(1)), ctx, EmptySequence())
	require.ErrorIs(t, err, errFailing)
	assert.Contains(t, buf.String(), "call failed")
}

func TestTracerNil(t *testing.T) {
	var (
		calls int
		fn    = countingFunction(Deterministic, &calls)
		ctx   = NewDynamicContext(nil, WithTracer(nil))
		expr  = Comma(FunctionCall(fn, IntegerLiteral(1)), FunctionCall(fn, IntegerLiteral(1)))
	)
	require.NotPanics(t, func() {
		res, err := Evaluate(expr, ctx, EmptySequence())
		require.NoError(t, err)
		assert.Equal(t, 2, res.Len())
	})
	assert.Equal(t, 1, calls)
}
