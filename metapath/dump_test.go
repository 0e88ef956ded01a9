package metapath

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func TestDebug(t *testing.T) {
	var (
		x = QName{Name: "x"}
		y = QName{Name: "y"}
		m = QName{Name: "m"}
	)
	decimal, err := DecimalLiteral("1.5")
	require.NoError(t, err)
	upper, err := DefaultLibrary().Lookup(fnName("upper-case"), 1)
	require.NoError(t, err)

	tests := []struct {
		Name string
		Expr Expr
	}{
		{
			Name: "arithmetic",
			Expr: Add(IntegerLiteral(1), Multiply(IntegerLiteral(2), decimal)),
		},
		{
			Name: "path",
			Expr: RootSearch(Predicate(child(t, "control"), GeneralCompare(OpEqual, flag(t, "class"), StringLiteral("low")))),
		},
		{
			Name: "flwor",
			Expr: Let(x, Range(IntegerLiteral(1), IntegerLiteral(3)), For(y, VariableRef(x), If(
				ValueCompare(OpGreater, VariableRef(y), IntegerLiteral(1)),
				VariableRef(y),
				Empty(),
			))),
		},
		{
			Name: "quantified",
			Expr: Some([]Binding{{Name: x, Expr: integers(1, 2)}}, ValueCompare(OpEqual, VariableRef(x), IntegerLiteral(2))),
		},
		{
			Name: "constructors",
			Expr: MapConstructor(MapConstructorEntry{
				Key:   StringLiteral("a"),
				Value: SquareArray(IntegerLiteral(1), CurlyArray(nil)),
			}),
		},
		{
			Name: "lookup",
			Expr: Comma(PostfixLookup(VariableRef(m), NameKey("name")), UnaryLookup(WildcardKey())),
		},
		{
			Name: "functions",
			Expr: Comma(
				fn(t, "count", ContextItem()),
				NamedFunctionRef(upper),
				InlineFunction([]Param{{Name: "x", Type: Exactly(TypeInteger)}}, Exactly(TypeInteger), VariableRef(x)),
				Cast(StringLiteral("1"), TypeInteger, true),
				InstanceOf(IntegerLiteral(1), Many(TypeInteger)),
			),
		},
	}
	g := goldie.New(t)
	for _, c := range tests {
		t.Run(c.Name, func(t *testing.T) {
			g.Assert(t, c.Name, []byte(Debug(c.Expr)))
		})
	}
}
