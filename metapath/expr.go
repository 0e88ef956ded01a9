package metapath

import (
	"math/big"
	"strings"
	"sync"

	"github.com/midbel/metapath/node"
)

// Expr is a node of a compiled expression tree. Trees are immutable and can
// be evaluated any number of times, possibly concurrently, against different
// contexts.
type Expr interface {
	Children() []Expr
	// BaseType is the type of the items the expression is declared to produce.
	BaseType() *ItemType
	// StaticType narrows BaseType from the static types of the children.
	StaticType() *ItemType
	Evaluate(*DynamicContext, Sequence) (Sequence, error)
}

// Evaluate evaluates expr against the focus and returns a materialized result.
func Evaluate(expr Expr, ctx *DynamicContext, focus Sequence) (Sequence, error) {
	res, err := expr.Evaluate(ctx, focus)
	if err != nil {
		return EmptySequence(), err
	}
	return res.Materialize(), nil
}

// Find evaluates expr with the given node as focus.
func Find(expr Expr, ctx *DynamicContext, n node.Node) (Sequence, error) {
	return Evaluate(expr, ctx, Singleton(NewNode(n)))
}

type literal struct {
	value Atomic
}

func Literal(value Atomic) Expr {
	return literal{value: value}
}

func StringLiteral(str string) Expr {
	return Literal(NewString(str))
}

func IntegerLiteral(n int64) Expr {
	return Literal(NewInteger(n))
}

func BigIntegerLiteral(n *big.Int) Expr {
	return Literal(NewBigInteger(n))
}

func DecimalLiteral(str string) (Expr, error) {
	d, err := ParseDecimal(str)
	if err != nil {
		return nil, err
	}
	return Literal(d), nil
}

// Unquote removes the delimiters of a string literal token and collapses the
// doubled delimiters it contains.
func Unquote(str string) string {
	if len(str) < 2 {
		return str
	}
	quote := str[0]
	if (quote != '"' && quote != '\'') || str[len(str)-1] != quote {
		return str
	}
	q := string(quote)
	return strings.ReplaceAll(str[1:len(str)-1], q+q, q)
}

func (_ literal) Children() []Expr {
	return nil
}

func (e literal) BaseType() *ItemType {
	return e.value.Type()
}

func (e literal) StaticType() *ItemType {
	return e.value.Type()
}

func (e literal) Evaluate(_ *DynamicContext, _ Sequence) (Sequence, error) {
	return Singleton(e.value), nil
}

type empty struct{}

var emptyNode = sync.OnceValue(func() Expr {
	return &empty{}
})

// Empty returns the shared empty sequence expression.
func Empty() Expr {
	return emptyNode()
}

func (_ *empty) Children() []Expr {
	return nil
}

func (_ *empty) BaseType() *ItemType {
	return TypeItem
}

func (_ *empty) StaticType() *ItemType {
	return TypeItem
}

func (_ *empty) Evaluate(_ *DynamicContext, _ Sequence) (Sequence, error) {
	return EmptySequence(), nil
}

type contextItem struct{}

var contextNode = sync.OnceValue(func() Expr {
	return &contextItem{}
})

// ContextItem returns the shared "." expression.
func ContextItem() Expr {
	return contextNode()
}

func (_ *contextItem) Children() []Expr {
	return nil
}

func (_ *contextItem) BaseType() *ItemType {
	return TypeItem
}

func (_ *contextItem) StaticType() *ItemType {
	return TypeItem
}

func (_ *contextItem) Evaluate(_ *DynamicContext, focus Sequence) (Sequence, error) {
	if focus.IsEmpty() {
		return focus, contextAbsent()
	}
	return focus, nil
}

type comma struct {
	all []Expr
}

// Comma concatenates the results of the given expressions.
func Comma(all ...Expr) Expr {
	return comma{all: all}
}

func (e comma) Children() []Expr {
	return e.all
}

func (_ comma) BaseType() *ItemType {
	return TypeItem
}

func (e comma) StaticType() *ItemType {
	return analyzeStaticType(TypeItem, e.all)
}

func (e comma) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	list := make([]Sequence, 0, len(e.all))
	for _, x := range e.all {
		res, err := x.Evaluate(ctx, focus)
		if err != nil {
			return res, err
		}
		list = append(list, res)
	}
	return Concat(list...), nil
}

type stringConcat struct {
	all []Expr
}

// StringConcat joins the string values of its operands. An empty operand
// counts as the empty string.
func StringConcat(all ...Expr) Expr {
	return stringConcat{all: all}
}

func (e stringConcat) Children() []Expr {
	return e.all
}

func (_ stringConcat) BaseType() *ItemType {
	return TypeString
}

func (_ stringConcat) StaticType() *ItemType {
	return TypeString
}

func (e stringConcat) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	var str strings.Builder
	for _, x := range e.all {
		res, err := x.Evaluate(ctx, focus)
		if err != nil {
			return res, err
		}
		if res, err = res.Atomize(); err != nil {
			return res, err
		}
		for item := range res.All() {
			str.WriteString(item.(Atomic).String())
		}
	}
	return Singleton(NewString(str.String())), nil
}

type variable struct {
	name QName
}

func VariableRef(name QName) Expr {
	return variable{name: name}
}

func (_ variable) Children() []Expr {
	return nil
}

func (_ variable) BaseType() *ItemType {
	return TypeItem
}

func (_ variable) StaticType() *ItemType {
	return TypeItem
}

func (e variable) Evaluate(ctx *DynamicContext, _ Sequence) (Sequence, error) {
	return ctx.Variable(e.name)
}

type let struct {
	name  QName
	bound Expr
	body  Expr
}

// Let binds the result of bound to name while evaluating body.
func Let(name QName, bound, body Expr) Expr {
	return let{
		name:  name,
		bound: bound,
		body:  body,
	}
}

func (e let) Children() []Expr {
	return []Expr{e.bound, e.body}
}

func (e let) BaseType() *ItemType {
	return e.body.BaseType()
}

func (e let) StaticType() *ItemType {
	return e.body.StaticType()
}

func (e let) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	value, err := e.bound.Evaluate(ctx, focus)
	if err != nil {
		return value, err
	}
	sub := ctx.Sub()
	sub.Bind(e.name, value)
	return e.body.Evaluate(sub, focus)
}

type loop struct {
	name QName
	in   Expr
	body Expr
}

// For evaluates body once per item of in, with the item bound to name, and
// concatenates the results.
func For(name QName, in, body Expr) Expr {
	return loop{
		name: name,
		in:   in,
		body: body,
	}
}

func (e loop) Children() []Expr {
	return []Expr{e.in, e.body}
}

func (_ loop) BaseType() *ItemType {
	return TypeItem
}

func (e loop) StaticType() *ItemType {
	return e.body.StaticType()
}

func (e loop) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	in, err := e.in.Evaluate(ctx, focus)
	if err != nil {
		return in, err
	}
	var list []Sequence
	for item := range in.All() {
		sub := ctx.Sub()
		sub.Bind(e.name, Singleton(item))

		res, err := e.body.Evaluate(sub, focus)
		if err != nil {
			return res, err
		}
		list = append(list, res.Materialize())
	}
	return Concat(list...), nil
}

type conditional struct {
	test Expr
	csq  Expr
	alt  Expr
}

func If(test, csq, alt Expr) Expr {
	return conditional{
		test: test,
		csq:  csq,
		alt:  alt,
	}
}

func (e conditional) Children() []Expr {
	return []Expr{e.test, e.csq, e.alt}
}

func (_ conditional) BaseType() *ItemType {
	return TypeItem
}

func (e conditional) StaticType() *ItemType {
	return analyzeStaticType(TypeItem, []Expr{e.csq, e.alt})
}

func (e conditional) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	ok, err := evalBoolean(ctx, e.test, focus)
	if err != nil {
		return EmptySequence(), err
	}
	if ok {
		return e.csq.Evaluate(ctx, focus)
	}
	return e.alt.Evaluate(ctx, focus)
}

type simpleMap struct {
	left  Expr
	right Expr
}

// SimpleMap evaluates right once per item of left, the item being the focus.
func SimpleMap(left, right Expr) Expr {
	return simpleMap{
		left:  left,
		right: right,
	}
}

func (e simpleMap) Children() []Expr {
	return []Expr{e.left, e.right}
}

func (_ simpleMap) BaseType() *ItemType {
	return TypeItem
}

func (e simpleMap) StaticType() *ItemType {
	return e.right.StaticType()
}

func (e simpleMap) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	left, err := e.left.Evaluate(ctx, focus)
	if err != nil {
		return left, err
	}
	var list []Sequence
	for item := range left.All() {
		res, err := e.right.Evaluate(ctx, Singleton(item))
		if err != nil {
			return res, err
		}
		list = append(list, res.Materialize())
	}
	return Concat(list...), nil
}

type rng struct {
	start Expr
	end   Expr
}

// Range produces the ascending integers from start to end. The result is
// empty when start is greater than end or when a bound is empty.
func Range(start, end Expr) Expr {
	return rng{
		start: start,
		end:   end,
	}
}

func (e rng) Children() []Expr {
	return []Expr{e.start, e.end}
}

func (_ rng) BaseType() *ItemType {
	return TypeInteger
}

func (_ rng) StaticType() *ItemType {
	return TypeInteger
}

func (e rng) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	start, err := integerOperand(ctx, e.start, focus)
	if err != nil || start == nil {
		return EmptySequence(), err
	}
	end, err := integerOperand(ctx, e.end, focus)
	if err != nil || end == nil {
		return EmptySequence(), err
	}
	if start.Cmp(end) > 0 {
		return EmptySequence(), nil
	}
	fn := func(yield func(Item) bool) {
		one := big.NewInt(1)
		for n := new(big.Int).Set(start); n.Cmp(end) <= 0; n.Add(n, one) {
			if !yield(NewBigInteger(n)) {
				return
			}
		}
	}
	return Stream(fn), nil
}

func integerOperand(ctx *DynamicContext, expr Expr, focus Sequence) (*big.Int, error) {
	item, err := atomicOperand(ctx, expr, focus)
	if err != nil || item == nil {
		return nil, err
	}
	if u, ok := item.(untypedItem); ok {
		if item, err = ParseInteger(string(u)); err != nil {
			return nil, err
		}
	}
	i, ok := item.(integerItem)
	if !ok {
		return nil, typeError("range bound must be an integer, got %s", item.Type())
	}
	return i.value, nil
}

// atomicOperand evaluates expr and atomizes its result that must have at most
// one item. A nil item is returned for an empty result.
func atomicOperand(ctx *DynamicContext, expr Expr, focus Sequence) (Atomic, error) {
	res, err := expr.Evaluate(ctx, focus)
	if err != nil {
		return nil, err
	}
	if res, err = res.Atomize(); err != nil {
		return nil, err
	}
	item, err := res.One()
	if err != nil || item == nil {
		return nil, err
	}
	return item.(Atomic), nil
}

type and struct {
	all []Expr
}

func And(all ...Expr) Expr {
	return and{all: all}
}

func (e and) Children() []Expr {
	return e.all
}

func (_ and) BaseType() *ItemType {
	return TypeBoolean
}

func (_ and) StaticType() *ItemType {
	return TypeBoolean
}

func (e and) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	for _, x := range e.all {
		ok, err := evalBoolean(ctx, x, focus)
		if err != nil {
			return EmptySequence(), err
		}
		if !ok {
			return Singleton(False), nil
		}
	}
	return Singleton(True), nil
}

type or struct {
	all []Expr
}

func Or(all ...Expr) Expr {
	return or{all: all}
}

func (e or) Children() []Expr {
	return e.all
}

func (_ or) BaseType() *ItemType {
	return TypeBoolean
}

func (_ or) StaticType() *ItemType {
	return TypeBoolean
}

func (e or) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	for _, x := range e.all {
		ok, err := evalBoolean(ctx, x, focus)
		if err != nil {
			return EmptySequence(), err
		}
		if ok {
			return Singleton(True), nil
		}
	}
	return Singleton(False), nil
}

func evalBoolean(ctx *DynamicContext, expr Expr, focus Sequence) (bool, error) {
	res, err := expr.Evaluate(ctx, focus)
	if err != nil {
		return false, err
	}
	return EffectiveBooleanValue(res)
}
