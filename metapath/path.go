package metapath

import (
	"math/big"
	"slices"

	"github.com/midbel/metapath/node"
)

type Axis int8

const (
	AxisSelf Axis = iota
	AxisParent
	AxisFlag
	AxisAncestor
	AxisAncestorOrSelf
	AxisChild
	AxisDescendant
	AxisDescendantOrSelf
	AxisFollowingSibling
	AxisPrecedingSibling
	AxisFollowing
	AxisPreceding
	AxisNamespace
)

func (a Axis) String() string {
	switch a {
	case AxisSelf:
		return "self"
	case AxisParent:
		return "parent"
	case AxisFlag:
		return "flag"
	case AxisAncestor:
		return "ancestor"
	case AxisAncestorOrSelf:
		return "ancestor-or-self"
	case AxisChild:
		return "child"
	case AxisDescendant:
		return "descendant"
	case AxisDescendantOrSelf:
		return "descendant-or-self"
	case AxisFollowingSibling:
		return "following-sibling"
	case AxisPrecedingSibling:
		return "preceding-sibling"
	case AxisFollowing:
		return "following"
	case AxisPreceding:
		return "preceding"
	case AxisNamespace:
		return "namespace"
	default:
		return "<axis>"
	}
}

// principal is the kind of nodes selected by name tests and wildcards on the
// axis.
func (a Axis) principal() node.NodeType {
	if a == AxisFlag {
		return node.TypeFlag
	}
	return node.TypeModel
}

func (a Axis) nodes(n node.Node) []node.Node {
	switch a {
	case AxisSelf:
		return []node.Node{n}
	case AxisParent:
		if p := n.Parent(); p != nil {
			return []node.Node{p}
		}
		return nil
	case AxisFlag:
		return n.Flags()
	case AxisAncestor:
		return node.Ancestors(n)
	case AxisAncestorOrSelf:
		return node.AncestorsOrSelf(n)
	case AxisChild:
		return n.Children()
	case AxisDescendant:
		return node.Descendants(n)
	case AxisDescendantOrSelf:
		return node.DescendantsOrSelf(n)
	case AxisFollowingSibling:
		return node.FollowingSiblings(n)
	case AxisPrecedingSibling:
		return node.PrecedingSiblings(n)
	case AxisFollowing:
		return node.Following(n)
	case AxisPreceding:
		return node.Preceding(n)
	default:
		return nil
	}
}

// NodeTest filters the nodes selected by an axis.
type NodeTest interface {
	Match(node.Node, node.NodeType) bool
	String() string
}

type nameTest struct {
	name QName
}

// NameTest matches the nodes of the principal kind of the axis having the
// given name.
func NameTest(name QName) NodeTest {
	return nameTest{name: name}
}

func (t nameTest) Match(n node.Node, principal node.NodeType) bool {
	return n.Type().Is(principal) && n.QName().Equal(t.name)
}

func (t nameTest) String() string {
	return t.name.String()
}

type kindTest struct {
	kind node.NodeType
}

// KindTest matches the nodes of the given kind, whatever the axis.
func KindTest(kind node.NodeType) NodeTest {
	return kindTest{kind: kind}
}

func (t kindTest) Match(n node.Node, _ node.NodeType) bool {
	return n.Type().Is(t.kind)
}

func (t kindTest) String() string {
	return t.kind.String() + "()"
}

type anyName struct{}

func AnyName() NodeTest {
	return anyName{}
}

func (_ anyName) Match(n node.Node, principal node.NodeType) bool {
	return n.Type().Is(principal)
}

func (_ anyName) String() string {
	return "*"
}

type anyLocal struct {
	space string
}

// AnyLocal matches any local name in the given namespace.
func AnyLocal(space string) NodeTest {
	return anyLocal{space: space}
}

func (t anyLocal) Match(n node.Node, principal node.NodeType) bool {
	return n.Type().Is(principal) && n.QName().Space == t.space
}

func (t anyLocal) String() string {
	return "{" + t.space + "}*"
}

type anySpace struct {
	local string
}

// AnySpace matches the local name in any namespace.
func AnySpace(local string) NodeTest {
	return anySpace{local: local}
}

func (t anySpace) Match(n node.Node, principal node.NodeType) bool {
	return n.Type().Is(principal) && n.QName().Name == t.local
}

func (t anySpace) String() string {
	return "*:" + t.local
}

type step struct {
	axis Axis
	test NodeTest
}

// Step selects the nodes of the axis that pass the test. The namespace axis is
// not supported.
func Step(axis Axis, test NodeTest) (Expr, error) {
	if axis == AxisNamespace {
		return nil, staticError(CodeAxisNamespace, "namespace axis is not supported")
	}
	return step{
		axis: axis,
		test: test,
	}, nil
}

func (_ step) Children() []Expr {
	return nil
}

func (_ step) BaseType() *ItemType {
	return TypeNode
}

func (e step) StaticType() *ItemType {
	if k, ok := e.test.(kindTest); ok {
		switch k.kind {
		case node.TypeDocument:
			return TypeDocument
		case node.TypeAssembly:
			return TypeAssembly
		case node.TypeField:
			return TypeField
		case node.TypeFlag:
			return TypeFlag
		}
	}
	if e.axis == AxisFlag {
		return TypeFlag
	}
	return TypeNode
}

func (e step) Evaluate(_ *DynamicContext, focus Sequence) (Sequence, error) {
	var (
		list []Item
		seen = make(map[node.Node]struct{})
	)
	for item := range focus.All() {
		n, ok := item.(NodeItem)
		if !ok {
			return EmptySequence(), typeError("axis %s requires a node, got %s", e.axis, item.Type())
		}
		for _, x := range e.axis.nodes(n.node) {
			if !e.test.Match(x, e.axis.principal()) {
				continue
			}
			if _, ok := seen[x]; ok {
				continue
			}
			seen[x] = struct{}{}
			list = append(list, NewNode(x))
		}
	}
	return NewSequence(list...), nil
}

type predicate struct {
	base  Expr
	preds []Expr
}

// Predicate filters the result of base. A predicate giving a number keeps the
// item at that position, any other predicate keeps the items for which its
// effective boolean value is true.
func Predicate(base Expr, preds ...Expr) Expr {
	return predicate{
		base:  base,
		preds: preds,
	}
}

func (e predicate) Children() []Expr {
	return append([]Expr{e.base}, e.preds...)
}

func (e predicate) BaseType() *ItemType {
	return e.base.BaseType()
}

func (e predicate) StaticType() *ItemType {
	return e.base.StaticType()
}

func (e predicate) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	res, err := e.base.Evaluate(ctx, focus)
	if err != nil {
		return res, err
	}
	items := res.Items()
	for _, p := range e.preds {
		var keep []Item
		for i, item := range items {
			ok, err := testPredicate(ctx, p, item, i+1)
			if err != nil {
				return EmptySequence(), err
			}
			if ok {
				keep = append(keep, item)
			}
		}
		items = keep
	}
	return NewSequence(items...), nil
}

func testPredicate(ctx *DynamicContext, pred Expr, item Item, pos int) (bool, error) {
	res, err := pred.Evaluate(ctx, Singleton(item))
	if err != nil {
		return false, err
	}
	res = res.Materialize()
	if res.Len() == 1 {
		first, _ := res.First()
		if n, ok := first.(numericItem); ok {
			return compareNumeric(n, integerItem{value: big.NewInt(int64(pos))}) == 0, nil
		}
	}
	return EffectiveBooleanValue(res)
}

type relativePath struct {
	left  Expr
	right Expr
}

// RelativePath evaluates right once per item of left.
func RelativePath(left, right Expr) Expr {
	return relativePath{
		left:  left,
		right: right,
	}
}

func (e relativePath) Children() []Expr {
	return []Expr{e.left, e.right}
}

func (_ relativePath) BaseType() *ItemType {
	return TypeNode
}

func (e relativePath) StaticType() *ItemType {
	return e.right.StaticType()
}

func (e relativePath) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	left, err := e.left.Evaluate(ctx, focus)
	if err != nil {
		return left, err
	}
	return pathFrom(ctx, e.right, left.Materialize())
}

func pathFrom(ctx *DynamicContext, expr Expr, left Sequence) (Sequence, error) {
	if left.IsEmpty() {
		return left, nil
	}
	var list []Sequence
	for item := range left.All() {
		res, err := expr.Evaluate(ctx, Singleton(item))
		if err != nil {
			return res, err
		}
		list = append(list, res)
	}
	return pathResult(list)
}

// pathResult merges the results of the right operand of a path. Nodes are
// deduplicated, other items are kept as they are and a mix of both is a type
// error.
func pathResult(list []Sequence) (Sequence, error) {
	var (
		res    = Concat(list...).Materialize()
		nodes  int
		others int
	)
	for item := range res.All() {
		if _, ok := item.(NodeItem); ok {
			nodes++
		} else {
			others++
		}
	}
	switch {
	case nodes > 0 && others > 0:
		return EmptySequence(), typeError("path result mixes %d node(s) and %d other item(s)", nodes, others)
	case nodes > 0:
		return res.Distinct(), nil
	default:
		return res, nil
	}
}

type relativeSearch struct {
	left  Expr
	right Expr
}

// RelativeSearch applies right to each node of left and to all their
// descendants.
func RelativeSearch(left, right Expr) Expr {
	return relativeSearch{
		left:  left,
		right: right,
	}
}

func (e relativeSearch) Children() []Expr {
	return []Expr{e.left, e.right}
}

func (_ relativeSearch) BaseType() *ItemType {
	return TypeNode
}

func (e relativeSearch) StaticType() *ItemType {
	return e.right.StaticType()
}

func (e relativeSearch) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	left, err := e.left.Evaluate(ctx, focus)
	if err != nil {
		return left, err
	}
	return search(ctx, e.right, left.Materialize())
}

type root struct{}

// Root selects the root of each node of the focus.
func Root() Expr {
	return root{}
}

func (_ root) Children() []Expr {
	return nil
}

func (_ root) BaseType() *ItemType {
	return TypeNode
}

func (_ root) StaticType() *ItemType {
	return TypeNode
}

func (_ root) Evaluate(_ *DynamicContext, focus Sequence) (Sequence, error) {
	return rootsOf(focus)
}

type rootPath struct {
	expr Expr
}

// RootPath evaluates expr against the root of each node of the focus.
func RootPath(expr Expr) Expr {
	return rootPath{expr: expr}
}

func (e rootPath) Children() []Expr {
	return []Expr{e.expr}
}

func (_ rootPath) BaseType() *ItemType {
	return TypeNode
}

func (e rootPath) StaticType() *ItemType {
	return e.expr.StaticType()
}

func (e rootPath) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	roots, err := rootsOf(focus)
	if err != nil {
		return roots, err
	}
	return pathFrom(ctx, e.expr, roots)
}

type rootSearch struct {
	expr Expr
}

// RootSearch applies expr to the root of each node of the focus and to all its
// descendants.
func RootSearch(expr Expr) Expr {
	return rootSearch{expr: expr}
}

func (e rootSearch) Children() []Expr {
	return []Expr{e.expr}
}

func (_ rootSearch) BaseType() *ItemType {
	return TypeNode
}

func (e rootSearch) StaticType() *ItemType {
	return e.expr.StaticType()
}

func (e rootSearch) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	roots, err := rootsOf(focus)
	if err != nil {
		return roots, err
	}
	return search(ctx, e.expr, roots)
}

func rootsOf(focus Sequence) (Sequence, error) {
	if focus.IsEmpty() {
		return EmptySequence(), contextAbsent()
	}
	var list []Item
	for item := range focus.All() {
		n, ok := item.(NodeItem)
		if !ok {
			return EmptySequence(), typeError("root requires a node, got %s", item.Type())
		}
		list = append(list, NewNode(node.Root(n.node)))
	}
	return NewSequence(list...).Distinct(), nil
}

// search applies expr to every node of focus, their flags and their model
// descendants. The traversal uses an explicit stack. A cyclic node is visited
// but not descended into, so expr still reaches its children.
func search(ctx *DynamicContext, expr Expr, focus Sequence) (Sequence, error) {
	var stack []node.Node
	for _, item := range slices.Backward(focus.Items()) {
		n, ok := item.(NodeItem)
		if !ok {
			return EmptySequence(), typeError("search requires a node, got %s", item.Type())
		}
		stack = append(stack, n.node)
	}
	var list []Sequence
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		res, err := expr.Evaluate(ctx, Singleton(NewNode(curr)))
		if err != nil {
			return res, err
		}
		list = append(list, res.Materialize())
		if curr.Cyclic() {
			continue
		}
		kids := curr.Children()
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
		flags := curr.Flags()
		for i := len(flags) - 1; i >= 0; i-- {
			stack = append(stack, flags[i])
		}
	}
	return pathResult(list)
}
