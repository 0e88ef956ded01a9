package metapath

import (
	"strconv"
)

// KeySpecifier selects entries of maps and members of arrays.
type KeySpecifier interface {
	// lookup applies the key to target. Focus is the focus of the lookup
	// expression, used by computed keys.
	lookup(ctx *DynamicContext, focus Sequence, target Item) (Sequence, error)
	String() string
}

type nameKey struct {
	name string
}

// NameKey is the ?name form. It only applies to maps.
func NameKey(name string) KeySpecifier {
	return nameKey{name: name}
}

func (k nameKey) lookup(_ *DynamicContext, _ Sequence, target Item) (Sequence, error) {
	switch t := target.(type) {
	case *MapItem:
		res, _ := t.Get(NewString(k.name))
		return res, nil
	case *ArrayItem:
		return EmptySequence(), typeError("array lookup requires an integer key, got %q", k.name)
	default:
		return EmptySequence(), lookupTargetError(target)
	}
}

func (k nameKey) String() string {
	return k.name
}

type integerKey struct {
	index int
}

// IntegerKey is the ?1 form: a 1-based position in an array or an integer key
// in a map.
func IntegerKey(index int) KeySpecifier {
	return integerKey{index: index}
}

func (k integerKey) lookup(_ *DynamicContext, _ Sequence, target Item) (Sequence, error) {
	switch t := target.(type) {
	case *MapItem:
		res, _ := t.Get(NewInteger(int64(k.index)))
		return res, nil
	case *ArrayItem:
		return t.Get(k.index)
	default:
		return EmptySequence(), lookupTargetError(target)
	}
}

func (k integerKey) String() string {
	return strconv.Itoa(k.index)
}

type wildcardKey struct{}

// WildcardKey is the ?* form: all the values of a map or all the members of an
// array.
func WildcardKey() KeySpecifier {
	return wildcardKey{}
}

func (_ wildcardKey) lookup(_ *DynamicContext, _ Sequence, target Item) (Sequence, error) {
	switch t := target.(type) {
	case *MapItem:
		var list []Sequence
		for _, v := range t.Entries() {
			list = append(list, v)
		}
		return Concat(list...), nil
	case *ArrayItem:
		return t.Flatten(), nil
	default:
		return EmptySequence(), lookupTargetError(target)
	}
}

func (_ wildcardKey) String() string {
	return "*"
}

type exprKey struct {
	expr Expr
}

// ExprKey is the ?(expr) form. Each atomic value of expr is used as a key.
func ExprKey(expr Expr) KeySpecifier {
	return exprKey{expr: expr}
}

func (k exprKey) lookup(ctx *DynamicContext, focus Sequence, target Item) (Sequence, error) {
	keys, err := k.expr.Evaluate(ctx, focus)
	if err != nil {
		return EmptySequence(), err
	}
	if keys, err = keys.Atomize(); err != nil {
		return EmptySequence(), err
	}
	var list []Sequence
	for key := range keys.All() {
		res, err := lookupKey(target, key.(Atomic))
		if err != nil {
			return EmptySequence(), err
		}
		list = append(list, res)
	}
	return Concat(list...), nil
}

func (k exprKey) String() string {
	return "(expr)"
}

// lookupKey applies a single atomic key to a map or an array.
func lookupKey(target Item, key Atomic) (Sequence, error) {
	switch t := target.(type) {
	case *MapItem:
		res, _ := t.Get(key)
		return res, nil
	case *ArrayItem:
		pos, err := arrayIndex(key)
		if err != nil {
			return EmptySequence(), err
		}
		return t.Get(pos)
	default:
		return EmptySequence(), lookupTargetError(target)
	}
}

func arrayIndex(key Atomic) (int, error) {
	if u, ok := key.(untypedItem); ok {
		x, err := ParseInteger(string(u))
		if err != nil {
			return 0, err
		}
		key = x
	}
	i, ok := key.(integerItem)
	if !ok {
		return 0, typeError("array lookup requires an integer key, got %s", key.Type())
	}
	pos, ok := i.Int()
	if !ok {
		return 0, newError(ErrArray, CodeIndexOutOfBounds, "index %s is out of bounds", i)
	}
	return pos, nil
}

func lookupTargetError(target Item) error {
	return typeError("lookup requires a map or an array, got %s", target.Type())
}

type unaryLookup struct {
	key KeySpecifier
}

// UnaryLookup applies key to every item of the focus.
func UnaryLookup(key KeySpecifier) Expr {
	return unaryLookup{key: key}
}

func (e unaryLookup) Children() []Expr {
	if k, ok := e.key.(exprKey); ok {
		return []Expr{k.expr}
	}
	return nil
}

func (_ unaryLookup) BaseType() *ItemType {
	return TypeItem
}

func (_ unaryLookup) StaticType() *ItemType {
	return TypeItem
}

func (e unaryLookup) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	focus = focus.Materialize()
	return applyKey(ctx, e.key, focus, focus)
}

type postfixLookup struct {
	base Expr
	key  KeySpecifier
}

// PostfixLookup applies key to every item of the result of base.
func PostfixLookup(base Expr, key KeySpecifier) Expr {
	return postfixLookup{
		base: base,
		key:  key,
	}
}

func (e postfixLookup) Children() []Expr {
	list := []Expr{e.base}
	if k, ok := e.key.(exprKey); ok {
		list = append(list, k.expr)
	}
	return list
}

func (_ postfixLookup) BaseType() *ItemType {
	return TypeItem
}

func (_ postfixLookup) StaticType() *ItemType {
	return TypeItem
}

func (e postfixLookup) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	base, err := e.base.Evaluate(ctx, focus)
	if err != nil {
		return EmptySequence(), err
	}
	return applyKey(ctx, e.key, focus, base)
}

func applyKey(ctx *DynamicContext, key KeySpecifier, focus, targets Sequence) (Sequence, error) {
	var list []Sequence
	for item := range targets.All() {
		res, err := key.lookup(ctx, focus, item)
		if err != nil {
			return EmptySequence(), err
		}
		list = append(list, res)
	}
	return Concat(list...), nil
}

type functionCallAccessor struct {
	base Expr
	key  Expr
}

// FunctionCallAccessor is the target(key) form applied to maps and arrays. The
// key must be a single atomic value.
func FunctionCallAccessor(base, key Expr) Expr {
	return functionCallAccessor{
		base: base,
		key:  key,
	}
}

func (e functionCallAccessor) Children() []Expr {
	return []Expr{e.base, e.key}
}

func (_ functionCallAccessor) BaseType() *ItemType {
	return TypeItem
}

func (_ functionCallAccessor) StaticType() *ItemType {
	return TypeItem
}

func (e functionCallAccessor) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	base, err := e.base.Evaluate(ctx, focus)
	if err != nil {
		return EmptySequence(), err
	}
	keys, err := e.key.Evaluate(ctx, focus)
	if err != nil {
		return EmptySequence(), err
	}
	if keys, err = keys.Atomize(); err != nil {
		return EmptySequence(), err
	}
	if keys.Len() != 1 {
		return EmptySequence(), staticError(CodeNoFunction, "accessor requires a single key, got %d", keys.Len())
	}
	key, _ := keys.First()
	var list []Sequence
	for item := range base.All() {
		res, err := lookupKey(item, key.(Atomic))
		if err != nil {
			return EmptySequence(), err
		}
		list = append(list, res)
	}
	return Concat(list...), nil
}
