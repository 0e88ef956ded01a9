package metapath

// MapConstructorEntry is a key/value pair of a map constructor.
type MapConstructorEntry struct {
	Key   Expr
	Value Expr
}

type mapConstructor struct {
	entries []MapConstructorEntry
}

// MapConstructor builds a map item. Each key must atomize to exactly one
// value. A key given more than once keeps its last value.
func MapConstructor(entries ...MapConstructorEntry) Expr {
	return mapConstructor{entries: entries}
}

func (e mapConstructor) Children() []Expr {
	list := make([]Expr, 0, len(e.entries)*2)
	for _, x := range e.entries {
		list = append(list, x.Key, x.Value)
	}
	return list
}

func (_ mapConstructor) BaseType() *ItemType {
	return TypeMap
}

func (_ mapConstructor) StaticType() *ItemType {
	return TypeMap
}

func (e mapConstructor) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	entries := make([]MapEntry, 0, len(e.entries))
	for _, x := range e.entries {
		keys, err := x.Key.Evaluate(ctx, focus)
		if err != nil {
			return EmptySequence(), err
		}
		if keys, err = keys.Atomize(); err != nil {
			return EmptySequence(), err
		}
		if keys.Len() != 1 {
			return EmptySequence(), typeError("map key must be a single atomic value, got %d values", keys.Len())
		}
		key, _ := keys.First()
		value, err := x.Value.Evaluate(ctx, focus)
		if err != nil {
			return EmptySequence(), err
		}
		entries = append(entries, MapEntry{Key: key.(Atomic), Value: value})
	}
	return Singleton(NewMap(entries...)), nil
}

type curlyArray struct {
	expr Expr
}

// CurlyArray builds an array with one member per item of expr.
func CurlyArray(expr Expr) Expr {
	return curlyArray{expr: expr}
}

func (e curlyArray) Children() []Expr {
	if e.expr == nil {
		return nil
	}
	return []Expr{e.expr}
}

func (_ curlyArray) BaseType() *ItemType {
	return TypeArray
}

func (_ curlyArray) StaticType() *ItemType {
	return TypeArray
}

func (e curlyArray) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	if e.expr == nil {
		return Singleton(NewArray()), nil
	}
	res, err := e.expr.Evaluate(ctx, focus)
	if err != nil {
		return EmptySequence(), err
	}
	var members []Sequence
	for item := range res.All() {
		members = append(members, Singleton(item))
	}
	return Singleton(NewArray(members...)), nil
}

type squareArray struct {
	all []Expr
}

// SquareArray builds an array with one member per expression. Each member is
// the whole result of its expression.
func SquareArray(all ...Expr) Expr {
	return squareArray{all: all}
}

func (e squareArray) Children() []Expr {
	return e.all
}

func (_ squareArray) BaseType() *ItemType {
	return TypeArray
}

func (_ squareArray) StaticType() *ItemType {
	return TypeArray
}

func (e squareArray) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	members := make([]Sequence, 0, len(e.all))
	for _, x := range e.all {
		res, err := x.Evaluate(ctx, focus)
		if err != nil {
			return EmptySequence(), err
		}
		members = append(members, res)
	}
	return Singleton(NewArray(members...)), nil
}
