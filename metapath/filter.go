package metapath

type union struct {
	all []Expr
}

// Union returns the distinct items of all its operands, in order of first
// occurrence.
func Union(all ...Expr) Expr {
	return union{all: all}
}

func (e union) Children() []Expr {
	return e.all
}

func (_ union) BaseType() *ItemType {
	return TypeItem
}

func (e union) StaticType() *ItemType {
	return analyzeStaticType(TypeItem, e.all)
}

func (e union) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	focus = focus.Materialize()
	list := make([]Sequence, 0, len(e.all))
	for _, x := range e.all {
		res, err := x.Evaluate(ctx, focus)
		if err != nil {
			return EmptySequence(), err
		}
		list = append(list, res)
	}
	return Concat(list...).Distinct(), nil
}

// filterExpr is the shape shared by intersect and except: both operands are
// evaluated against the same focus then the distinct items of left are kept or
// dropped depending on their presence in right.
type filterExpr struct {
	left  Expr
	right Expr
	keep  func(itemSet, Item) bool
}

func (e filterExpr) Children() []Expr {
	return []Expr{e.left, e.right}
}

func (_ filterExpr) BaseType() *ItemType {
	return TypeItem
}

func (e filterExpr) StaticType() *ItemType {
	return e.left.StaticType()
}

func (e filterExpr) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	focus = focus.Materialize()
	left, err := e.left.Evaluate(ctx, focus)
	if err != nil {
		return EmptySequence(), err
	}
	right, err := e.right.Evaluate(ctx, focus)
	if err != nil {
		return EmptySequence(), err
	}
	set := setOf(right)
	res := left.Distinct().Filter(func(item Item) bool {
		return e.keep(set, item)
	})
	return res, nil
}

type intersect struct {
	filterExpr
}

// Intersect keeps the items of left that also occur in right.
func Intersect(left, right Expr) Expr {
	e := filterExpr{
		left:  left,
		right: right,
		keep: func(set itemSet, item Item) bool {
			return set.Has(item)
		},
	}
	return intersect{filterExpr: e}
}

type except struct {
	filterExpr
}

// Except keeps the items of left that do not occur in right.
func Except(left, right Expr) Expr {
	e := filterExpr{
		left:  left,
		right: right,
		keep: func(set itemSet, item Item) bool {
			return !set.Has(item)
		},
	}
	return except{filterExpr: e}
}
