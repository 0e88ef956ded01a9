package metapath

// Binding associates a variable with the expression giving its values.
type Binding struct {
	Name QName
	Expr Expr
}

type quantified struct {
	every     bool
	binds     []Binding
	satisfies Expr
}

// Quantified tests satisfies against every combination of the values of the
// bindings. With every set, all the combinations must pass, otherwise one is
// enough.
func Quantified(every bool, binds []Binding, satisfies Expr) Expr {
	return quantified{
		every:     every,
		binds:     binds,
		satisfies: satisfies,
	}
}

// Some is a shortcut for Quantified(false, binds, satisfies).
func Some(binds []Binding, satisfies Expr) Expr {
	return Quantified(false, binds, satisfies)
}

// Every is a shortcut for Quantified(true, binds, satisfies).
func Every(binds []Binding, satisfies Expr) Expr {
	return Quantified(true, binds, satisfies)
}

func (e quantified) Children() []Expr {
	list := make([]Expr, 0, len(e.binds)+1)
	for _, b := range e.binds {
		list = append(list, b.Expr)
	}
	return append(list, e.satisfies)
}

func (_ quantified) BaseType() *ItemType {
	return TypeBoolean
}

func (_ quantified) StaticType() *ItemType {
	return TypeBoolean
}

func (e quantified) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	dims := make([]Sequence, len(e.binds))
	for i, b := range e.binds {
		res, err := b.Expr.Evaluate(ctx, focus)
		if err != nil {
			return EmptySequence(), err
		}
		dims[i] = res.Materialize()
	}
	for tuple := range Product(dims...) {
		sub := ctx.Sub()
		for i, b := range e.binds {
			sub.Bind(b.Name, Singleton(tuple[i]))
		}
		ok, err := evalBoolean(sub, e.satisfies, focus)
		if err != nil {
			return EmptySequence(), err
		}
		if e.every && !ok {
			return Singleton(False), nil
		}
		if !e.every && ok {
			return Singleton(True), nil
		}
	}
	return Singleton(NewBoolean(e.every)), nil
}
