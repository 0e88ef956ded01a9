package metapath

type functionCall struct {
	fn   *Function
	args []Expr
}

// FunctionCall invokes fn with the results of args evaluated against the
// focus.
func FunctionCall(fn *Function, args ...Expr) Expr {
	return functionCall{
		fn:   fn,
		args: args,
	}
}

// StaticFunctionCall resolves the function from the static context. An error
// is returned when no function with that name accepts the number of
// arguments.
func StaticFunctionCall(static *StaticContext, name QName, args ...Expr) (Expr, error) {
	if static == nil {
		static = DefaultStaticContext()
	}
	fn, err := static.Function(name, len(args))
	if err != nil {
		return nil, err
	}
	return FunctionCall(fn, args...), nil
}

func (e functionCall) Function() *Function {
	return e.fn
}

func (e functionCall) Children() []Expr {
	return e.args
}

func (e functionCall) BaseType() *ItemType {
	if e.fn.Result.Type == nil {
		return TypeItem
	}
	return e.fn.Result.Type
}

func (e functionCall) StaticType() *ItemType {
	return e.BaseType()
}

func (e functionCall) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	args, err := evaluateArgs(ctx, e.args, focus)
	if err != nil {
		return EmptySequence(), err
	}
	return e.fn.Execute(ctx, args, focus)
}

func evaluateArgs(ctx *DynamicContext, exprs []Expr, focus Sequence) ([]Sequence, error) {
	args := make([]Sequence, 0, len(exprs))
	for _, x := range exprs {
		res, err := x.Evaluate(ctx, focus)
		if err != nil {
			return nil, err
		}
		args = append(args, res.Materialize())
	}
	return args, nil
}

type namedFunctionRef struct {
	fn *Function
}

// NamedFunctionRef gives fn as a function item.
func NamedFunctionRef(fn *Function) Expr {
	return namedFunctionRef{fn: fn}
}

func (_ namedFunctionRef) Children() []Expr {
	return nil
}

func (_ namedFunctionRef) BaseType() *ItemType {
	return TypeFunction
}

func (_ namedFunctionRef) StaticType() *ItemType {
	return TypeFunction
}

func (e namedFunctionRef) Evaluate(_ *DynamicContext, _ Sequence) (Sequence, error) {
	return Singleton(NewFunctionItem(e.fn)), nil
}

type dynamicFunctionCall struct {
	base Expr
	args []Expr
}

// DynamicFunctionCall invokes the function item given by base. Maps and arrays
// are functions of one argument.
func DynamicFunctionCall(base Expr, args ...Expr) Expr {
	return dynamicFunctionCall{
		base: base,
		args: args,
	}
}

func (e dynamicFunctionCall) Children() []Expr {
	return append([]Expr{e.base}, e.args...)
}

func (_ dynamicFunctionCall) BaseType() *ItemType {
	return TypeItem
}

func (_ dynamicFunctionCall) StaticType() *ItemType {
	return TypeItem
}

func (e dynamicFunctionCall) Evaluate(ctx *DynamicContext, focus Sequence) (Sequence, error) {
	base, err := e.base.Evaluate(ctx, focus)
	if err != nil {
		return EmptySequence(), err
	}
	target, err := base.One()
	if err != nil {
		return EmptySequence(), err
	}
	if target == nil {
		return EmptySequence(), typeError("dynamic function call requires a function, got an empty sequence")
	}
	args, err := evaluateArgs(ctx, e.args, focus)
	if err != nil {
		return EmptySequence(), err
	}
	return CallItem(ctx, target, args, focus)
}

// CallItem invokes a function, map or array item with the given arguments.
func CallItem(ctx *DynamicContext, target Item, args []Sequence, focus Sequence) (Sequence, error) {
	switch t := target.(type) {
	case *FunctionItem:
		return t.fn.Execute(ctx, args, focus)
	case *MapItem, *ArrayItem:
		if len(args) != 1 {
			return EmptySequence(), typeError("%s expects one argument, got %d", target.Type(), len(args))
		}
		keys, err := args[0].Atomize()
		if err != nil {
			return EmptySequence(), err
		}
		key, err := keys.One()
		if err != nil || key == nil {
			return EmptySequence(), typeError("%s expects a single key", target.Type())
		}
		return lookupKey(target, key.(Atomic))
	default:
		return EmptySequence(), typeError("%s is not a function", target.Type())
	}
}

type inlineFunction struct {
	params []Param
	result SequenceType
	body   Expr
}

// InlineFunction creates a function item each time it is evaluated. The
// function sees the variables in scope where it was created.
func InlineFunction(params []Param, result SequenceType, body Expr) Expr {
	return inlineFunction{
		params: params,
		result: result,
		body:   body,
	}
}

func (e inlineFunction) Children() []Expr {
	return []Expr{e.body}
}

func (_ inlineFunction) BaseType() *ItemType {
	return TypeFunction
}

func (_ inlineFunction) StaticType() *ItemType {
	return TypeFunction
}

func (e inlineFunction) Evaluate(ctx *DynamicContext, _ Sequence) (Sequence, error) {
	fn := Function{
		Name:   QName{Name: "anonymous"},
		Params: e.params,
		Result: e.result,
		Body: func(caller *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
			sub := ctx.Sub()
			for i, p := range e.params {
				sub.Bind(QName{Name: p.Name}, args[i])
			}
			return e.body.Evaluate(sub, EmptySequence())
		},
	}
	return Singleton(NewFunctionItem(&fn)), nil
}
