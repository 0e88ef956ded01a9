package metapath

import (
	"slices"

	"github.com/midbel/metapath/node"
)

func fnName(local string) QName {
	return node.ExpandedName(NamespaceFunctions, local)
}

func arg(name string, st SequenceType) Param {
	return Param{
		Name: name,
		Type: st,
	}
}

// builtin creates a deterministic function.
func builtin(name QName, result SequenceType, body Body, params ...Param) *Function {
	return &Function{
		Name:   name,
		Params: params,
		Result: result,
		Props:  Deterministic,
		Body:   body,
	}
}

func variadic(fn *Function) *Function {
	fn.Variadic = true
	return fn
}

func contextual(fn *Function) *Function {
	fn.Props |= ContextDependent
	return fn
}

// withFocus defines the two forms of a function taking an optional argument:
// without argument, the context item is used.
func withFocus(name QName, result SequenceType, p Param, do func(*DynamicContext, Sequence) (Sequence, error)) []*Function {
	zero := builtin(name, result, func(ctx *DynamicContext, _ []Sequence, focus Item) (Sequence, error) {
		return do(ctx, Singleton(focus))
	})
	zero.Props |= FocusDependent | ContextDependent
	one := builtin(name, result, func(ctx *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
		return do(ctx, args[0])
	}, p)
	return []*Function{zero, one}
}

func fnFunctions() []*Function {
	return slices.Concat(
		booleanFunctions(),
		sequenceFunctions(),
		accessorFunctions(),
		stringFunctions(),
		numericFunctions(),
		temporalFunctions(),
		documentFunctions(),
		[]*Function{
			builtin(fnName("function-lookup"), Optional(TypeFunction), fnFunctionLookup, arg("name", Exactly(TypeString)), arg("arity", Exactly(TypeInteger))),
		},
	)
}

func firstAtomic(seq Sequence) (Atomic, bool) {
	first, ok := seq.First()
	if !ok {
		return nil, false
	}
	a, ok := first.(Atomic)
	return a, ok
}

func stringArg(seq Sequence) string {
	a, ok := firstAtomic(seq)
	if !ok {
		return ""
	}
	return a.String()
}

func intArg(seq Sequence) (int, error) {
	a, ok := firstAtomic(seq)
	if !ok {
		return 0, typeError("an integer is expected")
	}
	i, ok := a.(integerItem)
	if !ok {
		return 0, typeError("an integer is expected, got %s", a.Type())
	}
	n, ok := i.Int()
	if !ok {
		return 0, arithmeticError(CodeOverflow, "%s is too large", i)
	}
	return n, nil
}

func nodeArg(seq Sequence) (node.Node, bool) {
	first, ok := seq.First()
	if !ok {
		return nil, false
	}
	n, ok := first.(NodeItem)
	if !ok {
		return nil, false
	}
	return n.node, true
}

func booleanResult(b bool) (Sequence, error) {
	return Singleton(NewBoolean(b)), nil
}

func stringResult(str string) (Sequence, error) {
	return Singleton(NewString(str)), nil
}

func integerResult(n int) (Sequence, error) {
	return Singleton(NewInteger(int64(n))), nil
}

func booleanFunctions() []*Function {
	return []*Function{
		builtin(fnName("boolean"), Exactly(TypeBoolean), fnBoolean, arg("arg", Many(TypeItem))),
		builtin(fnName("not"), Exactly(TypeBoolean), fnNot, arg("arg", Many(TypeItem))),
		builtin(fnName("true"), Exactly(TypeBoolean), fnTrue),
		builtin(fnName("false"), Exactly(TypeBoolean), fnFalse),
	}
}

func fnBoolean(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	ok, err := EffectiveBooleanValue(args[0])
	if err != nil {
		return EmptySequence(), err
	}
	return booleanResult(ok)
}

func fnNot(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	ok, err := EffectiveBooleanValue(args[0])
	if err != nil {
		return EmptySequence(), err
	}
	return booleanResult(!ok)
}

func fnTrue(_ *DynamicContext, _ []Sequence, _ Item) (Sequence, error) {
	return Singleton(True), nil
}

func fnFalse(_ *DynamicContext, _ []Sequence, _ Item) (Sequence, error) {
	return Singleton(False), nil
}

func sequenceFunctions() []*Function {
	var (
		items  = arg("input", Many(TypeItem))
		target = arg("target", Many(TypeItem))
	)
	return []*Function{
		builtin(fnName("count"), Exactly(TypeInteger), fnCount, items),
		builtin(fnName("empty"), Exactly(TypeBoolean), fnEmpty, items),
		builtin(fnName("exists"), Exactly(TypeBoolean), fnExists, items),
		builtin(fnName("head"), Optional(TypeItem), fnHead, items),
		builtin(fnName("tail"), Many(TypeItem), fnTail, items),
		builtin(fnName("reverse"), Many(TypeItem), fnReverse, items),
		builtin(fnName("distinct-values"), Many(TypeAnyAtomic), fnDistinctValues, arg("input", Many(TypeAnyAtomic))),
		builtin(fnName("index-of"), Many(TypeInteger), fnIndexOf, arg("input", Many(TypeAnyAtomic)), arg("search", Exactly(TypeAnyAtomic))),
		builtin(fnName("insert-before"), Many(TypeItem), fnInsertBefore, target, arg("position", Exactly(TypeInteger)), arg("inserts", Many(TypeItem))),
		builtin(fnName("remove"), Many(TypeItem), fnRemove, target, arg("position", Exactly(TypeInteger))),
		builtin(fnName("subsequence"), Many(TypeItem), fnSubsequence, items, arg("start", Exactly(TypeNumeric))),
		builtin(fnName("subsequence"), Many(TypeItem), fnSubsequence, items, arg("start", Exactly(TypeNumeric)), arg("length", Exactly(TypeNumeric))),
		builtin(fnName("exactly-one"), Exactly(TypeItem), fnCardinality(One), items),
		builtin(fnName("zero-or-one"), Optional(TypeItem), fnCardinality(ZeroOrOne), items),
		builtin(fnName("one-or-more"), AtLeastOne(TypeItem), fnCardinality(OneOrMore), items),
	}
}

func fnCount(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	return integerResult(args[0].Len())
}

func fnEmpty(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	return booleanResult(args[0].IsEmpty())
}

func fnExists(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	return booleanResult(!args[0].IsEmpty())
}

func fnHead(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	first, ok := args[0].First()
	if !ok {
		return EmptySequence(), nil
	}
	return Singleton(first), nil
}

func fnTail(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	items := args[0].Items()
	if len(items) <= 1 {
		return EmptySequence(), nil
	}
	return NewSequence(items[1:]...), nil
}

func fnReverse(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	items := slices.Clone(args[0].Items())
	slices.Reverse(items)
	return NewSequence(items...), nil
}

func fnDistinctValues(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	return args[0].Distinct(), nil
}

func fnIndexOf(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	search, _ := firstAtomic(args[1])
	var list []Item
	for i, item := range args[0].Items() {
		if sameKey(item.(Atomic), search) {
			list = append(list, NewInteger(int64(i+1)))
		}
	}
	return NewSequence(list...), nil
}

func fnInsertBefore(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	pos, err := intArg(args[1])
	if err != nil {
		return EmptySequence(), err
	}
	items := args[0].Items()
	pos = min(max(pos, 1), len(items)+1) - 1
	list := slices.Concat(items[:pos], args[2].Items(), items[pos:])
	return NewSequence(list...), nil
}

func fnRemove(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	pos, err := intArg(args[1])
	if err != nil {
		return EmptySequence(), err
	}
	items := args[0].Items()
	if pos < 1 || pos > len(items) {
		return args[0], nil
	}
	return NewSequence(slices.Concat(items[:pos-1], items[pos:])...), nil
}

func fnSubsequence(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	items := args[0].Items()
	start, err := roundedArg(args[1])
	if err != nil {
		return EmptySequence(), err
	}
	end := int64(len(items)) + 1
	if len(args) > 2 {
		length, err := roundedArg(args[2])
		if err != nil {
			return EmptySequence(), err
		}
		end = min(end, start+length)
	}
	start = max(start, 1)
	if start >= end {
		return EmptySequence(), nil
	}
	return NewSequence(items[start-1 : end-1]...), nil
}

func fnCardinality(occurrence Occurrence) Body {
	return func(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
		if err := occurrence.Check(args[0]); err != nil {
			return EmptySequence(), err
		}
		return args[0], nil
	}
}

func accessorFunctions() []*Function {
	var (
		anyNode = arg("arg", Optional(TypeNode))
		anyItem = arg("arg", Optional(TypeItem))
	)
	return slices.Concat(
		withFocus(fnName("data"), Many(TypeAnyAtomic), arg("arg", Many(TypeItem)), fnData),
		withFocus(fnName("string"), Exactly(TypeString), anyItem, fnString),
		withFocus(fnName("name"), Exactly(TypeString), anyNode, fnNodeName),
		withFocus(fnName("local-name"), Exactly(TypeString), anyNode, fnLocalName),
		withFocus(fnName("namespace-uri"), Exactly(TypeURI), anyNode, fnNamespaceURI),
		withFocus(fnName("root"), Optional(TypeNode), anyNode, fnRoot),
		withFocus(fnName("path"), Optional(TypeString), anyNode, fnPath),
		withFocus(fnName("has-children"), Exactly(TypeBoolean), anyNode, fnHasChildren),
		[]*Function{
			builtin(fnName("innermost"), Many(TypeNode), fnInnermost, arg("nodes", Many(TypeNode))),
			builtin(fnName("outermost"), Many(TypeNode), fnOutermost, arg("nodes", Many(TypeNode))),
		},
	)
}

func fnData(_ *DynamicContext, arg Sequence) (Sequence, error) {
	return arg.Atomize()
}

func fnString(_ *DynamicContext, arg Sequence) (Sequence, error) {
	first, ok := arg.First()
	if !ok {
		return stringResult("")
	}
	str, err := StringValue(first)
	if err != nil {
		return EmptySequence(), err
	}
	return stringResult(str)
}

func fnNodeName(_ *DynamicContext, arg Sequence) (Sequence, error) {
	n, ok := nodeArg(arg)
	if !ok {
		return stringResult("")
	}
	return stringResult(n.QName().LocalName())
}

func fnLocalName(_ *DynamicContext, arg Sequence) (Sequence, error) {
	n, ok := nodeArg(arg)
	if !ok {
		return stringResult("")
	}
	return stringResult(n.QName().Name)
}

func fnNamespaceURI(_ *DynamicContext, arg Sequence) (Sequence, error) {
	n, ok := nodeArg(arg)
	if !ok {
		return Singleton(NewURI("")), nil
	}
	return Singleton(NewURI(n.QName().Space)), nil
}

func fnRoot(_ *DynamicContext, arg Sequence) (Sequence, error) {
	n, ok := nodeArg(arg)
	if !ok {
		return EmptySequence(), nil
	}
	return Singleton(NewNode(node.Root(n))), nil
}

func fnPath(_ *DynamicContext, arg Sequence) (Sequence, error) {
	n, ok := nodeArg(arg)
	if !ok {
		return EmptySequence(), nil
	}
	return stringResult(node.Path(n))
}

func fnHasChildren(_ *DynamicContext, arg Sequence) (Sequence, error) {
	n, ok := nodeArg(arg)
	if !ok {
		return booleanResult(false)
	}
	return booleanResult(len(n.Children()) > 0)
}

func fnInnermost(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	all := args[0].Distinct()
	ancestors := make(map[node.Node]struct{})
	for item := range all.All() {
		for _, a := range node.Ancestors(item.(NodeItem).node) {
			ancestors[a] = struct{}{}
		}
	}
	return all.Filter(func(item Item) bool {
		_, ok := ancestors[item.(NodeItem).node]
		return !ok
	}), nil
}

func fnOutermost(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	all := args[0].Distinct()
	set := setOf(all)
	return all.Filter(func(item Item) bool {
		for _, a := range node.Ancestors(item.(NodeItem).node) {
			if set.Has(NewNode(a)) {
				return false
			}
		}
		return true
	}), nil
}

func fnFunctionLookup(ctx *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	name, err := node.ParseName(stringArg(args[0]))
	if err != nil {
		return EmptySequence(), argumentError(CodeArgumentType, "%s", err)
	}
	arity, err := intArg(args[1])
	if err != nil {
		return EmptySequence(), err
	}
	fn, err := ctx.Static().Function(name, arity)
	if err != nil {
		return EmptySequence(), nil
	}
	return Singleton(NewFunctionItem(fn)), nil
}
