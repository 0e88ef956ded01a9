package metapath

import (
	"slices"

	"github.com/midbel/metapath/node"
)

func arrayName(local string) QName {
	return node.ExpandedName(NamespaceArray, local)
}

func arrayFunctions() []*Function {
	var (
		input    = arg("array", Exactly(TypeArray))
		position = arg("position", Exactly(TypeInteger))
		member   = arg("member", Many(TypeItem))
	)
	return []*Function{
		builtin(arrayName("size"), Exactly(TypeInteger), arraySize, input),
		builtin(arrayName("get"), Many(TypeItem), arrayGet, input, position),
		builtin(arrayName("put"), Exactly(TypeArray), arrayPut, input, position, member),
		builtin(arrayName("append"), Exactly(TypeArray), arrayAppend, input, member),
		builtin(arrayName("head"), Many(TypeItem), arrayHead, input),
		builtin(arrayName("tail"), Exactly(TypeArray), arrayTail, input),
		builtin(arrayName("reverse"), Exactly(TypeArray), arrayReverse, input),
		builtin(arrayName("join"), Exactly(TypeArray), arrayJoin, arg("arrays", Many(TypeArray))),
		builtin(arrayName("flatten"), Many(TypeItem), arrayFlatten, arg("input", Many(TypeItem))),
		builtin(arrayName("subarray"), Exactly(TypeArray), arraySubarray, input, arg("start", Exactly(TypeInteger))),
		builtin(arrayName("subarray"), Exactly(TypeArray), arraySubarray, input, arg("start", Exactly(TypeInteger)), arg("length", Exactly(TypeInteger))),
		builtin(arrayName("remove"), Exactly(TypeArray), arrayRemove, input, arg("positions", Many(TypeInteger))),
		builtin(arrayName("insert-before"), Exactly(TypeArray), arrayInsertBefore, input, position, member),
		builtin(arrayName("for-each"), Exactly(TypeArray), arrayForEach, input, arg("action", Exactly(TypeFunction))),
	}
}

func arrayArg(seq Sequence) *ArrayItem {
	first, _ := seq.First()
	a, _ := first.(*ArrayItem)
	return a
}

func arraySize(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	return integerResult(arrayArg(args[0]).Len())
}

func arrayGet(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	pos, err := intArg(args[1])
	if err != nil {
		return EmptySequence(), err
	}
	return arrayArg(args[0]).Get(pos)
}

func arrayPut(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	arr := arrayArg(args[0])
	pos, err := intArg(args[1])
	if err != nil {
		return EmptySequence(), err
	}
	if pos < 1 || pos > arr.Len() {
		return EmptySequence(), indexOutOfBounds(pos, arr.Len())
	}
	members := arr.Members()
	members[pos-1] = args[2]
	return Singleton(NewArray(members...)), nil
}

func arrayAppend(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	members := append(arrayArg(args[0]).Members(), args[1])
	return Singleton(NewArray(members...)), nil
}

func arrayHead(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	arr := arrayArg(args[0])
	if arr.Len() == 0 {
		return EmptySequence(), indexOutOfBounds(1, 0)
	}
	return arr.Get(1)
}

func arrayTail(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	arr := arrayArg(args[0])
	if arr.Len() == 0 {
		return EmptySequence(), indexOutOfBounds(1, 0)
	}
	return Singleton(NewArray(arr.Members()[1:]...)), nil
}

func arrayReverse(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	members := arrayArg(args[0]).Members()
	slices.Reverse(members)
	return Singleton(NewArray(members...)), nil
}

func arrayJoin(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	var members []Sequence
	for item := range args[0].All() {
		members = append(members, item.(*ArrayItem).Members()...)
	}
	return Singleton(NewArray(members...)), nil
}

func arrayFlatten(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	var flatten func(Sequence) []Item
	flatten = func(seq Sequence) []Item {
		var list []Item
		for item := range seq.All() {
			arr, ok := item.(*ArrayItem)
			if !ok {
				list = append(list, item)
				continue
			}
			for _, m := range arr.Members() {
				list = append(list, flatten(m)...)
			}
		}
		return list
	}
	return NewSequence(flatten(args[0])...), nil
}

func arraySubarray(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	arr := arrayArg(args[0])
	start, err := intArg(args[1])
	if err != nil {
		return EmptySequence(), err
	}
	length := arr.Len() - start + 1
	if len(args) > 2 {
		if length, err = intArg(args[2]); err != nil {
			return EmptySequence(), err
		}
		if length < 0 {
			return EmptySequence(), newError(ErrArray, CodeNegativeLength, "negative length %d", length)
		}
	}
	if start < 1 || start > arr.Len()+1 {
		return EmptySequence(), indexOutOfBounds(start, arr.Len())
	}
	if start+length > arr.Len()+1 {
		return EmptySequence(), indexOutOfBounds(start+length-1, arr.Len())
	}
	members := arr.Members()[start-1 : start-1+length]
	return Singleton(NewArray(members...)), nil
}

func arrayRemove(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	arr := arrayArg(args[0])
	drop := make(map[int]struct{})
	for item := range args[1].All() {
		pos, err := intArg(Singleton(item))
		if err != nil {
			return EmptySequence(), err
		}
		if pos < 1 || pos > arr.Len() {
			return EmptySequence(), indexOutOfBounds(pos, arr.Len())
		}
		drop[pos-1] = struct{}{}
	}
	var members []Sequence
	for i, m := range arr.Members() {
		if _, ok := drop[i]; !ok {
			members = append(members, m)
		}
	}
	return Singleton(NewArray(members...)), nil
}

func arrayInsertBefore(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	arr := arrayArg(args[0])
	pos, err := intArg(args[1])
	if err != nil {
		return EmptySequence(), err
	}
	if pos < 1 || pos > arr.Len()+1 {
		return EmptySequence(), indexOutOfBounds(pos, arr.Len())
	}
	members := slices.Insert(arr.Members(), pos-1, args[2])
	return Singleton(NewArray(members...)), nil
}

func arrayForEach(ctx *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	action, _ := args[1].First()
	var members []Sequence
	for _, m := range arrayArg(args[0]).Members() {
		res, err := CallItem(ctx, action, []Sequence{m}, EmptySequence())
		if err != nil {
			return EmptySequence(), err
		}
		members = append(members, res)
	}
	return Singleton(NewArray(members...)), nil
}
