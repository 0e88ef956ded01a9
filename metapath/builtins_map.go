package metapath

import (
	"github.com/midbel/metapath/node"
)

func mapName(local string) QName {
	return node.ExpandedName(NamespaceMap, local)
}

func mapFunctions() []*Function {
	var (
		input = arg("map", Exactly(TypeMap))
		key   = arg("key", Exactly(TypeAnyAtomic))
	)
	return []*Function{
		builtin(mapName("size"), Exactly(TypeInteger), mapSize, input),
		builtin(mapName("keys"), Many(TypeAnyAtomic), mapKeys, input),
		builtin(mapName("contains"), Exactly(TypeBoolean), mapContains, input, key),
		builtin(mapName("get"), Many(TypeItem), mapGet, input, key),
		builtin(mapName("put"), Exactly(TypeMap), mapPut, input, key, arg("value", Many(TypeItem))),
		builtin(mapName("remove"), Exactly(TypeMap), mapRemove, input, arg("keys", Many(TypeAnyAtomic))),
		builtin(mapName("entry"), Exactly(TypeMap), mapEntry, key, arg("value", Many(TypeItem))),
		builtin(mapName("merge"), Exactly(TypeMap), mapMerge, arg("maps", Many(TypeMap))),
		builtin(mapName("merge"), Exactly(TypeMap), mapMerge, arg("maps", Many(TypeMap)), arg("options", Exactly(TypeMap))),
		builtin(mapName("find"), Exactly(TypeArray), mapFind, arg("input", Many(TypeItem)), key),
		builtin(mapName("for-each"), Many(TypeItem), mapForEach, input, arg("action", Exactly(TypeFunction))),
	}
}

func mapArg(seq Sequence) *MapItem {
	first, _ := seq.First()
	m, _ := first.(*MapItem)
	return m
}

func mapSize(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	return integerResult(mapArg(args[0]).Len())
}

func mapKeys(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	var list []Item
	for _, k := range mapArg(args[0]).Keys() {
		list = append(list, k)
	}
	return NewSequence(list...), nil
}

func mapContains(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	key, _ := firstAtomic(args[1])
	return booleanResult(mapArg(args[0]).Contains(key))
}

func mapGet(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	key, _ := firstAtomic(args[1])
	res, _ := mapArg(args[0]).Get(key)
	return res, nil
}

func mapPut(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	key, _ := firstAtomic(args[1])
	return Singleton(mapArg(args[0]).Put(key, args[2])), nil
}

func mapRemove(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	var keys []Atomic
	for item := range args[1].All() {
		keys = append(keys, item.(Atomic))
	}
	return Singleton(mapArg(args[0]).Remove(keys...)), nil
}

func mapEntry(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	key, _ := firstAtomic(args[0])
	return Singleton(NewMap(MapEntry{Key: key, Value: args[1]})), nil
}

const (
	duplicatesUseFirst = "use-first"
	duplicatesUseLast  = "use-last"
	duplicatesUseAny   = "use-any"
	duplicatesCombine  = "combine"
	duplicatesReject   = "reject"
)

func mapMerge(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	policy := duplicatesUseFirst
	if len(args) > 1 {
		if opt, ok := mapArg(args[1]).Get(NewString("duplicates")); ok && !opt.IsEmpty() {
			policy = stringArg(opt)
		}
	}
	switch policy {
	case duplicatesUseFirst, duplicatesUseLast, duplicatesUseAny, duplicatesCombine, duplicatesReject:
	default:
		return EmptySequence(), argumentError("FOJS0005", "invalid value for duplicates option: %q", policy)
	}
	merged := NewMap()
	for item := range args[0].All() {
		for k, v := range item.(*MapItem).Entries() {
			prev, ok := merged.Get(k)
			if !ok {
				merged.set(k, v)
				continue
			}
			switch policy {
			case duplicatesUseLast:
				merged.set(k, v)
			case duplicatesCombine:
				merged.set(k, Concat(prev, v))
			case duplicatesReject:
				return EmptySequence(), argumentError("FOJS0003", "duplicate key %s", k)
			default:
			}
		}
	}
	return Singleton(merged), nil
}

func mapFind(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	key, _ := firstAtomic(args[1])
	var (
		found []Sequence
		walk  func(Item)
	)
	walk = func(item Item) {
		switch i := item.(type) {
		case *MapItem:
			for k, v := range i.Entries() {
				if sameKey(k, key) {
					found = append(found, v)
				}
				for x := range v.All() {
					walk(x)
				}
			}
		case *ArrayItem:
			for _, m := range i.Members() {
				for x := range m.All() {
					walk(x)
				}
			}
		}
	}
	for item := range args[0].All() {
		walk(item)
	}
	return Singleton(NewArray(found...)), nil
}

func mapForEach(ctx *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	action, _ := args[1].First()
	var list []Sequence
	for k, v := range mapArg(args[0]).Entries() {
		res, err := CallItem(ctx, action, []Sequence{Singleton(k), v}, EmptySequence())
		if err != nil {
			return EmptySequence(), err
		}
		list = append(list, res)
	}
	return Concat(list...), nil
}
