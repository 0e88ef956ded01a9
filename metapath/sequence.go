package metapath

import (
	"iter"
	"slices"
)

// Sequence is an immutable, ordered collection of items. A sequence is either
// backed by a list or produced lazily by a generator. A lazy sequence is meant
// to be consumed once; callers that need to traverse it several times or to
// access its items by position call Materialize first and keep the result.
type Sequence struct {
	items []Item
	next  iter.Seq[Item]
}

func NewSequence(items ...Item) Sequence {
	return Sequence{
		items: items,
	}
}

func Singleton(item Item) Sequence {
	return NewSequence(item)
}

func EmptySequence() Sequence {
	return Sequence{}
}

// Stream creates a lazy sequence. The generator is not run until the sequence
// is consumed.
func Stream(next iter.Seq[Item]) Sequence {
	return Sequence{
		next: next,
	}
}

// Concat returns the items of all the given sequences in order. The result is
// lazy if at least one of the sequences is lazy.
func Concat(all ...Sequence) Sequence {
	var lazy bool
	for i := range all {
		if all[i].Lazy() {
			lazy = true
			break
		}
	}
	if !lazy {
		list := make([][]Item, 0, len(all))
		for i := range all {
			list = append(list, all[i].items)
		}
		return NewSequence(slices.Concat(list...)...)
	}
	fn := func(yield func(Item) bool) {
		for _, s := range all {
			for item := range s.All() {
				if !yield(item) {
					return
				}
			}
		}
	}
	return Stream(fn)
}

func (s Sequence) Lazy() bool {
	return s.next != nil
}

// Materialize returns a list backed copy of s. The receiver is returned as is
// when it is already list backed.
func (s Sequence) Materialize() Sequence {
	if !s.Lazy() {
		return s
	}
	return NewSequence(slices.Collect(s.next)...)
}

func (s Sequence) All() iter.Seq[Item] {
	if s.Lazy() {
		return s.next
	}
	return slices.Values(s.items)
}

// Items returns the items of s. The returned slice must not be modified.
func (s Sequence) Items() []Item {
	return s.Materialize().items
}

func (s Sequence) Len() int {
	if !s.Lazy() {
		return len(s.items)
	}
	var n int
	for range s.next {
		n++
	}
	return n
}

func (s Sequence) IsEmpty() bool {
	_, ok := s.First()
	return !ok
}

func (s Sequence) First() (Item, bool) {
	if !s.Lazy() {
		if len(s.items) == 0 {
			return nil, false
		}
		return s.items[0], true
	}
	for item := range s.next {
		return item, true
	}
	return nil, false
}

// One returns the only item of s, nil if s is empty. An error is returned if
// s has more than one item.
func (s Sequence) One() (Item, error) {
	var (
		first Item
		count int
	)
	for item := range s.All() {
		count++
		if count > 1 {
			return nil, typeError("a sequence of zero or one item is expected")
		}
		first = item
	}
	return first, nil
}

func (s Sequence) Append(items ...Item) Sequence {
	return Concat(s, NewSequence(items...))
}

// Atomize replaces each item of s by its atomic value(s).
func (s Sequence) Atomize() (Sequence, error) {
	var list []Item
	for item := range s.All() {
		all, err := atomizeItem(item)
		if err != nil {
			return s, err
		}
		list = append(list, all...)
	}
	return NewSequence(list...), nil
}

// Distinct removes duplicate items of s, keeping the first occurrence of each
// item.
func (s Sequence) Distinct() Sequence {
	var (
		seen = make(map[any]struct{})
		list []Item
	)
	for item := range s.All() {
		k := itemKey(item)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		list = append(list, item)
	}
	return NewSequence(list...)
}

func (s Sequence) Contains(item Item) bool {
	k := itemKey(item)
	for other := range s.All() {
		if itemKey(other) == k {
			return true
		}
	}
	return false
}

func (s Sequence) Filter(keep func(Item) bool) Sequence {
	var list []Item
	for item := range s.All() {
		if keep(item) {
			list = append(list, item)
		}
	}
	return NewSequence(list...)
}

// itemSet indexes the items of a sequence for membership tests.
type itemSet map[any]struct{}

func setOf(seq Sequence) itemSet {
	set := make(itemSet)
	for item := range seq.All() {
		set[itemKey(item)] = struct{}{}
	}
	return set
}

func (s itemSet) Has(item Item) bool {
	_, ok := s[itemKey(item)]
	return ok
}

// itemKey gives the value used to compare items for equality: identity for
// nodes and function items, normalized value for atomic items.
func itemKey(item Item) any {
	switch i := item.(type) {
	case Atomic:
		return i.key()
	case NodeItem:
		return i.node
	default:
		return item
	}
}
