package metapath

import (
	"iter"
)

// Product yields the tuples of the Cartesian product of the given sequences,
// the last dimension varying fastest. Only the tuple being yielded is kept in
// memory and it is reused between iterations: callers must copy it to retain
// it. Nothing is yielded when a dimension is empty or when there is no
// dimension at all.
func Product(dims ...Sequence) iter.Seq[[]Item] {
	return func(yield func([]Item) bool) {
		if len(dims) == 0 {
			return
		}
		lists := make([][]Item, len(dims))
		for i := range dims {
			lists[i] = dims[i].Items()
			if len(lists[i]) == 0 {
				return
			}
		}
		var (
			index = make([]int, len(lists))
			tuple = make([]Item, len(lists))
		)
		for i := range lists {
			tuple[i] = lists[i][0]
		}
		for {
			if !yield(tuple) {
				return
			}
			if !next(index, lists) {
				return
			}
			for i := range lists {
				tuple[i] = lists[i][index[i]]
			}
		}
	}
}

// next increments index like an odometer. It reports false once every
// combination has been produced.
func next(index []int, lists [][]Item) bool {
	for i := len(index) - 1; i >= 0; i-- {
		index[i]++
		if index[i] < len(lists[i]) {
			return true
		}
		index[i] = 0
	}
	return false
}
