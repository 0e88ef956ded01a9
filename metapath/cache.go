package metapath

import (
	"fmt"
	"hash"
	"hash/fnv"
)

// callKey identifies a call of a deterministic function: the function, its
// converted arguments and the context item.
type callKey struct {
	fn    *Function
	args  []Sequence
	focus Item
}

func (k callKey) hash() uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%p|", k.fn)
	if k.focus != nil {
		hashItem(h, k.focus)
	}
	for _, a := range k.args {
		h.Write([]byte{'|'})
		for item := range a.All() {
			hashItem(h, item)
			h.Write([]byte{','})
		}
	}
	return h.Sum64()
}

// typedKey distinguishes atomic arguments that are equal as map keys but
// have different types, such as 1 and 1.0, since results depend on the type.
type typedKey struct {
	typ *ItemType
	key atomicKey
}

func argKey(item Item) any {
	if a, ok := item.(Atomic); ok {
		return typedKey{
			typ: a.Type(),
			key: a.key(),
		}
	}
	return itemKey(item)
}

func hashItem(h hash.Hash64, item Item) {
	switch k := argKey(item).(type) {
	case typedKey:
		fmt.Fprintf(h, "%s:%s:%s", k.typ, k.key.class, k.key.value)
	default:
		fmt.Fprintf(h, "%p", k)
	}
}

func (k callKey) equal(other callKey) bool {
	if k.fn != other.fn || len(k.args) != len(other.args) {
		return false
	}
	if (k.focus == nil) != (other.focus == nil) {
		return false
	}
	if k.focus != nil && argKey(k.focus) != argKey(other.focus) {
		return false
	}
	for i := range k.args {
		if !sameItems(k.args[i], other.args[i]) {
			return false
		}
	}
	return true
}

func sameItems(left, right Sequence) bool {
	x, y := left.Items(), right.Items()
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if argKey(x[i]) != argKey(y[i]) {
			return false
		}
	}
	return true
}

type cacheEntry struct {
	key   callKey
	value Sequence
}

// callCache stores the results of deterministic function calls. Entries are
// bucketed by hash and compared structurally inside a bucket.
type callCache struct {
	buckets map[uint64][]cacheEntry
	size    int
}

func newCallCache() *callCache {
	return &callCache{
		buckets: make(map[uint64][]cacheEntry),
	}
}

func (c *callCache) Get(key callKey) (Sequence, bool) {
	for _, e := range c.buckets[key.hash()] {
		if e.key.equal(key) {
			return e.value, true
		}
	}
	return EmptySequence(), false
}

func (c *callCache) Put(key callKey, value Sequence) {
	h := key.hash()
	for i, e := range c.buckets[h] {
		if e.key.equal(key) {
			c.buckets[h][i].value = value
			return
		}
	}
	c.buckets[h] = append(c.buckets[h], cacheEntry{key: key, value: value})
	c.size++
}

func (c *callCache) Len() int {
	return c.size
}
