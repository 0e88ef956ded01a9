package metapath

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"iter"
	"math/big"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/midbel/metapath/node"
)

type QName = node.QName

type Item interface {
	Type() *ItemType
	Value() any
}

// Atomic is implemented by the atomic items of the package: strings, numbers,
// booleans, dates, durations, uris and binaries.
type Atomic interface {
	Item
	String() string
	key() atomicKey
}

// atomicKey is the normalized form of an atomic item. Strings, uris and
// untyped values share the same class and so do integers and decimals.
type atomicKey struct {
	class string
	value string
}

type stringItem string

func NewString(str string) Atomic {
	return stringItem(str)
}

func (_ stringItem) Type() *ItemType {
	return TypeString
}

func (i stringItem) Value() any {
	return string(i)
}

func (i stringItem) String() string {
	return string(i)
}

func (i stringItem) key() atomicKey {
	return atomicKey{class: "string", value: string(i)}
}

type untypedItem string

func NewUntyped(str string) Atomic {
	return untypedItem(str)
}

func (_ untypedItem) Type() *ItemType {
	return TypeUntyped
}

func (i untypedItem) Value() any {
	return string(i)
}

func (i untypedItem) String() string {
	return string(i)
}

func (i untypedItem) key() atomicKey {
	return atomicKey{class: "string", value: string(i)}
}

type uriItem string

func NewURI(uri string) Atomic {
	return uriItem(uri)
}

func (_ uriItem) Type() *ItemType {
	return TypeURI
}

func (i uriItem) Value() any {
	return string(i)
}

func (i uriItem) String() string {
	return string(i)
}

func (i uriItem) key() atomicKey {
	return atomicKey{class: "string", value: string(i)}
}

type booleanItem bool

var (
	True  Atomic = booleanItem(true)
	False Atomic = booleanItem(false)
)

func NewBoolean(b bool) Atomic {
	if b {
		return True
	}
	return False
}

func (_ booleanItem) Type() *ItemType {
	return TypeBoolean
}

func (i booleanItem) Value() any {
	return bool(i)
}

func (i booleanItem) String() string {
	if i {
		return "true"
	}
	return "false"
}

func (i booleanItem) key() atomicKey {
	return atomicKey{class: "boolean", value: i.String()}
}

type base64Item string

func NewBase64Binary(data []byte) Atomic {
	return base64Item(data)
}

func ParseBase64Binary(str string) (Atomic, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(str))
	if err != nil {
		return nil, castError(str, TypeBase64Binary)
	}
	return NewBase64Binary(data), nil
}

func (_ base64Item) Type() *ItemType {
	return TypeBase64Binary
}

func (i base64Item) Value() any {
	return []byte(i)
}

func (i base64Item) String() string {
	return base64.StdEncoding.EncodeToString([]byte(i))
}

func (i base64Item) key() atomicKey {
	return atomicKey{class: "binary", value: string(i)}
}

type hexItem string

func NewHexBinary(data []byte) Atomic {
	return hexItem(data)
}

func ParseHexBinary(str string) (Atomic, error) {
	data, err := hex.DecodeString(strings.TrimSpace(str))
	if err != nil {
		return nil, castError(str, TypeHexBinary)
	}
	return NewHexBinary(data), nil
}

func (_ hexItem) Type() *ItemType {
	return TypeHexBinary
}

func (i hexItem) Value() any {
	return []byte(i)
}

func (i hexItem) String() string {
	return strings.ToUpper(hex.EncodeToString([]byte(i)))
}

func (i hexItem) key() atomicKey {
	return atomicKey{class: "binary", value: string(i)}
}

// NodeItem is a reference to a node of a document tree.
type NodeItem struct {
	node node.Node
}

func NewNode(n node.Node) NodeItem {
	return NodeItem{
		node: n,
	}
}

func (i NodeItem) Node() node.Node {
	return i.node
}

func (i NodeItem) Type() *ItemType {
	switch i.node.Type() {
	case node.TypeDocument:
		return TypeDocument
	case node.TypeAssembly:
		return TypeAssembly
	case node.TypeField:
		return TypeField
	case node.TypeFlag:
		return TypeFlag
	default:
		return TypeNode
	}
}

func (i NodeItem) Value() any {
	return i.node
}

// Atomize returns the typed value of the node.
func (i NodeItem) Atomize() Atomic {
	switch i.node.Type() {
	case node.TypeFlag, node.TypeField:
		if v := i.node.Value(); v != nil {
			return atomicOf(v)
		}
		return NewUntyped("")
	default:
		return NewUntyped(node.StringValue(i.node))
	}
}

func atomicOf(value any) Atomic {
	switch v := value.(type) {
	case string:
		return NewUntyped(v)
	case bool:
		return NewBoolean(v)
	case int:
		return NewInteger(int64(v))
	case int8:
		return NewInteger(int64(v))
	case int16:
		return NewInteger(int64(v))
	case int32:
		return NewInteger(int64(v))
	case int64:
		return NewInteger(v)
	case uint:
		return NewBigInteger(new(big.Int).SetUint64(uint64(v)))
	case uint8:
		return NewInteger(int64(v))
	case uint16:
		return NewInteger(int64(v))
	case uint32:
		return NewInteger(int64(v))
	case uint64:
		return NewBigInteger(new(big.Int).SetUint64(v))
	case *big.Int:
		return NewBigInteger(v)
	case float32:
		return decimalFromFloat(float64(v))
	case float64:
		return decimalFromFloat(v)
	case *apd.Decimal:
		return NewDecimal(v)
	case time.Time:
		return NewDateTime(v, true)
	case time.Duration:
		return NewDayTimeDuration(v)
	case []byte:
		return NewBase64Binary(v)
	case fmt.Stringer:
		return NewUntyped(v.String())
	default:
		return NewUntyped(fmt.Sprint(v))
	}
}

func decimalFromFloat(f float64) Atomic {
	var d apd.Decimal
	if _, err := d.SetFloat64(f); err != nil {
		return NewUntyped(fmt.Sprint(f))
	}
	return decimalItem{value: &d}
}

type MapEntry struct {
	Key   Atomic
	Value Sequence
}

// MapItem is an ordered map. Keys are compared with the same-key rule:
// strings, uris and untyped values are compared as strings and numeric values
// are compared by value.
type MapItem struct {
	keys   []Atomic
	values []Sequence
	index  map[atomicKey]int
}

// NewMap creates a map from the given entries. When a key is given more than
// once, the last value wins but the key keeps its first position.
func NewMap(entries ...MapEntry) *MapItem {
	m := MapItem{
		index: make(map[atomicKey]int),
	}
	for _, e := range entries {
		m.set(e.Key, e.Value)
	}
	return &m
}

func (m *MapItem) set(key Atomic, value Sequence) {
	k := key.key()
	if ix, ok := m.index[k]; ok {
		m.values[ix] = value.Materialize()
		return
	}
	m.index[k] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, value.Materialize())
}

func (_ *MapItem) Type() *ItemType {
	return TypeMap
}

func (m *MapItem) Value() any {
	return m
}

func (m *MapItem) Len() int {
	return len(m.keys)
}

func (m *MapItem) Keys() []Atomic {
	return slices.Clone(m.keys)
}

func (m *MapItem) Get(key Atomic) (Sequence, bool) {
	ix, ok := m.index[key.key()]
	if !ok {
		return EmptySequence(), false
	}
	return m.values[ix], true
}

func (m *MapItem) Contains(key Atomic) bool {
	_, ok := m.index[key.key()]
	return ok
}

func (m *MapItem) Entries() iter.Seq2[Atomic, Sequence] {
	return func(yield func(Atomic, Sequence) bool) {
		for i := range m.keys {
			if !yield(m.keys[i], m.values[i]) {
				return
			}
		}
	}
}

func (m *MapItem) Put(key Atomic, value Sequence) *MapItem {
	x := m.clone()
	x.set(key, value)
	return x
}

func (m *MapItem) Remove(keys ...Atomic) *MapItem {
	drop := make(map[atomicKey]struct{})
	for _, k := range keys {
		drop[k.key()] = struct{}{}
	}
	var entries []MapEntry
	for k, v := range m.Entries() {
		if _, ok := drop[k.key()]; ok {
			continue
		}
		entries = append(entries, MapEntry{Key: k, Value: v})
	}
	return NewMap(entries...)
}

func (m *MapItem) clone() *MapItem {
	x := MapItem{
		keys:   slices.Clone(m.keys),
		values: slices.Clone(m.values),
		index:  make(map[atomicKey]int, len(m.index)),
	}
	for k, v := range m.index {
		x.index[k] = v
	}
	return &x
}

// ArrayItem is an array of members. Each member is a sequence.
type ArrayItem struct {
	members []Sequence
}

func NewArray(members ...Sequence) *ArrayItem {
	a := ArrayItem{
		members: make([]Sequence, len(members)),
	}
	for i := range members {
		a.members[i] = members[i].Materialize()
	}
	return &a
}

func (_ *ArrayItem) Type() *ItemType {
	return TypeArray
}

func (a *ArrayItem) Value() any {
	return a
}

func (a *ArrayItem) Len() int {
	return len(a.members)
}

func (a *ArrayItem) Members() []Sequence {
	return slices.Clone(a.members)
}

// Get returns the member at the given 1-based position.
func (a *ArrayItem) Get(pos int) (Sequence, error) {
	if pos < 1 || pos > len(a.members) {
		return EmptySequence(), indexOutOfBounds(pos, len(a.members))
	}
	return a.members[pos-1], nil
}

// Flatten returns the items of all the members in order.
func (a *ArrayItem) Flatten() Sequence {
	return Concat(a.members...)
}

// FunctionItem is a function used as a value: a named function reference or
// an inline function.
type FunctionItem struct {
	fn *Function
}

func NewFunctionItem(fn *Function) *FunctionItem {
	return &FunctionItem{
		fn: fn,
	}
}

func (_ *FunctionItem) Type() *ItemType {
	return TypeFunction
}

func (f *FunctionItem) Value() any {
	return f.fn
}

func (f *FunctionItem) Function() *Function {
	return f.fn
}

// Atomize returns the atomic value of a single item.
func Atomize(item Item) (Atomic, error) {
	all, err := atomizeItem(item)
	if err != nil {
		return nil, err
	}
	if len(all) != 1 {
		return nil, typeError("item %s atomizes to %d values", item.Type(), len(all))
	}
	return all[0].(Atomic), nil
}

func atomizeItem(item Item) ([]Item, error) {
	switch i := item.(type) {
	case Atomic:
		return []Item{i}, nil
	case NodeItem:
		return []Item{i.Atomize()}, nil
	case *ArrayItem:
		var list []Item
		for _, m := range i.members {
			for x := range m.All() {
				all, err := atomizeItem(x)
				if err != nil {
					return nil, err
				}
				list = append(list, all...)
			}
		}
		return list, nil
	default:
		return nil, newError(ErrType, CodeAtomize, "%s can not be atomized", item.Type())
	}
}

// StringValue returns the string value of an item.
func StringValue(item Item) (string, error) {
	switch i := item.(type) {
	case Atomic:
		return i.String(), nil
	case NodeItem:
		return node.StringValue(i.node), nil
	default:
		return "", newError(ErrType, CodeAtomize, "%s has no string value", item.Type())
	}
}
