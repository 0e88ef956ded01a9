package metapath

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/midbel/metapath/environ"
)

type Props uint8

const (
	// Deterministic functions return the same result for the same arguments
	// and focus within one dynamic context. Their results are cached.
	Deterministic Props = 1 << iota
	ContextDependent
	FocusDependent
)

func (p Props) Is(other Props) bool {
	return p&other == other
}

type Param struct {
	Name string
	Type SequenceType
}

// Body implements a function. The focus is nil unless the function is focus
// dependent.
type Body func(ctx *DynamicContext, args []Sequence, focus Item) (Sequence, error)

type Function struct {
	Name   QName
	Params []Param
	// Variadic functions accept any number of arguments matching their last
	// parameter.
	Variadic bool
	Result   SequenceType
	Props    Props
	Body     Body
}

func (f *Function) Arity() int {
	return len(f.Params)
}

func (f *Function) Accepts(arity int) bool {
	if f.Variadic {
		return arity >= len(f.Params)
	}
	return arity == len(f.Params)
}

func (f *Function) param(i int) Param {
	if i >= len(f.Params) {
		return f.Params[len(f.Params)-1]
	}
	return f.Params[i]
}

// Signature gives the display form of f, as used in error messages.
func (f *Function) Signature() string {
	var str strings.Builder
	str.WriteString(displayName(f.Name))
	str.WriteString("(")
	for i, p := range f.Params {
		if i > 0 {
			str.WriteString(", ")
		}
		str.WriteString("$")
		str.WriteString(p.Name)
		str.WriteString(" as ")
		str.WriteString(p.Type.String())
	}
	if f.Variadic {
		str.WriteString(", ...")
	}
	str.WriteString(") as ")
	str.WriteString(f.Result.String())
	return str.String()
}

func (f *Function) String() string {
	return f.Signature()
}

var prefixes = map[string]string{
	NamespaceFunctions: "fn",
	NamespaceMap:       "map",
	NamespaceArray:     "array",
	NamespaceExtended:  "mp",
}

func displayName(name QName) string {
	if name.Space == "" {
		return name.Name
	}
	if prefix, ok := prefixes[name.Space]; ok {
		return prefix + ":" + name.Name
	}
	return name.String()
}

// Execute invokes f. Arguments are converted to the declared parameter types
// before the body runs. Results of deterministic functions are cached in ctx.
func (f *Function) Execute(ctx *DynamicContext, args []Sequence, focus Sequence) (Sequence, error) {
	res, err := f.execute(ctx, args, focus)
	if err != nil {
		return EmptySequence(), fmt.Errorf("unable to execute function '%s': %w", f.Signature(), err)
	}
	return res, nil
}

func (f *Function) execute(ctx *DynamicContext, args []Sequence, focus Sequence) (Sequence, error) {
	if !f.Accepts(len(args)) {
		return EmptySequence(), staticError(CodeNoFunction, "%d arguments given to %s", len(args), displayName(f.Name))
	}
	var item Item
	if f.Props.Is(FocusDependent) {
		first, ok := focus.First()
		if !ok {
			return EmptySequence(), contextAbsent()
		}
		item = first
	}
	list := make([]Sequence, len(args))
	for i := range args {
		arg, err := convertArgument(f.param(i), args[i])
		if err != nil {
			return EmptySequence(), err
		}
		list[i] = arg
	}
	var key callKey
	if f.Props.Is(Deterministic) {
		key = callKey{
			fn:    f,
			args:  list,
			focus: item,
		}
		if res, ok := ctx.calls.Get(key); ok {
			ctx.tracer.Cached(f.Signature())
			return res, nil
		}
	}
	ctx.enter(f)
	res, err := f.Body(ctx, list, item)
	ctx.leave(f, err)
	if err != nil {
		return EmptySequence(), err
	}
	res = res.Materialize()
	if f.Props.Is(Deterministic) {
		ctx.calls.Put(key, res)
	}
	return res, nil
}

// convertArgument applies the function conversion rules: atomization for
// atomic parameters, untyped values cast to the expected type, uris promoted
// to strings. The result is then checked against the parameter type.
func convertArgument(p Param, arg Sequence) (Sequence, error) {
	arg = arg.Materialize()
	expected := p.Type.Type
	if expected != nil && expected.Atomic() {
		atomized, err := arg.Atomize()
		if err != nil {
			return arg, err
		}
		list := make([]Item, 0, atomized.Len())
		for item := range atomized.All() {
			x, err := promote(item.(Atomic), expected)
			if err != nil {
				return arg, err
			}
			list = append(list, x)
		}
		arg = NewSequence(list...)
	}
	if err := p.Type.Occurrence.Check(arg); err != nil {
		return arg, err
	}
	if expected == nil {
		return arg, nil
	}
	for item := range arg.All() {
		if !expected.Matches(item) {
			return arg, typeError("argument $%s: expected %s, got %s", p.Name, p.Type, item.Type())
		}
	}
	return arg, nil
}

func promote(item Atomic, expected *ItemType) (Atomic, error) {
	switch item.(type) {
	case untypedItem:
		if expected == TypeUntyped || expected == TypeAnyAtomic {
			return item, nil
		}
		return CastAs(item, expected)
	case uriItem:
		if expected == TypeString {
			return NewString(item.String()), nil
		}
	}
	return item, nil
}

// Library is a set of functions indexed by expanded name. Functions sharing a
// name are distinguished by their arity.
type Library struct {
	env environ.Environ[[]*Function]
}

func NewLibrary() *Library {
	return &Library{
		env: environ.Empty[[]*Function](),
	}
}

var defaultLibrary = sync.OnceValue(func() *Library {
	lib := NewLibrary()
	for _, all := range [][]*Function{fnFunctions(), mapFunctions(), arrayFunctions(), extFunctions()} {
		for _, fn := range all {
			lib.Register(fn)
		}
	}
	return lib
})

// DefaultLibrary returns the library of the built-in functions.
func DefaultLibrary() *Library {
	return defaultLibrary()
}

func (lib *Library) Register(fn *Function) {
	key := fn.Name.String()
	all, _ := lib.env.Resolve(key)
	all = slices.DeleteFunc(slices.Clone(all), func(other *Function) bool {
		return other.Arity() == fn.Arity() && other.Variadic == fn.Variadic
	})
	lib.env.Define(key, append(all, fn))
}

// Lookup finds the function with the given name accepting arity arguments.
// Fixed arity functions are preferred over variadic ones.
func (lib *Library) Lookup(name QName, arity int) (*Function, error) {
	all, err := lib.env.Resolve(name.String())
	if err != nil {
		return nil, staticError(CodeNoFunction, "%s: no such function", displayName(name))
	}
	var match *Function
	for _, fn := range all {
		if !fn.Accepts(arity) {
			continue
		}
		if match == nil || match.Variadic {
			match = fn
		}
	}
	if match == nil {
		return nil, staticError(CodeNoFunction, "%s: no function accepting %d arguments", displayName(name), arity)
	}
	return match, nil
}

// Functions returns all the registered functions sorted by name and arity.
func (lib *Library) Functions() []*Function {
	var list []*Function
	for _, n := range lib.env.Names() {
		all, _ := lib.env.Resolve(n)
		list = append(list, all...)
	}
	slices.SortFunc(list, func(a, b *Function) int {
		if c := cmp.Compare(displayName(a.Name), displayName(b.Name)); c != 0 {
			return c
		}
		return cmp.Compare(a.Arity(), b.Arity())
	})
	return list
}

func (lib *Library) Len() int {
	var n int
	for _, k := range lib.env.Names() {
		all, _ := lib.env.Resolve(k)
		n += len(all)
	}
	return n
}
