package metapath

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"sync"
	"time"

	"github.com/midbel/metapath/environ"
	"github.com/midbel/metapath/node"
)

const (
	NamespaceMetapath  = "http://csrc.nist.gov/ns/metaschema/metapath"
	NamespaceFunctions = "http://csrc.nist.gov/ns/metaschema/metapath-functions"
	NamespaceMap       = NamespaceFunctions + "/map"
	NamespaceArray     = NamespaceFunctions + "/array"
	NamespaceExtended  = NamespaceFunctions + "/extended"
)

// StaticContext holds what is known while an expression is compiled:
// namespaces, declared variables and the available functions. It is never
// modified once created and can be shared.
type StaticContext struct {
	namespaces map[string]string
	functions  string
	baseURI    *url.URL
	variables  map[QName]SequenceType
	library    *Library
}

type StaticOption func(*StaticContext) error

func WithNamespace(prefix, uri string) StaticOption {
	return func(s *StaticContext) error {
		s.namespaces[prefix] = uri
		return nil
	}
}

func WithDefaultFunctionNamespace(uri string) StaticOption {
	return func(s *StaticContext) error {
		s.functions = uri
		return nil
	}
}

func WithBaseURI(uri string) StaticOption {
	return func(s *StaticContext) error {
		u, err := url.Parse(uri)
		if err != nil {
			return err
		}
		s.baseURI = u
		return nil
	}
}

func WithVariable(name QName, st SequenceType) StaticOption {
	return func(s *StaticContext) error {
		s.variables[name] = st
		return nil
	}
}

func WithLibrary(lib *Library) StaticOption {
	return func(s *StaticContext) error {
		s.library = lib
		return nil
	}
}

func NewStaticContext(options ...StaticOption) (*StaticContext, error) {
	s := StaticContext{
		namespaces: map[string]string{
			"fn":    NamespaceFunctions,
			"map":   NamespaceMap,
			"array": NamespaceArray,
			"mp":    NamespaceExtended,
		},
		functions: NamespaceFunctions,
		variables: make(map[QName]SequenceType),
	}
	for _, o := range options {
		if err := o(&s); err != nil {
			return nil, err
		}
	}
	if s.library == nil {
		s.library = DefaultLibrary()
	}
	return &s, nil
}

var defaultStatic = sync.OnceValue(func() *StaticContext {
	s, _ := NewStaticContext()
	return s
})

// DefaultStaticContext returns the shared static context with the default
// namespaces and function library.
func DefaultStaticContext() *StaticContext {
	return defaultStatic()
}

func (s *StaticContext) Namespace(prefix string) (string, bool) {
	uri, ok := s.namespaces[prefix]
	return uri, ok
}

func (s *StaticContext) Namespaces() map[string]string {
	return maps.Clone(s.namespaces)
}

// ResolveName expands a prefixed name. An unprefixed name stays in no
// namespace.
func (s *StaticContext) ResolveName(prefix, local string) (QName, error) {
	if prefix == "" {
		return node.LocalName(local), nil
	}
	uri, ok := s.namespaces[prefix]
	if !ok {
		return QName{}, staticError(CodeUnboundPrefix, "prefix %q is not bound to a namespace", prefix)
	}
	return node.ExpandedName(uri, local), nil
}

// ResolveFunctionName expands the name of a function: an unprefixed name is in
// the default function namespace.
func (s *StaticContext) ResolveFunctionName(prefix, local string) (QName, error) {
	if prefix == "" {
		return node.ExpandedName(s.functions, local), nil
	}
	return s.ResolveName(prefix, local)
}

func (s *StaticContext) Function(name QName, arity int) (*Function, error) {
	return s.library.Lookup(name, arity)
}

func (s *StaticContext) Library() *Library {
	return s.library
}

func (s *StaticContext) Variable(name QName) (SequenceType, bool) {
	st, ok := s.variables[name]
	return st, ok
}

func (s *StaticContext) BaseURI() *url.URL {
	return s.baseURI
}

// DocumentLoader retrieves the document identified by an uri.
type DocumentLoader interface {
	Load(string) (node.Node, error)
}

type LoaderFunc func(string) (node.Node, error)

func (f LoaderFunc) Load(uri string) (node.Node, error) {
	return f(uri)
}

type Option func(*DynamicContext)

func WithTimezone(loc *time.Location) Option {
	return func(c *DynamicContext) {
		c.zone = loc
	}
}

func WithCurrentTime(when time.Time) Option {
	return func(c *DynamicContext) {
		c.now = when
	}
}

func WithLoader(loader DocumentLoader) Option {
	return func(c *DynamicContext) {
		c.loader = loader
	}
}

func WithTracer(tracer Tracer) Option {
	return func(c *DynamicContext) {
		if tracer == nil {
			tracer = discardTracer{}
		}
		c.tracer = tracer
	}
}

// WithDocument registers a document available to fn:doc without being loaded.
func WithDocument(uri string, doc node.Node) Option {
	return func(c *DynamicContext) {
		c.documents[uri] = doc
	}
}

// runtime is the state shared by a dynamic context and all its sub contexts.
type runtime struct {
	now       time.Time
	zone      *time.Location
	loader    DocumentLoader
	documents map[string]node.Node
	calls     *callCache
	tracer    Tracer
	depth     int
}

// DynamicContext holds the state of one evaluation: variables, current time,
// implicit timezone, loaded documents and the results of deterministic
// function calls. A DynamicContext and its sub contexts must not be used by
// more than one goroutine at a time.
type DynamicContext struct {
	static *StaticContext
	vars   environ.Environ[Sequence]
	*runtime
}

func NewDynamicContext(static *StaticContext, options ...Option) *DynamicContext {
	if static == nil {
		static = DefaultStaticContext()
	}
	now := time.Now()
	ctx := DynamicContext{
		static: static,
		vars:   environ.Empty[Sequence](),
		runtime: &runtime{
			now:       now,
			zone:      now.Location(),
			documents: make(map[string]node.Node),
			calls:     newCallCache(),
			tracer:    discardTracer{},
		},
	}
	for _, o := range options {
		o(&ctx)
	}
	return &ctx
}

func (c *DynamicContext) Static() *StaticContext {
	return c.static
}

// Sub creates a child context. Variables bound in the child are not visible
// from its parent. Other state is shared.
func (c *DynamicContext) Sub() *DynamicContext {
	return &DynamicContext{
		static:  c.static,
		vars:    environ.Enclosed(c.vars),
		runtime: c.runtime,
	}
}

// Bind binds a variable in the scope of c. The value is materialized since
// it can be referenced any number of times.
func (c *DynamicContext) Bind(name QName, value Sequence) {
	c.vars.Define(name.String(), value.Materialize())
}

func (c *DynamicContext) Variable(name QName) (Sequence, error) {
	seq, err := c.vars.Resolve(name.String())
	if errors.Is(err, environ.ErrDefined) {
		return seq, dynamicError(CodeUnboundVariable, "variable $%s is not bound", name)
	}
	return seq, err
}

func (c *DynamicContext) Now() time.Time {
	return c.now.In(c.zone)
}

func (c *DynamicContext) Timezone() *time.Location {
	return c.zone
}

// Document returns the document identified by uri. Relative uris are
// resolved against the static base uri. Documents are loaded once per
// context.
func (c *DynamicContext) Document(uri string) (node.Node, error) {
	uri = c.resolveURI(uri)
	if doc, ok := c.documents[uri]; ok {
		return doc, nil
	}
	if c.loader == nil {
		return nil, newError(ErrDocument, CodeDocument, "%s: no document loader available", uri)
	}
	doc, err := c.loader.Load(uri)
	if err != nil {
		return nil, newError(ErrDocument, CodeDocument, "%s: %s", uri, err)
	}
	c.documents[uri] = doc
	return doc, nil
}

func (c *DynamicContext) DocumentAvailable(uri string) bool {
	_, err := c.Document(uri)
	return err == nil
}

func (c *DynamicContext) resolveURI(uri string) string {
	base := c.static.BaseURI()
	if base == nil {
		return uri
	}
	ref, err := url.Parse(uri)
	if err != nil {
		return uri
	}
	return base.ResolveReference(ref).String()
}

func (c *DynamicContext) enter(fn *Function) {
	c.depth++
	c.tracer.Enter(fn.Signature())
}

func (c *DynamicContext) leave(fn *Function, err error) {
	if err != nil {
		c.tracer.Error(fn.Signature(), err)
	}
	c.tracer.Leave(fn.Signature())
	c.depth--
}

func (c *DynamicContext) String() string {
	return fmt.Sprintf("dynamic-context(depth=%d, calls=%d)", c.depth, c.calls.Len())
}
