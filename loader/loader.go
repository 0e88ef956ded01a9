// Package loader builds node trees from YAML documents.
//
// A mapping becomes an assembly and a scalar becomes a field. Keys starting
// with @ are flags of the enclosing node. The key _ gives its value to a
// mapping that only has flags, which then becomes a field. A sequence repeats
// the name of its key once per element.
package loader

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/midbel/metapath/node"
)

var (
	ErrRoot    = errors.New("document should have exactly one root")
	ErrContent = errors.New("invalid content")
	ErrScheme  = errors.New("unsupported scheme")
)

const (
	flagPrefix = "@"
	valueKey   = "_"
)

// Option changes how YAML keys are turned into node names.
type Option func(*builder)

// WithKebabNames rewrites keys to kebab case before they are used as node
// names.
func WithKebabNames() Option {
	return func(b *builder) {
		b.rename = kebab
	}
}

// Parse decodes the first YAML document of r. The returned document uses uri
// as its URI.
func Parse(r io.Reader, uri string, options ...Option) (*node.Document, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: %w", uri, ErrRoot)
		}
		return nil, err
	}
	b := builder{
		uri:    uri,
		stack:  make(map[*yaml.Node]bool),
		rename: func(str string) string { return str },
	}
	for _, o := range options {
		o(&b)
	}
	root, err := b.root(&doc)
	if err != nil {
		return nil, err
	}
	d := node.NewDocument(root)
	d.URI = uri
	return d, nil
}

// ParseFile parses the file and gives it a file URI.
func ParseFile(file string, options ...Option) (*node.Document, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, err
	}
	r, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Parse(r, fileURI(abs), options...)
}

func fileURI(file string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(file),
	}
	return u.String()
}

type builder struct {
	uri    string
	stack  map[*yaml.Node]bool
	rename func(string) string
}

func (b builder) root(doc *yaml.Node) (node.Node, error) {
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) != 1 {
			return nil, b.errorf(doc, ErrRoot)
		}
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode || len(doc.Content) != 2 {
		return nil, b.errorf(doc, ErrRoot)
	}
	name, err := b.name(doc.Content[0])
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(name.Name, flagPrefix) || name.Name == valueKey {
		return nil, b.errorf(doc, ErrRoot)
	}
	list, err := b.build(name, doc.Content[1])
	if err != nil {
		return nil, err
	}
	if len(list) != 1 {
		return nil, b.errorf(doc, ErrRoot)
	}
	return list[0], nil
}

// build returns the nodes named after name that value produces. Only a
// sequence gives more than one node.
func (b builder) build(name node.QName, value *yaml.Node) ([]node.Node, error) {
	switch value.Kind {
	case yaml.ScalarNode:
		datum, err := b.scalar(value)
		if err != nil {
			return nil, err
		}
		return []node.Node{node.NewField(name, datum)}, nil
	case yaml.MappingNode:
		n, err := b.mapping(name, value)
		if err != nil {
			return nil, err
		}
		return []node.Node{n}, nil
	case yaml.SequenceNode:
		var list []node.Node
		for _, v := range value.Content {
			if v.Kind == yaml.SequenceNode {
				return nil, b.errorf(v, fmt.Errorf("%w: nested sequence in %s", ErrContent, name))
			}
			ns, err := b.build(name, v)
			if err != nil {
				return nil, err
			}
			list = append(list, ns...)
		}
		return list, nil
	case yaml.AliasNode:
		if b.stack[value.Alias] {
			a := node.NewAssembly(name)
			a.MarkCyclic()
			return []node.Node{a}, nil
		}
		return b.build(name, value.Alias)
	default:
		return nil, b.errorf(value, ErrContent)
	}
}

func (b builder) mapping(name node.QName, value *yaml.Node) (node.Node, error) {
	b.stack[value] = true
	defer delete(b.stack, value)

	var (
		flags    []*node.Flag
		children []node.Node
		datum    any
		hasValue bool
	)
	for i := 0; i < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return nil, b.errorf(key, fmt.Errorf("%w: key should be a scalar", ErrContent))
		}
		switch {
		case key.Value == valueKey:
			v, err := b.value(val)
			if err != nil {
				return nil, err
			}
			datum, hasValue = v, true
		case strings.HasPrefix(key.Value, flagPrefix):
			qn, err := node.ParseName(strings.TrimPrefix(key.Value, flagPrefix))
			if err != nil {
				return nil, b.errorf(key, err)
			}
			qn.Name = b.rename(qn.Name)
			v, err := b.value(val)
			if err != nil {
				return nil, err
			}
			flags = append(flags, node.NewFlag(qn, v))
		default:
			qn, err := b.name(key)
			if err != nil {
				return nil, err
			}
			list, err := b.build(qn, val)
			if err != nil {
				return nil, err
			}
			children = append(children, list...)
		}
	}
	if hasValue {
		if len(children) > 0 {
			return nil, b.errorf(value, fmt.Errorf("%w: %s has both a value and children", ErrContent, name))
		}
		f := node.NewField(name, datum)
		for _, x := range flags {
			f.SetFlag(x)
		}
		return f, nil
	}
	a := node.NewAssembly(name)
	for _, x := range flags {
		a.SetFlag(x)
	}
	for _, c := range children {
		if err := a.Append(c); err != nil {
			return nil, b.errorf(value, err)
		}
	}
	return a, nil
}

// value gives the datum of a flag or of the _ key.
func (b builder) value(n *yaml.Node) (any, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind != yaml.ScalarNode {
		return nil, b.errorf(n, fmt.Errorf("%w: scalar expected", ErrContent))
	}
	return b.scalar(n)
}

func (b builder) scalar(n *yaml.Node) (any, error) {
	var (
		datum any
		err   error
	)
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!timestamp":
		var when time.Time
		err = n.Decode(&when)
		datum = when
	case "!!int", "!!float", "!!bool":
		err = n.Decode(&datum)
	case "!!binary":
		var bin []byte
		err = n.Decode(&bin)
		datum = bin
	default:
		datum = n.Value
	}
	if err != nil {
		return nil, b.errorf(n, err)
	}
	return datum, nil
}

func (b builder) name(key *yaml.Node) (node.QName, error) {
	if key.Kind != yaml.ScalarNode {
		return node.QName{}, b.errorf(key, fmt.Errorf("%w: key should be a scalar", ErrContent))
	}
	qn, err := node.ParseName(key.Value)
	if err != nil {
		return qn, b.errorf(key, err)
	}
	if !strings.HasPrefix(qn.Name, flagPrefix) && qn.Name != valueKey {
		qn.Name = b.rename(qn.Name)
	}
	return qn, nil
}

func (b builder) errorf(n *yaml.Node, err error) error {
	return fmt.Errorf("%s:%d:%d: %w", b.uri, n.Line, n.Column, err)
}
