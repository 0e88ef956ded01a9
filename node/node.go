package node

import (
	"errors"
	"fmt"
	"strings"
)

var ErrName = errors.New("invalid name")

type NodeType int8

const (
	TypeDocument NodeType = 1 << iota
	TypeAssembly
	TypeField
	TypeFlag
)

const (
	TypeModel = TypeAssembly | TypeField
	TypeAny   = TypeDocument | TypeModel | TypeFlag
)

func (n NodeType) String() string {
	switch n {
	default:
		return "<>"
	case TypeDocument:
		return "document-node"
	case TypeAssembly:
		return "assembly"
	case TypeField:
		return "field"
	case TypeFlag:
		return "flag"
	case TypeModel:
		return "model"
	case TypeAny:
		return "node"
	}
}

func (n NodeType) Is(other NodeType) bool {
	return n&other != 0
}

// QName is a name qualified by its namespace uri. Prefixes are resolved by the
// static context and never stored on nodes.
type QName struct {
	Space string
	Name  string
}

func LocalName(name string) QName {
	return ExpandedName("", name)
}

func ExpandedName(space, name string) QName {
	return QName{
		Space: space,
		Name:  name,
	}
}

// ParseName accepts either a bare local name or the braced form "{uri}local".
func ParseName(str string) (QName, error) {
	var qn QName
	if !strings.HasPrefix(str, "{") {
		if str == "" || strings.ContainsAny(str, "{}") {
			return qn, fmt.Errorf("%q: %w", str, ErrName)
		}
		qn.Name = str
		return qn, nil
	}
	space, name, ok := strings.Cut(str[1:], "}")
	if !ok || name == "" {
		return qn, fmt.Errorf("%q: %w", str, ErrName)
	}
	qn.Space = space
	qn.Name = name
	return qn, nil
}

func (q QName) Zero() bool {
	return q.Space == "" && q.Name == ""
}

func (q QName) Equal(other QName) bool {
	return q.Space == other.Space && q.Name == other.Name
}

func (q QName) LocalName() string {
	return q.Name
}

func (q QName) String() string {
	if q.Space == "" {
		return q.Name
	}
	return fmt.Sprintf("{%s}%s", q.Space, q.Name)
}

// Node is the surface of a document tree needed to evaluate expressions. The
// position of a node is its index in the list it belongs to: flags and model
// children are numbered independently.
type Node interface {
	Type() NodeType
	QName() QName
	Parent() Node
	Position() int
	Value() any
	Flags() []Node
	Flag(QName) Node
	Children() []Node
	Child(QName) []Node
	Cyclic() bool
}

type attacher interface {
	attach(Node, int)
}

type base struct {
	parent   Node
	position int
}

func (b *base) Parent() Node {
	return b.parent
}

func (b *base) Position() int {
	return b.position
}

func (b *base) attach(parent Node, pos int) {
	b.parent = parent
	b.position = pos
}

type Document struct {
	URI  string
	root Node
}

func NewDocument(root Node) *Document {
	var d Document
	if root != nil {
		d.SetRoot(root)
	}
	return &d
}

func (d *Document) SetRoot(root Node) {
	if a, ok := root.(attacher); ok {
		a.attach(d, 0)
	}
	d.root = root
}

func (d *Document) Root() Node {
	return d.root
}

func (_ *Document) Type() NodeType {
	return TypeDocument
}

func (_ *Document) QName() QName {
	return QName{}
}

func (_ *Document) Parent() Node {
	return nil
}

func (_ *Document) Position() int {
	return 0
}

func (_ *Document) Value() any {
	return nil
}

func (_ *Document) Flags() []Node {
	return nil
}

func (_ *Document) Flag(_ QName) Node {
	return nil
}

func (d *Document) Children() []Node {
	if d.root == nil {
		return nil
	}
	return []Node{d.root}
}

func (d *Document) Child(name QName) []Node {
	if d.root == nil || !d.root.QName().Equal(name) {
		return nil
	}
	return []Node{d.root}
}

func (_ *Document) Cyclic() bool {
	return false
}

type Assembly struct {
	base
	Name QName

	flags  flagList
	nodes  []Node
	cyclic bool
}

func NewAssembly(name QName) *Assembly {
	return &Assembly{
		Name: name,
	}
}

func (_ *Assembly) Type() NodeType {
	return TypeAssembly
}

func (a *Assembly) QName() QName {
	return a.Name
}

func (_ *Assembly) Value() any {
	return nil
}

func (a *Assembly) Flags() []Node {
	return a.flags.nodes()
}

func (a *Assembly) Flag(name QName) Node {
	return a.flags.get(name)
}

func (a *Assembly) SetFlag(flag *Flag) {
	a.flags.set(a, flag)
}

func (a *Assembly) Children() []Node {
	return a.nodes
}

func (a *Assembly) Child(name QName) []Node {
	var list []Node
	for _, n := range a.nodes {
		if n.QName().Equal(name) {
			list = append(list, n)
		}
	}
	return list
}

// Append adds a model child. Only assemblies and fields are accepted.
func (a *Assembly) Append(child Node) error {
	if !child.Type().Is(TypeModel) {
		return fmt.Errorf("%s can not be a model child", child.Type())
	}
	if x, ok := child.(attacher); ok {
		x.attach(a, len(a.nodes))
	}
	a.nodes = append(a.nodes, child)
	return nil
}

func (a *Assembly) MarkCyclic() {
	a.cyclic = true
}

func (a *Assembly) Cyclic() bool {
	return a.cyclic
}

type Field struct {
	base
	Name  QName
	Datum any

	flags flagList
}

func NewField(name QName, value any) *Field {
	return &Field{
		Name:  name,
		Datum: value,
	}
}

func (_ *Field) Type() NodeType {
	return TypeField
}

func (f *Field) QName() QName {
	return f.Name
}

func (f *Field) Value() any {
	return f.Datum
}

func (f *Field) Flags() []Node {
	return f.flags.nodes()
}

func (f *Field) Flag(name QName) Node {
	return f.flags.get(name)
}

func (f *Field) SetFlag(flag *Flag) {
	f.flags.set(f, flag)
}

func (_ *Field) Children() []Node {
	return nil
}

func (_ *Field) Child(_ QName) []Node {
	return nil
}

func (_ *Field) Cyclic() bool {
	return false
}

type Flag struct {
	base
	Name  QName
	Datum any
}

func NewFlag(name QName, value any) *Flag {
	return &Flag{
		Name:  name,
		Datum: value,
	}
}

func (_ *Flag) Type() NodeType {
	return TypeFlag
}

func (f *Flag) QName() QName {
	return f.Name
}

func (f *Flag) Value() any {
	return f.Datum
}

func (_ *Flag) Flags() []Node {
	return nil
}

func (_ *Flag) Flag(_ QName) Node {
	return nil
}

func (_ *Flag) Children() []Node {
	return nil
}

func (_ *Flag) Child(_ QName) []Node {
	return nil
}

func (_ *Flag) Cyclic() bool {
	return false
}

type flagList []*Flag

func (fs flagList) nodes() []Node {
	if len(fs) == 0 {
		return nil
	}
	list := make([]Node, len(fs))
	for i := range fs {
		list[i] = fs[i]
	}
	return list
}

func (fs flagList) get(name QName) Node {
	for _, f := range fs {
		if f.Name.Equal(name) {
			return f
		}
	}
	return nil
}

func (fs *flagList) set(parent Node, flag *Flag) {
	for i, f := range *fs {
		if f.Name.Equal(flag.Name) {
			flag.attach(parent, i)
			(*fs)[i] = flag
			return
		}
	}
	flag.attach(parent, len(*fs))
	*fs = append(*fs, flag)
}
