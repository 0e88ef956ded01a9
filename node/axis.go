package node

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

func Root(n Node) Node {
	for p := n.Parent(); p != nil; p = n.Parent() {
		n = p
	}
	return n
}

// Ancestors returns the ancestors of n, nearest first.
func Ancestors(n Node) []Node {
	var list []Node
	for p := n.Parent(); p != nil; p = p.Parent() {
		list = append(list, p)
	}
	return list
}

func AncestorsOrSelf(n Node) []Node {
	return append([]Node{n}, Ancestors(n)...)
}

// Descendants returns the model descendants of n in document order. Flags are
// not part of the result. The children of a cyclic node are included but not
// descended into.
func Descendants(n Node) []Node {
	if n.Cyclic() {
		return slices.Clone(n.Children())
	}
	var (
		list  []Node
		stack = slices.Clone(n.Children())
	)
	slices.Reverse(stack)
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		list = append(list, curr)
		if curr.Cyclic() {
			list = append(list, curr.Children()...)
			continue
		}
		kids := curr.Children()
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return list
}

func DescendantsOrSelf(n Node) []Node {
	return append([]Node{n}, Descendants(n)...)
}

func FollowingSiblings(n Node) []Node {
	if n.Type() == TypeFlag || n.Parent() == nil {
		return nil
	}
	kids := n.Parent().Children()
	if pos := n.Position() + 1; pos < len(kids) {
		return slices.Clone(kids[pos:])
	}
	return nil
}

func PrecedingSiblings(n Node) []Node {
	if n.Type() == TypeFlag || n.Parent() == nil {
		return nil
	}
	kids := n.Parent().Children()
	pos := min(n.Position(), len(kids))
	return slices.Clone(kids[:pos])
}

// Following returns every model node after n in document order that is not a
// descendant of n.
func Following(n Node) []Node {
	var list []Node
	if n.Type() == TypeFlag {
		p := n.Parent()
		if p == nil {
			return nil
		}
		for _, c := range p.Children() {
			list = append(list, DescendantsOrSelf(c)...)
		}
		n = p
	}
	for curr := n; curr.Parent() != nil; curr = curr.Parent() {
		for _, s := range FollowingSiblings(curr) {
			list = append(list, DescendantsOrSelf(s)...)
		}
	}
	return list
}

// Preceding returns every model node before n in document order that is not an
// ancestor of n.
func Preceding(n Node) []Node {
	if n.Type() == TypeFlag {
		n = n.Parent()
		if n == nil {
			return nil
		}
	}
	var levels [][]Node
	for curr := n; curr.Parent() != nil; curr = curr.Parent() {
		var level []Node
		for _, s := range PrecedingSiblings(curr) {
			level = append(level, DescendantsOrSelf(s)...)
		}
		levels = append(levels, level)
	}
	slices.Reverse(levels)
	return slices.Concat(levels...)
}

// FlagsIn returns the flags of n defined in the given namespace.
func FlagsIn(n Node, space string) []Node {
	var list []Node
	for _, f := range n.Flags() {
		if f.QName().Space == space {
			list = append(list, f)
		}
	}
	return list
}

// Compare orders two nodes in document order. Nodes from different documents
// are ordered by the identity of their roots.
func Compare(left, right Node) int {
	if left == right {
		return 0
	}
	r1, r2 := Root(left), Root(right)
	if r1 != r2 {
		return strings.Compare(fmt.Sprintf("%p", r1), fmt.Sprintf("%p", r2))
	}
	var (
		p1 = path(left)
		p2 = path(right)
	)
	for i := 0; i < len(p1) && i < len(p2); i++ {
		if p1[i] < p2[i] {
			return -1
		} else if p1[i] > p2[i] {
			return 1
		}
	}
	return len(p1) - len(p2)
}

func Before(left, right Node) bool {
	return Compare(left, right) < 0
}

func After(left, right Node) bool {
	return Compare(left, right) > 0
}

func path(n Node) []int {
	var steps []int
	for p := n.Parent(); p != nil; n, p = p, p.Parent() {
		steps = append(steps, index(n, p))
	}
	slices.Reverse(steps)
	return steps
}

func index(n, parent Node) int {
	if n.Type() == TypeFlag {
		return n.Position()
	}
	return len(parent.Flags()) + n.Position()
}

// Path returns the location of n as a sequence of steps usable as a path
// expression, eg: /catalog[1]/group[2]/@id.
func Path(n Node) string {
	if n.Type() == TypeDocument {
		return "/"
	}
	var parts []string
	for ; n != nil && n.Type() != TypeDocument; n = n.Parent() {
		if n.Type() == TypeFlag {
			parts = append(parts, "@"+n.QName().LocalName())
			continue
		}
		pos := 1
		for _, s := range PrecedingSiblings(n) {
			if s.QName().Equal(n.QName()) {
				pos++
			}
		}
		parts = append(parts, n.QName().LocalName()+"["+strconv.Itoa(pos)+"]")
	}
	slices.Reverse(parts)
	return "/" + strings.Join(parts, "/")
}

// StringValue returns the string value of a node: the value of flags and
// fields, or the concatenated values of the fields below an assembly.
func StringValue(n Node) string {
	switch n.Type() {
	case TypeFlag, TypeField:
		if v := n.Value(); v != nil {
			return fmt.Sprint(v)
		}
		return ""
	default:
		var str strings.Builder
		for _, d := range Descendants(n) {
			if d.Type() != TypeField || d.Value() == nil {
				continue
			}
			str.WriteString(fmt.Sprint(d.Value()))
		}
		return str.String()
	}
}
