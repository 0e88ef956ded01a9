package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// catalog
//
//	@id=cat
//	metadata
//	  title="sample"
//	group @id=g1
//	  control @id=c1
//	  control @id=c2
//	group @id=g2
//	  control @id=c3
func sample(t *testing.T) (*Document, map[string]Node) {
	t.Helper()
	var (
		all   = make(map[string]Node)
		root  = NewAssembly(LocalName("catalog"))
		meta  = NewAssembly(LocalName("metadata"))
		title = NewField(LocalName("title"), "sample")
	)
	root.SetFlag(NewFlag(LocalName("id"), "cat"))
	require.NoError(t, meta.Append(title))
	require.NoError(t, root.Append(meta))
	all["catalog"] = root
	all["metadata"] = meta
	all["title"] = title

	groups := map[string][]string{
		"g1": {"c1", "c2"},
		"g2": {"c3"},
	}
	for _, g := range []string{"g1", "g2"} {
		grp := NewAssembly(LocalName("group"))
		grp.SetFlag(NewFlag(LocalName("id"), g))
		for _, c := range groups[g] {
			ctrl := NewAssembly(LocalName("control"))
			ctrl.SetFlag(NewFlag(LocalName("id"), c))
			require.NoError(t, grp.Append(ctrl))
			all[c] = ctrl
		}
		require.NoError(t, root.Append(grp))
		all[g] = grp
	}
	return NewDocument(root), all
}

func ids(list []Node) []string {
	var str []string
	for _, n := range list {
		if f := n.Flag(LocalName("id")); f != nil {
			str = append(str, f.Value().(string))
			continue
		}
		str = append(str, n.QName().LocalName())
	}
	return str
}

func TestParseName(t *testing.T) {
	tests := []struct {
		Input    string
		Expected QName
		Invalid  bool
	}{
		{Input: "title", Expected: LocalName("title")},
		{Input: "{http://example.com/ns}title", Expected: ExpandedName("http://example.com/ns", "title")},
		{Input: "{http://example.com/ns}", Invalid: true},
		{Input: "", Invalid: true},
		{Input: "a}b", Invalid: true},
	}
	for _, c := range tests {
		got, err := ParseName(c.Input)
		if c.Invalid {
			assert.ErrorIs(t, err, ErrName, c.Input)
			continue
		}
		require.NoError(t, err, c.Input)
		assert.Equal(t, c.Expected, got)
		assert.Equal(t, c.Input, got.String())
	}
}

func TestAxis(t *testing.T) {
	doc, all := sample(t)
	tests := []struct {
		Name     string
		Axis     func(Node) []Node
		Start    string
		Expected []string
	}{
		{Name: "ancestors", Axis: Ancestors, Start: "c2", Expected: []string{"g1", "cat", ""}},
		{Name: "ancestors-or-self", Axis: AncestorsOrSelf, Start: "c2", Expected: []string{"c2", "g1", "cat", ""}},
		{Name: "descendants", Axis: Descendants, Start: "catalog", Expected: []string{"metadata", "title", "g1", "c1", "c2", "g2", "c3"}},
		{Name: "descendants-or-self", Axis: DescendantsOrSelf, Start: "g2", Expected: []string{"g2", "c3"}},
		{Name: "following-siblings", Axis: FollowingSiblings, Start: "metadata", Expected: []string{"g1", "g2"}},
		{Name: "preceding-siblings", Axis: PrecedingSiblings, Start: "g2", Expected: []string{"metadata", "g1"}},
		{Name: "following", Axis: Following, Start: "c1", Expected: []string{"c2", "g2", "c3"}},
		{Name: "preceding", Axis: Preceding, Start: "c3", Expected: []string{"metadata", "title", "g1", "c1", "c2"}},
	}
	for _, c := range tests {
		got := c.Axis(all[c.Start])
		assert.Equal(t, c.Expected, ids(got), c.Name)
	}
	assert.Equal(t, Node(doc), Root(all["c3"]))
}

func TestFlagAxis(t *testing.T) {
	_, all := sample(t)
	flag := all["g1"].Flag(LocalName("id"))
	require.NotNil(t, flag)

	assert.Empty(t, FollowingSiblings(flag))
	assert.Empty(t, PrecedingSiblings(flag))
	assert.Equal(t, []string{"c1", "c2", "g2", "c3"}, ids(Following(flag)))
	assert.Len(t, FlagsIn(all["g1"], ""), 1)
	assert.Empty(t, FlagsIn(all["g1"], "http://example.com/ns"))
}

func TestCompare(t *testing.T) {
	_, all := sample(t)
	var (
		flag = all["catalog"].Flag(LocalName("id"))
		meta = all["metadata"]
	)
	assert.True(t, Before(all["c1"], all["c2"]))
	assert.True(t, After(all["c3"], all["c2"]))
	assert.True(t, Before(all["catalog"], all["c1"]))
	assert.True(t, Before(flag, meta), "flags come before model children")
	assert.Zero(t, Compare(all["g2"], all["g2"]))

	_, other := sample(t)
	assert.NotZero(t, Compare(all["c1"], other["c1"]))
}

func TestPath(t *testing.T) {
	doc, all := sample(t)
	tests := []struct {
		Node     Node
		Expected string
	}{
		{Node: doc, Expected: "/"},
		{Node: all["catalog"], Expected: "/catalog[1]"},
		{Node: all["c2"], Expected: "/catalog[1]/group[1]/control[2]"},
		{Node: all["c3"], Expected: "/catalog[1]/group[2]/control[1]"},
		{Node: all["g2"].Flag(LocalName("id")), Expected: "/catalog[1]/group[2]/@id"},
	}
	for _, c := range tests {
		assert.Equal(t, c.Expected, Path(c.Node))
	}
}

func TestStringValue(t *testing.T) {
	_, all := sample(t)
	assert.Equal(t, "sample", StringValue(all["catalog"]))
	assert.Equal(t, "sample", StringValue(all["title"]))
	assert.Equal(t, "c1", StringValue(all["c1"].Flag(LocalName("id"))))
	assert.Equal(t, "", StringValue(all["g1"]))
}

func TestAppend(t *testing.T) {
	var (
		a = NewAssembly(LocalName("a"))
		f = NewFlag(LocalName("x"), 1)
	)
	assert.Error(t, a.Append(f))
	a.SetFlag(f)
	a.SetFlag(NewFlag(LocalName("x"), 2))
	require.Len(t, a.Flags(), 1)
	assert.Equal(t, 2, a.Flag(LocalName("x")).Value())
	assert.Len(t, a.Child(LocalName("b")), 0)
}

func TestCyclicDescendants(t *testing.T) {
	var (
		root   = NewAssembly(LocalName("part"))
		inner  = NewAssembly(LocalName("part"))
		leaf   = NewAssembly(LocalName("part"))
		deeper = NewAssembly(LocalName("part"))
		other  = NewField(LocalName("title"), "x")
	)
	require.NoError(t, leaf.Append(deeper))
	require.NoError(t, inner.Append(leaf))
	require.NoError(t, root.Append(inner))
	require.NoError(t, root.Append(other))
	inner.MarkCyclic()

	assert.Equal(t, []Node{inner, leaf, other}, Descendants(root))
	assert.Equal(t, []Node{leaf}, Descendants(inner))
	assert.Equal(t, []Node{deeper}, Descendants(leaf))
}
