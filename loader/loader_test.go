package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midbel/metapath/node"
)

func parseCatalog(t *testing.T) *node.Document {
	t.Helper()
	doc, err := ParseFile(filepath.Join("testdata", "catalog.yaml"))
	require.NoError(t, err)
	return doc
}

func ids(list []node.Node) []string {
	var str []string
	for _, n := range list {
		f := n.Flag(node.LocalName("id"))
		if f == nil {
			continue
		}
		str = append(str, f.Value().(string))
	}
	return str
}

func TestParse(t *testing.T) {
	doc := parseCatalog(t)
	assert.True(t, strings.HasPrefix(doc.URI, "file:///"))
	assert.True(t, strings.HasSuffix(doc.URI, "/testdata/catalog.yaml"))

	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, node.TypeAssembly, root.Type())
	assert.Equal(t, "catalog", root.QName().Name)
	assert.Same(t, node.Node(doc), root.Parent())

	groups := root.Child(node.LocalName("group"))
	assert.Equal(t, []string{"g1", "g2"}, ids(groups))
	assert.Equal(t, []string{"c1", "c2"}, ids(groups[0].Child(node.LocalName("control"))))
	assert.Equal(t, []string{"c3"}, ids(groups[1].Child(node.LocalName("control"))))

	all := node.Descendants(root)
	assert.Equal(t, []string{"g1", "c1", "c2", "g2", "c3"}, ids(all))
}

func TestParseValues(t *testing.T) {
	var (
		doc  = parseCatalog(t)
		meta = doc.Root().Child(node.LocalName("metadata"))[0]
	)
	tests := []struct {
		Name     string
		Expected any
	}{
		{Name: "title", Expected: "sample"},
		{Name: "version", Expected: 3},
		{Name: "published", Expected: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)},
		{Name: "draft", Expected: false},
	}
	for _, c := range tests {
		t.Run(c.Name, func(t *testing.T) {
			list := meta.Child(node.LocalName(c.Name))
			require.Len(t, list, 1)
			assert.Equal(t, node.TypeField, list[0].Type())
			got := list[0].Value()
			if when, ok := c.Expected.(time.Time); ok {
				assert.True(t, when.Equal(got.(time.Time)))
				return
			}
			assert.Equal(t, c.Expected, got)
		})
	}
}

func TestParseFieldWithFlags(t *testing.T) {
	var (
		doc  = parseCatalog(t)
		c1   = doc.Root().Child(node.LocalName("group"))[0].Children()[0]
		prop = c1.Child(node.LocalName("prop"))
	)
	require.Len(t, prop, 1)
	assert.Equal(t, node.TypeField, prop[0].Type())
	assert.Equal(t, 1.5, prop[0].Value())
	name := prop[0].Flag(node.LocalName("name"))
	require.NotNil(t, name)
	assert.Equal(t, "weight", name.Value())
	assert.Equal(t, "high", c1.Flag(node.LocalName("class")).Value())
}

func TestParseCyclic(t *testing.T) {
	const doc = `
part: &p
  "@id": root
  part: *p
`
	d, err := Parse(strings.NewReader(doc), "mem:cyclic")
	require.NoError(t, err)

	root := d.Root()
	assert.False(t, root.Cyclic())
	inner := root.Child(node.LocalName("part"))
	require.Len(t, inner, 1)
	assert.True(t, inner[0].Cyclic())
	assert.Empty(t, inner[0].Children())
}

func TestParseAlias(t *testing.T) {
	const doc = `
catalog:
  base: &b
    "@id": shared
    label: x
  copy: *b
`
	d, err := Parse(strings.NewReader(doc), "mem:alias")
	require.NoError(t, err)
	copied := d.Root().Child(node.LocalName("copy"))
	require.Len(t, copied, 1)
	assert.False(t, copied[0].Cyclic())
	assert.Equal(t, []string{"shared"}, ids(copied))
	assert.Len(t, copied[0].Children(), 1)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		Name string
		Doc  string
		Err  error
	}{
		{Name: "empty", Doc: "", Err: ErrRoot},
		{Name: "many-roots", Doc: "a: 1\nb: 2\n", Err: ErrRoot},
		{Name: "scalar-root", Doc: "value\n", Err: ErrRoot},
		{Name: "flag-root", Doc: "\"@id\": x\n", Err: ErrRoot},
		{Name: "sequence-root", Doc: "a:\n  - 1\n  - 2\n", Err: ErrRoot},
		{Name: "nested-sequence", Doc: "a:\n  b:\n    - [1, 2]\n", Err: ErrContent},
		{Name: "mixed-content", Doc: "a:\n  _: 1\n  b: 2\n", Err: ErrContent},
		{Name: "complex-flag", Doc: "a:\n  \"@id\":\n    b: 1\n", Err: ErrContent},
	}
	for _, c := range tests {
		t.Run(c.Name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(c.Doc), "mem:"+c.Name)
			require.Error(t, err)
			assert.ErrorIs(t, err, c.Err)
		})
	}

	_, err := Parse(strings.NewReader("a:\n  \"{x\": 1\n"), "mem:name")
	assert.ErrorIs(t, err, node.ErrName)
}

func TestYAMLLoad(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "doc.yaml")
	require.NoError(t, os.WriteFile(file, []byte("doc:\n  title: loaded\n"), 0o644))

	tests := []struct {
		Name   string
		Loader YAML
		URI    string
	}{
		{Name: "relative", Loader: YAML{Dir: dir}, URI: "doc.yaml"},
		{Name: "absolute", Loader: YAML{}, URI: filepath.ToSlash(file)},
		{Name: "file-uri", Loader: YAML{}, URI: fileURI(file)},
	}
	for _, c := range tests {
		t.Run(c.Name, func(t *testing.T) {
			n, err := c.Loader.Load(c.URI)
			require.NoError(t, err)
			assert.Equal(t, node.TypeDocument, n.Type())
			assert.Equal(t, fileURI(file), n.(*node.Document).URI)
		})
	}

	_, err := YAML{}.Load("https://example.com/doc.yaml")
	assert.ErrorIs(t, err, ErrScheme)

	_, err = YAML{Dir: dir}.Load("missing.yaml")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestKebabNames(t *testing.T) {
	tests := []struct {
		Input    string
		Expected string
	}{
		{Input: "title", Expected: "title"},
		{Input: "publishedAt", Expected: "published-at"},
		{Input: "PublishedAt", Expected: "published-at"},
		{Input: "published_at", Expected: "published-at"},
		{Input: "published at", Expected: "published-at"},
		{Input: "last-modified", Expected: "last-modified"},
		{Input: "partID", Expected: "part-id"},
		{Input: "trailing_", Expected: "trailing"},
	}
	for _, c := range tests {
		t.Run(c.Input, func(t *testing.T) {
			assert.Equal(t, c.Expected, kebab(c.Input))
		})
	}

	const doc = `
backMatter:
  "@lastModified": today
  resourceItem:
    _: x
`
	d, err := Parse(strings.NewReader(doc), "mem:kebab", WithKebabNames())
	require.NoError(t, err)
	root := d.Root()
	assert.Equal(t, "back-matter", root.QName().Name)
	assert.NotNil(t, root.Flag(node.LocalName("last-modified")))
	assert.Len(t, root.Child(node.LocalName("resource-item")), 1)
}
