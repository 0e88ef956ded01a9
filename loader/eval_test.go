package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midbel/metapath/metapath"
	"github.com/midbel/metapath/node"
)

func step(t *testing.T, axis metapath.Axis, name string) metapath.Expr {
	t.Helper()
	expr, err := metapath.Step(axis, metapath.NameTest(node.LocalName(name)))
	require.NoError(t, err)
	return expr
}

func TestDocumentFunction(t *testing.T) {
	doc, err := metapath.StaticFunctionCall(nil, node.ExpandedName(metapath.NamespaceFunctions, "doc"), metapath.StringLiteral("catalog.yaml"))
	require.NoError(t, err)

	var (
		controls = metapath.RootSearch(step(t, metapath.AxisChild, "control"))
		expr     = metapath.SimpleMap(metapath.RelativePath(doc, controls), step(t, metapath.AxisFlag, "id"))
		ctx      = metapath.NewDynamicContext(nil, metapath.WithLoader(YAML{Dir: "testdata"}))
	)
	res, err := metapath.Evaluate(expr, ctx, metapath.EmptySequence())
	require.NoError(t, err)

	var got []string
	for item := range res.All() {
		str, err := metapath.StringValue(item)
		require.NoError(t, err)
		got = append(got, str)
	}
	assert.Equal(t, []string{"c1", "c2", "c3"}, got)
}
