package metapath

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midbel/metapath/node"
)

func TestStaticContext(t *testing.T) {
	static, err := NewStaticContext(
		WithNamespace("oscal", "http://csrc.nist.gov/ns/oscal/1.0"),
		WithDefaultFunctionNamespace(NamespaceExtended),
		WithVariable(QName{Name: "limit"}, Exactly(TypeInteger)),
	)
	require.NoError(t, err)

	uri, ok := static.Namespace("oscal")
	assert.True(t, ok)
	assert.Equal(t, "http://csrc.nist.gov/ns/oscal/1.0", uri)

	uri, ok = static.Namespace("fn")
	assert.True(t, ok)
	assert.Equal(t, NamespaceFunctions, uri)

	name, err := static.ResolveName("oscal", "control")
	require.NoError(t, err)
	assert.Equal(t, node.ExpandedName("http://csrc.nist.gov/ns/oscal/1.0", "control"), name)

	name, err = static.ResolveName("", "control")
	require.NoError(t, err)
	assert.Equal(t, node.LocalName("control"), name)

	_, err = static.ResolveName("unknown", "control")
	assert.True(t, HasCode(err, CodeUnboundPrefix))

	name, err = static.ResolveFunctionName("", "base64-encode")
	require.NoError(t, err)
	_, err = static.Function(name, 1)
	assert.NoError(t, err)

	st, ok := static.Variable(QName{Name: "limit"})
	assert.True(t, ok)
	assert.Equal(t, "integer", st.String())

	all := static.Namespaces()
	all["fn"] = "changed"
	uri, _ = static.Namespace("fn")
	assert.Equal(t, NamespaceFunctions, uri)

	assert.Same(t, DefaultLibrary(), static.Library())
	assert.Nil(t, static.BaseURI())

	_, err = NewStaticContext(WithBaseURI("http://[::1"))
	assert.Error(t, err)
}

func TestDynamicContextVariables(t *testing.T) {
	var (
		ctx = NewDynamicContext(nil)
		x   = QName{Name: "x"}
		y   = node.ExpandedName("urn:test", "x")
	)
	ctx.Bind(x, Singleton(NewInteger(1)))

	sub := ctx.Sub()
	sub.Bind(x, Singleton(NewInteger(2)))
	sub.Bind(y, Singleton(NewInteger(3)))

	res, err := sub.Variable(x)
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, values(t, res))

	res, err = sub.Variable(y)
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, values(t, res))

	res, err = ctx.Variable(x)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, values(t, res))

	_, err = ctx.Variable(y)
	assert.True(t, HasCode(err, CodeUnboundVariable))
}

func TestDynamicContextBindMaterializes(t *testing.T) {
	var (
		ctx   = NewDynamicContext(nil)
		x     = QName{Name: "x"}
		pulls int
	)
	seq := Stream(func(yield func(Item) bool) {
		for i := range 3 {
			pulls++
			if !yield(NewInteger(int64(i))) {
				return
			}
		}
	})
	ctx.Bind(x, seq)
	for range 2 {
		res, err := ctx.Variable(x)
		require.NoError(t, err)
		assert.Equal(t, 3, res.Len())
	}
	assert.Equal(t, 3, pulls)
}

func TestDynamicContextTime(t *testing.T) {
	var (
		zone = time.FixedZone("", -5*3600)
		now  = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
		ctx  = NewDynamicContext(nil, WithCurrentTime(now), WithTimezone(zone))
	)
	assert.Equal(t, zone, ctx.Timezone())
	assert.True(t, now.Equal(ctx.Now()))
	assert.Equal(t, 7, ctx.Now().Hour())

	sub := ctx.Sub()
	assert.True(t, now.Equal(sub.Now()))

	expr := ValueCompare(OpEqual, atomic(t, ParseDateTime, "2024-03-10T07:00:00"), atomic(t, ParseDateTime, "2024-03-10T12:00:00Z"))
	res, err := Evaluate(expr, ctx, EmptySequence())
	require.NoError(t, err)
	assert.Equal(t, []string{"true"}, values(t, res))
}

func TestDynamicContextDocuments(t *testing.T) {
	doc, _ := catalog(t)
	var loads int
	loader := LoaderFunc(func(uri string) (node.Node, error) {
		loads++
		return doc, nil
	})
	ctx := NewDynamicContext(nil, WithLoader(loader))
	for range 3 {
		got, err := ctx.Sub().Document("file:///catalog.yaml")
		require.NoError(t, err)
		assert.Same(t, doc, got)
	}
	assert.Equal(t, 1, loads)
	assert.True(t, ctx.DocumentAvailable("file:///catalog.yaml"))

	_, err := NewDynamicContext(nil).Document("file:///catalog.yaml")
	assert.ErrorIs(t, err, ErrDocument)
	assert.True(t, HasCode(err, CodeDocument))
	assert.False(t, NewDynamicContext(nil).DocumentAvailable("file:///catalog.yaml"))
}

func TestDynamicContextString(t *testing.T) {
	ctx := NewDynamicContext(nil)
	assert.Equal(t, "dynamic-context(depth=0, calls=0)", ctx.String())
	_, err := Evaluate(fn(t, "count", integers(1, 2)), ctx, EmptySequence())
	require.NoError(t, err)
	assert.Equal(t, "dynamic-context(depth=0, calls=1)", ctx.String())
}
