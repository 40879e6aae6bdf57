package link

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/ipld/go-ipld-prime/codec/dagjson"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/nasdf/treehash/digest"
	"github.com/nasdf/treehash/hashreader"
	"github.com/nasdf/treehash/reader"
	"github.com/nasdf/treehash/storage"
	"github.com/nasdf/treehash/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeJSON(t *testing.T, input string) datamodel.Node {
	nb := basicnode.Prototype.Any.NewBuilder()
	err := dagjson.Decode(nb, strings.NewReader(input))
	require.NoError(t, err)
	return nb.Build()
}

func hashNodes(t *testing.T, nodes []datamodel.Node, opts ...reader.NodeOption) [][]byte {
	r, err := hashreader.New(reader.NewNodeReader(nodes, opts...), digest.SHA256)
	require.NoError(t, err)
	defer r.Close()

	var sums [][]byte
	typ, err := r.Next()
	require.NoError(t, err)
	for typ != value.NoType {
		typ, err = r.Next()
		require.NoError(t, err)

		sum, err := r.Digest()
		require.NoError(t, err)
		sums = append(sums, sum)
	}
	return sums
}

// storeDAG stores a two level DAG and returns its root link.
func storeDAG(t *testing.T, ctx context.Context, store *Store) datamodel.Link {
	child, err := store.Store(ctx, decodeJSON(t, `{"x":1,"y":[true,null]}`))
	require.NoError(t, err)

	root := decodeJSON(t, fmt.Sprintf(`{"child":{"/":"%s"},"name":"root"}`, child.String()))
	rootLink, err := store.Store(ctx, root)
	require.NoError(t, err)
	return rootLink
}

func TestStoreLoad(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemory())

	n := decodeJSON(t, `{"a":"b"}`)
	lnk, err := store.Store(ctx, n)
	require.NoError(t, err)

	loaded, err := store.Load(ctx, lnk)
	require.NoError(t, err)
	assert.True(t, datamodel.DeepEqual(n, loaded))

	nodes, err := store.LoadAll(ctx, []datamodel.Link{lnk, lnk})
	require.NoError(t, err)
	assert.Len(t, nodes, 2)
}

func TestStoreLoadMissing(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemory())
	other := NewStore(storage.NewMemory())

	lnk, err := other.Store(ctx, decodeJSON(t, `"missing"`))
	require.NoError(t, err)

	_, err = store.Load(ctx, lnk)
	assert.Error(t, err)
}

func TestFollowLinksMatchesInlineValue(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemory())
	rootLink := storeDAG(t, ctx, store)

	root, err := store.Load(ctx, rootLink)
	require.NoError(t, err)
	inline := decodeJSON(t, `{"child":{"x":1,"y":[true,null]},"name":"root"}`)

	linked := hashNodes(t, []datamodel.Node{root}, reader.WithLoader(store.Loader(ctx)))
	expect := hashNodes(t, []datamodel.Node{inline})
	assert.Equal(t, expect, linked)

	unfollowed := hashNodes(t, []datamodel.Node{root})
	assert.NotEqual(t, expect, unfollowed)
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	source := NewStore(storage.NewMemory())
	rootLink := storeDAG(t, ctx, source)

	var buf bytes.Buffer
	require.NoError(t, source.Export(ctx, rootLink, &buf))

	blocks := storage.NewMemory()
	target := NewStore(blocks)
	roots, err := target.Import(ctx, &buf)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, rootLink.String(), roots[0].String())
	assert.Equal(t, 2, blocks.Len())

	sourceRoot, err := source.Load(ctx, rootLink)
	require.NoError(t, err)
	targetRoots, err := target.LoadAll(ctx, roots)
	require.NoError(t, err)

	expect := hashNodes(t, []datamodel.Node{sourceRoot}, reader.WithLoader(source.Loader(ctx)))
	assert.Equal(t, expect, hashNodes(t, targetRoots, reader.WithLoader(target.Loader(ctx))))
}

func TestImportInvalid(t *testing.T) {
	store := NewStore(storage.NewMemory())
	_, err := store.Import(context.Background(), strings.NewReader("not a car"))
	assert.Error(t, err)
}
