// Package link stores and loads content addressed IPLD blocks.
package link

import (
	"context"

	"github.com/ipfs/go-cid"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/linking"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/nasdf/treehash/reader"
	"github.com/nasdf/treehash/storage"

	// codecs need to be initialized and registered
	_ "github.com/ipld/go-ipld-prime/codec/dagcbor"
	_ "github.com/ipld/go-ipld-prime/codec/dagjson"
	_ "github.com/ipld/go-ipld-prime/codec/raw"
)

// LinkPrototype creates dag-cbor links with sha2-256 multihashes.
var LinkPrototype = cidlink.LinkPrototype{Prefix: cid.Prefix{
	Version:  1,
	Codec:    cid.DagCBOR,
	MhType:   0x12, // sha2-256
	MhLength: 32,
}}

// Store is a content addressable block store.
type Store struct {
	lsys    linking.LinkSystem
	storage storage.Storage
}

// NewStore returns a new Store that reads and writes blocks using the given storage.
func NewStore(store storage.Storage) *Store {
	lsys := cidlink.DefaultLinkSystem()
	lsys.SetReadStorage(store)
	lsys.SetWriteStorage(store)

	return &Store{
		lsys:    lsys,
		storage: store,
	}
}

// Load returns the node matching the given link.
func (s *Store) Load(ctx context.Context, lnk datamodel.Link) (datamodel.Node, error) {
	return s.lsys.Load(linking.LinkContext{Ctx: ctx}, lnk, basicnode.Prototype.Any)
}

// Store writes the given node to the store and returns its link.
func (s *Store) Store(ctx context.Context, node datamodel.Node) (datamodel.Link, error) {
	return s.lsys.Store(linking.LinkContext{Ctx: ctx}, LinkPrototype, node)
}

// Loader returns a reader.Loader that loads links from this store.
func (s *Store) Loader(ctx context.Context) reader.Loader {
	return func(lnk datamodel.Link) (datamodel.Node, error) {
		return s.Load(ctx, lnk)
	}
}

// LoadAll returns the nodes matching the given links.
func (s *Store) LoadAll(ctx context.Context, links []datamodel.Link) ([]datamodel.Node, error) {
	nodes := make([]datamodel.Node, 0, len(links))
	for _, lnk := range links {
		n, err := s.Load(ctx, lnk)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}
