package link

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ipld/go-car/v2"
	"github.com/ipld/go-ipld-prime/datamodel"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/ipld/go-ipld-prime/traversal/selector"
	"github.com/ipld/go-ipld-prime/traversal/selector/builder"
)

// Export writes a CAR containing the DAG starting from the given root link to the given io.Writer.
func (s *Store) Export(ctx context.Context, root datamodel.Link, out io.Writer) error {
	lnk, ok := root.(cidlink.Link)
	if !ok {
		return fmt.Errorf("unsupported link type %T", root)
	}
	ssb := builder.NewSelectorSpecBuilder(basicnode.Prototype.Any)
	sel := ssb.ExploreRecursive(selector.RecursionLimitNone(), ssb.ExploreAll(ssb.ExploreRecursiveEdge()))

	w, err := car.NewSelectiveWriter(ctx, &s.lsys, lnk.Cid, sel.Node())
	if err != nil {
		return err
	}
	_, err = w.WriteTo(out)
	return err
}

// Import reads all blocks of a CAR into the store and returns its root links.
func (s *Store) Import(ctx context.Context, in io.Reader) ([]datamodel.Link, error) {
	br, err := car.NewBlockReader(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read car header: %w", err)
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		blk, err := br.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read car block: %w", err)
		}
		if err := s.storage.Put(ctx, blk.Cid().KeyString(), blk.RawData()); err != nil {
			return nil, err
		}
	}
	roots := make([]datamodel.Link, 0, len(br.Roots))
	for _, c := range br.Roots {
		roots = append(roots, cidlink.Link{Cid: c})
	}
	return roots, nil
}
