// Package treehash computes structural digests of hierarchical values.
//
// The digest of a value depends only on its canonical structure and not
// on how a reader was used to traverse it. See the hashreader package for
// hashing while reading and the hasher package for hashing events directly.
package treehash

import (
	"fmt"

	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/nasdf/treehash/codec"
	"github.com/nasdf/treehash/digest"
	"github.com/nasdf/treehash/hasher"
	"github.com/nasdf/treehash/hashreader"
	"github.com/nasdf/treehash/reader"
	"github.com/nasdf/treehash/value"
)

var (
	ErrInvalidArgument = hasher.ErrInvalidArgument
	ErrIllegalState    = hasher.ErrIllegalState
	ErrDepthExceeded   = hasher.ErrDepthExceeded
	ErrUnsupportedType = codec.ErrUnsupportedType
	ErrInvalidValue    = codec.ErrInvalidValue
)

// HashComputationError wraps failures of the underlying reader.
type HashComputationError = hashreader.HashComputationError

// Sum returns the digest of every top level value read from r.
//
// The reader is closed before Sum returns.
func Sum(r reader.Reader, provider digest.Provider, opts ...hasher.Option) (sums []digest.Hash, err error) {
	hr, err := hashreader.New(r, provider, opts...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := hr.Close(); err == nil {
			err = cerr
		}
	}()

	t, err := hr.Next()
	for err == nil && t != value.NoType {
		// skipped values are hashed when moving past them
		if t, err = hr.Next(); err != nil {
			break
		}
		var sum []byte
		if sum, err = hr.Digest(); err == nil {
			sums = append(sums, sum)
		}
	}
	if err != nil {
		return nil, err
	}
	return sums, nil
}

// SumValue returns the digest of a single value.
func SumValue(v value.Value, provider digest.Provider, opts ...hasher.Option) (digest.Hash, error) {
	sums, err := Sum(reader.NewTreeReader(v), provider, opts...)
	if err != nil {
		return nil, err
	}
	if len(sums) != 1 {
		return nil, fmt.Errorf("%w: expected one value, got %d", ErrInvalidValue, len(sums))
	}
	return sums[0], nil
}

// SumNodes returns the digest of every node. Links are followed using
// loader when it is not nil.
func SumNodes(nodes []datamodel.Node, loader reader.Loader, provider digest.Provider, opts ...hasher.Option) ([]digest.Hash, error) {
	var nodeOpts []reader.NodeOption
	if loader != nil {
		nodeOpts = append(nodeOpts, reader.WithLoader(loader))
	}
	return Sum(reader.NewNodeReader(nodes, nodeOpts...), provider, opts...)
}
