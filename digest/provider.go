package digest

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"

	"github.com/multiformats/go-multihash"
	"golang.org/x/crypto/sha3"
	"lukechampine.com/blake3"
)

var ErrUnknownAlgorithm = errors.New("unknown digest algorithm")

// Provider creates fresh incremental hash states.
//
// A hash state is finalized by calling Sum(nil). Callers that reuse a state
// must call Reset after finalizing it.
type Provider interface {
	New() hash.Hash
}

// ProviderFunc adapts a hash constructor into a Provider.
type ProviderFunc func() hash.Hash

// New returns a new hash state.
func (f ProviderFunc) New() hash.Hash {
	return f()
}

var (
	// SHA256 provides SHA2-256 hashes.
	SHA256 Provider = ProviderFunc(sha256.New)
	// SHA3_256 provides SHA3-256 hashes.
	SHA3_256 Provider = ProviderFunc(sha3.New256)
	// BLAKE3 provides 256 bit BLAKE3 hashes.
	BLAKE3 Provider = ProviderFunc(func() hash.Hash { return blake3.New(32, nil) })
	// Identity provides hashes that return the bytes written to them.
	Identity Provider = ProviderFunc(func() hash.Hash { return &identity{} })
)

var builtin = map[string]Provider{
	"sha2-256": SHA256,
	"sha3-256": SHA3_256,
	"blake3":   BLAKE3,
	"identity": Identity,
}

// Multihash returns a provider for the multihash function with the given code.
func Multihash(code uint64) (Provider, error) {
	if _, err := multihash.GetHasher(code); err != nil {
		return nil, fmt.Errorf("%w: multihash code 0x%x: %v", ErrUnknownAlgorithm, code, err)
	}
	return ProviderFunc(func() hash.Hash {
		h, err := multihash.GetHasher(code)
		if err != nil {
			// the code was validated when the provider was created
			panic(err)
		}
		return h
	}), nil
}

// ByName returns the provider for the algorithm with the given name.
//
// Builtin names are checked first followed by the multihash function names.
func ByName(name string) (Provider, error) {
	if p, ok := builtin[name]; ok {
		return p, nil
	}
	code, ok := multihash.Names[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}
	return Multihash(code)
}
