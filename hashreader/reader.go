// Package hashreader decorates a reader so that the digest of every value
// it moves past is computed, regardless of how the caller traverses it.
package hashreader

import (
	"errors"
	"fmt"

	"github.com/nasdf/treehash/codec"
	"github.com/nasdf/treehash/digest"
	"github.com/nasdf/treehash/hasher"
	"github.com/nasdf/treehash/reader"
	"github.com/nasdf/treehash/value"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("treehash.hashreader")

// Reader is a reader.Reader that hashes the values it reads.
//
// The digest of the value just moved past with Next, or stepped out of
// with StepOut, is available from Digest. Containers that are skipped or
// only partially read are consumed internally so the digest is the same
// as for a full traversal.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	reader.Reader
	hasher *hasher.Hasher
	// typ is the type of the current value if it has not been hashed yet.
	typ value.Type
	// eol is true when the end of the current level has been reached.
	eol    bool
	err    error
	closed bool
}

var _ reader.Reader = (*Reader)(nil)

// New returns a Reader that hashes the values read from r using hashes from provider.
//
// The returned reader owns r and closes it when it is closed.
func New(r reader.Reader, provider digest.Provider, opts ...hasher.Option) (*Reader, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: reader must not be nil", hasher.ErrInvalidArgument)
	}
	h, err := hasher.New(provider, opts...)
	if err != nil {
		return nil, err
	}
	return &Reader{
		Reader: r,
		hasher: h,
	}, nil
}

// Digest returns the digest of the last top level value that was read.
func (r *Reader) Digest() ([]byte, error) {
	if err := r.usable(); err != nil {
		return nil, err
	}
	return r.hasher.Digest()
}

// Next hashes the current value and moves to the next one.
func (r *Reader) Next() (value.Type, error) {
	if err := r.usable(); err != nil {
		return value.NoType, err
	}
	if err := r.consume(); err != nil {
		return value.NoType, r.fail(err)
	}
	t, err := r.advance()
	if err != nil {
		return value.NoType, r.fail(err)
	}
	return t, nil
}

// StepIn moves into the current container.
func (r *Reader) StepIn() error {
	if err := r.usable(); err != nil {
		return err
	}
	if !r.typ.IsContainer() || r.Reader.IsNull() {
		return fmt.Errorf("%w: cannot step into %s", hasher.ErrIllegalState, r.typ)
	}
	return r.fail(r.stepIn())
}

// StepOut hashes the rest of the current container and moves past it.
func (r *Reader) StepOut() error {
	if err := r.usable(); err != nil {
		return err
	}
	if r.hasher.Depth() == 0 {
		return fmt.Errorf("%w: not inside a container", hasher.ErrIllegalState)
	}
	if err := r.drain(); err != nil {
		return r.fail(err)
	}
	return r.fail(r.stepOut())
}

// Close releases the hasher and closes the underlying reader.
// It is safe to call more than once.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if log.AllowLevel(commonlog.Debug) {
		log.Debugf("closing hash reader at depth %d", r.hasher.Depth())
	}
	return errors.Join(r.hasher.Close(), r.Reader.Close())
}

func (r *Reader) usable() error {
	if r.closed {
		return fmt.Errorf("%w: reader is closed", hasher.ErrIllegalState)
	}
	if r.err != nil {
		return fmt.Errorf("%w: reader failed: %w", hasher.ErrIllegalState, r.err)
	}
	return nil
}

func (r *Reader) fail(err error) error {
	if err != nil {
		r.err = err
	}
	return err
}

// advance moves the underlying reader to the next value.
func (r *Reader) advance() (value.Type, error) {
	t, err := r.Reader.Next()
	if err != nil {
		return value.NoType, &HashComputationError{Err: err}
	}
	r.typ = t
	r.eol = t == value.NoType
	return t, nil
}

func (r *Reader) stepIn() error {
	err := r.hasher.StepIn(r.typ, r.Reader.FieldName(), r.Reader.Annotations())
	if err != nil {
		return wrapConversion(err)
	}
	if err := r.Reader.StepIn(); err != nil {
		return &HashComputationError{Err: err}
	}
	r.typ = value.NoType
	r.eol = false
	return nil
}

func (r *Reader) stepOut() error {
	if err := r.hasher.StepOut(); err != nil {
		return err
	}
	if err := r.Reader.StepOut(); err != nil {
		return &HashComputationError{Err: err}
	}
	r.typ = value.NoType
	r.eol = false
	return nil
}

// consume hashes the current value.
// Containers are stepped into and read to their end.
func (r *Reader) consume() error {
	switch {
	case r.typ == value.NoType:
		return nil
	case r.typ.IsContainer() && !r.Reader.IsNull():
		if log.AllowLevel(commonlog.Debug) {
			log.Debugf("consuming skipped %s at depth %d", r.typ, r.hasher.Depth())
		}
		if err := r.stepIn(); err != nil {
			return err
		}
		if err := r.drain(); err != nil {
			return err
		}
		return r.stepOut()
	default:
		return r.hashScalar()
	}
}

// drain hashes every remaining value at the current depth including
// the contents of nested containers.
//
// Nested containers are tracked with a counter instead of recursion
// so the depth is only bounded by the hasher limit.
func (r *Reader) drain() error {
	depth := 0
	for {
		switch {
		case r.eol && depth == 0:
			return nil
		case r.eol:
			if err := r.stepOut(); err != nil {
				return err
			}
			depth--
			continue
		case r.typ == value.NoType:
		case r.typ.IsContainer() && !r.Reader.IsNull():
			if err := r.stepIn(); err != nil {
				return err
			}
			depth++
		default:
			if err := r.hashScalar(); err != nil {
				return err
			}
		}
		if _, err := r.advance(); err != nil {
			return err
		}
	}
}

func (r *Reader) hashScalar() error {
	v, err := r.scalarValue()
	if err != nil {
		return &HashComputationError{Err: err}
	}
	err = r.hasher.Scalar(r.typ, r.Reader.FieldName(), r.Reader.Annotations(), v)
	if err != nil {
		return wrapConversion(err)
	}
	r.typ = value.NoType
	return nil
}

// wrapConversion wraps failures to canonicalize data from the underlying reader.
func wrapConversion(err error) error {
	if errors.Is(err, codec.ErrInvalidValue) || errors.Is(err, codec.ErrUnsupportedType) {
		return &HashComputationError{Err: err}
	}
	return err
}

// scalarValue reads the current scalar from the underlying reader.
// Nulls are returned as nil.
func (r *Reader) scalarValue() (any, error) {
	if r.Reader.IsNull() {
		return nil, nil
	}
	switch r.typ {
	case value.NullType:
		return nil, nil
	case value.BoolType:
		return r.Reader.BoolValue()
	case value.IntType:
		return r.Reader.IntValue()
	case value.FloatType:
		return r.Reader.FloatValue()
	case value.DecimalType:
		return r.Reader.DecimalValue()
	case value.TimestampType:
		return r.Reader.TimestampValue()
	case value.StringType:
		return r.Reader.StringValue()
	case value.SymbolType:
		return r.Reader.SymbolValue()
	case value.BlobType, value.ClobType:
		return r.Reader.ByteValue()
	default:
		return nil, fmt.Errorf("cannot read a %s value", r.typ)
	}
}
