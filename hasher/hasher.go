// Package hasher folds a stream of scalar and container events into a canonical digest.
package hasher

import (
	"bytes"
	"errors"
	"fmt"
	"hash"
	"io"
	"slices"

	"github.com/nasdf/treehash/codec"
	"github.com/nasdf/treehash/digest"
	"github.com/nasdf/treehash/value"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrIllegalState    = errors.New("illegal state")
	ErrDepthExceeded   = errors.New("maximum depth exceeded")
)

// frame is the state of one open container.
type frame struct {
	// typ is the container type or NoType for the root frame.
	typ value.Type
	// hash receives the serialized bytes of the container.
	hash hash.Hash
	// owned is true when hash was created for this frame.
	owned bool
	// annotated is true when the container is wrapped in annotations.
	annotated bool
	// fields contains the field digests of a struct.
	fields [][]byte
}

// Hasher computes the digest of values described by a sequence of events.
//
// Scalars are reported with Scalar. Containers are opened with StepIn and
// closed with StepOut once all of their children have been reported.
// The digest of each top level value is available from Digest.
//
// A Hasher is not safe for concurrent use.
type Hasher struct {
	provider digest.Provider
	maxDepth int
	frames   []*frame
	sum      []byte
	closed   bool
}

// New returns a new Hasher that creates hash states using the given provider.
func New(provider digest.Provider, opts ...Option) (*Hasher, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: digest provider must not be nil", ErrInvalidArgument)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxDepth < 1 {
		return nil, fmt.Errorf("%w: max depth must be positive", ErrInvalidArgument)
	}
	root := provider.New()
	if root == nil {
		return nil, fmt.Errorf("%w: digest provider returned a nil hash", ErrInvalidArgument)
	}
	return &Hasher{
		provider: provider,
		maxDepth: o.maxDepth,
		frames:   []*frame{{typ: value.NoType, hash: root, owned: true}},
	}, nil
}

// Depth returns the number of open containers.
func (h *Hasher) Depth() int {
	return len(h.frames) - 1
}

// Scalar adds a scalar value to the current container.
//
// The field name is required when the current container is a struct.
// A nil value is hashed as a null of type t.
func (h *Hasher) Scalar(t value.Type, field *value.SymbolToken, annotations []value.SymbolToken, v any) error {
	if h.closed {
		return fmt.Errorf("%w: hasher is closed", ErrIllegalState)
	}
	data, err := codec.Scalar(t, v)
	if err != nil {
		return err
	}
	parent := h.top()
	w, owned, err := h.writer(parent, field)
	if err != nil {
		return err
	}
	if err := writeAnnotations(w, annotations); err != nil {
		release(w, owned)
		return err
	}
	w.Write(data)
	if len(annotations) > 0 {
		w.Write([]byte{codec.EndMarker})
	}
	h.fold(parent, w)
	return nil
}

// StepIn opens a container of type t in the current container.
func (h *Hasher) StepIn(t value.Type, field *value.SymbolToken, annotations []value.SymbolToken) error {
	if h.closed {
		return fmt.Errorf("%w: hasher is closed", ErrIllegalState)
	}
	if !t.IsContainer() {
		return fmt.Errorf("%w: cannot step into %s", ErrInvalidArgument, t)
	}
	if h.Depth() >= h.maxDepth {
		return fmt.Errorf("%w: limit is %d", ErrDepthExceeded, h.maxDepth)
	}
	parent := h.top()
	w, owned, err := h.writer(parent, field)
	if err != nil {
		return err
	}
	if err := writeAnnotations(w, annotations); err != nil {
		release(w, owned)
		return err
	}
	tq, err := codec.TypeQualifier(t, false)
	if err != nil {
		release(w, owned)
		return err
	}
	w.Write([]byte{codec.BeginMarker, tq})
	h.frames = append(h.frames, &frame{
		typ:       t,
		hash:      w,
		owned:     owned,
		annotated: len(annotations) > 0,
	})
	return nil
}

// StepOut closes the current container and adds it to its parent.
func (h *Hasher) StepOut() error {
	if h.closed {
		return fmt.Errorf("%w: hasher is closed", ErrIllegalState)
	}
	if h.Depth() == 0 {
		return fmt.Errorf("%w: no container to step out of", ErrIllegalState)
	}
	current := h.top()
	h.frames = h.frames[:len(h.frames)-1]

	if current.typ == value.StructType {
		// field order is not significant
		slices.SortFunc(current.fields, bytes.Compare)
		for _, f := range current.fields {
			current.hash.Write(codec.Escape(f))
		}
	}
	current.hash.Write([]byte{codec.EndMarker})
	if current.annotated {
		current.hash.Write([]byte{codec.EndMarker})
	}
	h.fold(h.top(), current.hash)
	return nil
}

// Digest returns the digest of the last top level value.
//
// It is only valid when no container is open.
func (h *Hasher) Digest() ([]byte, error) {
	if h.closed {
		return nil, fmt.Errorf("%w: hasher is closed", ErrIllegalState)
	}
	if h.Depth() != 0 {
		return nil, fmt.Errorf("%w: digest is only available at depth 0, current depth is %d", ErrIllegalState, h.Depth())
	}
	if h.sum == nil {
		return nil, fmt.Errorf("%w: no value has been hashed", ErrIllegalState)
	}
	return slices.Clone(h.sum), nil
}

// Close releases all hash states. It is safe to call more than once.
func (h *Hasher) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true

	var errs []error
	for _, f := range h.frames {
		if c, ok := f.hash.(io.Closer); ok && f.owned {
			errs = append(errs, c.Close())
		}
	}
	h.frames = nil
	return errors.Join(errs...)
}

func (h *Hasher) top() *frame {
	return h.frames[len(h.frames)-1]
}

// writer returns the hash that a child of parent is serialized into.
//
// Struct fields are hashed individually so that they can be sorted.
// The returned bool is true when the hash was created for the child.
func (h *Hasher) writer(parent *frame, field *value.SymbolToken) (hash.Hash, bool, error) {
	if parent.typ != value.StructType {
		return parent.hash, false, nil
	}
	if field == nil {
		return nil, false, fmt.Errorf("%w: struct field is missing a name", ErrInvalidArgument)
	}
	name, err := codec.Symbol(*field)
	if err != nil {
		return nil, false, err
	}
	w := h.provider.New()
	w.Write(name)
	return w, true, nil
}

// fold completes a child value that was serialized into w.
func (h *Hasher) fold(parent *frame, w hash.Hash) {
	switch {
	case parent.typ == value.StructType:
		parent.fields = append(parent.fields, w.Sum(nil))
		release(w, true)
	case len(h.frames) == 1:
		h.sum = w.Sum(nil)
		w.Reset()
	}
}

// release closes a hash state that was created for a single child.
func release(w hash.Hash, owned bool) {
	if c, ok := w.(io.Closer); ok && owned {
		c.Close()
	}
}

func writeAnnotations(w hash.Hash, annotations []value.SymbolToken) error {
	if len(annotations) == 0 {
		return nil
	}
	w.Write([]byte{codec.BeginMarker, codec.AnnotationQualifier()})
	for _, a := range annotations {
		data, err := codec.Symbol(a)
		if err != nil {
			return err
		}
		w.Write(data)
	}
	return nil
}
