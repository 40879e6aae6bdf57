package reader

import (
	"fmt"
	"math/big"

	"github.com/cockroachdb/apd/v3"
	"github.com/nasdf/treehash/value"
)

type treeFrame struct {
	container *value.Value
	index     int
}

// TreeReader reads materialized values.
type TreeReader struct {
	roots  []value.Value
	index  int
	stack  []treeFrame
	cur    *value.Value
	field  *value.SymbolToken
	closed bool
}

var _ Reader = (*TreeReader)(nil)

// NewTreeReader returns a reader over the given top level values.
func NewTreeReader(values ...value.Value) *TreeReader {
	return &TreeReader{roots: values}
}

func (r *TreeReader) Next() (value.Type, error) {
	if r.closed {
		return value.NoType, ErrClosed
	}
	r.cur, r.field = nil, nil
	if len(r.stack) == 0 {
		if r.index < len(r.roots) {
			r.cur = &r.roots[r.index]
			r.index++
		}
	} else {
		f := &r.stack[len(r.stack)-1]
		c := f.container
		switch {
		case c.Type == value.StructType && f.index < len(c.Fields):
			r.cur = &c.Fields[f.index].Value
			r.field = &c.Fields[f.index].Name
			f.index++
		case c.Type != value.StructType && f.index < len(c.Elems):
			r.cur = &c.Elems[f.index]
			f.index++
		}
	}
	// NoType is reserved for the end of a level
	if r.cur != nil && !r.cur.Type.IsScalar() && !r.cur.Type.IsContainer() {
		t := r.cur.Type
		r.cur, r.field = nil, nil
		return value.NoType, fmt.Errorf("%w: value has invalid type %s", ErrTypeMismatch, t)
	}
	return r.Type(), nil
}

func (r *TreeReader) StepIn() error {
	if r.closed {
		return ErrClosed
	}
	if r.cur == nil {
		return ErrNoValue
	}
	if !r.cur.Type.IsContainer() || r.cur.IsNull() {
		return fmt.Errorf("%w: %s", ErrNotContainer, r.cur.Type)
	}
	r.stack = append(r.stack, treeFrame{container: r.cur})
	r.cur, r.field = nil, nil
	return nil
}

func (r *TreeReader) StepOut() error {
	if r.closed {
		return ErrClosed
	}
	if len(r.stack) == 0 {
		return fmt.Errorf("%w: not inside a container", ErrNotContainer)
	}
	r.stack = r.stack[:len(r.stack)-1]
	r.cur, r.field = nil, nil
	return nil
}

func (r *TreeReader) Depth() int {
	return len(r.stack)
}

func (r *TreeReader) Type() value.Type {
	if r.cur == nil {
		return value.NoType
	}
	return r.cur.Type
}

func (r *TreeReader) IsNull() bool {
	return r.cur != nil && r.cur.IsNull()
}

func (r *TreeReader) FieldName() *value.SymbolToken {
	return r.field
}

func (r *TreeReader) Annotations() []value.SymbolToken {
	if r.cur == nil {
		return nil
	}
	return r.cur.Annotations
}

func (r *TreeReader) BoolValue() (bool, error) {
	return scalar[bool](r, value.BoolType)
}

func (r *TreeReader) IntValue() (*big.Int, error) {
	v, err := scalar[*big.Int](r, value.IntType)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(v), nil
}

func (r *TreeReader) FloatValue() (float64, error) {
	return scalar[float64](r, value.FloatType)
}

func (r *TreeReader) DecimalValue() (*apd.Decimal, error) {
	v, err := scalar[*apd.Decimal](r, value.DecimalType)
	if err != nil {
		return nil, err
	}
	return new(apd.Decimal).Set(v), nil
}

func (r *TreeReader) TimestampValue() (value.Timestamp, error) {
	return scalar[value.Timestamp](r, value.TimestampType)
}

func (r *TreeReader) StringValue() (string, error) {
	return scalar[string](r, value.StringType)
}

func (r *TreeReader) SymbolValue() (value.SymbolToken, error) {
	return scalar[value.SymbolToken](r, value.SymbolType)
}

func (r *TreeReader) ByteValue() ([]byte, error) {
	if r.Type() == value.ClobType {
		return scalar[[]byte](r, value.ClobType)
	}
	return scalar[[]byte](r, value.BlobType)
}

func (r *TreeReader) Close() error {
	r.closed = true
	r.roots, r.stack, r.cur, r.field = nil, nil, nil, nil
	return nil
}

func scalar[T any](r *TreeReader, t value.Type) (T, error) {
	var zero T
	if r.closed {
		return zero, ErrClosed
	}
	if r.cur == nil {
		return zero, ErrNoValue
	}
	if r.cur.Type != t || r.cur.IsNull() {
		return zero, fmt.Errorf("%w: %s is not a non-null %s", ErrTypeMismatch, r.cur.Type, t)
	}
	v, ok := r.cur.Scalar.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s holds %T", ErrTypeMismatch, t, r.cur.Scalar)
	}
	return v, nil
}
