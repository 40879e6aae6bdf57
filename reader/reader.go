// Package reader defines the forward-only hierarchical reader and its implementations.
package reader

import (
	"errors"
	"math/big"

	"github.com/cockroachdb/apd/v3"
	"github.com/nasdf/treehash/value"
)

var (
	ErrClosed       = errors.New("reader is closed")
	ErrNoValue      = errors.New("reader is not positioned on a value")
	ErrNotContainer = errors.New("value is not a container")
	ErrTypeMismatch = errors.New("value type mismatch")
)

// Reader is a forward-only reader over a stream of values.
type Reader interface {
	// Next moves to the next value at the current depth and returns its type.
	// NoType is returned at the end of the current container or stream and
	// is returned again by subsequent calls.
	Next() (value.Type, error)
	// StepIn moves into the container the reader is positioned on.
	StepIn() error
	// StepOut moves past the end of the current container.
	StepOut() error
	// Depth returns the number of containers the reader is in.
	Depth() int
	// Type returns the type of the current value.
	Type() value.Type
	// IsNull returns true if the current value is a null.
	IsNull() bool
	// FieldName returns the field name of the current value when inside a struct.
	FieldName() *value.SymbolToken
	// Annotations returns the annotations of the current value.
	Annotations() []value.SymbolToken

	BoolValue() (bool, error)
	IntValue() (*big.Int, error)
	FloatValue() (float64, error)
	DecimalValue() (*apd.Decimal, error)
	TimestampValue() (value.Timestamp, error)
	StringValue() (string, error)
	SymbolValue() (value.SymbolToken, error)
	// ByteValue returns the contents of a blob or clob.
	ByteValue() ([]byte, error)

	Close() error
}
