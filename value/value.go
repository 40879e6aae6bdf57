package value

import (
	"math/big"

	"github.com/cockroachdb/apd/v3"
)

// Value is a materialized node of the data model.
type Value struct {
	// Type is the type of the value.
	Type Type
	// Null is true for typed nulls.
	Null bool
	// Annotations is the ordered list of annotations on the value.
	Annotations []SymbolToken
	// Scalar contains the value of non null scalars.
	//
	// The concrete types are bool, *big.Int, float64, *apd.Decimal,
	// Timestamp, string, SymbolToken and []byte.
	Scalar any
	// Elems contains the children of lists and sexps.
	Elems []Value
	// Fields contains the children of structs.
	Fields []Field
}

// Field is a named child of a struct.
type Field struct {
	Name  SymbolToken
	Value Value
}

// NewField returns a struct field with the given name.
func NewField(name string, v Value) Field {
	return Field{Name: NewSymbolToken(name), Value: v}
}

// NewNull returns a null value of the given type.
func NewNull(t Type) Value {
	return Value{Type: t, Null: true}
}

func NewBool(v bool) Value {
	return Value{Type: BoolType, Scalar: v}
}

func NewInt(v int64) Value {
	return Value{Type: IntType, Scalar: big.NewInt(v)}
}

func NewBigInt(v *big.Int) Value {
	return Value{Type: IntType, Scalar: new(big.Int).Set(v)}
}

func NewFloat(v float64) Value {
	return Value{Type: FloatType, Scalar: v}
}

func NewDecimal(v *apd.Decimal) Value {
	return Value{Type: DecimalType, Scalar: v}
}

func NewTimestamp(v Timestamp) Value {
	return Value{Type: TimestampType, Scalar: v}
}

func NewString(v string) Value {
	return Value{Type: StringType, Scalar: v}
}

func NewSymbol(text string) Value {
	return Value{Type: SymbolType, Scalar: NewSymbolToken(text)}
}

func NewSymbolID(sid int64) Value {
	return Value{Type: SymbolType, Scalar: UnknownSymbolToken(sid)}
}

func NewBlob(v []byte) Value {
	return Value{Type: BlobType, Scalar: v}
}

func NewClob(v []byte) Value {
	return Value{Type: ClobType, Scalar: v}
}

func NewList(elems ...Value) Value {
	return Value{Type: ListType, Elems: elems}
}

func NewSexp(elems ...Value) Value {
	return Value{Type: SexpType, Elems: elems}
}

func NewStruct(fields ...Field) Value {
	return Value{Type: StructType, Fields: fields}
}

// WithAnnotations returns a copy of the value with the given annotations.
func (v Value) WithAnnotations(annotations ...string) Value {
	v.Annotations = NewSymbolTokens(annotations...)
	return v
}

// IsNull returns true if the value is null.
func (v Value) IsNull() bool {
	return v.Null || v.Type == NullType
}
