// Package codec maps values to the canonical byte form that is fed to digests.
package codec

import (
	"errors"
	"fmt"

	"github.com/nasdf/treehash/value"
)

const (
	BeginMarker = byte(0x0B)
	EndMarker   = byte(0x0E)
	EscapeByte  = byte(0x0C)
)

const (
	qualifierNull          = byte(0x0F)
	qualifierTrue          = byte(0x01)
	qualifierUnknownSymbol = byte(0x01)

	typeCodeNegativeInt = byte(0x30)
	typeCodeAnnotation  = byte(0xE0)
)

var (
	ErrUnsupportedType = errors.New("unsupported type")
	ErrInvalidValue    = errors.New("invalid value")
)

var typeCodes = map[value.Type]byte{
	value.NullType:      0x00,
	value.BoolType:      0x10,
	value.IntType:       0x20,
	value.FloatType:     0x40,
	value.DecimalType:   0x50,
	value.TimestampType: 0x60,
	value.SymbolType:    0x70,
	value.StringType:    0x80,
	value.ClobType:      0x90,
	value.BlobType:      0xA0,
	value.ListType:      0xB0,
	value.SexpType:      0xC0,
	value.StructType:    0xD0,
}

// TypeQualifier returns the type qualifier byte for a value of the given type
// that has no value specific qualifier.
func TypeQualifier(t value.Type, null bool) (byte, error) {
	code, ok := typeCodes[t]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	if null || t == value.NullType {
		return code | qualifierNull, nil
	}
	return code, nil
}

// AnnotationQualifier returns the type qualifier byte that opens an annotation wrapper.
func AnnotationQualifier() byte {
	return typeCodeAnnotation
}

// Escape returns data with every marker and escape byte prefixed by the escape byte.
func Escape(data []byte) []byte {
	return appendEscaped(make([]byte, 0, len(data)), data)
}

func appendEscaped(dst []byte, data []byte) []byte {
	for _, b := range data {
		if b == BeginMarker || b == EndMarker || b == EscapeByte {
			dst = append(dst, EscapeByte)
		}
		dst = append(dst, b)
	}
	return dst
}

func frame(tq byte, representation []byte) []byte {
	out := make([]byte, 0, len(representation)+4)
	out = append(out, BeginMarker, tq)
	out = appendEscaped(out, representation)
	return append(out, EndMarker)
}
