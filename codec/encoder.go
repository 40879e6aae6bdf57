package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"
	"github.com/nasdf/treehash/value"
)

// canonicalNaN is the bit pattern every NaN is collapsed to.
const canonicalNaN = uint64(0x7FF8000000000000)

// Scalar returns the canonical bytes of a scalar of type t.
// A nil value is encoded as a typed null.
//
// Null containers are scalars as far as the canonical form is concerned.
func Scalar(t value.Type, v any) ([]byte, error) {
	if isNull(v) || t == value.NullType {
		tq, err := TypeQualifier(t, true)
		if err != nil {
			return nil, err
		}
		return frame(tq, nil), nil
	}
	if !t.IsScalar() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	switch t {
	case value.BoolType:
		return encodeBool(v)
	case value.IntType:
		return encodeInt(v)
	case value.FloatType:
		return encodeFloat(v)
	case value.DecimalType:
		return encodeDecimal(v)
	case value.TimestampType:
		return encodeTimestamp(v)
	case value.SymbolType:
		return encodeSymbol(v)
	case value.StringType:
		return encodeString(v)
	case value.ClobType, value.BlobType:
		return encodeBytes(t, v)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}

// Symbol returns the canonical bytes of a symbol token.
//
// Tokens with known text are encoded as their UTF-8 text. Tokens with unknown
// text use a distinct qualifier followed by the symbol id.
func Symbol(token value.SymbolToken) ([]byte, error) {
	tq := typeCodes[value.SymbolType]
	if token.Text != nil {
		if !utf8.ValidString(*token.Text) {
			return nil, fmt.Errorf("%w: symbol text is not valid utf-8", ErrInvalidValue)
		}
		return frame(tq, []byte(*token.Text)), nil
	}
	if token.SID < 0 {
		return nil, fmt.Errorf("%w: negative symbol id %d", ErrInvalidValue, token.SID)
	}
	return frame(tq|qualifierUnknownSymbol, minimalBytes(uint64(token.SID))), nil
}

func isNull(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case *big.Int:
		return t == nil
	case *apd.Decimal:
		return t == nil
	default:
		return false
	}
}

func invalid(t value.Type, v any) error {
	return fmt.Errorf("%w: %T is not a %s", ErrInvalidValue, v, t)
}

func encodeBool(v any) ([]byte, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, invalid(value.BoolType, v)
	}
	tq := typeCodes[value.BoolType]
	if b {
		tq |= qualifierTrue
	}
	return frame(tq, nil), nil
}

func encodeInt(v any) ([]byte, error) {
	var i *big.Int
	switch t := v.(type) {
	case *big.Int:
		i = t
	case big.Int:
		i = &t
	case int:
		i = big.NewInt(int64(t))
	case int32:
		i = big.NewInt(int64(t))
	case int64:
		i = big.NewInt(t)
	case uint32:
		i = new(big.Int).SetUint64(uint64(t))
	case uint64:
		i = new(big.Int).SetUint64(t)
	default:
		return nil, invalid(value.IntType, v)
	}
	tq := typeCodes[value.IntType]
	if i.Sign() < 0 {
		tq = typeCodeNegativeInt
	}
	// Bytes returns the minimal big-endian absolute value
	return frame(tq, i.Bytes()), nil
}

func encodeFloat(v any) ([]byte, error) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	default:
		return nil, invalid(value.FloatType, v)
	}
	tq := typeCodes[value.FloatType]
	if f == 0 && !math.Signbit(f) {
		return frame(tq, nil), nil
	}
	bits := math.Float64bits(f)
	if math.IsNaN(f) {
		bits = canonicalNaN
	}
	return frame(tq, binary.BigEndian.AppendUint64(nil, bits)), nil
}

func encodeDecimal(v any) ([]byte, error) {
	var d *apd.Decimal
	switch t := v.(type) {
	case *apd.Decimal:
		d = t
	case apd.Decimal:
		d = &t
	default:
		return nil, invalid(value.DecimalType, v)
	}
	if d.Form != apd.Finite {
		return nil, fmt.Errorf("%w: decimal %s is not finite", ErrInvalidValue, d.String())
	}
	tq := typeCodes[value.DecimalType]
	coefficient := d.Coeff.MathBigInt().Bytes()
	if len(coefficient) == 0 && d.Exponent == 0 && !d.Negative {
		return frame(tq, nil), nil
	}
	magnitude, negative := signed(int64(d.Exponent))
	out := appendVarInt(nil, magnitude, negative)
	out = appendInt(out, coefficient, d.Negative)
	return frame(tq, out), nil
}

func encodeTimestamp(v any) ([]byte, error) {
	var ts value.Timestamp
	switch t := v.(type) {
	case value.Timestamp:
		ts = t
	case time.Time:
		ts = value.NewTimestampFromTime(t)
	default:
		return nil, invalid(value.TimestampType, v)
	}
	if ts.Precision < value.PrecisionYear || ts.Precision > value.PrecisionFraction {
		return nil, fmt.Errorf("%w: timestamp precision %d", ErrInvalidValue, ts.Precision)
	}
	if ts.Precision == value.PrecisionFraction && (ts.FractionDigits == 0 || ts.FractionDigits > value.MaxFractionDigits) {
		return nil, fmt.Errorf("%w: timestamp fraction digits %d", ErrInvalidValue, ts.FractionDigits)
	}

	t := ts.Time
	var out []byte
	if ts.Precision >= value.PrecisionMinute && ts.OffsetKnown {
		magnitude, negative := signed(int64(ts.OffsetMinutes()))
		out = appendVarInt(out, magnitude, negative)
		t = t.UTC()
	} else {
		// unknown offset is written as negative zero
		out = appendVarInt(out, 0, true)
	}
	if t.Year() < 1 || t.Year() > 9999 {
		return nil, fmt.Errorf("%w: timestamp year %d out of range", ErrInvalidValue, t.Year())
	}
	out = appendVarUInt(out, uint64(t.Year()))
	if ts.Precision >= value.PrecisionMonth {
		out = appendVarUInt(out, uint64(t.Month()))
	}
	if ts.Precision >= value.PrecisionDay {
		out = appendVarUInt(out, uint64(t.Day()))
	}
	if ts.Precision >= value.PrecisionMinute {
		out = appendVarUInt(out, uint64(t.Hour()))
		out = appendVarUInt(out, uint64(t.Minute()))
	}
	if ts.Precision >= value.PrecisionSecond {
		out = appendVarUInt(out, uint64(t.Second()))
	}
	if ts.Precision == value.PrecisionFraction {
		digits := int(ts.FractionDigits)
		coefficient := uint64(t.Nanosecond())
		for i := digits; i < value.MaxFractionDigits; i++ {
			coefficient /= 10
		}
		out = appendVarInt(out, uint64(digits), true)
		out = appendInt(out, minimalBytes(coefficient), false)
	}
	return frame(typeCodes[value.TimestampType], out), nil
}

func encodeSymbol(v any) ([]byte, error) {
	switch t := v.(type) {
	case value.SymbolToken:
		return Symbol(t)
	case string:
		return Symbol(value.NewSymbolToken(t))
	default:
		return nil, invalid(value.SymbolType, v)
	}
}

func encodeString(v any) ([]byte, error) {
	s, ok := v.(string)
	if !ok {
		return nil, invalid(value.StringType, v)
	}
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("%w: string is not valid utf-8", ErrInvalidValue)
	}
	return frame(typeCodes[value.StringType], []byte(s)), nil
}

func encodeBytes(t value.Type, v any) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, invalid(t, v)
	}
	return frame(typeCodes[t], b), nil
}

// minimalBytes returns the big-endian bytes of v without leading zeros.
func minimalBytes(v uint64) []byte {
	out := binary.BigEndian.AppendUint64(nil, v)
	for len(out) > 0 && out[0] == 0 {
		out = out[1:]
	}
	return out
}
