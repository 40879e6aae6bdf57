package codec

import (
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/nasdf/treehash/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecimal(t *testing.T, s string) *apd.Decimal {
	d, _, err := apd.NewFromString(s)
	require.NoError(t, err)
	return d
}

func mustTimestamp(t *testing.T, s string) value.Timestamp {
	ts, err := value.ParseTimestamp(s)
	require.NoError(t, err)
	return ts
}

func TestScalar(t *testing.T) {
	tests := []struct {
		name   string
		typ    value.Type
		value  any
		expect []byte
	}{
		{"int", value.IntType, int64(5), []byte{0x0B, 0x20, 0x05, 0x0E}},
		{"padded int", value.IntType, new(big.Int).SetBytes([]byte{0, 0, 0, 5}), []byte{0x0B, 0x20, 0x05, 0x0E}},
		{"zero int", value.IntType, 0, []byte{0x0B, 0x20, 0x0E}},
		{"negative int", value.IntType, int64(-1), []byte{0x0B, 0x30, 0x01, 0x0E}},
		{"wide int", value.IntType, uint64(256), []byte{0x0B, 0x20, 0x01, 0x00, 0x0E}},
		{"escaped int", value.IntType, int64(11), []byte{0x0B, 0x20, 0x0C, 0x0B, 0x0E}},
		{"null", value.NullType, nil, []byte{0x0B, 0x0F, 0x0E}},
		{"null int", value.IntType, nil, []byte{0x0B, 0x2F, 0x0E}},
		{"null list", value.ListType, nil, []byte{0x0B, 0xBF, 0x0E}},
		{"null struct", value.StructType, nil, []byte{0x0B, 0xDF, 0x0E}},
		{"true", value.BoolType, true, []byte{0x0B, 0x11, 0x0E}},
		{"false", value.BoolType, false, []byte{0x0B, 0x10, 0x0E}},
		{"zero float", value.FloatType, 0.0, []byte{0x0B, 0x40, 0x0E}},
		{"negative zero float", value.FloatType, math.Copysign(0, -1), []byte{0x0B, 0x40, 0x80, 0, 0, 0, 0, 0, 0, 0, 0x0E}},
		{"float", value.FloatType, 1.0, []byte{0x0B, 0x40, 0x3F, 0xF0, 0, 0, 0, 0, 0, 0, 0x0E}},
		{"float32", value.FloatType, float32(1.0), []byte{0x0B, 0x40, 0x3F, 0xF0, 0, 0, 0, 0, 0, 0, 0x0E}},
		{"nan", value.FloatType, math.NaN(), []byte{0x0B, 0x40, 0x7F, 0xF8, 0, 0, 0, 0, 0, 0, 0x0E}},
		{"zero decimal", value.DecimalType, apd.New(0, 0), []byte{0x0B, 0x50, 0x0E}},
		{"decimal", value.DecimalType, mustDecimal(t, "1.20"), []byte{0x0B, 0x50, 0xC2, 0x78, 0x0E}},
		{"negative zero decimal", value.DecimalType, mustDecimal(t, "-0"), []byte{0x0B, 0x50, 0x80, 0x80, 0x0E}},
		{"string", value.StringType, "hi", []byte{0x0B, 0x80, 0x68, 0x69, 0x0E}},
		{"symbol", value.SymbolType, value.NewSymbolToken("a"), []byte{0x0B, 0x70, 0x61, 0x0E}},
		{"symbol text", value.SymbolType, "a", []byte{0x0B, 0x70, 0x61, 0x0E}},
		{"symbol zero", value.SymbolType, value.UnknownSymbolToken(0), []byte{0x0B, 0x71, 0x0E}},
		{"symbol id", value.SymbolType, value.UnknownSymbolToken(10), []byte{0x0B, 0x71, 0x0A, 0x0E}},
		{"blob", value.BlobType, []byte{0x0E}, []byte{0x0B, 0xA0, 0x0C, 0x0E, 0x0E}},
		{"empty blob", value.BlobType, []byte{}, []byte{0x0B, 0xA0, 0x0E}},
		{"clob", value.ClobType, []byte("a"), []byte{0x0B, 0x90, 0x61, 0x0E}},
		{"year", value.TimestampType, mustTimestamp(t, "2007T"), []byte{0x0B, 0x60, 0xC0, 0x0F, 0xD7, 0x0E}},
		{"minute", value.TimestampType, mustTimestamp(t, "2007-02-23T12:14Z"), []byte{0x0B, 0x60, 0x80, 0x0F, 0xD7, 0x82, 0x97, 0x8C, 0x8E, 0x0E}},
		{"fraction", value.TimestampType, mustTimestamp(t, "2000-01-01T00:00:00.5Z"), []byte{0x0B, 0x60, 0x80, 0x0F, 0xD0, 0x81, 0x81, 0x80, 0x80, 0x80, 0xC1, 0x05, 0x0E}},
	}
	for _, test := range tests {
		actual, err := Scalar(test.typ, test.value)
		require.NoError(t, err, test.name)
		assert.Equal(t, test.expect, actual, test.name)
	}
}

func TestScalarDecimalPrecision(t *testing.T) {
	a, err := Scalar(value.DecimalType, mustDecimal(t, "1.0"))
	require.NoError(t, err)
	b, err := Scalar(value.DecimalType, mustDecimal(t, "1.00"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestScalarTimestampOffset(t *testing.T) {
	a, err := Scalar(value.TimestampType, mustTimestamp(t, "2007-02-23T12:14Z"))
	require.NoError(t, err)
	b, err := Scalar(value.TimestampType, mustTimestamp(t, "2007-02-23T04:14-08:00"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	// the same instant and offset always encodes the same
	c, err := Scalar(value.TimestampType, mustTimestamp(t, "2007-02-23T12:14+00:00"))
	require.NoError(t, err)
	assert.Equal(t, a, c)
}

func TestScalarTime(t *testing.T) {
	a, err := Scalar(value.TimestampType, time.Date(2000, 1, 1, 0, 0, 0, 500000000, time.UTC))
	require.NoError(t, err)
	b, err := Scalar(value.TimestampType, mustTimestamp(t, "2000-01-01T00:00:00.5Z"))
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestScalarNullTypesDiffer(t *testing.T) {
	seen := make(map[string]value.Type)
	for typ := value.NullType; typ <= value.StructType; typ++ {
		data, err := Scalar(typ, nil)
		require.NoError(t, err)

		other, ok := seen[string(data)]
		assert.False(t, ok, "%s and %s share a null encoding", typ, other)
		seen[string(data)] = typ
	}
}

func TestScalarUnsupportedType(t *testing.T) {
	_, err := Scalar(value.ListType, []any{})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = Scalar(value.NoType, nil)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = Scalar(value.Type(200), 1)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestScalarInvalidValue(t *testing.T) {
	tests := []struct {
		typ   value.Type
		value any
	}{
		{value.IntType, "5"},
		{value.BoolType, 1},
		{value.StringType, string([]byte{0xff})},
		{value.DecimalType, &apd.Decimal{Form: apd.NaN}},
		{value.SymbolType, value.UnknownSymbolToken(-1)},
		{value.TimestampType, value.Timestamp{}},
	}
	for _, test := range tests {
		_, err := Scalar(test.typ, test.value)
		assert.ErrorIs(t, err, ErrInvalidValue, "%s %v", test.typ, test.value)
	}
}

func TestEscape(t *testing.T) {
	actual := Escape([]byte{0x0B, 0x01, 0x0C, 0x0E})
	assert.Equal(t, []byte{0x0C, 0x0B, 0x01, 0x0C, 0x0C, 0x0C, 0x0E}, actual)
}

func TestVarInt(t *testing.T) {
	assert.Equal(t, []byte{0x80}, appendVarInt(nil, 0, false))
	assert.Equal(t, []byte{0xC0}, appendVarInt(nil, 0, true))
	assert.Equal(t, []byte{0xC3}, appendVarInt(nil, 3, true))
	assert.Equal(t, []byte{0x00, 0xC0}, appendVarInt(nil, 64, false))
	assert.Equal(t, []byte{0x40, 0xC0}, appendVarInt(nil, 64, true))
	assert.Equal(t, []byte{0x0F, 0xD7}, appendVarUInt(nil, 2007))
}
