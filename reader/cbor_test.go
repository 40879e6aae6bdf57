package reader

import (
	"bytes"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/nasdf/treehash/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCBOR(t *testing.T) {
	var buf bytes.Buffer
	for _, item := range []any{
		map[string]any{"b": "x", "a": uint64(1)},
		cbor.Tag{Number: 4, Content: []any{int64(-2), int64(120)}},
		cbor.Tag{Number: 100, Content: "tagged"},
		[]any{true, nil, []byte{1}},
	} {
		data, err := cbor.Marshal(item)
		require.NoError(t, err)
		buf.Write(data)
	}

	values, err := DecodeCBOR(&buf)
	require.NoError(t, err)
	require.Len(t, values, 4)

	record := values[0]
	assert.Equal(t, value.StructType, record.Type)
	require.Len(t, record.Fields, 2)
	assert.Equal(t, "a", record.Fields[0].Name.String())
	assert.Equal(t, value.IntType, record.Fields[0].Value.Type)
	assert.Equal(t, "b", record.Fields[1].Name.String())

	decimal := values[1]
	assert.Equal(t, value.DecimalType, decimal.Type)
	assert.Equal(t, "1.20", decimal.Scalar.(interface{ String() string }).String())

	tagged := values[2]
	assert.Equal(t, value.StringType, tagged.Type)
	require.Len(t, tagged.Annotations, 1)
	assert.Equal(t, "100", tagged.Annotations[0].String())

	list := values[3]
	assert.Equal(t, value.ListType, list.Type)
	require.Len(t, list.Elems, 3)
	assert.Equal(t, value.NewBool(true), list.Elems[0])
	assert.Equal(t, value.NewNull(value.NullType), list.Elems[1])
	assert.Equal(t, value.NewBlob([]byte{1}), list.Elems[2])
}

func TestDecodeCBORNonStringKey(t *testing.T) {
	data, err := cbor.Marshal(map[int]string{1: "x"})
	require.NoError(t, err)

	_, err = DecodeCBOR(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestNewCBORReader(t *testing.T) {
	data, err := cbor.Marshal([]any{uint64(1), uint64(2)})
	require.NoError(t, err)

	r, err := NewCBORReader(bytes.NewReader(data))
	require.NoError(t, err)

	typ, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, value.ListType, typ)
}
