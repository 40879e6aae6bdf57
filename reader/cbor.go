package reader

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/fxamacker/cbor/v2"
	"github.com/nasdf/treehash/value"
)

// cborDecimalTag is the CBOR tag for decimal fractions.
const cborDecimalTag = 4

// DecodeCBOR decodes a sequence of CBOR data items into values.
//
// Decimal fractions become decimals, date tags become timestamps and
// bignums become ints. Any other tag is kept as an annotation on its content.
func DecodeCBOR(r io.Reader) ([]value.Value, error) {
	dec := cbor.NewDecoder(r)
	var values []value.Value
	for {
		var item any
		err := dec.Decode(&item)
		if errors.Is(err, io.EOF) {
			return values, nil
		}
		if err != nil {
			return nil, err
		}
		v, err := fromCBOR(item)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
}

// NewCBORReader returns a reader over a sequence of CBOR data items.
func NewCBORReader(r io.Reader) (*TreeReader, error) {
	values, err := DecodeCBOR(r)
	if err != nil {
		return nil, err
	}
	return NewTreeReader(values...), nil
}

func fromCBOR(item any) (value.Value, error) {
	switch t := item.(type) {
	case nil:
		return value.NewNull(value.NullType), nil
	case bool:
		return value.NewBool(t), nil
	case uint64:
		return value.NewBigInt(new(big.Int).SetUint64(t)), nil
	case int64:
		return value.NewInt(t), nil
	case big.Int:
		return value.NewBigInt(&t), nil
	case *big.Int:
		return value.NewBigInt(t), nil
	case float32:
		return value.NewFloat(float64(t)), nil
	case float64:
		return value.NewFloat(t), nil
	case string:
		return value.NewString(t), nil
	case []byte:
		return value.NewBlob(t), nil
	case time.Time:
		return value.NewTimestamp(value.NewTimestampFromTime(t)), nil
	case []any:
		elems := make([]value.Value, len(t))
		for i, e := range t {
			v, err := fromCBOR(e)
			if err != nil {
				return value.Value{}, err
			}
			elems[i] = v
		}
		return value.NewList(elems...), nil
	case map[any]any:
		entries := make(map[string]any, len(t))
		for k, v := range t {
			name, ok := k.(string)
			if !ok {
				return value.Value{}, fmt.Errorf("%w: map key %T is not a string", ErrTypeMismatch, k)
			}
			entries[name] = v
		}
		return fromCBORMap(entries)
	case map[string]any:
		return fromCBORMap(t)
	case cbor.Tag:
		return fromCBORTag(t)
	default:
		return value.Value{}, fmt.Errorf("%w: unsupported cbor item %T", ErrTypeMismatch, item)
	}
}

func fromCBORMap(entries map[string]any) (value.Value, error) {
	fields := make([]value.Field, 0, len(entries))
	for k, e := range entries {
		v, err := fromCBOR(e)
		if err != nil {
			return value.Value{}, err
		}
		fields = append(fields, value.NewField(k, v))
	}
	// map iteration order is random
	slices.SortFunc(fields, func(a, b value.Field) int {
		return strings.Compare(*a.Name.Text, *b.Name.Text)
	})
	return value.NewStruct(fields...), nil
}

func fromCBORTag(tag cbor.Tag) (value.Value, error) {
	if tag.Number == cborDecimalTag {
		return fromCBORDecimal(tag.Content)
	}
	v, err := fromCBOR(tag.Content)
	if err != nil {
		return value.Value{}, err
	}
	annotation := value.NewSymbolToken(strconv.FormatUint(tag.Number, 10))
	v.Annotations = append([]value.SymbolToken{annotation}, v.Annotations...)
	return v, nil
}

func fromCBORDecimal(content any) (value.Value, error) {
	parts, ok := content.([]any)
	if !ok || len(parts) != 2 {
		return value.Value{}, fmt.Errorf("%w: decimal fraction must be a two element array", ErrTypeMismatch)
	}
	exponent, err := cborInt(parts[0])
	if err != nil {
		return value.Value{}, err
	}
	if !exponent.IsInt64() || exponent.Int64() < math.MinInt32 || exponent.Int64() > math.MaxInt32 {
		return value.Value{}, fmt.Errorf("%w: decimal exponent %s out of range", ErrTypeMismatch, exponent)
	}
	mantissa, err := cborInt(parts[1])
	if err != nil {
		return value.Value{}, err
	}
	d := &apd.Decimal{
		Negative: mantissa.Sign() < 0,
		Exponent: int32(exponent.Int64()),
	}
	d.Coeff.SetMathBigInt(new(big.Int).Abs(mantissa))
	return value.NewDecimal(d), nil
}

func cborInt(item any) (*big.Int, error) {
	switch t := item.(type) {
	case uint64:
		return new(big.Int).SetUint64(t), nil
	case int64:
		return big.NewInt(t), nil
	case big.Int:
		return &t, nil
	case *big.Int:
		return t, nil
	default:
		return nil, fmt.Errorf("%w: %T is not an integer", ErrTypeMismatch, item)
	}
}
