package value

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"gopkg.in/yaml.v3"
)

// Local YAML tags for values that have no core YAML representation.
const (
	YAMLDecimalTag   = "!decimal"
	YAMLSymbolTag    = "!symbol"
	YAMLSIDTag       = "!sid"
	YAMLBlobTag      = "!blob"
	YAMLClobTag      = "!clob"
	YAMLTimestampTag = "!timestamp"
	YAMLNullTag      = "!null"
	YAMLSexpTag      = "!sexp"
	YAMLAnnotatedTag = "!annotated"
)

// UnmarshalYAML decodes a value from a YAML node.
//
// Core YAML types map to their natural counterparts, mappings become structs
// and sequences become lists. Local tags select the remaining types:
//
//	!decimal 1.20
//	!symbol foo
//	!sid 0
//	!blob aGVsbG8=
//	!clob hello
//	!timestamp 2007-02-23T12:14Z
//	!null int
//	!sexp [a, b]
//	!annotated {annotations: [a, b], value: 5}
//
// yaml.v3 skips UnmarshalYAML for plain nulls, so top level values
// should be decoded with DecodeYAML or from a yaml.Node.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			*v = NewNull(NullType)
			return nil
		}
		return v.UnmarshalYAML(node.Content[0])
	case yaml.AliasNode:
		return v.UnmarshalYAML(node.Alias)
	case yaml.SequenceNode:
		return v.unmarshalSequence(node)
	case yaml.MappingNode:
		return v.unmarshalMapping(node)
	default:
		return v.unmarshalScalar(node)
	}
}

// DecodeYAML decodes every document of a YAML stream.
//
// Documents are decoded through nodes because yaml.v3 does not call
// UnmarshalYAML for plain nulls.
func DecodeYAML(r io.Reader) ([]Value, error) {
	var values []Value
	dec := yaml.NewDecoder(r)
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			return values, nil
		}
		if err != nil {
			return nil, err
		}
		var v Value
		if err := v.UnmarshalYAML(&node); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
}

func (v *Value) unmarshalSequence(node *yaml.Node) error {
	elems := make([]Value, len(node.Content))
	for i, n := range node.Content {
		if err := elems[i].UnmarshalYAML(n); err != nil {
			return err
		}
	}
	switch node.ShortTag() {
	case YAMLSexpTag:
		*v = NewSexp(elems...)
	case "!!seq":
		*v = NewList(elems...)
	default:
		return fmt.Errorf("line %d: unsupported sequence tag %s", node.Line, node.Tag)
	}
	return nil
}

func (v *Value) unmarshalMapping(node *yaml.Node) error {
	switch node.ShortTag() {
	case YAMLAnnotatedTag:
		return v.unmarshalAnnotated(node)
	case "!!map":
	default:
		return fmt.Errorf("line %d: unsupported mapping tag %s", node.Line, node.Tag)
	}
	fields := make([]Field, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var field Field
		if err := field.Value.UnmarshalYAML(node.Content[i+1]); err != nil {
			return err
		}
		field.Name = NewSymbolToken(node.Content[i].Value)
		fields = append(fields, field)
	}
	*v = NewStruct(fields...)
	return nil
}

func (v *Value) unmarshalAnnotated(node *yaml.Node) error {
	var annotations []string
	var inner *yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		switch key := node.Content[i].Value; key {
		case "annotations":
			if err := node.Content[i+1].Decode(&annotations); err != nil {
				return err
			}
		case "value":
			inner = node.Content[i+1]
		default:
			return fmt.Errorf("line %d: unknown annotated key %s", node.Line, key)
		}
	}
	if inner == nil {
		return fmt.Errorf("line %d: annotated value is missing", node.Line)
	}
	if err := v.UnmarshalYAML(inner); err != nil {
		return err
	}
	*v = v.WithAnnotations(annotations...)
	return nil
}

func (v *Value) unmarshalScalar(node *yaml.Node) error {
	text := node.Value
	switch tag := node.ShortTag(); tag {
	case "!!null":
		*v = NewNull(NullType)
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		*v = NewBool(b)
	case "!!int":
		i, ok := new(big.Int).SetString(strings.ReplaceAll(text, "_", ""), 0)
		if !ok {
			return fmt.Errorf("line %d: invalid int %q", node.Line, text)
		}
		*v = NewBigInt(i)
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return err
		}
		*v = NewFloat(f)
	case "!!str":
		*v = NewString(text)
	case "!!binary", YAMLBlobTag:
		data, err := decodeBase64(text)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*v = NewBlob(data)
	case "!!timestamp":
		ts, err := ParseTimestamp(text)
		if err != nil {
			var t time.Time
			if node.Decode(&t) != nil {
				return err
			}
			ts = NewTimestampFromTime(t)
		}
		*v = NewTimestamp(ts)
	case YAMLTimestampTag:
		ts, err := ParseTimestamp(text)
		if err != nil {
			return err
		}
		*v = NewTimestamp(ts)
	case YAMLDecimalTag:
		d, _, err := apd.NewFromString(text)
		if err != nil {
			return fmt.Errorf("line %d: invalid decimal %q: %w", node.Line, text, err)
		}
		*v = NewDecimal(d)
	case YAMLSymbolTag:
		*v = NewSymbol(text)
	case YAMLSIDTag:
		sid, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid symbol id %q: %w", node.Line, text, err)
		}
		if sid < 0 {
			return fmt.Errorf("line %d: negative symbol id %d", node.Line, sid)
		}
		*v = NewSymbolID(sid)
	case YAMLClobTag:
		*v = NewClob([]byte(text))
	case YAMLNullTag:
		if text == "" {
			*v = NewNull(NullType)
			return nil
		}
		t, ok := ParseType(text)
		if !ok {
			return fmt.Errorf("line %d: unknown null type %q", node.Line, text)
		}
		*v = NewNull(t)
	default:
		return fmt.Errorf("line %d: unsupported scalar tag %s", node.Line, tag)
	}
	return nil
}

func decodeBase64(text string) ([]byte, error) {
	text = strings.Join(strings.Fields(text), "")
	return base64.StdEncoding.DecodeString(text)
}
