package reader

import (
	"fmt"
	"math/big"

	"github.com/cockroachdb/apd/v3"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/nasdf/treehash/value"
)

// LinkAnnotation annotates links that are not followed.
const LinkAnnotation = "ipld.link"

// maxLinkHops bounds chains of links that resolve to other links.
const maxLinkHops = 64

// Loader resolves a link to the node it refers to.
type Loader func(lnk datamodel.Link) (datamodel.Node, error)

type nodeFrame struct {
	list   datamodel.ListIterator
	fields datamodel.MapIterator
}

// NodeReader streams over IPLD data model nodes without copying them.
//
// Maps are read as structs, bytes as blobs and links either as blobs
// annotated with LinkAnnotation or, when a Loader is configured, as the
// node they resolve to.
type NodeReader struct {
	roots  []datamodel.Node
	index  int
	loader Loader
	stack  []nodeFrame
	cur    datamodel.Node
	typ    value.Type
	field  *value.SymbolToken
	closed bool
}

var _ Reader = (*NodeReader)(nil)

// NodeOption configures a NodeReader.
type NodeOption func(*NodeReader)

// WithLoader follows links using the given loader.
func WithLoader(loader Loader) NodeOption {
	return func(r *NodeReader) {
		r.loader = loader
	}
}

// NewNodeReader returns a reader over the given top level nodes.
func NewNodeReader(roots []datamodel.Node, opts ...NodeOption) *NodeReader {
	r := &NodeReader{roots: roots}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *NodeReader) Next() (value.Type, error) {
	if r.closed {
		return value.NoType, ErrClosed
	}
	r.cur, r.field, r.typ = nil, nil, value.NoType

	var n datamodel.Node
	if len(r.stack) == 0 {
		if r.index >= len(r.roots) {
			return value.NoType, nil
		}
		n = r.roots[r.index]
		r.index++
	} else {
		f := r.stack[len(r.stack)-1]
		switch {
		case f.list != nil && !f.list.Done():
			_, v, err := f.list.Next()
			if err != nil {
				return value.NoType, err
			}
			n = v
		case f.fields != nil && !f.fields.Done():
			k, v, err := f.fields.Next()
			if err != nil {
				return value.NoType, err
			}
			name, err := k.AsString()
			if err != nil {
				return value.NoType, err
			}
			token := value.NewSymbolToken(name)
			r.field = &token
			n = v
		default:
			return value.NoType, nil
		}
	}
	n, err := r.resolve(n)
	if err != nil {
		return value.NoType, err
	}
	t := kindType(n.Kind())
	if t == value.NoType {
		return value.NoType, fmt.Errorf("%w: node has invalid kind %s", ErrTypeMismatch, n.Kind())
	}
	r.cur = n
	r.typ = t
	return r.typ, nil
}

func (r *NodeReader) resolve(n datamodel.Node) (datamodel.Node, error) {
	if r.loader == nil {
		return n, nil
	}
	for i := 0; n.Kind() == datamodel.Kind_Link; i++ {
		if i >= maxLinkHops {
			return nil, fmt.Errorf("link chain longer than %d", maxLinkHops)
		}
		lnk, err := n.AsLink()
		if err != nil {
			return nil, err
		}
		n, err = r.loader(lnk)
		if err != nil {
			return nil, fmt.Errorf("failed to load link %s: %w", lnk, err)
		}
	}
	return n, nil
}

func kindType(k datamodel.Kind) value.Type {
	switch k {
	case datamodel.Kind_Null:
		return value.NullType
	case datamodel.Kind_Bool:
		return value.BoolType
	case datamodel.Kind_Int:
		return value.IntType
	case datamodel.Kind_Float:
		return value.FloatType
	case datamodel.Kind_String:
		return value.StringType
	case datamodel.Kind_Bytes, datamodel.Kind_Link:
		return value.BlobType
	case datamodel.Kind_List:
		return value.ListType
	case datamodel.Kind_Map:
		return value.StructType
	default:
		return value.NoType
	}
}

func (r *NodeReader) StepIn() error {
	if r.closed {
		return ErrClosed
	}
	if r.cur == nil {
		return ErrNoValue
	}
	switch r.cur.Kind() {
	case datamodel.Kind_List:
		r.stack = append(r.stack, nodeFrame{list: r.cur.ListIterator()})
	case datamodel.Kind_Map:
		r.stack = append(r.stack, nodeFrame{fields: r.cur.MapIterator()})
	default:
		return fmt.Errorf("%w: %s", ErrNotContainer, r.cur.Kind())
	}
	r.cur, r.field, r.typ = nil, nil, value.NoType
	return nil
}

func (r *NodeReader) StepOut() error {
	if r.closed {
		return ErrClosed
	}
	if len(r.stack) == 0 {
		return fmt.Errorf("%w: not inside a container", ErrNotContainer)
	}
	r.stack = r.stack[:len(r.stack)-1]
	r.cur, r.field, r.typ = nil, nil, value.NoType
	return nil
}

func (r *NodeReader) Depth() int {
	return len(r.stack)
}

func (r *NodeReader) Type() value.Type {
	return r.typ
}

func (r *NodeReader) IsNull() bool {
	return r.cur != nil && r.cur.IsNull()
}

func (r *NodeReader) FieldName() *value.SymbolToken {
	return r.field
}

func (r *NodeReader) Annotations() []value.SymbolToken {
	if r.cur != nil && r.cur.Kind() == datamodel.Kind_Link {
		return value.NewSymbolTokens(LinkAnnotation)
	}
	return nil
}

func (r *NodeReader) node(t value.Type) (datamodel.Node, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if r.cur == nil {
		return nil, ErrNoValue
	}
	if r.typ != t {
		return nil, fmt.Errorf("%w: %s is not a %s", ErrTypeMismatch, r.typ, t)
	}
	return r.cur, nil
}

func (r *NodeReader) BoolValue() (bool, error) {
	n, err := r.node(value.BoolType)
	if err != nil {
		return false, err
	}
	return n.AsBool()
}

func (r *NodeReader) IntValue() (*big.Int, error) {
	n, err := r.node(value.IntType)
	if err != nil {
		return nil, err
	}
	i, err := n.AsInt()
	if err != nil {
		return nil, err
	}
	return big.NewInt(i), nil
}

func (r *NodeReader) FloatValue() (float64, error) {
	n, err := r.node(value.FloatType)
	if err != nil {
		return 0, err
	}
	return n.AsFloat()
}

func (r *NodeReader) DecimalValue() (*apd.Decimal, error) {
	return nil, fmt.Errorf("%w: ipld nodes have no decimals", ErrTypeMismatch)
}

func (r *NodeReader) TimestampValue() (value.Timestamp, error) {
	return value.Timestamp{}, fmt.Errorf("%w: ipld nodes have no timestamps", ErrTypeMismatch)
}

func (r *NodeReader) StringValue() (string, error) {
	n, err := r.node(value.StringType)
	if err != nil {
		return "", err
	}
	return n.AsString()
}

func (r *NodeReader) SymbolValue() (value.SymbolToken, error) {
	return value.SymbolToken{}, fmt.Errorf("%w: ipld nodes have no symbols", ErrTypeMismatch)
}

func (r *NodeReader) ByteValue() ([]byte, error) {
	n, err := r.node(value.BlobType)
	if err != nil {
		return nil, err
	}
	if n.Kind() == datamodel.Kind_Link {
		lnk, err := n.AsLink()
		if err != nil {
			return nil, err
		}
		return []byte(lnk.Binary()), nil
	}
	return n.AsBytes()
}

func (r *NodeReader) Close() error {
	r.closed = true
	r.roots, r.stack, r.cur, r.field = nil, nil, nil, nil
	return nil
}
