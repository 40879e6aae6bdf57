package value

// Type is the type of a value in the data model.
type Type uint8

const (
	// NoType is returned by readers at the end of a container or stream.
	NoType Type = iota
	NullType
	BoolType
	IntType
	FloatType
	DecimalType
	TimestampType
	SymbolType
	StringType
	ClobType
	BlobType
	ListType
	SexpType
	StructType
)

var typeNames = [...]string{
	NoType:        "none",
	NullType:      "null",
	BoolType:      "bool",
	IntType:       "int",
	FloatType:     "float",
	DecimalType:   "decimal",
	TimestampType: "timestamp",
	SymbolType:    "symbol",
	StringType:    "string",
	ClobType:      "clob",
	BlobType:      "blob",
	ListType:      "list",
	SexpType:      "sexp",
	StructType:    "struct",
}

// String returns the name of the type.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// IsContainer returns true if values of this type contain other values.
func (t Type) IsContainer() bool {
	return t == ListType || t == SexpType || t == StructType
}

// IsScalar returns true if the type is a valid non container type.
func (t Type) IsScalar() bool {
	return t >= NullType && t <= BlobType
}

// ParseType returns the type with the given name.
func ParseType(name string) (Type, bool) {
	for i, n := range typeNames {
		if n == name && Type(i) != NoType {
			return Type(i), true
		}
	}
	return NoType, false
}
