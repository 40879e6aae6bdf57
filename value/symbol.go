package value

import "strconv"

// SymbolToken is a symbolic name that either has resolved text
// or only a symbol id with unknown text.
type SymbolToken struct {
	// Text is the resolved text of the symbol or nil if the text is unknown.
	Text *string
	// SID is the local symbol id. It is only meaningful when Text is nil.
	SID int64
}

// NewSymbolToken returns a symbol token with the given text.
func NewSymbolToken(text string) SymbolToken {
	return SymbolToken{Text: &text}
}

// NewSymbolTokens returns symbol tokens for each of the given texts.
func NewSymbolTokens(texts ...string) []SymbolToken {
	if len(texts) == 0 {
		return nil
	}
	tokens := make([]SymbolToken, len(texts))
	for i, t := range texts {
		tokens[i] = NewSymbolToken(t)
	}
	return tokens
}

// UnknownSymbolToken returns a symbol token with unknown text.
func UnknownSymbolToken(sid int64) SymbolToken {
	return SymbolToken{SID: sid}
}

// HasText returns true if the symbol text is known.
func (s SymbolToken) HasText() bool {
	return s.Text != nil
}

// Equal returns true if both tokens refer to the same symbol.
func (s SymbolToken) Equal(other SymbolToken) bool {
	if s.Text != nil || other.Text != nil {
		return s.Text != nil && other.Text != nil && *s.Text == *other.Text
	}
	return s.SID == other.SID
}

// String returns the symbol text or $sid when the text is unknown.
func (s SymbolToken) String() string {
	if s.Text != nil {
		return *s.Text
	}
	return "$" + strconv.FormatInt(s.SID, 10)
}
