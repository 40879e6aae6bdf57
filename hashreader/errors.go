package hashreader

// HashComputationError wraps a failure of the underlying reader
// that occurred while values were being hashed.
type HashComputationError struct {
	Err error
}

func (e *HashComputationError) Error() string {
	return "hash computation failed: " + e.Err.Error()
}

func (e *HashComputationError) Unwrap() error {
	return e.Err
}
