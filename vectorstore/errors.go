package vectorstore

import "errors"

var (
	// ErrDimensionMismatch is returned by Add and the search methods when
	// an input vector's width does not equal the store dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCountMismatch is returned by Add when the vectors, texts and
	// metadata arguments do not have equal lengths.
	ErrCountMismatch = errors.New("record count mismatch")

	// ErrInvalidTopK is returned by the search methods when k < 1.
	ErrInvalidTopK = errors.New("k must be >= 1")
)
