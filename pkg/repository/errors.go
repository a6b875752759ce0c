package repository

import "errors"

// ErrDocumentNotFound signals a cascade or run request naming a document the
// repository cannot resolve.
var ErrDocumentNotFound = errors.New("document not found")

// ErrInvalidDocumentName signals a name that cannot be a document key, such
// as one containing a path separator.
var ErrInvalidDocumentName = errors.New("invalid document name")

func IsDocumentNotFound(err error) bool {
	return errors.Is(err, ErrDocumentNotFound)
}
