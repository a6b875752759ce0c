package dsl

import "errors"

var (
	// ErrMalformedDocument signals a document missing required structure,
	// such as the top-level root statement.
	ErrMalformedDocument = errors.New("malformed workflow document")

	// ErrUnknownStatementShape signals a node that is none of activity,
	// sequence or parallel.
	ErrUnknownStatementShape = errors.New("unknown statement shape")

	// ErrDuplicateVariable signals a repeated key in the variables mapping.
	ErrDuplicateVariable = errors.New("duplicate variable")
)

func IsMalformedDocument(err error) bool {
	return errors.Is(err, ErrMalformedDocument)
}

func IsUnknownStatementShape(err error) bool {
	return errors.Is(err, ErrUnknownStatementShape)
}

func IsDuplicateVariable(err error) bool {
	return errors.Is(err, ErrDuplicateVariable)
}
