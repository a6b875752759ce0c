package interpreter

import "errors"

// ErrUnresolvedReference signals an activity argument naming a binding that
// no earlier statement wrote. Always fatal to the run.
var ErrUnresolvedReference = errors.New("unresolved binding reference")

func IsUnresolvedReference(err error) bool {
	return errors.Is(err, ErrUnresolvedReference)
}
