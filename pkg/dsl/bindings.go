package dsl

import "maps"

// Bindings is the run-scoped name to value mapping threaded through a
// workflow execution. Values are whatever the data converter produced for an
// activity result: scalars, sequences or nested mappings.
type Bindings map[string]any

// Clone returns a shallow copy. Activity results are treated as immutable
// once written, so a shallow copy is enough to isolate parallel branches.
func (b Bindings) Clone() Bindings {
	if b == nil {
		return Bindings{}
	}

	return maps.Clone(b)
}
