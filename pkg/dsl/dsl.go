// Package dsl defines the YAML workflow document model and its loader.
package dsl

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Input is a parsed workflow document: the root statement plus the initial
// variable bindings. One Input belongs to exactly one workflow run.
type Input struct {
	Variables Bindings   `json:"variables" yaml:"variables"`
	Root      *Statement `json:"root"      yaml:"root"`
}

// Statement is a closed variant over activity, sequence and parallel nodes.
// Exactly one field is non-nil.
type Statement struct {
	Activity *ActivityInvocation `json:"activity,omitempty" yaml:"activity,omitempty"`
	Sequence *Sequence           `json:"sequence,omitempty" yaml:"sequence,omitempty"`
	Parallel *Parallel           `json:"parallel,omitempty" yaml:"parallel,omitempty"`
}

// ActivityInvocation names a remote operation, the binding names to resolve
// into its arguments, and the binding to store its result under.
type ActivityInvocation struct {
	Name      string   `json:"name"                yaml:"name"`
	Arguments []string `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	Result    string   `json:"result,omitempty"    yaml:"result,omitempty"`
}

// Sequence executes its elements strictly in order.
type Sequence struct {
	Elements []*Statement `json:"elements" yaml:"elements"`
}

// Parallel executes its branches concurrently and joins at block exit.
type Parallel struct {
	Branches []*Statement `json:"branches" yaml:"branches"`
}

// UnmarshalYAML enforces the closed statement shape: a statement node must be
// a mapping with exactly one of the known keys.
func (s *Statement) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: statement must be a mapping (line %d)", ErrUnknownStatementShape, node.Line)
	}

	matched := 0

	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := node.Content[i+1]

		switch key {
		case "activity":
			s.Activity = &ActivityInvocation{}
			if err := value.Decode(s.Activity); err != nil {
				return fmt.Errorf("%w: %w", ErrMalformedDocument, err)
			}
		case "sequence":
			s.Sequence = &Sequence{}
			if err := value.Decode(s.Sequence); err != nil {
				return fmt.Errorf("%w: %w", ErrMalformedDocument, err)
			}
		case "parallel":
			s.Parallel = &Parallel{}
			if err := value.Decode(s.Parallel); err != nil {
				return fmt.Errorf("%w: %w", ErrMalformedDocument, err)
			}
		default:
			return fmt.Errorf("%w: unexpected key %q (line %d)", ErrUnknownStatementShape, key, node.Content[i].Line)
		}

		matched++
	}

	if matched != 1 {
		return fmt.Errorf("%w: statement must have exactly one of activity, sequence or parallel (line %d)",
			ErrUnknownStatementShape, node.Line)
	}

	return nil
}
