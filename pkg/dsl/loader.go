package dsl

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Load parses a YAML workflow document into an Input. The loader only checks
// structure: activity names and argument references are validated at
// execution time, since arguments may refer to bindings produced earlier in
// the same run.
func Load(source []byte) (*Input, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(source, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedDocument)
	}

	top := doc.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: document must be a mapping", ErrMalformedDocument)
	}

	input := &Input{Variables: Bindings{}}

	for i := 0; i < len(top.Content); i += 2 {
		key := top.Content[i].Value
		value := top.Content[i+1]

		switch key {
		case "variables":
			variables, err := parseVariables(value)
			if err != nil {
				return nil, err
			}

			input.Variables = variables
		case "root":
			root := &Statement{}
			if err := value.Decode(root); err != nil {
				return nil, err
			}

			input.Root = root
		}
	}

	if input.Root == nil {
		return nil, fmt.Errorf("%w: missing root statement", ErrMalformedDocument)
	}

	return input, nil
}

func parseVariables(node *yaml.Node) (Bindings, error) {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return Bindings{}, nil
	}

	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: variables must be a mapping", ErrMalformedDocument)
	}

	variables := Bindings{}

	for i := 0; i < len(node.Content); i += 2 {
		name := node.Content[i].Value
		if _, exists := variables[name]; exists {
			return nil, fmt.Errorf("%w: %q (line %d)", ErrDuplicateVariable, name, node.Content[i].Line)
		}

		var value any
		if err := node.Content[i+1].Decode(&value); err != nil {
			return nil, fmt.Errorf("%w: variable %q: %w", ErrMalformedDocument, name, err)
		}

		variables[name] = value
	}

	return variables, nil
}
