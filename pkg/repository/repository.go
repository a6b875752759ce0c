// Package repository provides the name-to-source mapping that resolves a
// document name into a loadable workflow document.
package repository

import (
	"context"

	"github.com/loadwise/tracy/pkg/dsl"
)

type DocumentRepository interface {
	// Document resolves a name into a parsed workflow document. Each call
	// returns a fresh parse, so no statement tree is ever shared between
	// runs.
	Document(ctx context.Context, name string) (*dsl.Input, error)

	// Documents lists the names of every loadable document.
	Documents(ctx context.Context) ([]string, error)

	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
