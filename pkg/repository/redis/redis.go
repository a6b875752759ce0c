// Package redis provides a Redis-backed document repository. Document
// sources are stored as YAML under tracy:documents:<name>, so a fleet of
// workers can share one catalog without a shared filesystem.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/loadwise/tracy/pkg/dsl"
	"github.com/loadwise/tracy/pkg/repository"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "tracy:documents:"

type Repository struct {
	client *redis.Client
}

// NewRepository connects using a redis:// URL.
func NewRepository(url string) (*Repository, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	return &Repository{client: redis.NewClient(opts)}, nil
}

// NewRepositoryWithClient wraps an existing client, used by tests.
func NewRepositoryWithClient(client *redis.Client) *Repository {
	return &Repository{client: client}
}

func (r *Repository) Document(ctx context.Context, name string) (*dsl.Input, error) {
	if name == "" || strings.Contains(name, "*") {
		return nil, fmt.Errorf("%w: %q", repository.ErrInvalidDocumentName, name)
	}

	source, err := r.client.Get(ctx, keyPrefix+name).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %q", repository.ErrDocumentNotFound, name)
		}

		return nil, fmt.Errorf("reading document %q: %w", name, err)
	}

	input, err := dsl.Load(source)
	if err != nil {
		return nil, fmt.Errorf("document %q: %w", name, err)
	}

	return input, nil
}

func (r *Repository) Documents(ctx context.Context) ([]string, error) {
	var (
		names  []string
		cursor uint64
	)

	for {
		keys, next, err := r.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("listing documents: %w", err)
		}

		for _, key := range keys {
			names = append(names, strings.TrimPrefix(key, keyPrefix))
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	sort.Strings(names)

	return names, nil
}

// SaveDocument stores a document source, validating it parses first.
func (r *Repository) SaveDocument(ctx context.Context, name string, source []byte) error {
	if name == "" || strings.Contains(name, "*") {
		return fmt.Errorf("%w: %q", repository.ErrInvalidDocumentName, name)
	}

	if _, err := dsl.Load(source); err != nil {
		return fmt.Errorf("document %q: %w", name, err)
	}

	if err := r.client.Set(ctx, keyPrefix+name, source, 0).Err(); err != nil {
		return fmt.Errorf("saving document %q: %w", name, err)
	}

	return nil
}

func (r *Repository) HealthCheck(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	return nil
}

func (r *Repository) Close(_ context.Context) error {
	return r.client.Close()
}
