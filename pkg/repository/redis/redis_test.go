package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loadwise/tracy/pkg/repository"
	"github.com/loadwise/tracy/pkg/repository/redis"
)

const sampleDocument = `
variables:
  shipper_id: test-qa-demo-shipper
root:
  activity:
    name: load_search
    result: search_results
`

func setupRepository(t *testing.T) *redis.Repository {
	t.Helper()

	server := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return redis.NewRepositoryWithClient(client)
}

func TestRepository_SaveAndDocument(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveDocument(ctx, "load_processing_workflow", []byte(sampleDocument)))

	input, err := repo.Document(ctx, "load_processing_workflow")
	require.NoError(t, err)
	assert.Equal(t, "test-qa-demo-shipper", input.Variables["shipper_id"])
	require.NotNil(t, input.Root.Activity)
	assert.Equal(t, "load_search", input.Root.Activity.Name)
}

func TestRepository_DocumentNotFound(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)

	_, err := repo.Document(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, repository.IsDocumentNotFound(err))
}

func TestRepository_SaveRejectsMalformed(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)

	err := repo.SaveDocument(context.Background(), "broken", []byte("variables:\n  a: 1\n"))
	require.Error(t, err)
}

func TestRepository_Documents(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveDocument(ctx, "workflow_2_process", []byte(sampleDocument)))
	require.NoError(t, repo.SaveDocument(ctx, "workflow_1_load_and_email", []byte(sampleDocument)))

	names, err := repo.Documents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"workflow_1_load_and_email", "workflow_2_process"}, names)
}

func TestRepository_HealthCheck(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	assert.NoError(t, repo.HealthCheck(context.Background()))
}
