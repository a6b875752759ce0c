package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/loadwise/tracy/pkg/dsl"
	"github.com/loadwise/tracy/pkg/repository"
	"github.com/loadwise/tracy/pkg/repository/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `
variables:
  shipper_id: test-qa-demo-shipper
root:
  activity:
    name: load_search
    result: search_results
`

func writeDocument(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(content), 0o600))
}

func TestRepository_Document(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDocument(t, dir, "load_processing_workflow", sampleDocument)

	repo := file.NewRepository(dir)

	input, err := repo.Document(context.Background(), "load_processing_workflow")
	require.NoError(t, err)
	assert.Equal(t, "test-qa-demo-shipper", input.Variables["shipper_id"])
	require.NotNil(t, input.Root.Activity)
	assert.Equal(t, "load_search", input.Root.Activity.Name)
}

func TestRepository_DocumentNotFound(t *testing.T) {
	t.Parallel()

	repo := file.NewRepository(t.TempDir())

	_, err := repo.Document(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, repository.IsDocumentNotFound(err))
}

func TestRepository_DocumentInvalidName(t *testing.T) {
	t.Parallel()

	repo := file.NewRepository(t.TempDir())

	for _, name := range []string{"", "../escape", "a/b", `a\b`} {
		_, err := repo.Document(context.Background(), name)
		assert.ErrorIs(t, err, repository.ErrInvalidDocumentName, "name %q", name)
	}
}

func TestRepository_DocumentMalformed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDocument(t, dir, "broken", "variables:\n  a: 1\n")

	repo := file.NewRepository(dir)

	_, err := repo.Document(context.Background(), "broken")
	require.Error(t, err)
	assert.True(t, dsl.IsMalformedDocument(err))
}

func TestRepository_Documents(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDocument(t, dir, "workflow_2_process", sampleDocument)
	writeDocument(t, dir, "workflow_1_load_and_email", sampleDocument)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0o700))

	repo := file.NewRepository(dir)

	names, err := repo.Documents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"workflow_1_load_and_email", "workflow_2_process"}, names)
}

func TestRepository_HealthCheck(t *testing.T) {
	t.Parallel()

	repo := file.NewRepository(t.TempDir())
	assert.NoError(t, repo.HealthCheck(context.Background()))

	missing := file.NewRepository(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, missing.HealthCheck(context.Background()))
}

func TestNewRepository_StripsScheme(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDocument(t, dir, "doc", sampleDocument)

	repo := file.NewRepository("file://" + dir)

	_, err := repo.Document(context.Background(), "doc")
	require.NoError(t, err)
}
