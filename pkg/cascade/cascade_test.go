package cascade_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"

	"github.com/loadwise/tracy/pkg/cascade"
	"github.com/loadwise/tracy/pkg/dsl"
	"github.com/loadwise/tracy/pkg/interpreter"
	"github.com/loadwise/tracy/pkg/repository"
	"github.com/loadwise/tracy/pkg/repository/file"
)

type fakeRun struct {
	workflowID string
	result     dsl.Bindings
	err        error
}

func (r *fakeRun) GetID() string    { return r.workflowID }
func (r *fakeRun) GetRunID() string { return "test-run-id" }

func (r *fakeRun) Get(_ context.Context, valuePtr any) error {
	if r.err != nil {
		return r.err
	}

	if target, ok := valuePtr.(*dsl.Bindings); ok {
		*target = r.result
	}

	return nil
}

func (r *fakeRun) GetWithOptions(ctx context.Context, valuePtr any, _ client.WorkflowRunGetOptions) error {
	return r.Get(ctx, valuePtr)
}

type fakeStarter struct {
	startedID        string
	startedTaskQueue string
	startedWorkflow  any
	startedInput     *dsl.Input
	startErr         error
	runErr           error
	result           dsl.Bindings
}

func (s *fakeStarter) ExecuteWorkflow(
	_ context.Context,
	options client.StartWorkflowOptions,
	workflow any,
	args ...any,
) (client.WorkflowRun, error) {
	s.startedID = options.ID
	s.startedTaskQueue = options.TaskQueue
	s.startedWorkflow = workflow

	if len(args) == 1 {
		if input, ok := args[0].(*dsl.Input); ok {
			s.startedInput = input
		}
	}

	if s.startErr != nil {
		return nil, s.startErr
	}

	return &fakeRun{workflowID: options.ID, result: s.result, err: s.runErr}, nil
}

func documentRepository(t *testing.T, documents map[string]string) repository.DocumentRepository {
	t.Helper()

	dir := t.TempDir()
	for name, source := range documents {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(source), 0o600))
	}

	return file.NewRepository(dir)
}

const childDocument = `
root:
  activity:
    name: q
    result: qr
`

func TestController_StartChildWorkflow(t *testing.T) {
	t.Parallel()

	starter := &fakeStarter{result: dsl.Bindings{"qr": "child value", "workflow_status": "completed"}}
	docs := documentRepository(t, map[string]string{"workflow_2_process": childDocument})

	controller := cascade.NewController(starter, docs, "load-task-queue", slog.Default())

	result, err := controller.StartChildWorkflow(context.Background(), "workflow_2_process")
	require.NoError(t, err)

	assert.Equal(t, "workflow_2_process", result.ChildDocumentName)
	assert.Equal(t, "test-run-id", result.ChildRunID)
	assert.Equal(t, "completed", result.Status)
	assert.Equal(t, "child value", result.ChildResult["qr"])

	assert.Equal(t, starter.startedID, result.ChildWorkflowID)
	assert.Contains(t, result.ChildWorkflowID, "workflow_2_process-")
	assert.Equal(t, "load-task-queue", starter.startedTaskQueue)
	assert.Equal(t, interpreter.WorkflowName, starter.startedWorkflow)

	require.NotNil(t, starter.startedInput)
	require.NotNil(t, starter.startedInput.Root.Activity)
	assert.Equal(t, "q", starter.startedInput.Root.Activity.Name)
}

func TestController_UniqueChildIdentity(t *testing.T) {
	t.Parallel()

	starter := &fakeStarter{result: dsl.Bindings{}}
	docs := documentRepository(t, map[string]string{"workflow_2_process": childDocument})
	controller := cascade.NewController(starter, docs, "load-task-queue", slog.Default())

	first, err := controller.StartChildWorkflow(context.Background(), "workflow_2_process")
	require.NoError(t, err)

	second, err := controller.StartChildWorkflow(context.Background(), "workflow_2_process")
	require.NoError(t, err)

	assert.NotEqual(t, first.ChildWorkflowID, second.ChildWorkflowID)
}

func TestController_DocumentNotFound(t *testing.T) {
	t.Parallel()

	starter := &fakeStarter{}
	docs := documentRepository(t, nil)
	controller := cascade.NewController(starter, docs, "load-task-queue", slog.Default())

	_, err := controller.StartChildWorkflow(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, repository.IsDocumentNotFound(err))
	assert.Empty(t, starter.startedID)
}

func TestController_ChildFailure(t *testing.T) {
	t.Parallel()

	starter := &fakeStarter{runErr: errors.New("child workflow blew up")}
	docs := documentRepository(t, map[string]string{"workflow_2_process": childDocument})
	controller := cascade.NewController(starter, docs, "load-task-queue", slog.Default())

	_, err := controller.StartChildWorkflow(context.Background(), "workflow_2_process")
	require.Error(t, err)
	assert.True(t, cascade.IsChildExecutionFailed(err))
}

func TestController_StartFailure(t *testing.T) {
	t.Parallel()

	starter := &fakeStarter{startErr: errors.New("namespace unavailable")}
	docs := documentRepository(t, map[string]string{"workflow_2_process": childDocument})
	controller := cascade.NewController(starter, docs, "load-task-queue", slog.Default())

	_, err := controller.StartChildWorkflow(context.Background(), "workflow_2_process")
	require.Error(t, err)
	assert.True(t, cascade.IsChildExecutionFailed(err))
}
