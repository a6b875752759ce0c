// Package cascade implements the reserved start_child_workflow activity: a
// unit of work that runs another document as a new, independently identified
// workflow run and blocks until it reaches a terminal state.
package cascade

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/loadwise/tracy/pkg/dsl"
	"github.com/loadwise/tracy/pkg/interpreter"
	"github.com/loadwise/tracy/pkg/repository"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
)

// ActivityName is the reserved unit-of-work name a document uses to cascade
// into another document.
const ActivityName = "start_child_workflow"

// Result is what the parent run sees under the cascading statement's result
// binding.
type Result struct {
	ChildWorkflowID   string       `json:"child_workflow_id"`
	ChildRunID        string       `json:"child_run_id"`
	ChildDocumentName string       `json:"child_document_name"`
	ChildResult       dsl.Bindings `json:"child_result"`
	Status            string       `json:"status"`
}

// WorkflowStarter is the slice of the Temporal client the controller needs.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow any, args ...any) (client.WorkflowRun, error)
}

// Controller starts and awaits child document runs. Document graphs that
// cascade into themselves are the caller's responsibility to avoid: no cycle
// detection happens here, and a self-referencing document will recurse until
// the runtime refuses it.
type Controller struct {
	temporal  WorkflowStarter
	documents repository.DocumentRepository
	taskQueue string
	logger    *slog.Logger
}

func NewController(
	temporal WorkflowStarter,
	documents repository.DocumentRepository,
	taskQueue string,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		temporal:  temporal,
		documents: documents,
		taskQueue: taskQueue,
		logger:    logger.With("module", "cascade"),
	}
}

// StartChildWorkflow is registered under ActivityName. The child run gets a
// fresh identity derived from the document name plus a uniqueness token, so
// it stays inspectable on its own after the parent completes.
func (c *Controller) StartChildWorkflow(ctx context.Context, documentName string) (*Result, error) {
	logger := c.logger

	if activity.IsActivity(ctx) {
		info := activity.GetInfo(ctx)
		logger = logger.With("parent_workflow_id", info.WorkflowExecution.ID)
	}

	logger.InfoContext(ctx, "Starting child workflow", "document", documentName)

	input, err := c.documents.Document(ctx, documentName)
	if err != nil {
		return nil, fmt.Errorf("loading document %q: %w", documentName, err)
	}

	childWorkflowID := fmt.Sprintf("%s-%s", documentName, uuid.New())

	run, err := c.temporal.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        childWorkflowID,
		TaskQueue: c.taskQueue,
	}, interpreter.WorkflowName, input)
	if err != nil {
		return nil, fmt.Errorf("%w: starting %q: %w", ErrChildExecutionFailed, documentName, err)
	}

	var childResult dsl.Bindings
	if err := run.Get(ctx, &childResult); err != nil {
		return nil, fmt.Errorf("%w: %q (%s): %w", ErrChildExecutionFailed, documentName, childWorkflowID, err)
	}

	logger.InfoContext(ctx, "Child workflow completed",
		"document", documentName,
		"child_workflow_id", childWorkflowID,
	)

	return &Result{
		ChildWorkflowID:   childWorkflowID,
		ChildRunID:        run.GetRunID(),
		ChildDocumentName: documentName,
		ChildResult:       childResult,
		Status:            "completed",
	}, nil
}
