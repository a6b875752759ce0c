// Package services exposes the run operations behind the HTTP API: starting
// document runs, awaiting results and reporting run status.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/api/workflowservice/v1"
	"go.temporal.io/sdk/client"

	"github.com/loadwise/tracy/pkg/dsl"
	"github.com/loadwise/tracy/pkg/eventbus"
	"github.com/loadwise/tracy/pkg/events"
	"github.com/loadwise/tracy/pkg/interpreter"
	"github.com/loadwise/tracy/pkg/otelhelper"
	"github.com/loadwise/tracy/pkg/repository"
)

// TemporalClient is the slice of the Temporal client the run service uses.
type TemporalClient interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow any, args ...any) (client.WorkflowRun, error)
	GetWorkflow(ctx context.Context, workflowID string, runID string) client.WorkflowRun
	DescribeWorkflowExecution(ctx context.Context, workflowID, runID string) (*workflowservice.DescribeWorkflowExecutionResponse, error)
}

// RunHandle identifies a started document run.
type RunHandle struct {
	WorkflowID string `json:"workflow_id"`
	RunID      string `json:"run_id"`
}

// RunResult is the terminal state of a run executed synchronously.
type RunResult struct {
	WorkflowID string       `json:"workflow_id"`
	RunID      string       `json:"run_id"`
	Status     string       `json:"status"`
	Result     dsl.Bindings `json:"result"`
}

// RunStatus describes a run, including its final bindings once completed.
type RunStatus struct {
	WorkflowID string       `json:"workflow_id"`
	Status     string       `json:"status"`
	Result     dsl.Bindings `json:"result,omitempty"`
	Error      string       `json:"error,omitempty"`
}

type Runs struct {
	temporal  TemporalClient
	documents repository.DocumentRepository
	eventBus  eventbus.EventBus
	tracer    trace.Tracer
	taskQueue string
	logger    *slog.Logger
}

func NewRuns(
	temporal TemporalClient,
	documents repository.DocumentRepository,
	eventBus eventbus.EventBus,
	tracer trace.Tracer,
	taskQueue string,
	logger *slog.Logger,
) *Runs {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("tracy")
	}

	return &Runs{
		temporal:  temporal,
		documents: documents,
		eventBus:  eventBus,
		tracer:    tracer,
		taskQueue: taskQueue,
		logger:    logger.With("module", "run_service"),
	}
}

// Start loads the named document and starts it as a new workflow run without
// waiting for a result.
func (s *Runs) Start(ctx context.Context, documentName string) (*RunHandle, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "run.start",
		attribute.String(otelhelper.DocumentNameKey, documentName),
		attribute.String(otelhelper.TaskQueueKey, s.taskQueue),
	)
	defer span.End()

	input, err := s.documents.Document(ctx, documentName)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("starting run for %q: %w", documentName, err)
	}

	workflowID := fmt.Sprintf("%s-%s", documentName, uuid.New())

	run, err := s.temporal.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: s.taskQueue,
	}, interpreter.WorkflowName, input)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("starting run for %q: %w", documentName, err)
	}

	span.SetAttributes(attribute.String(otelhelper.WorkflowIDKey, run.GetID()))

	s.logger.InfoContext(ctx, "Started document run",
		"document", documentName,
		"workflow_id", run.GetID(),
		"run_id", run.GetRunID(),
	)

	s.publish(ctx, run.GetID(), events.RunStarted{
		BaseEvent: s.baseEvent(events.RunStartedEvent, documentName, run.GetID()),
		RunID:     run.GetRunID(),
	})

	return &RunHandle{WorkflowID: run.GetID(), RunID: run.GetRunID()}, nil
}

// Execute starts the named document and blocks until its terminal state,
// returning the final bindings.
func (s *Runs) Execute(ctx context.Context, documentName string) (*RunResult, error) {
	startedAt := time.Now()

	handle, err := s.Start(ctx, documentName)
	if err != nil {
		return nil, err
	}

	var result dsl.Bindings
	if err := s.temporal.GetWorkflow(ctx, handle.WorkflowID, handle.RunID).Get(ctx, &result); err != nil {
		s.publish(ctx, handle.WorkflowID, events.RunFailed{
			BaseEvent: s.baseEvent(events.RunFailedEvent, documentName, handle.WorkflowID),
			RunID:     handle.RunID,
			Error:     err.Error(),
			Duration:  time.Since(startedAt),
		})

		return nil, fmt.Errorf("run %q (%s): %w", documentName, handle.WorkflowID, err)
	}

	s.publish(ctx, handle.WorkflowID, events.RunCompleted{
		BaseEvent: s.baseEvent(events.RunCompletedEvent, documentName, handle.WorkflowID),
		RunID:     handle.RunID,
		Result:    result,
		Duration:  time.Since(startedAt),
	})

	return &RunResult{
		WorkflowID: handle.WorkflowID,
		RunID:      handle.RunID,
		Status:     "completed",
		Result:     result,
	}, nil
}

// Status describes a run by workflow ID. For completed runs the final
// bindings are included.
func (s *Runs) Status(ctx context.Context, workflowID string) (*RunStatus, error) {
	resp, err := s.temporal.DescribeWorkflowExecution(ctx, workflowID, "")
	if err != nil {
		var notFound *serviceerror.NotFound
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, workflowID)
		}

		return nil, fmt.Errorf("describing run %q: %w", workflowID, err)
	}

	status := runStatusName(resp.GetWorkflowExecutionInfo().GetStatus())
	runStatus := &RunStatus{WorkflowID: workflowID, Status: status}

	switch resp.GetWorkflowExecutionInfo().GetStatus() {
	case enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED:
		var result dsl.Bindings
		if err := s.temporal.GetWorkflow(ctx, workflowID, "").Get(ctx, &result); err != nil {
			return nil, fmt.Errorf("fetching result of run %q: %w", workflowID, err)
		}

		runStatus.Result = result
	case enumspb.WORKFLOW_EXECUTION_STATUS_FAILED:
		if err := s.temporal.GetWorkflow(ctx, workflowID, "").Get(ctx, nil); err != nil {
			runStatus.Error = err.Error()
		}
	default:
	}

	return runStatus, nil
}

// Documents lists the names of every runnable document.
func (s *Runs) Documents(ctx context.Context) ([]string, error) {
	return s.documents.Documents(ctx)
}

func (s *Runs) HealthCheck(ctx context.Context) error {
	return s.documents.HealthCheck(ctx)
}

func (s *Runs) baseEvent(eventType events.EventType, documentName, workflowID string) events.BaseEvent {
	id := uuid.NewString()
	if s.eventBus != nil {
		id = s.eventBus.GenerateID()
	}

	return events.BaseEvent{
		ID:           id,
		Type:         eventType,
		Timestamp:    time.Now().UTC(),
		DocumentName: documentName,
		WorkflowID:   workflowID,
	}
}

// publish is best effort: a broken event bus must not fail the run.
func (s *Runs) publish(ctx context.Context, key string, event eventbus.Event) {
	if s.eventBus == nil {
		return
	}

	if err := s.eventBus.Publish(ctx, key, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish run event",
			"event_type", event.GetType(),
			"error", err,
		)
	}
}

func runStatusName(status enumspb.WorkflowExecutionStatus) string {
	switch status {
	case enumspb.WORKFLOW_EXECUTION_STATUS_RUNNING:
		return "running"
	case enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED:
		return "completed"
	case enumspb.WORKFLOW_EXECUTION_STATUS_FAILED:
		return "failed"
	case enumspb.WORKFLOW_EXECUTION_STATUS_CANCELED:
		return "cancelled"
	case enumspb.WORKFLOW_EXECUTION_STATUS_TERMINATED:
		return "terminated"
	case enumspb.WORKFLOW_EXECUTION_STATUS_CONTINUED_AS_NEW:
		return "continued_as_new"
	case enumspb.WORKFLOW_EXECUTION_STATUS_TIMED_OUT:
		return "timed_out"
	default:
		return "unknown"
	}
}
