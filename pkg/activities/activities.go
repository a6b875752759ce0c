// Package activities implements the load-processing units of work. Each one
// calls its action-block HTTP endpoint, where the actual business logic
// lives, and returns the decoded result to the workflow.
package activities

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
)

const defaultRequestTimeout = 30 * time.Second

// Activity names as registered on the task queue. A document's unit-of-work
// name must match one of these, or the cascade activity's reserved name.
const (
	LoadSearchName              = "load_search"
	SendEmailName               = "send_email"
	ProcessEmailName            = "process_email"
	ExtractDataName             = "extract_data"
	GetEscalationMilestonesName = "get_escalation_milestones"
	UpdateLoadName              = "update_load"
	SendEscalationEmailName     = "send_escalation_email"
	SleepName                   = "sleep_activity"
)

// Activities holds the shared dependencies of every action-block call.
type Activities struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func New(baseURL string, logger *slog.Logger) *Activities {
	return &Activities{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultRequestTimeout},
		logger:  logger.With("module", "activities"),
	}
}

// Register registers every activity under its task-queue name.
func (a *Activities) Register(registry worker.Registry) {
	for _, reg := range []struct {
		name string
		fn   any
	}{
		{LoadSearchName, a.LoadSearch},
		{SendEmailName, a.SendEmail},
		{ProcessEmailName, a.ProcessEmail},
		{ExtractDataName, a.ExtractData},
		{GetEscalationMilestonesName, a.GetEscalationMilestones},
		{UpdateLoadName, a.UpdateLoad},
		{SendEscalationEmailName, a.SendEscalationEmail},
		{SleepName, a.Sleep},
	} {
		registry.RegisterActivityWithOptions(reg.fn, activity.RegisterOptions{Name: reg.name})
	}
}

// LoadSearch returns the IDs of loads matching the search.
func (a *Activities) LoadSearch(ctx context.Context) ([]int, error) {
	a.logExecution(ctx, LoadSearchName)

	body, err := a.call(ctx, http.MethodGet, "/api/v1/tracy/load-search")
	if err != nil {
		return nil, err
	}

	var ids []int
	if err := json.Unmarshal(body, &ids); err != nil {
		return nil, fmt.Errorf("decoding load search results: %w", err)
	}

	return ids, nil
}

func (a *Activities) SendEmail(ctx context.Context) (string, error) {
	a.logExecution(ctx, SendEmailName)

	return a.callForField(ctx, http.MethodPost, "/api/v1/tracy/send-email", "message", "Email sent")
}

// ProcessEmail classifies an email and returns the classification.
func (a *Activities) ProcessEmail(ctx context.Context) (string, error) {
	a.logExecution(ctx, ProcessEmailName)

	return a.callForField(ctx, http.MethodPost, "/api/v1/tracy/process-email", "result", "classified")
}

func (a *Activities) ExtractData(ctx context.Context) (string, error) {
	a.logExecution(ctx, ExtractDataName)

	return a.callForField(ctx, http.MethodPost, "/api/v1/tracy/extract-data", "data", "extracted data")
}

func (a *Activities) GetEscalationMilestones(ctx context.Context) (string, error) {
	a.logExecution(ctx, GetEscalationMilestonesName)

	return a.callForField(ctx, http.MethodGet, "/api/v1/tracy/escalation-milestones", "status", "milestone check completed")
}

func (a *Activities) UpdateLoad(ctx context.Context) (string, error) {
	a.logExecution(ctx, UpdateLoadName)

	return a.callForField(ctx, http.MethodPost, "/api/v1/tracy/update-load", "message", "load updated")
}

func (a *Activities) SendEscalationEmail(ctx context.Context) (string, error) {
	a.logExecution(ctx, SendEscalationEmailName)

	return a.callForField(ctx, http.MethodPost, "/api/v1/tracy/send-escalation-email", "message", "escalation email to carrier")
}

// Sleep delays the workflow. The duration comes through bindings, so it
// arrives as a string.
func (a *Activities) Sleep(ctx context.Context, seconds string) (string, error) {
	delay, err := strconv.Atoi(seconds)
	if err != nil {
		return "", fmt.Errorf("invalid sleep duration %q: %w", seconds, err)
	}

	a.logger.InfoContext(ctx, "Sleeping", "seconds", delay)

	select {
	case <-time.After(time.Duration(delay) * time.Second):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	return fmt.Sprintf("slept for %d seconds", delay), nil
}

func (a *Activities) call(ctx context.Context, method, path string) ([]byte, error) {
	url := a.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("calling %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", url, err)
	}

	return body, nil
}

// callForField decodes an action-block response object and plucks a single
// field, falling back when the endpoint omits it.
func (a *Activities) callForField(ctx context.Context, method, path, field, fallback string) (string, error) {
	body, err := a.call(ctx, method, path)
	if err != nil {
		return "", err
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decoding response from %s: %w", path, err)
	}

	if value, ok := payload[field].(string); ok {
		return value, nil
	}

	return fallback, nil
}

func (a *Activities) logExecution(ctx context.Context, name string) {
	logger := a.logger

	if activity.IsActivity(ctx) {
		info := activity.GetInfo(ctx)
		logger = logger.With(
			"activity_id", info.ActivityID,
			"workflow_id", info.WorkflowExecution.ID,
			"attempt", info.Attempt,
		)
	}

	logger.InfoContext(ctx, "Executing activity", "activity", name)
}
