// Package events defines the run lifecycle notifications published while
// documents execute.
package events

import (
	"time"

	"github.com/loadwise/tracy/pkg/dsl"
)

type EventType string

// Kafka topic for run lifecycle events.
const Topic = "tracy.runs"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	RunStartedEvent   EventType = "workflow.run.started"
	RunCompletedEvent EventType = "workflow.run.completed"
	RunFailedEvent    EventType = "workflow.run.failed"
)

type BaseEvent struct {
	ID           string         `json:"id"`
	Type         EventType      `json:"type"`
	Timestamp    time.Time      `json:"timestamp"`
	DocumentName string         `json:"document_name"`
	WorkflowID   string         `json:"workflow_id"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

type RunStarted struct {
	BaseEvent

	RunID string `json:"run_id"`
}

func (e RunStarted) GetType() EventType {
	return RunStartedEvent
}

type RunCompleted struct {
	BaseEvent

	RunID    string        `json:"run_id"`
	Result   dsl.Bindings  `json:"result,omitempty"`
	Duration time.Duration `json:"duration"`
}

func (e RunCompleted) GetType() EventType {
	return RunCompletedEvent
}

type RunFailed struct {
	BaseEvent

	RunID    string        `json:"run_id"`
	Error    string        `json:"error"`
	Duration time.Duration `json:"duration"`
}

func (e RunFailed) GetType() EventType {
	return RunFailedEvent
}
