// Package schedule runs documents on cron schedules.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/loadwise/tracy/pkg/services"
)

// Entry maps one cron expression to the document it starts.
type Entry struct {
	Name     string `yaml:"name"`
	Cron     string `yaml:"cron"`
	Document string `yaml:"document"`
	Disabled bool   `yaml:"disabled"`
}

type entriesDocument struct {
	Schedules []Entry `yaml:"schedules"`
}

// LoadEntries parses and validates a schedules file.
func LoadEntries(source []byte) ([]Entry, error) {
	var doc entriesDocument
	if err := yaml.Unmarshal(source, &doc); err != nil {
		return nil, fmt.Errorf("parsing schedules: %w", err)
	}

	for _, entry := range doc.Schedules {
		if entry.Name == "" {
			return nil, errors.New("schedule name is required")
		}

		if entry.Document == "" {
			return nil, fmt.Errorf("document is required for schedule %s", entry.Name)
		}

		if _, err := cron.ParseStandard(entry.Cron); err != nil {
			return nil, fmt.Errorf("invalid cron expression %q for schedule %s: %w", entry.Cron, entry.Name, err)
		}
	}

	return doc.Schedules, nil
}

// RunStarter starts a document run without waiting for its result.
type RunStarter interface {
	Start(ctx context.Context, documentName string) (*services.RunHandle, error)
}

type Scheduler struct {
	entries []Entry
	runner  RunStarter
	logger  *slog.Logger
	cron    *cron.Cron
	jobs    map[string]cron.EntryID
	mutex   sync.Mutex
}

func NewScheduler(entries []Entry, runner RunStarter, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		entries: entries,
		runner:  runner,
		logger:  logger.With("module", "scheduler"),
		jobs:    make(map[string]cron.EntryID),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Starting scheduler", "entries_count", len(s.entries))

	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	for _, entry := range s.entries {
		if err := s.startEntry(ctx, entry); err != nil {
			return err
		}
	}

	s.cron.Start()

	return nil
}

func (s *Scheduler) startEntry(ctx context.Context, entry Entry) error {
	logger := s.logger.With("schedule", entry.Name)

	if entry.Disabled {
		logger.InfoContext(ctx, "Schedule is disabled, skipping")

		return nil
	}

	entryID, err := s.cron.AddFunc(entry.Cron, func() {
		go s.trigger(entry)
	})
	if err != nil {
		return fmt.Errorf("adding cron job for schedule %s: %w", entry.Name, err)
	}

	s.mutex.Lock()
	s.jobs[entry.Name] = entryID
	s.mutex.Unlock()

	logger.InfoContext(ctx, "Added cron job", "cron", entry.Cron, "document", entry.Document)

	return nil
}

func (s *Scheduler) trigger(entry Entry) {
	logger := s.logger.With("schedule", entry.Name, "document", entry.Document)

	handle, err := s.runner.Start(context.Background(), entry.Document)
	if err != nil {
		logger.Error("Failed to start scheduled run", "error", err)

		return
	}

	logger.Info("Started scheduled run", "workflow_id", handle.WorkflowID, "run_id", handle.RunID)
}

func (s *Scheduler) Stop(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Stopping scheduler")

	if s.cron != nil {
		s.cron.Stop()
	}

	s.mutex.Lock()
	s.jobs = make(map[string]cron.EntryID)
	s.mutex.Unlock()

	return nil
}
