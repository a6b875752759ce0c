// Package main runs the Temporal worker that executes document runs.
package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/loadwise/tracy/pkg/activities"
	"github.com/loadwise/tracy/pkg/cascade"
	"github.com/loadwise/tracy/pkg/cmd"
	"github.com/loadwise/tracy/pkg/interpreter"
	"github.com/loadwise/tracy/pkg/log"
)

func main() {
	command := &cli.Command{
		Name:                  "tracy-worker",
		EnableShellCompletion: true,
		Usage:                 "Start a worker to execute document runs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "temporal-host",
				Usage:   "Temporal frontend host:port",
				Value:   "localhost:7233",
				Sources: cli.EnvVars("TEMPORAL_HOST"),
			},
			&cli.StringFlag{
				Name:    "temporal-namespace",
				Usage:   "Temporal namespace",
				Value:   "default",
				Sources: cli.EnvVars("TEMPORAL_NAMESPACE"),
			},
			&cli.StringFlag{
				Name:    "task-queue",
				Usage:   "Task queue to poll",
				Value:   "load-task-queue",
				Sources: cli.EnvVars("TEMPORAL_TASK_QUEUE"),
			},
			&cli.StringFlag{
				Name:    "api-base-url",
				Usage:   "Base URL of the action-block API",
				Value:   "http://localhost:9090",
				Sources: cli.EnvVars("API_BASE_URL"),
			},
			&cli.StringFlag{
				Name:     "documents-url",
				Usage:    "Document repository URL (directory path or redis://)",
				Required: true,
				Sources:  cli.EnvVars("DOCUMENTS_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("worker")

			logger.InfoContext(ctx, "Initializing Tracy Worker")

			temporal := cmd.NewTemporalClient(
				command.String("temporal-host"),
				command.String("temporal-namespace"),
				logger,
			)
			defer temporal.Close()

			documents := cmd.NewDocumentRepository(command.String("documents-url"))
			defer func() {
				if err := documents.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close document repository", "error", err)
				}
			}()

			taskQueue := command.String("task-queue")

			w := worker.New(temporal, taskQueue, worker.Options{})

			dslWorkflow := interpreter.NewWorkflow(interpreter.NewActivityDispatcher())
			w.RegisterWorkflowWithOptions(dslWorkflow.Run, workflow.RegisterOptions{
				Name: interpreter.WorkflowName,
			})

			activities.New(command.String("api-base-url"), logger).Register(w)

			controller := cascade.NewController(temporal, documents, taskQueue, logger)
			w.RegisterActivityWithOptions(controller.StartChildWorkflow, activity.RegisterOptions{
				Name: cascade.ActivityName,
			})

			logger.InfoContext(ctx, "Starting worker", "task_queue", taskQueue)

			if err := w.Run(worker.InterruptCh()); err != nil {
				logger.ErrorContext(ctx, "Worker stopped with error", "error", err)
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
