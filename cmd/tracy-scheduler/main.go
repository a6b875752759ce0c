// Package main runs documents on cron schedules.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"github.com/loadwise/tracy/pkg/cmd"
	"github.com/loadwise/tracy/pkg/log"
	"github.com/loadwise/tracy/pkg/schedule"
	"github.com/loadwise/tracy/pkg/services"
)

func main() {
	command := &cli.Command{
		Name:                  "tracy-scheduler",
		EnableShellCompletion: true,
		Usage:                 "Start document runs on cron schedules",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "schedules-path",
				Usage:   "Path to the schedules file",
				Value:   "./schedules.yaml",
				Sources: cli.EnvVars("SCHEDULES_PATH"),
			},
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
				Usage:   "Task queue the workers listen on",
				Value:   "load-task-queue",
				Sources: cli.EnvVars("TEMPORAL_TASK_QUEUE"),
			},
			&cli.StringFlag{
				Name:     "documents-url",
				Usage:    "Document repository URL (directory path or redis://)",
				Required: true,
				Sources:  cli.EnvVars("DOCUMENTS_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (kafka, gochannel, none)",
				Value:   "none",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringSliceFlag{
				Name:    "kafka-brokers",
				Usage:   "Kafka broker addresses",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
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
			logger := log.WithModule("scheduler")

			logger.InfoContext(ctx, "Initializing Tracy Scheduler")

			source, err := os.ReadFile(command.String("schedules-path"))
			if err != nil {
				return fmt.Errorf("reading schedules file: %w", err)
			}

			entries, err := schedule.LoadEntries(source)
			if err != nil {
				return err
			}

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

			eventBus := cmd.NewEventBus(command.String("event-bus"), command.StringSlice("kafka-brokers"), logger)
			if eventBus != nil {
				defer func() {
					if err := eventBus.Close(); err != nil {
						logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
					}
				}()
			}

			runService := services.NewRuns(
				temporal,
				documents,
				eventBus,
				nil,
				command.String("task-queue"),
				logger,
			)

			scheduler := schedule.NewScheduler(entries, runService, logger)
			if err := scheduler.Start(ctx); err != nil {
				return err
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			<-stop

			return scheduler.Stop(ctx)
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
