package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"

	"github.com/loadwise/tracy/pkg/cmd"
	"github.com/loadwise/tracy/pkg/log"
	"github.com/loadwise/tracy/pkg/otelhelper"
	"github.com/loadwise/tracy/pkg/services"
)

const defaultPort = 9090

func main() {
	command := &cli.Command{
		Name:                  "tracy-api",
		Usage:                 "Run documents and serve the action blocks they call",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
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
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export OTLP traces",
				Sources: cli.EnvVars("OTEL_ENABLED"),
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
			logger := log.WithModule("api")

			logger.InfoContext(ctx, "Initializing Tracy API")

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

			tracer, err := newTracer(ctx, command.Bool("tracing"))
			if err != nil {
				return err
			}

			runService := services.NewRuns(
				temporal,
				documents,
				eventBus,
				tracer,
				command.String("task-queue"),
				logger,
			)

			api := NewAPI(logger, runService)

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

func newTracer(ctx context.Context, enabled bool) (trace.Tracer, error) {
	if !enabled {
		return nil, nil
	}

	return otelhelper.NewTracer(ctx, "tracy-api")
}
