package cmd

import (
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
)

func NewTemporalClient(hostPort, namespace string, logger *slog.Logger) client.Client {
	temporal, err := client.Dial(client.Options{
		HostPort:  hostPort,
		Namespace: namespace,
		Logger:    tlog.NewStructuredLogger(logger),
	})
	if err != nil {
		panic(fmt.Errorf("failed to connect to temporal at %s: %w", hostPort, err))
	}

	return temporal
}
