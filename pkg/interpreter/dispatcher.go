package interpreter

import (
	"time"

	"go.temporal.io/sdk/workflow"
)

// Dispatcher is the single boundary between the tree walker and the
// orchestration runtime. Every remote call the interpreter makes goes through
// Dispatch, which is the only suspension point in a run. Implementations must
// be safe to call from workflow code: durability, retry and timeout
// enforcement belong to the runtime, never to the interpreter.
type Dispatcher interface {
	Dispatch(ctx workflow.Context, name string, args []any, timeout time.Duration) (any, error)
}

// ActivityDispatcher submits each unit of work as a Temporal activity on the
// run's task queue.
type ActivityDispatcher struct{}

func NewActivityDispatcher() *ActivityDispatcher {
	return &ActivityDispatcher{}
}

func (*ActivityDispatcher) Dispatch(ctx workflow.Context, name string, args []any, timeout time.Duration) (any, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: timeout,
	})

	var result any
	if err := workflow.ExecuteActivity(ctx, name, args...).Get(ctx, &result); err != nil {
		return nil, err
	}

	return result, nil
}
