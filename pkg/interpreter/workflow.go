package interpreter

import (
	"fmt"
	"time"

	"github.com/loadwise/tracy/pkg/dsl"
	"go.temporal.io/sdk/workflow"
)

// WorkflowName is the type every document run is started under, for parent
// and cascaded child runs alike.
const WorkflowName = "DSLWorkflow"

// Workflow is the Temporal entry point wrapping an Interpreter. The
// dispatcher is injected at worker construction so tests can substitute it.
type Workflow struct {
	dispatcher      Dispatcher
	activityTimeout time.Duration
}

func NewWorkflow(dispatcher Dispatcher) *Workflow {
	return &Workflow{
		dispatcher:      dispatcher,
		activityTimeout: DefaultActivityTimeout,
	}
}

// Run executes the document and returns the final bindings. The bindings are
// seeded with the run's identity so activities and downstream documents can
// reference it.
func (w *Workflow) Run(ctx workflow.Context, input dsl.Input) (dsl.Bindings, error) {
	info := workflow.GetInfo(ctx)
	logger := workflow.GetLogger(ctx)

	if input.Root == nil {
		return nil, fmt.Errorf("%w: missing root statement", dsl.ErrMalformedDocument)
	}

	bindings := input.Variables.Clone()
	bindings["workflow_id"] = info.WorkflowExecution.ID
	bindings["run_id"] = info.WorkflowExecution.RunID
	bindings["workflow_type"] = info.WorkflowType.Name
	bindings["attempt"] = info.Attempt

	logger.Info("Starting DSL workflow",
		"workflow_id", info.WorkflowExecution.ID,
		"run_id", info.WorkflowExecution.RunID,
	)

	itp := New(w.dispatcher, w.activityTimeout)
	if err := itp.Execute(ctx, input.Root, bindings); err != nil {
		return nil, err
	}

	bindings["workflow_status"] = "completed"

	logger.Info("DSL workflow completed",
		"workflow_id", info.WorkflowExecution.ID,
		"run_id", info.WorkflowExecution.RunID,
	)

	return bindings, nil
}
