// Package interpreter executes parsed workflow documents as deterministic
// Temporal workflows, dispatching each activity statement through an
// injected Dispatcher.
package interpreter

import (
	"fmt"
	"time"

	"github.com/loadwise/tracy/pkg/dsl"
	"go.temporal.io/sdk/workflow"
)

// DefaultActivityTimeout bounds a single unit of work unless overridden.
const DefaultActivityTimeout = time.Minute

// Interpreter walks a statement tree. Its own control flow is side-effect
// free and replay safe: everything non-deterministic happens behind the
// Dispatcher.
type Interpreter struct {
	dispatcher Dispatcher
	timeout    time.Duration
}

func New(dispatcher Dispatcher, activityTimeout time.Duration) *Interpreter {
	if activityTimeout <= 0 {
		activityTimeout = DefaultActivityTimeout
	}

	return &Interpreter{
		dispatcher: dispatcher,
		timeout:    activityTimeout,
	}
}

// Execute runs root against bindings, writing activity results into it as
// statements complete. The first failed statement aborts the run.
func (i *Interpreter) Execute(ctx workflow.Context, root *dsl.Statement, bindings dsl.Bindings) error {
	return i.executeStatement(ctx, root, newScope(bindings))
}

func (i *Interpreter) executeStatement(ctx workflow.Context, stmt *dsl.Statement, sc *scope) error {
	switch {
	case stmt == nil:
		return fmt.Errorf("%w: nil statement", dsl.ErrUnknownStatementShape)
	case stmt.Activity != nil:
		return i.executeActivity(ctx, stmt.Activity, sc)
	case stmt.Sequence != nil:
		return i.executeSequence(ctx, stmt.Sequence, sc)
	case stmt.Parallel != nil:
		return i.executeParallel(ctx, stmt.Parallel, sc)
	default:
		return fmt.Errorf("%w: statement has no activity, sequence or parallel", dsl.ErrUnknownStatementShape)
	}
}

func (i *Interpreter) executeActivity(ctx workflow.Context, stmt *dsl.ActivityInvocation, sc *scope) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Executing activity", "activity", stmt.Name)

	args := make([]any, 0, len(stmt.Arguments))

	for _, ref := range stmt.Arguments {
		value, ok := sc.lookup(ref)
		if !ok {
			return fmt.Errorf("%w: %q in activity %q", ErrUnresolvedReference, ref, stmt.Name)
		}

		args = append(args, value)
	}

	result, err := i.dispatcher.Dispatch(ctx, stmt.Name, args, i.timeout)
	if err != nil {
		return fmt.Errorf("activity %q: %w", stmt.Name, err)
	}

	logger.Info("Activity completed", "activity", stmt.Name)

	if stmt.Result != "" {
		sc.set(stmt.Result, result)
	}

	return nil
}

func (i *Interpreter) executeSequence(ctx workflow.Context, stmt *dsl.Sequence, sc *scope) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Executing sequence", "elements", len(stmt.Elements))

	for _, element := range stmt.Elements {
		if err := i.executeStatement(ctx, element, sc); err != nil {
			return err
		}
	}

	return nil
}

// executeParallel runs every branch as a workflow coroutine against its own
// snapshot of the pre-block bindings, so sibling writes stay invisible until
// the join barrier. After all branches finish, their writes merge back in
// branch declaration order: on a result name collision the last branch wins.
func (i *Interpreter) executeParallel(ctx workflow.Context, stmt *dsl.Parallel, sc *scope) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Executing parallel block", "branches", len(stmt.Branches))

	if len(stmt.Branches) == 0 {
		return nil
	}

	scopes := make([]*scope, len(stmt.Branches))
	failures := make([]error, len(stmt.Branches))
	wg := workflow.NewWaitGroup(ctx)

	for idx, branch := range stmt.Branches {
		scopes[idx] = sc.branch()

		wg.Add(1)
		workflow.Go(ctx, func(gctx workflow.Context) {
			defer wg.Done()

			failures[idx] = i.executeStatement(gctx, branch, scopes[idx])
		})
	}

	wg.Wait(ctx)

	// Branches are never cancelled mid-flight; the block fails only after
	// every branch reached a terminal state. The reported error is the first
	// failing branch in declaration order, keeping replay deterministic.
	for _, err := range failures {
		if err != nil {
			return err
		}
	}

	for _, branchScope := range scopes {
		for _, name := range branchScope.writes {
			value, _ := branchScope.lookup(name)
			sc.set(name, value)
		}
	}

	logger.Info("All parallel branches completed")

	return nil
}

// scope pairs the bindings visible to a statement with the log of names it
// wrote, which is what a parallel join merges back into the parent.
type scope struct {
	vars   dsl.Bindings
	writes []string
}

func newScope(vars dsl.Bindings) *scope {
	if vars == nil {
		vars = dsl.Bindings{}
	}

	return &scope{vars: vars}
}

func (s *scope) lookup(name string) (any, bool) {
	value, ok := s.vars[name]

	return value, ok
}

func (s *scope) set(name string, value any) {
	if !s.wrote(name) {
		s.writes = append(s.writes, name)
	}

	s.vars[name] = value
}

func (s *scope) wrote(name string) bool {
	for _, written := range s.writes {
		if written == name {
			return true
		}
	}

	return false
}

// branch derives an isolated child scope over a snapshot of the current
// bindings.
func (s *scope) branch() *scope {
	return &scope{vars: s.vars.Clone()}
}
