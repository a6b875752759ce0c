package cascade

import "errors"

// ErrChildExecutionFailed signals a child document run that started but did
// not reach a completed terminal state. Per the fail-fast rule it aborts the
// parent's remaining statements.
var ErrChildExecutionFailed = errors.New("child workflow execution failed")

func IsChildExecutionFailed(err error) bool {
	return errors.Is(err, ErrChildExecutionFailed)
}
