package utils

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// PanicError takes the place of a worker's error when the worker panics.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("worker panicked: %v", e.Value)
}

// capturePanic turns a panic in the calling goroutine into a *PanicError
// stored in dst. It must be deferred directly.
func capturePanic(dst *error) {
	r := recover()
	if r == nil {
		return
	}
	stack := string(debug.Stack())
	slog.Error("Recovered from worker panic", "panic", r, "stack", stack)
	*dst = &PanicError{Value: r, Stack: stack}
}
