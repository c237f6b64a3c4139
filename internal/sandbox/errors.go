package sandbox

import (
	"context"
	"errors"
	"fmt"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/CodePlayground/backend/internal/sandbox/guard"
)

const moduleNotFoundName = "ModuleNotFoundError"

// ModuleNotFoundError is thrown by require for every module name
type ModuleNotFoundError struct {
	Name string
}

func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("Cannot find module '%s'", e.Name)
}

// CancelError reports that the host stopped a run
type CancelError struct {
	Cause error
}

func (e *CancelError) Error() string {
	if errors.Is(e.Cause, context.DeadlineExceeded) {
		return "ExecutionTimeoutError: run exceeded its time limit"
	}
	return "ExecutionCancelledError: run was cancelled"
}

func (e *CancelError) Unwrap() error { return e.Cause }

func (e *CancelError) kind() Kind {
	if errors.Is(e.Cause, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindCancelled
}

// ScriptError is an uncaught exception raised by guest code
type ScriptError struct {
	Name string // Constructor name of the thrown value, if it is an error object
	Text string // String conversion of the thrown value
}

func (e *ScriptError) Error() string {
	return e.Text
}

// classify maps an interpreter error onto a run Kind and the error to report
func classify(err error) (Kind, error) {
	if err == nil {
		return KindOK, nil
	}

	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		switch v := interrupted.Value().(type) {
		case *guard.TripError:
			return KindGuardTrip, v
		case *CancelError:
			return v.kind(), v
		}
		return KindInternal, err
	}

	// *goja.Exception and the exceptions embedding it, such as stack overflows
	var exc thrown
	if errors.As(err, &exc) {
		se := scriptError(exc)
		switch se.Name {
		case moduleNotFoundName:
			return KindModuleNotFound, se
		case "SyntaxError":
			return KindSyntax, se
		}
		return KindRuntime, se
	}

	return KindRuntime, err
}

type thrown interface {
	error
	Value() goja.Value
}

func scriptError(exc thrown) *ScriptError {
	val := exc.Value()
	if val == nil {
		return &ScriptError{Text: exc.Error()}
	}

	se := &ScriptError{Text: val.String()}
	if obj, ok := val.(*goja.Object); ok {
		if name := obj.Get("name"); name != nil && !goja.IsUndefined(name) && !goja.IsNull(name) {
			se.Name = name.String()
		}
	}
	return se
}
