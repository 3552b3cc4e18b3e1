package device

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNoDeviceFound is returned when enumeration reports zero devices.
var ErrNoDeviceFound = errors.New("no depth camera connected")

// CallError is a failed SDK call. Every source reports failures this way so
// callers only need errors.As to tell them apart from ErrNoDeviceFound.
type CallError struct {
	Func    string
	Args    string
	Message string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("rs error was thrown when calling %s(%s): %s", e.Func, e.Args, e.Message)
}

// Failed builds a CallError from an underlying error.
func Failed(fn, args string, err error) error {
	if err == nil {
		return nil
	}
	var ce *CallError
	if errors.As(err, &ce) {
		return ce
	}
	return &CallError{Func: fn, Args: args, Message: err.Error()}
}

// IsCallError reports whether err carries a CallError.
func IsCallError(err error) bool {
	var ce *CallError
	return errors.As(err, &ce)
}

// ErrorFields classifies err as structured log fields, so every command
// reports a missing device and a failed SDK call the same way.
func ErrorFields(err error) []any {
	return []any{
		"error", err,
		"no_device", errors.Is(err, ErrNoDeviceFound),
		"sdk_call", IsCallError(err),
	}
}
