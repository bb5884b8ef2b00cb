package client

import "fmt"

// Error types for the client package. Every way an invocation can die has
// its own type, so callers can switch on what happened rather than parse
// message strings.
type (
	// NetworkError means the request never completed: DNS, dial, TLS,
	// resets, timeouts.
	NetworkError struct {
		Op  string
		Err error
	}

	// ProtocolError means the agent answered, but with a JSON-RPC error
	// envelope or an HTTP status outside the protocol.
	ProtocolError struct {
		Method  string
		Code    int
		Message string
	}

	// PaymentRequiredError means a 402 challenge could not be resolved.
	PaymentRequiredError struct {
		Reason string
	}

	// TaskFailedError means the agent moved the task to failed.
	TaskFailedError struct {
		TaskID string
		Detail string
	}

	// TaskCanceledError means the task was canceled on the agent side.
	TaskCanceledError struct {
		TaskID string
	}

	// TimeoutError means the task never reached an outcome within the
	// polling budget.
	TimeoutError struct {
		TaskID   string
		Attempts int
	}

	// AbortError means the caller canceled the invocation.
	AbortError struct {
		Err error
	}

	// ParseError means a response body was not the JSON it claimed to be.
	ParseError struct {
		Err error
	}
)

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *ProtocolError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("protocol error during %s: %s (code %d)", e.Method, e.Message, e.Code)
	}
	return fmt.Sprintf("protocol error during %s: %s", e.Method, e.Message)
}

func (e *PaymentRequiredError) Error() string {
	return fmt.Sprintf("payment required: %s", e.Reason)
}

func (e *TaskFailedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("task %s failed: %s", e.TaskID, e.Detail)
	}
	return fmt.Sprintf("task %s failed", e.TaskID)
}

func (e *TaskCanceledError) Error() string {
	return fmt.Sprintf("task %s was canceled", e.TaskID)
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("task %s did not settle within %d poll attempts", e.TaskID, e.Attempts)
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("invocation aborted: %v", e.Err)
}

func (e *AbortError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable agent response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
