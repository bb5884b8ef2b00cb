package atp

import "time"

/*
TaskState enumerates the mutually exclusive states a task may be in. The
zero value is "unknown".
*/
type TaskState string

const (
	TaskStateSubmitted TaskState = "submitted"
	TaskStateWorking   TaskState = "working"
	TaskStateInputReq  TaskState = "input-required"
	TaskStateAuthReq   TaskState = "auth-required"
	TaskStateCompleted TaskState = "completed"
	TaskStateCanceled  TaskState = "canceled"
	TaskStateFailed    TaskState = "failed"
	TaskStateUnknown   TaskState = "unknown"
)

/*
Terminal reports whether the task has reached an outcome the agent will
never move it out of.
*/
func (state TaskState) Terminal() bool {
	switch state {
	case TaskStateCompleted, TaskStateCanceled, TaskStateFailed:
		return true
	}

	return false
}

/*
AwaitsInput reports whether the task is paused waiting for a follow-up
message on the same task id, either regular input or an authentication
hand-off.
*/
func (state TaskState) AwaitsInput() bool {
	return state == TaskStateInputReq || state == TaskStateAuthReq
}

type TaskStatus struct {
	State     TaskState `json:"state"`
	Message   *Message  `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}
