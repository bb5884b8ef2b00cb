package atp

import (
	"strings"

	"github.com/google/uuid"
)

const (
	// canonicalIDLength is the wire form every id settles on.
	canonicalIDLength = 32
	// legacyContextIDLength is the short form some older deployments still
	// hand out for context ids.
	legacyContextIDLength = 24
)

// NewID returns a fresh 32-character lowercase hex identifier, the
// canonical wire form for task, message and context ids.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

/*
NormalizeContextID brings a context id into canonical form. An empty id
gets a freshly generated one, the 24-character legacy form is right-padded
with zeroes up to 32 characters, and anything else passes through
untouched.
*/
func NormalizeContextID(contextID string) string {
	switch {
	case contextID == "":
		return NewID()
	case len(contextID) == legacyContextIDLength:
		return contextID + strings.Repeat("0", canonicalIDLength-legacyContextIDLength)
	default:
		return contextID
	}
}

/*
ResolveTaskIdentity decides which task an outgoing message belongs to and
which prior tasks it references. The rules apply in strict priority order:

 1. Replying to a specific task forks a NEW task that references the one
    replied to, even when that task is still awaiting input.
 2. When the current task is paused awaiting input, the message continues
    that same task and references nothing.
 3. Any other current task means the conversation moved on, so the message
    starts a new task referencing the previous one.
 4. With no current task at all, the message starts an unreferenced task.

The returned reference list is nil whenever there is nothing to reference.
*/
func ResolveTaskIdentity(replyToTaskID, currentTaskID string, currentState TaskState) (string, []string) {
	if replyToTaskID != "" {
		return NewID(), []string{replyToTaskID}
	}

	if currentTaskID != "" && currentState.AwaitsInput() {
		return currentTaskID, nil
	}

	if currentTaskID != "" {
		return NewID(), []string{currentTaskID}
	}

	return NewID(), nil
}
