package client

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/theapemachine/atp-go/pkg/atp"
)

// DisplayRole tags who a transcript line belongs to.
type DisplayRole string

const (
	DisplayRoleUser      DisplayRole = "user"
	DisplayRoleAssistant DisplayRole = "assistant"
	DisplayRoleStatus    DisplayRole = "status"
)

/*
DisplayMessage is the client-local projection of one transcript line.
Values are immutable once yielded; higher layers append them to whatever
surface they render.
*/
type DisplayMessage struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Role      DisplayRole   `json:"role"`
	TaskID    string        `json:"taskId,omitempty"`
	State     atp.TaskState `json:"state,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewDisplayMessage stamps a fresh transcript line with a sortable id.
func NewDisplayMessage(role DisplayRole, text string) DisplayMessage {
	return DisplayMessage{
		ID:        ulid.Make().String(),
		Text:      text,
		Role:      role,
		Timestamp: time.Now(),
	}
}

// truncate caps s at n runes.
func truncate(s string, n int) string {
	runes := []rune(s)

	if len(runes) <= n {
		return s
	}

	return string(runes[:n])
}
