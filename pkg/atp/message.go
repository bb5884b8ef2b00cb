package atp

import "strings"

// Well-known values for Message.Role. Agents answer either as "agent" or
// as "assistant" depending on the framework that hosts them, so both are
// recognised on the receiving side.
const (
	RoleUser      = "user"
	RoleAgent     = "agent"
	RoleAssistant = "assistant"
)

// IsAgentRole reports whether the role marks a message authored by the
// remote agent rather than the local user.
func IsAgentRole(role string) bool {
	return role == RoleAgent || role == RoleAssistant
}

/*
Message represents all non-artifact communication between client and agent.
ReferenceTaskIDs carries the ids of prior tasks this message forks from,
which is how threads stay connected across task boundaries.
*/
type Message struct {
	Role             string         `json:"role"`
	Parts            []Part         `json:"parts"`
	MessageID        string         `json:"messageId,omitempty"`
	ContextID        string         `json:"contextId,omitempty"`
	TaskID           string         `json:"taskId,omitempty"`
	ReferenceTaskIDs []string       `json:"referenceTaskIds,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

func NewTextMessage(role string, text string) *Message {
	return &Message{
		Role: role,
		Parts: []Part{
			{Kind: PartKindText, Text: text},
		},
	}
}

func NewFileMessage(role string, file *FilePart) *Message {
	return &Message{
		Role: role,
		Parts: []Part{
			{Kind: PartKindFile, File: file},
		},
	}
}

func NewDataMessage(role string, data map[string]any) *Message {
	return &Message{
		Role: role,
		Parts: []Part{
			{Kind: PartKindData, Data: data},
		},
	}
}

// FirstText returns the text of the first text-kind part, or false when the
// message carries no text at all.
func (msg *Message) FirstText() (string, bool) {
	for _, part := range msg.Parts {
		if part.IsText() {
			return part.Text, true
		}
	}

	return "", false
}

// HasText reports whether at least one part of the message is text.
func (msg *Message) HasText() bool {
	_, ok := msg.FirstText()
	return ok
}

func (msg *Message) String() string {
	var sb strings.Builder

	for _, part := range msg.Parts {
		sb.WriteString(part.Text)
	}

	return sb.String()
}
