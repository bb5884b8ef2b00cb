package atp

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

/*
Task is the unit of work a remote agent runs on the client's behalf. The
client never mutates a task; it sends messages that target one and reads
back whatever snapshot the agent returns.
*/
type Task struct {
	ID        string         `json:"id"`
	ContextID string         `json:"contextId,omitempty"`
	Status    TaskStatus     `json:"status"`
	History   []Message      `json:"history,omitempty"`
	Artifacts []Artifact     `json:"artifacts,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func NewTaskFromBody(body []byte) (*Task, error) {
	var task Task

	if err := json.Unmarshal(body, &task); err != nil {
		return nil, err
	}

	return &task, nil
}

func (task *Task) LastMessage() *Message {
	if len(task.History) == 0 {
		return nil
	}

	return &task.History[len(task.History)-1]
}

// ErrorDetail returns the agent-reported failure detail, if the agent left
// one behind in the task metadata.
func (task *Task) ErrorDetail() string {
	if task.Metadata == nil {
		return ""
	}

	if detail, ok := task.Metadata["error"].(string); ok {
		return detail
	}

	return ""
}

// MessageSendConfiguration narrows what the client is willing to receive
// back from the agent.
type MessageSendConfiguration struct {
	AcceptedOutputModes []string `json:"acceptedOutputModes,omitempty"`
	HistoryLength       *int     `json:"historyLength,omitempty"`
}

// MessageSendParams represents the parameters for the message/send call.
type MessageSendParams struct {
	// Message is the fully threaded message handed to the agent. Its TaskID,
	// ContextID and ReferenceTaskIDs decide which task the agent continues
	// or creates.
	Message Message `json:"message"`
	// Configuration is optional client-side preferences for the exchange.
	Configuration *MessageSendConfiguration `json:"configuration,omitempty"`
	// Metadata is optional metadata associated with sending this message.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// TaskQueryParams represents the parameters for the tasks/get call.
type TaskQueryParams struct {
	// TaskID is the unique identifier of the task being fetched.
	TaskID string `json:"taskId"`
	// HistoryLength is an optional cap on how much history to retrieve.
	HistoryLength *int `json:"historyLength,omitempty"`
	// Metadata is optional metadata to include with the operation.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// TaskFeedbackParams represents the parameters for the tasks/feedback call.
type TaskFeedbackParams struct {
	TaskID   string         `json:"taskId"`
	Feedback string         `json:"feedback"`
	Rating   int            `json:"rating"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// TaskFeedbackResult is the agent's acknowledgement of recorded feedback.
// Note the snake_case task id; agents emit this one call in snake_case
// while everything else on the wire is camelCase.
type TaskFeedbackResult struct {
	Message string `json:"message"`
	TaskID  string `json:"task_id"`
}

func (task *Task) String() string {
	var sb strings.Builder

	// Styles
	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("212")).
		Bold(true)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	sectionStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		Bold(true)

	// Indentation and box-drawing chars
	indent := "   "
	bullet := "│ "

	// Task Details Header
	sb.WriteString(headerStyle.Render("Task Details") + "\n")
	sb.WriteString(bullet + labelStyle.Render("ID: ") + valueStyle.Render(task.ID) + "\n")
	if task.ContextID != "" {
		sb.WriteString(bullet + labelStyle.Render("Context ID: ") + valueStyle.Render(task.ContextID) + "\n")
	}

	// Status Section
	sb.WriteString("\n" + sectionStyle.Render("Status") + "\n")
	sb.WriteString(bullet + labelStyle.Render("State: ") + valueStyle.Render(string(task.Status.State)) + "\n")
	if task.Status.Message != nil {
		sb.WriteString(bullet + labelStyle.Render("Message: ") + valueStyle.Render(task.Status.Message.String()) + "\n")
	}

	sb.WriteString(bullet + labelStyle.Render("Timestamp: ") + valueStyle.Render(task.Status.Timestamp.Format(time.RFC3339)) + "\n")

	// History Section
	if len(task.History) > 0 {
		sb.WriteString("\n" + sectionStyle.Render("History") + "\n")
		for i, message := range task.History {
			sb.WriteString(bullet + labelStyle.Render(fmt.Sprintf("Message %d", i+1)) + "\n")
			sb.WriteString(bullet + indent + labelStyle.Render("Role: ") + valueStyle.Render(message.Role) + "\n")
			if len(message.ReferenceTaskIDs) > 0 {
				sb.WriteString(bullet + indent + labelStyle.Render("References: ") + valueStyle.Render(strings.Join(message.ReferenceTaskIDs, ", ")) + "\n")
			}
			for _, part := range message.Parts {
				sb.WriteString(bullet + indent + labelStyle.Render("Content: ") + valueStyle.Render(part.Text) + "\n")
			}
		}
	}

	// Artifacts Section
	if len(task.Artifacts) > 0 {
		sb.WriteString("\n" + sectionStyle.Render("Artifacts") + "\n")
		for i, artifact := range task.Artifacts {
			sb.WriteString(bullet + labelStyle.Render(fmt.Sprintf("Artifact %d", i+1)) + "\n")
			if artifact.Name != nil {
				sb.WriteString(bullet + indent + labelStyle.Render("Name: ") + valueStyle.Render(*artifact.Name) + "\n")
			}
			if artifact.Description != nil {
				sb.WriteString(bullet + indent + labelStyle.Render("Description: ") + valueStyle.Render(*artifact.Description) + "\n")
			}
			for j, part := range artifact.Parts {
				sb.WriteString(bullet + indent + labelStyle.Render(fmt.Sprintf("Part %d: ", j+1)) + valueStyle.Render(part.Text) + "\n")
			}
		}
	}

	// Metadata Section
	if len(task.Metadata) > 0 {
		sb.WriteString("\n" + sectionStyle.Render("Metadata") + "\n")
		keys := make([]string, 0, len(task.Metadata))
		for k := range task.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(bullet + labelStyle.Render(k+": ") + valueStyle.Render(fmt.Sprintf("%v", task.Metadata[k])) + "\n")
		}
	}

	return sb.String()
}
