package client

import (
	"context"
	"errors"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/oklog/ulid/v2"
	"github.com/theapemachine/atp-go/pkg/atp"
)

// titleRunes caps the preview title length of a conversation.
const titleRunes = 50

/*
Conversation is a fully loaded context: every transcript line of every
task in the thread, oldest first.
*/
type Conversation struct {
	ContextID string           `json:"contextId"`
	Title     string           `json:"title"`
	Messages  []DisplayMessage `json:"messages"`
}

/*
LoadContext rebuilds a conversation from the agent's task records. Task
ids come from the context store, the tasks themselves from tasks/get.
Tasks that fail to load are skipped so one bad record cannot hide the
rest of the thread.
*/
func (client *AgentClient) LoadContext(ctx context.Context, contextID string) (*Conversation, error) {
	if client.store == nil {
		return nil, errors.New("no context store configured")
	}

	conversation := &Conversation{ContextID: contextID}

	taskIDs, ok := client.store.TaskIDs(contextID)

	if !ok || len(taskIDs) == 0 {
		return conversation, nil
	}

	tasks := make([]*atp.Task, 0, len(taskIDs))

	for _, taskID := range taskIDs {
		task, err := client.GetTask(ctx, taskID)

		if err != nil {
			log.Warn("skipping unloadable task", "taskID", taskID, "error", err)
			continue
		}

		tasks = append(tasks, task)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Status.Timestamp.Before(tasks[j].Status.Timestamp)
	})

	for _, task := range tasks {
		for _, msg := range task.History {
			if !msg.HasText() {
				continue
			}

			display := DisplayMessage{
				ID:        ulid.Make().String(),
				Text:      msg.String(),
				Role:      DisplayRoleUser,
				Timestamp: task.Status.Timestamp,
			}

			if msg.Role != atp.RoleUser {
				display.Role = DisplayRoleAssistant
				display.TaskID = task.ID
				display.State = task.Status.State
			}

			if conversation.Title == "" && display.Role == DisplayRoleUser {
				conversation.Title = truncate(display.Text, titleRunes)
			}

			conversation.Messages = append(conversation.Messages, display)
		}
	}

	if conversation.Title != "" {
		client.store.SetTitle(contextID, conversation.Title)
	}

	return conversation, nil
}
