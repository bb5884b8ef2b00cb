package client

import "github.com/theapemachine/atp-go/pkg/atp"

/*
Update is one entry on an invocation's stream. The concrete types are
StatusUpdate, TaskUpdate and FinalAnswerUpdate; the interface is sealed
so a consumer switching over them can trust the set is closed.
*/
type Update interface {
	isUpdate()
}

// UpdateStatus labels the lifecycle moments a StatusUpdate can carry.
type UpdateStatus string

const (
	StatusStarted   UpdateStatus = "started"
	StatusFinished  UpdateStatus = "finished"
	StatusError     UpdateStatus = "error"
	StatusKeepAlive UpdateStatus = "keep-alive"
)

// StatusUpdate marks a lifecycle moment: the exchange started, finished,
// failed, or is simply still alive with something to tell the user.
type StatusUpdate struct {
	Status  UpdateStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// TaskUpdate carries the latest known snapshot of the task's identity and
// state, emitted after the send and after every successful poll.
type TaskUpdate struct {
	TaskID           string         `json:"taskId"`
	ContextID        string         `json:"contextId,omitempty"`
	Status           atp.TaskStatus `json:"status"`
	ReferenceTaskIDs []string       `json:"referenceTaskIds,omitempty"`
}

// FinalAnswerUpdate delivers the extracted answer text exactly once, when
// the task settles. Interrupted stays false in this client; the field
// exists so downstream renderers share one shape with streaming surfaces.
type FinalAnswerUpdate struct {
	Text        string `json:"text"`
	Interrupted bool   `json:"interrupted"`
}

func (StatusUpdate) isUpdate()      {}
func (TaskUpdate) isUpdate()        {}
func (FinalAnswerUpdate) isUpdate() {}

/*
Invocation is a lazily evaluated exchange with the agent. Nothing moves
until the consumer starts draining Updates, and once that channel closes
Err reports how things ended, nil meaning the task reached a terminal
outcome cleanly.

The intended idiom mirrors bufio.Scanner:

	inv := client.SendMessage(ctx, req)
	for update := range inv.Updates() {
		...
	}
	if err := inv.Err(); err != nil {
		...
	}
*/
type Invocation struct {
	updates chan Update
	err     error
}

func newInvocation(buffer int) *Invocation {
	if buffer < 1 {
		buffer = 1
	}

	return &Invocation{
		updates: make(chan Update, buffer),
	}
}

// Updates returns the stream of updates. The channel closes when the
// invocation is over, successfully or not.
func (inv *Invocation) Updates() <-chan Update {
	return inv.updates
}

// Err reports the terminal error of the invocation. Only valid after the
// Updates channel has closed.
func (inv *Invocation) Err() error {
	return inv.err
}
