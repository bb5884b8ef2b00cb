package client

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cohesivestack/valgo"
	"github.com/theapemachine/atp-go/pkg/atp"
)

/*
SendRequest describes one outgoing message and the conversation state it
extends. Everything except Text is optional: a zero request starts a
fresh task in a fresh context.
*/
type SendRequest struct {
	Text             string
	ContextID        string
	CurrentTaskID    string
	CurrentTaskState atp.TaskState
	ReplyToTaskID    string
}

/*
SendMessage hands text to the agent and follows the resulting task until
it comes to rest. The work runs on a background goroutine; the returned
invocation carries the update stream and must be drained. Callers are
expected to keep at most one invocation in flight per context.

	inv := agent.SendMessage(ctx, client.SendRequest{Text: "hello"})

	for update := range inv.Updates() {
		if answer, ok := update.(client.FinalAnswerUpdate); ok {
			fmt.Println(answer.Text)
		}
	}

	if err := inv.Err(); err != nil {
		log.Error("invocation failed", "error", err)
	}
*/
func (client *AgentClient) SendMessage(ctx context.Context, req SendRequest) *Invocation {
	inv := newInvocation(client.opts.UpdateBuffer)

	go client.run(ctx, req, inv)

	return inv
}

func (client *AgentClient) run(ctx context.Context, req SendRequest, inv *Invocation) {
	started := time.Now()

	defer func() {
		client.metrics.RecordSend(inv.err == nil, time.Since(started))
		close(inv.updates)
	}()

	val := valgo.Is(valgo.String(req.Text, "text").Not().Blank())

	if !val.Valid() {
		client.fail(ctx, inv, val.Error())
		return
	}

	contextID := atp.NormalizeContextID(req.ContextID)
	taskID, refs := atp.ResolveTaskIdentity(req.ReplyToTaskID, req.CurrentTaskID, req.CurrentTaskState)

	client.emit(ctx, inv, StatusUpdate{Status: StatusStarted, Message: "sending message"})

	params := atp.MessageSendParams{
		Message: atp.Message{
			Role:             atp.RoleUser,
			Parts:            []atp.Part{atp.NewTextPart(req.Text)},
			MessageID:        atp.NewID(),
			ContextID:        contextID,
			TaskID:           taskID,
			ReferenceTaskIDs: refs,
		},
		Configuration: &atp.MessageSendConfiguration{
			AcceptedOutputModes: client.opts.AcceptedOutputModes,
		},
	}

	task, err := client.sendWithPayment(ctx, inv, params)

	if err != nil {
		client.fail(ctx, inv, err)
		return
	}

	// Agents may mint their own identifiers; theirs win when present.
	if task.ID != "" {
		taskID = task.ID
	}

	if task.ContextID != "" {
		contextID = task.ContextID
	}

	if client.store != nil {
		client.store.AppendTask(contextID, taskID)
	}

	client.emit(ctx, inv, TaskUpdate{
		TaskID:           taskID,
		ContextID:        contextID,
		Status:           task.Status,
		ReferenceTaskIDs: refs,
	})

	client.poll(ctx, inv, taskID, contextID, refs)
}

/*
poll watches the task until it rests, the context dies or the attempt
budget runs out. The first fetch happens immediately, later ones wait
out the poll interval.
*/
func (client *AgentClient) poll(
	ctx context.Context,
	inv *Invocation,
	taskID string,
	contextID string,
	refs []string,
) {
	for attempt := 0; attempt < client.opts.MaxPollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				client.fail(ctx, inv, &AbortError{Err: ctx.Err()})
				return
			case <-time.After(client.opts.PollInterval):
			}
		} else if err := ctx.Err(); err != nil {
			client.fail(ctx, inv, &AbortError{Err: err})
			return
		}

		task, err := client.GetTask(ctx, taskID)

		if err != nil {
			var abort *AbortError

			if errors.As(err, &abort) {
				client.fail(ctx, inv, abort)
				return
			}

			// Transient fetch failures do not end the task.
			log.Debug("task poll failed", "taskID", taskID, "error", err)
			client.metrics.RecordPoll(true)
			client.keepAlive(ctx, inv, attempt)

			continue
		}

		client.metrics.RecordPoll(false)

		client.emit(ctx, inv, TaskUpdate{
			TaskID:           taskID,
			ContextID:        contextID,
			Status:           task.Status,
			ReferenceTaskIDs: refs,
		})

		if client.settle(ctx, inv, taskID, task) {
			return
		}

		client.keepAlive(ctx, inv, attempt)
	}

	client.fail(ctx, inv, &TimeoutError{TaskID: taskID, Attempts: client.opts.MaxPollAttempts})
}

// settle finishes the invocation when the snapshot shows a resting
// state, and reports whether it did.
func (client *AgentClient) settle(ctx context.Context, inv *Invocation, taskID string, task *atp.Task) bool {
	state := task.Status.State

	switch {
	case state == atp.TaskStateCompleted:
		client.emit(ctx, inv, FinalAnswerUpdate{Text: atp.ExtractText(task)})
		client.emit(ctx, inv, StatusUpdate{Status: StatusFinished, Message: "task completed"})
		client.tokens.Clear()

		return true
	case state == atp.TaskStateInputReq:
		// The payment token survives an input pause.
		client.emit(ctx, inv, FinalAnswerUpdate{Text: atp.ExtractText(task)})
		client.emit(ctx, inv, StatusUpdate{Status: StatusFinished, Message: "task awaits input"})

		return true
	case state == atp.TaskStateFailed:
		client.tokens.Clear()
		client.fail(ctx, inv, &TaskFailedError{TaskID: taskID, Detail: task.ErrorDetail()})

		return true
	case state == atp.TaskStateCanceled:
		client.tokens.Clear()
		client.fail(ctx, inv, &TaskCanceledError{TaskID: taskID})

		return true
	default:
		return false
	}
}

/*
sendWithPayment performs the message/send call, and when the agent
answers with a payment wall, runs the challenge once and retries. The
token store backs the X-PAYMENT header, so a completed challenge makes
the retry go out paid without touching the request.
*/
func (client *AgentClient) sendWithPayment(
	ctx context.Context,
	inv *Invocation,
	params atp.MessageSendParams,
) (*atp.Task, error) {
	task, err := client.send(ctx, params)

	if err == nil {
		return task, nil
	}

	var payErr *PaymentRequiredError

	if !errors.As(err, &payErr) {
		return nil, err
	}

	if client.payments == nil {
		client.metrics.RecordPaymentChallenge(false)
		return nil, err
	}

	notify := func(message string) {
		client.emit(ctx, inv, StatusUpdate{Status: StatusKeepAlive, Message: message})
	}

	if ok := client.payments.Handle(ctx, notify); !ok {
		client.metrics.RecordPaymentChallenge(false)
		return nil, &PaymentRequiredError{Reason: "payment challenge was not completed"}
	}

	client.metrics.RecordPaymentChallenge(true)

	return client.send(ctx, params)
}

func (client *AgentClient) send(ctx context.Context, params atp.MessageSendParams) (*atp.Task, error) {
	task := new(atp.Task)

	if err := client.rpc.Call(ctx, methodMessageSend, params, task); err != nil {
		return nil, client.mapRPCError(methodMessageSend, err)
	}

	return task, nil
}

// emit delivers an update, trying the channel before honoring
// cancellation so the terminal error status still reaches a consumer
// that is draining a canceled invocation.
func (client *AgentClient) emit(ctx context.Context, inv *Invocation, update Update) {
	select {
	case inv.updates <- update:
		return
	default:
	}

	select {
	case inv.updates <- update:
	case <-ctx.Done():
	}
}

// fail records the invocation error and surfaces it on the stream.
func (client *AgentClient) fail(ctx context.Context, inv *Invocation, err error) {
	inv.err = err
	client.emit(ctx, inv, StatusUpdate{Status: StatusError, Message: err.Error()})
}

func (client *AgentClient) keepAlive(ctx context.Context, inv *Invocation, attempt int) {
	if client.opts.KeepAliveEvery <= 0 {
		return
	}

	if (attempt+1)%client.opts.KeepAliveEvery != 0 {
		return
	}

	client.emit(ctx, inv, StatusUpdate{Status: StatusKeepAlive, Message: "task still running"})
}
