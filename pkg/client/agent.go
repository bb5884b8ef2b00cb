package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cohesivestack/valgo"
	"github.com/theapemachine/atp-go/pkg/atp"
	"github.com/theapemachine/atp-go/pkg/auth"
	rpcerrors "github.com/theapemachine/atp-go/pkg/errors"
	"github.com/theapemachine/atp-go/pkg/jsonrpc"
	"github.com/theapemachine/atp-go/pkg/metrics"
	"github.com/theapemachine/atp-go/pkg/payment"
	"github.com/theapemachine/atp-go/pkg/stores"
)

// RPC methods the remote agent exposes.
const (
	methodMessageSend   = "message/send"
	methodTasksGet      = "tasks/get"
	methodTasksFeedback = "tasks/feedback"
)

// Options tune the send/poll engine. The defaults match what remote
// agents expect from a well-behaved client: a five minute task budget at
// one-second spacing, with a keep-alive sign of life every thirty polls.
type Options struct {
	PollInterval        time.Duration
	MaxPollAttempts     int
	KeepAliveEvery      int
	AcceptedOutputModes []string
	UpdateBuffer        int
}

func DefaultOptions() Options {
	return Options{
		PollInterval:        time.Second,
		MaxPollAttempts:     300,
		KeepAliveEvery:      30,
		AcceptedOutputModes: []string{"text"},
		UpdateBuffer:        8,
	}
}

/*
AgentClient drives tasks on one remote agent over JSON-RPC. It owns the
polling loop, the payment challenge dance and the per-conversation task
bookkeeping, and hands results back as typed update streams.
*/
type AgentClient struct {
	rpcURL     string
	rpc        *jsonrpc.RPCClient
	httpClient *http.Client
	payments   *payment.Handler
	tokens     *payment.TokenStore
	store      stores.ContextStore
	metrics    *metrics.PollingMetrics
	opts       Options
}

type Option func(*AgentClient)

// New creates an agent client against the given JSON-RPC endpoint.
func New(rpcURL string, opts ...Option) *AgentClient {
	client := &AgentClient{
		rpcURL:     rpcURL,
		rpc:        jsonrpc.NewRPCClient(rpcURL),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		tokens:     payment.NewTokenStore(),
		metrics:    metrics.NewPollingMetrics(),
		opts:       DefaultOptions(),
	}

	for _, opt := range opts {
		opt(client)
	}

	// The token store contributes payment headers from the moment it
	// holds a token, which is exactly what the post-challenge retry
	// relies on.
	client.rpc.AddHeaderSource(client.tokens)

	return client
}

// WithCredentials authorizes every call through the given credentials.
func WithCredentials(creds *auth.Credentials) Option {
	return func(client *AgentClient) {
		client.rpc.Authorizer = creds
	}
}

// WithPaymentHandler resolves 402 challenges through the given handler.
// Without one, a payment wall fails the invocation immediately.
func WithPaymentHandler(handler *payment.Handler) Option {
	return func(client *AgentClient) {
		client.payments = handler
	}
}

// WithTokenStore shares a token store between this client and a payment
// handler.
func WithTokenStore(tokens *payment.TokenStore) Option {
	return func(client *AgentClient) {
		client.tokens = tokens
	}
}

// WithContextStore records task-to-context membership in the given store
// and enables conversation reloads.
func WithContextStore(store stores.ContextStore) Option {
	return func(client *AgentClient) {
		client.store = store
	}
}

// WithMetrics shares a metrics sink across clients.
func WithMetrics(m *metrics.PollingMetrics) Option {
	return func(client *AgentClient) {
		if m != nil {
			client.metrics = m
		}
	}
}

// WithOptions replaces the engine tuning wholesale.
func WithOptions(opts Options) Option {
	return func(client *AgentClient) {
		if opts.PollInterval <= 0 {
			opts.PollInterval = time.Second
		}
		if opts.MaxPollAttempts <= 0 {
			opts.MaxPollAttempts = 300
		}
		if opts.UpdateBuffer < 1 {
			opts.UpdateBuffer = 8
		}
		client.opts = opts
	}
}

// Metrics exposes the engine's counters.
func (client *AgentClient) Metrics() *metrics.PollingMetrics {
	return client.metrics
}

// Contexts exposes the context store, nil when none was wired in.
func (client *AgentClient) Contexts() stores.ContextStore {
	return client.store
}

/*
GetTask fetches the current snapshot of a task.
*/
func (client *AgentClient) GetTask(ctx context.Context, taskID string) (*atp.Task, error) {
	task := new(atp.Task)

	if err := client.rpc.Call(ctx, methodTasksGet, atp.TaskQueryParams{TaskID: taskID}, task); err != nil {
		return nil, client.mapRPCError(methodTasksGet, err)
	}

	return task, nil
}

/*
SubmitFeedback records a rating and free-form comment against a settled
task.
*/
func (client *AgentClient) SubmitFeedback(
	ctx context.Context,
	taskID string,
	feedback string,
	rating int,
) (*atp.TaskFeedbackResult, error) {
	val := valgo.Is(
		valgo.String(taskID, "taskId").Not().Blank(),
		valgo.Number(rating, "rating").Between(1, 5),
		valgo.String(feedback, "feedback").MaxLength(2000),
	)

	if !val.Valid() {
		return nil, val.Error()
	}

	result := new(atp.TaskFeedbackResult)

	params := atp.TaskFeedbackParams{
		TaskID:   taskID,
		Feedback: feedback,
		Rating:   rating,
	}

	if err := client.rpc.Call(ctx, methodTasksFeedback, params, result); err != nil {
		return nil, client.mapRPCError(methodTasksFeedback, err)
	}

	log.Debug("feedback recorded", "taskID", result.TaskID)

	return result, nil
}

// mapRPCError translates the transport layer's errors into this package's
// taxonomy. Cancellation is checked first because it hides inside
// transport errors.
func (client *AgentClient) mapRPCError(method string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &AbortError{Err: err}
	}

	var rpcErr *rpcerrors.RpcError

	if errors.As(err, &rpcErr) {
		return &ProtocolError{Method: method, Code: rpcErr.Code, Message: rpcErr.Message}
	}

	var decodeErr *jsonrpc.DecodeError

	if errors.As(err, &decodeErr) {
		return &ParseError{Err: decodeErr.Err}
	}

	var httpErr *jsonrpc.HTTPError

	if errors.As(err, &httpErr) {
		if jsonrpc.IsPaymentRequired(err) {
			return &PaymentRequiredError{Reason: "agent demanded payment"}
		}

		return &ProtocolError{Method: method, Message: httpErr.Error()}
	}

	var transportErr *jsonrpc.TransportError

	if errors.As(err, &transportErr) {
		return &NetworkError{Op: method, Err: transportErr.Err}
	}

	return &NetworkError{Op: method, Err: err}
}
