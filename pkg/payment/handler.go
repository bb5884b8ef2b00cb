package payment

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	fiberClient "github.com/gofiber/fiber/v3/client"
)

// Session statuses the payment service reports while the user works
// through the checkout page.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

const (
	startSessionPath  = "/api/start-payment-session"
	sessionStatusPath = "/api/payment-status/%s"
)

// Session identifies one checkout attempt on the payment service.
type Session struct {
	SessionID  string `json:"session_id"`
	BrowserURL string `json:"browser_url"`
}

type sessionStatus struct {
	Status       string `json:"status"`
	PaymentToken string `json:"payment_token,omitempty"`
	Error        string `json:"error,omitempty"`
}

/*
Handler resolves 402 payment challenges. It opens a checkout session on
the payment service, puts the checkout page in front of the user, and
polls the session until the user paid, gave up, or ran out the clock.
A successfully acquired token lands in the shared TokenStore, where the
RPC layer picks it up on the retried call.
*/
type Handler struct {
	baseURL     string
	conn        *fiberClient.Client
	tokens      *TokenStore
	opener      Opener
	interval    time.Duration
	maxAttempts int
}

type HandlerOption func(*Handler)

/*
NewHandler creates a payment challenge handler against the given payment
service base URL. The default cadence polls every five seconds for up to
five minutes.
*/
func NewHandler(baseURL string, tokens *TokenStore, opts ...HandlerOption) *Handler {
	handler := &Handler{
		baseURL:     baseURL,
		conn:        fiberClient.New().SetBaseURL(baseURL).SetTimeout(10 * time.Second),
		tokens:      tokens,
		opener:      SystemOpener{},
		interval:    5 * time.Second,
		maxAttempts: 60,
	}

	for _, opt := range opts {
		opt(handler)
	}

	return handler
}

// WithOpener swaps how the checkout page reaches the user.
func WithOpener(opener Opener) HandlerOption {
	return func(handler *Handler) {
		handler.opener = opener
	}
}

// WithInterval overrides the status polling interval.
func WithInterval(interval time.Duration) HandlerOption {
	return func(handler *Handler) {
		if interval > 0 {
			handler.interval = interval
		}
	}
}

// WithMaxAttempts overrides how many status polls happen before giving up.
func WithMaxAttempts(maxAttempts int) HandlerOption {
	return func(handler *Handler) {
		if maxAttempts > 0 {
			handler.maxAttempts = maxAttempts
		}
	}
}

/*
Handle runs one payment challenge to its outcome and reports whether the
original call is worth retrying. Progress lands on notify as short human
readable strings; pass nil when nobody is watching.

The outcome is deliberately a bare bool: the caller retries on true and
fails on false, and everything the user needs to know went to notify and
the log along the way.
*/
func (handler *Handler) Handle(ctx context.Context, notify func(string)) bool {
	session, err := handler.startSession()

	if err != nil {
		log.Error("payment session could not be started", "error", err)
		handler.emit(notify, "payment session could not be started")
		return false
	}

	handler.emit(notify, "payment session started")

	page, err := handler.opener.Open(session.BrowserURL)

	if err != nil {
		log.Warn("payment page blocked", "url", session.BrowserURL, "error", err)
		handler.emit(notify, "payment page could not be opened")
		return false
	}

	defer page.Close()

	handler.emit(notify, "payment page opened, waiting for checkout")

	for attempt := 0; attempt < handler.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			handler.emit(notify, "payment canceled")
			return false
		case <-time.After(handler.interval):
		}

		status, err := handler.sessionStatus(session.SessionID)

		if err != nil {
			// Transient service hiccups should not kill a checkout the
			// user may be halfway through.
			log.Debug("payment status check failed", "attempt", attempt+1, "error", err)
			continue
		}

		switch status.Status {
		case StatusCompleted:
			if status.PaymentToken != "" {
				if err := handler.tokens.Set(status.PaymentToken); err != nil {
					log.Error("discarding corrupt payment token", "error", err)
					handler.emit(notify, "payment completed but the token was corrupt")
					return true
				}
			}

			handler.emit(notify, "payment completed")
			return true
		case StatusFailed:
			log.Warn("payment failed", "detail", status.Error)
			handler.emit(notify, "payment failed")
			return false
		}
	}

	handler.emit(notify, "payment timed out")
	return false
}

func (handler *Handler) startSession() (*Session, error) {
	resp, err := handler.conn.Post(startSessionPath, fiberClient.Config{
		Header: map[string]string{
			"Content-Type": "application/json",
		},
	})

	if err != nil {
		return nil, &ServiceError{Message: "start session failed", Err: err}
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusBadRequest {
		return nil, &ServiceError{
			Message: fmt.Sprintf("payment service returned non-OK status: %d", resp.StatusCode()),
		}
	}

	var session Session

	if err = resp.JSON(&session); err != nil {
		return nil, &ServiceError{Message: "failed to decode session", Err: err}
	}

	if session.SessionID == "" || session.BrowserURL == "" {
		return nil, &ServiceError{Message: "payment service returned an incomplete session"}
	}

	return &session, nil
}

func (handler *Handler) sessionStatus(sessionID string) (*sessionStatus, error) {
	resp, err := handler.conn.Get(fmt.Sprintf(sessionStatusPath, sessionID))

	if err != nil {
		return nil, &ServiceError{Message: "status check failed", Err: err}
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusBadRequest {
		return nil, &ServiceError{
			Message: fmt.Sprintf("payment service returned non-OK status: %d", resp.StatusCode()),
		}
	}

	var status sessionStatus

	if err = resp.JSON(&status); err != nil {
		return nil, &ServiceError{Message: "failed to decode status", Err: err}
	}

	return &status, nil
}

func (handler *Handler) emit(notify func(string), message string) {
	if notify != nil {
		notify(message)
	}
}

// ServiceError represents a failure while talking to the payment service
type ServiceError struct {
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment service: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("payment service: %s", e.Message)
}
