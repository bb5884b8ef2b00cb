package metrics

import (
	"sync"
	"time"
)

// PollingMetrics tracks what the send/poll engine has been up to. One
// instance is shared across all invocations of a client.
type PollingMetrics struct {
	mu sync.RWMutex

	// Send metrics
	TotalSends   int64
	FailedSends  int64
	SendDuration time.Duration

	// Poll metrics
	TotalPolls     int64
	TransientPolls int64

	// Payment metrics
	PaymentChallenges int64
	PaymentResolved   int64
}

// NewPollingMetrics creates a new PollingMetrics instance
func NewPollingMetrics() *PollingMetrics {
	return &PollingMetrics{}
}

// RecordSend records one full invocation, from message out to outcome.
func (m *PollingMetrics) RecordSend(success bool, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalSends++
	if !success {
		m.FailedSends++
	}
	m.SendDuration += duration
}

// RecordPoll records a single task fetch, transient meaning the fetch
// failed but the loop carried on.
func (m *PollingMetrics) RecordPoll(transient bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalPolls++
	if transient {
		m.TransientPolls++
	}
}

// RecordPaymentChallenge records a 402 challenge and whether it resolved.
func (m *PollingMetrics) RecordPaymentChallenge(resolved bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PaymentChallenges++
	if resolved {
		m.PaymentResolved++
	}
}

// GetMetrics returns a snapshot of the current metrics
func (m *PollingMetrics) GetMetrics() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	avgSend := 0.0
	if m.TotalSends > 0 {
		avgSend = m.SendDuration.Seconds() / float64(m.TotalSends)
	}

	return map[string]any{
		"total_sends":        m.TotalSends,
		"failed_sends":       m.FailedSends,
		"avg_send_duration":  avgSend,
		"total_polls":        m.TotalPolls,
		"transient_polls":    m.TransientPolls,
		"payment_challenges": m.PaymentChallenges,
		"payment_resolved":   m.PaymentResolved,
	}
}

// Reset clears all counters.
func (m *PollingMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalSends = 0
	m.FailedSends = 0
	m.SendDuration = 0
	m.TotalPolls = 0
	m.TransientPolls = 0
	m.PaymentChallenges = 0
	m.PaymentResolved = 0
}
