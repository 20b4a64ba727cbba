// Package session owns logical conversation sessions: lifecycle, mapping to
// provider-native sessions, success-feedback history, and derived metrics.
// Grounded on the teacher's internal/context/manager.go, generalized from
// ConversationContext/pronoun-resolution (audit-domain specific) onto the
// generic Session record.
package session

import (
	"sync"
	"time"
)

// SuccessFeedbackEntry records one first-attempt success reinforced back
// into the provider session, bounded and kept in append order.
type SuccessFeedbackEntry struct {
	Message     string
	Value       []byte // JSON-encoded validated output
	Attempt     int
	Timestamp   time.Time
	Metadata    map[string]interface{}
}

// Metrics are derived counters over a session's lifetime, per §3.
type Metrics struct {
	TotalAttempts          int
	SuccessfulValidations  int
	MeanAttemptsToSuccess  float64
	SuccessRate            float64
	LastSuccessTime        time.Time
	TotalExecutionTime     time.Duration
	MeanExecutionTime      time.Duration
	TotalTokens            int
	ReinforcementTokens    int
	OperationsWithRetries  int
	MaxAttemptsForOneOp    int
}

// Metadata is the bookkeeping carried alongside a Session's durable state.
type Metadata struct {
	Provider     string
	Model        string
	PromptCount  int
	TotalTokens  int
	LastActivity time.Time
	Active       bool
	Tags         []string
	CreatedAt    time.Time
}

// Session is the invariant-owning record for one logical conversation,
// per §3. Its lock serializes mutating operations on this one session —
// the refinement over the teacher's single coarse sync.RWMutex that §5
// requires for per-session ordering.
type Session struct {
	mu sync.Mutex

	ID                string
	Context           string
	ProviderSessionID string // provider_data.provider_session_id; write-once per I2
	Metadata          Metadata
	SuccessFeedback   []SuccessFeedbackEntry
	SuccessFeedbackCap int
	Metrics           Metrics
}

// WithLock runs fn while holding the session's per-record lock, the single
// serialization point every mutating Manager operation funnels through.
func (s *Session) WithLock(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// IsExpired reports whether the session has been inactive longer than ttl.
func (s *Session) IsExpired(ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.Metadata.LastActivity) > ttl
}

// appendSuccessFeedback appends, trimming to SuccessFeedbackCap from the
// front so the sequence stays bounded without reordering existing entries
// (I4: monotonic timestamp order, never reordered).
func (s *Session) appendSuccessFeedback(entry SuccessFeedbackEntry) {
	s.SuccessFeedback = append(s.SuccessFeedback, entry)
	limit := s.SuccessFeedbackCap
	if limit <= 0 {
		limit = 20
	}
	if len(s.SuccessFeedback) > limit {
		s.SuccessFeedback = s.SuccessFeedback[len(s.SuccessFeedback)-limit:]
	}
}

// recordAttempts folds one terminal call transition into the session's
// derived metrics, per §4.G "Session metric updates".
func (s *Session) recordAttempts(attempts int, succeeded bool, execTime time.Duration, tokens int) {
	m := &s.Metrics
	m.TotalAttempts += attempts
	m.TotalExecutionTime += execTime
	m.TotalTokens += tokens
	if attempts > m.MaxAttemptsForOneOp {
		m.MaxAttemptsForOneOp = attempts
	}

	totalOps := m.SuccessfulValidations
	if succeeded {
		m.SuccessfulValidations++
		m.LastSuccessTime = time.Now()
		if attempts > 1 {
			m.OperationsWithRetries++
		}
		totalOps++
		if totalOps > 0 {
			m.MeanAttemptsToSuccess = ((m.MeanAttemptsToSuccess * float64(totalOps-1)) + float64(attempts)) / float64(totalOps)
		}
	}

	opsSeen := m.SuccessfulValidations
	if opsSeen > 0 {
		m.MeanExecutionTime = time.Duration(int64(m.TotalExecutionTime) / int64(opsSeen))
	}
	if m.TotalAttempts > 0 {
		m.SuccessRate = float64(m.SuccessfulValidations) / float64(m.TotalAttempts)
	}
}
