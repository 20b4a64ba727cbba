package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	perrors "persuader/pkg/errors"
	"persuader/internal/provider"
)

// SendPrompter is the subset of provider.Adapter the Manager needs to open
// and close provider-native sessions; kept narrow so the Manager doesn't
// depend on the rest of the Adapter contract.
type SendPrompter interface {
	SupportsSession() bool
	CreateSession(ctx context.Context, systemContext string, opts provider.Options) (string, error)
	DestroySession(ctx context.Context, providerSessionID string) error
}

// Filter selects a subset of sessions for List.
type Filter struct {
	Provider string
	Model    string
	Active   *bool
	Tag      string
	Since    time.Time
	Limit    int
}

// Manager owns the index of logical sessions, adapted from the teacher's
// ContextManager (internal/context/manager.go): an RWMutex-guarded index
// map, an LRU eviction layer, and optional disk persistence, retargeted
// from ConversationContext to Session and from a single coarse lock to a
// per-session one.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	lru   *lru
	store *Store // nil when persistence is disabled

	defaultTTL time.Duration
}

// NewManager builds a Manager. lruCap <= 0 disables LRU eviction (all
// sessions stay resident). store may be nil to disable persistence.
func NewManager(lruCap int, store *Store, defaultTTL time.Duration) *Manager {
	if defaultTTL <= 0 {
		defaultTTL = 30 * 24 * time.Hour
	}
	m := &Manager{
		sessions:   make(map[string]*Session),
		store:      store,
		defaultTTL: defaultTTL,
	}
	if lruCap > 0 {
		m.lru = newLRU(lruCap, m.evict)
	}
	if store != nil {
		if loaded, err := store.loadAll(); err == nil {
			for id, s := range loaded {
				m.sessions[id] = s
				if m.lru != nil {
					m.lru.touch(id)
				}
			}
		}
	}
	return m
}

// Create starts a new logical session with the given durable context.
func (m *Manager) Create(ctx context.Context, durableContext string, metadata Metadata) (*Session, error) {
	s := &Session{
		ID:                 uuid.NewString(),
		Context:            durableContext,
		Metadata:           metadata,
		SuccessFeedbackCap: 20,
	}
	s.Metadata.CreatedAt = time.Now()
	s.Metadata.LastActivity = time.Now()
	s.Metadata.Active = true

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	if m.lru != nil {
		m.lru.touch(s.ID)
	}
	m.persist(s)
	return s, nil
}

// Get looks up a session by logical id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok && m.lru != nil {
		m.lru.touch(id)
	}
	return s, ok
}

// Update applies a merge-semantics partial update under the session's own
// lock, then persists.
func (m *Manager) Update(id string, apply func(*Session)) (*Session, error) {
	s, ok := m.Get(id)
	if !ok {
		return nil, perrors.NewSessionError(perrors.ComponentSession, id, "update", "session not found")
	}
	s.WithLock(func() {
		apply(s)
		s.Metadata.LastActivity = time.Now()
	})
	m.persist(s)
	return s, nil
}

// Delete removes a session from the index (and disk, if persisted). It does
// not touch the provider-side session; Cleanup destroys that first through
// the adapter's DestroySession.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	_, existed := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !existed {
		return perrors.NewSessionError(perrors.ComponentSession, id, "delete", "session not found")
	}
	if m.lru != nil {
		m.lru.remove(id)
	}
	if m.store != nil {
		_ = m.store.delete(id)
	}
	return nil
}

// List returns sessions matching filter, most-recently-active first.
func (m *Manager) List(filter Filter) []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if filter.Provider != "" && s.Metadata.Provider != filter.Provider {
			continue
		}
		if filter.Model != "" && s.Metadata.Model != filter.Model {
			continue
		}
		if filter.Active != nil && s.Metadata.Active != *filter.Active {
			continue
		}
		if filter.Tag != "" && !hasTag(s.Metadata.Tags, filter.Tag) {
			continue
		}
		if !filter.Since.IsZero() && s.Metadata.CreatedAt.Before(filter.Since) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Metadata.LastActivity.After(out[j].Metadata.LastActivity)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Cleanup deletes sessions inactive longer than maxAge, best-effort
// destroying their provider-side session first, returning the delete count.
func (m *Manager) Cleanup(ctx context.Context, maxAge time.Duration, adapters map[string]SendPrompter) (int, error) {
	m.mu.RLock()
	expired := make([]*Session, 0)
	for _, s := range m.sessions {
		if s.IsExpired(maxAge) {
			expired = append(expired, s)
		}
	}
	m.mu.RUnlock()

	count := 0
	for _, s := range expired {
		if adapter, ok := adapters[s.Metadata.Provider]; ok && s.ProviderSessionID != "" {
			_ = adapter.DestroySession(ctx, s.ProviderSessionID)
		}
		if err := m.Delete(s.ID); err == nil {
			count++
		}
	}
	return count, nil
}

// AddSuccessFeedback appends one success-reinforcement entry.
func (m *Manager) AddSuccessFeedback(id string, entry SuccessFeedbackEntry) error {
	s, ok := m.Get(id)
	if !ok {
		return perrors.NewSessionError(perrors.ComponentSession, id, "add_success_feedback", "session not found")
	}
	entry.Timestamp = time.Now()
	s.WithLock(func() {
		s.appendSuccessFeedback(entry)
	})
	m.persist(s)
	return nil
}

// GetSuccessFeedback returns up to limit entries, most-recent-first.
func (m *Manager) GetSuccessFeedback(id string, limit int) []SuccessFeedbackEntry {
	s, ok := m.Get(id)
	if !ok {
		return nil
	}
	var out []SuccessFeedbackEntry
	s.WithLock(func() {
		out = make([]SuccessFeedbackEntry, len(s.SuccessFeedback))
		copy(out, s.SuccessFeedback)
	})
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Metrics returns the derived metrics for a session.
func (m *Manager) Metrics(id string) (*Metrics, error) {
	s, ok := m.Get(id)
	if !ok {
		return nil, perrors.NewSessionError(perrors.ComponentSession, id, "metrics", "session not found")
	}
	var out Metrics
	s.WithLock(func() { out = s.Metrics })
	return &out, nil
}

// RecordCallOutcome folds one terminal orchestrator call into the
// session's metrics, per §4.G "Session metric updates".
func (m *Manager) RecordCallOutcome(id string, attempts int, succeeded bool, execTime time.Duration, tokens int) {
	s, ok := m.Get(id)
	if !ok {
		return
	}
	s.WithLock(func() {
		s.recordAttempts(attempts, succeeded, execTime, tokens)
		s.Metadata.LastActivity = time.Now()
		s.Metadata.TotalTokens += tokens
	})
	m.persist(s)
}

// EnsureSession implements the §4.F ensure-session protocol: reuse a
// supplied or most-recently-active session for the provider, else create
// one if the provider supports sessions, else fall back to a synthetic,
// unpersisted id for stateless reporting (I5: never hand a stateless
// provider a non-null session id).
func (m *Manager) EnsureSession(ctx context.Context, adapter SendPrompter, providerName, durableContext, requestedID string, reuse bool) (*Session, error) {
	if requestedID != "" {
		if s, ok := m.Get(requestedID); ok && s.Metadata.Provider == providerName {
			s.WithLock(func() { s.Metadata.LastActivity = time.Now() })
			return s, nil
		}
	}

	if reuse {
		candidates := m.List(Filter{Provider: providerName, Limit: 1})
		if len(candidates) > 0 {
			return candidates[0], nil
		}
	}

	if !adapter.SupportsSession() {
		return &Session{
			ID:       fmt.Sprintf("stateless-%d-%s", time.Now().UnixNano(), uuid.NewString()[:8]),
			Metadata: Metadata{Provider: providerName, Active: true, CreatedAt: time.Now(), LastActivity: time.Now()},
		}, nil
	}

	providerSessionID, err := adapter.CreateSession(ctx, durableContext, nil)
	if err != nil {
		return nil, err
	}
	s, err := m.Create(ctx, durableContext, Metadata{Provider: providerName, Active: true})
	if err != nil {
		return nil, err
	}
	s.WithLock(func() { s.ProviderSessionID = providerSessionID })
	m.persist(s)
	return s, nil
}

func (m *Manager) evict(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

func (m *Manager) persist(s *Session) {
	if m.store == nil {
		return
	}
	_ = m.store.save(s)
}
