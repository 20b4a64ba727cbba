package provider

import (
	"context"
	"sync"

	perrors "persuader/pkg/errors"
)

// MemoryAdapter is a scripted in-process Adapter for unit tests: callers
// queue a fixed sequence of responses (or errors) and SendPrompt replays
// them in order, recording every prompt it was given for later assertions.
// Grounded on the teacher's test/integration package convention of faking
// provider behavior rather than hitting a live API in tests.
type MemoryAdapter struct {
	mu        sync.Mutex
	name      string
	scripted  []ScriptedTurn
	calls     int
	Prompts   []string
	Sessions  map[string]bool
}

// ScriptedTurn is one queued SendPrompt outcome.
type ScriptedTurn struct {
	Response Response
	Err      error
}

func NewMemoryAdapter(name string, turns ...ScriptedTurn) *MemoryAdapter {
	return &MemoryAdapter{name: name, scripted: turns, Sessions: make(map[string]bool)}
}

func (a *MemoryAdapter) Name() string              { return a.name }
func (a *MemoryAdapter) Version() string           { return "test" }
func (a *MemoryAdapter) SupportsSession() bool      { return true }
func (a *MemoryAdapter) SupportedModels() []string { return []string{"scripted"} }

func (a *MemoryAdapter) Health(ctx context.Context) (HealthStatus, error) {
	return HealthStatus{Healthy: true}, nil
}

func (a *MemoryAdapter) CreateSession(ctx context.Context, systemContext string, opts Options) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := "mem-session"
	a.Sessions[id] = true
	return id, nil
}

func (a *MemoryAdapter) DestroySession(ctx context.Context, providerSessionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.Sessions, providerSessionID)
	return nil
}

func (a *MemoryAdapter) SendPrompt(ctx context.Context, providerSessionID, prompt string, opts Options) (Response, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Prompts = append(a.Prompts, prompt)

	if a.calls >= len(a.scripted) {
		return Response{}, perrors.NewProviderError(perrors.ComponentProvider, a.name, perrors.ErrorKindUnknown, 0, "no more scripted turns", false)
	}
	turn := a.scripted[a.calls]
	a.calls++
	if turn.Err != nil {
		return Response{}, turn.Err
	}
	return turn.Response, nil
}

// CallCount reports how many SendPrompt calls were made so far.
func (a *MemoryAdapter) CallCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}
