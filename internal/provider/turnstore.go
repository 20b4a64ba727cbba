package provider

import (
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/google/uuid"
)

// turnStore keeps the per-provider-session message history that a stateless
// HTTP API (Anthropic's Messages endpoint has no server-side conversation
// state) needs replayed on every call. One turnStore instance belongs to one
// ClaudeAdapter; it is never persisted, since provider-level sessions are an
// implementation detail behind the durable Session the orchestrator owns.
type turnStore struct {
	mu    sync.Mutex
	convo map[string]*conversation
}

type conversation struct {
	system string
	turns  []anthropic.MessageParam
}

func newTurnStore() *turnStore {
	return &turnStore{convo: make(map[string]*conversation)}
}

func (s *turnStore) create(system string) string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convo[id] = &conversation{system: system}
	return id
}

func (s *turnStore) turns(id string) (string, []anthropic.MessageParam) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convo[id]
	if !ok {
		return "", nil
	}
	out := make([]anthropic.MessageParam, len(c.turns))
	copy(out, c.turns)
	return c.system, out
}

func (s *turnStore) append(id, userText, assistantText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convo[id]
	if !ok {
		return
	}
	c.turns = append(c.turns,
		anthropic.NewUserMessage(anthropic.NewTextBlock(userText)),
		anthropic.NewAssistantMessage(anthropic.NewTextBlock(assistantText)),
	)
}

func (s *turnStore) destroy(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.convo, id)
}
