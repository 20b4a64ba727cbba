package provider

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	perrors "persuader/pkg/errors"
)

// ClaudeAdapter implements Adapter against the Anthropic Messages API via
// the official SDK, grounded on meganerd-siftrank's AnthropicProvider (the
// only full usage example of anthropic-sdk-go retained in the pack) and
// generalized from that package's one-shot Complete() into the
// session-aware Adapter contract. Anthropic's Messages API is itself
// stateless per call, so session support here means the adapter tracks and
// replays prior turns for a provider_session_id rather than relying on any
// server-side conversation state.
type ClaudeAdapter struct {
	client     *anthropic.Client
	model      string
	maxTokens  int64
	sessions   *turnStore
}

// NewClaudeAdapter builds an adapter against the real Anthropic API.
// baseURL overrides the default endpoint when non-empty (for proxies).
func NewClaudeAdapter(apiKey, baseURL, model string) *ClaudeAdapter {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(opts...)
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}
	return &ClaudeAdapter{client: &client, model: model, maxTokens: 4096, sessions: newTurnStore()}
}

func (a *ClaudeAdapter) Name() string    { return "claude" }
func (a *ClaudeAdapter) Version() string { return "2023-06-01" }
func (a *ClaudeAdapter) SupportsSession() bool { return true }
func (a *ClaudeAdapter) SupportedModels() []string {
	return []string{"claude-3-5-sonnet-20241022", "claude-3-opus-20240229", "claude-3-haiku-20240307"}
}

func (a *ClaudeAdapter) Health(ctx context.Context) (HealthStatus, error) {
	start := time.Now()
	_, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 1,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock("ping"))},
	})
	elapsed := time.Since(start)
	if err != nil {
		return HealthStatus{Healthy: false, CheckedAt: time.Now(), ResponseTimeMs: elapsed.Milliseconds(), Error: err.Error()}, nil
	}
	return HealthStatus{Healthy: true, CheckedAt: time.Now(), ResponseTimeMs: elapsed.Milliseconds()}, nil
}

func (a *ClaudeAdapter) CreateSession(ctx context.Context, systemContext string, opts Options) (string, error) {
	id := a.sessions.create(systemContext)
	return id, nil
}

func (a *ClaudeAdapter) DestroySession(ctx context.Context, providerSessionID string) error {
	a.sessions.destroy(providerSessionID)
	return nil
}

func (a *ClaudeAdapter) SendPrompt(ctx context.Context, providerSessionID, prompt string, opts Options) (Response, error) {
	var history []anthropic.MessageParam
	var system string
	if providerSessionID != "" {
		system, history = a.sessions.turns(providerSessionID)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages:  append(history, anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if temp, ok := opts["temperature"].(float64); ok {
		params.Temperature = anthropic.Float(temp)
	}
	if mt, ok := opts["max_tokens"].(int); ok && mt > 0 {
		params.MaxTokens = int64(mt)
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, classifyAnthropicError(err)
	}

	var content strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			content.WriteString(tb.Text)
		}
	}

	if providerSessionID != "" {
		a.sessions.append(providerSessionID, prompt, content.String())
	}

	return Response{
		Content: content.String(),
		TokenUsage: TokenUsage{
			Input:  int(msg.Usage.InputTokens),
			Output: int(msg.Usage.OutputTokens),
			Total:  int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
		Metadata: map[string]interface{}{
			"model":       string(msg.Model),
			"message_id":  msg.ID,
			"stop_reason": string(msg.StopReason),
		},
		StopReason: mapAnthropicStopReason(string(msg.StopReason)),
	}, nil
}

func mapAnthropicStopReason(r string) StopReason {
	switch r {
	case "end_turn", "stop_sequence":
		return StopReason(r)
	case "max_tokens":
		return StopMaxTokens
	default:
		return StopOther
	}
}

func classifyAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		kind, retryable := ClassifyHTTPStatus(apiErr.StatusCode)
		return perrors.NewProviderError(perrors.ComponentProvider, "claude", perrors.ErrorKind(kind), apiErr.StatusCode, apiErr.Message, retryable)
	}
	if IsTransientError(err) {
		return perrors.NewProviderError(perrors.ComponentProvider, "claude", perrors.ErrorKindTransport, 0, err.Error(), true)
	}
	return perrors.NewProviderError(perrors.ComponentProvider, "claude", perrors.ErrorKindUnknown, 0, err.Error(), false)
}
