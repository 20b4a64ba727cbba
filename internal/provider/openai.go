package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	perrors "persuader/pkg/errors"
)

// OpenAIAdapter talks to the Chat Completions API directly over net/http,
// grounded on the teacher's internal/engine/providers/openai.go and on the
// other_examples/ OpenAI-compatible provider. Hand-rolled HTTP rather than
// the openai-go SDK: nothing in the retrieved corpus demonstrates a real
// client.Chat.Completions.New(...) call, only bare type references
// (openai.ChatModel), which is not enough to ground a call shape with
// confidence it would compile.
type OpenAIAdapter struct {
	apiKey   string
	endpoint string
	model    string
	client   *http.Client
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiRequest struct {
	Model          string          `json:"model"`
	Messages       []openaiMessage `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature,omitempty"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type openaiResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type openaiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code,omitempty"`
	} `json:"error"`
}

// NewOpenAIAdapter builds an adapter against the Chat Completions endpoint.
// endpoint defaults to OpenAI's own API when empty, letting the same
// adapter front any OpenAI-compatible gateway.
func NewOpenAIAdapter(apiKey, endpoint, model string) *OpenAIAdapter {
	if endpoint == "" {
		endpoint = "https://api.openai.com/v1/chat/completions"
	}
	if model == "" {
		model = "gpt-4o"
	}
	return &OpenAIAdapter{
		apiKey:   apiKey,
		endpoint: endpoint,
		model:    model,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (a *OpenAIAdapter) Name() string              { return "openai" }
func (a *OpenAIAdapter) Version() string           { return "v1" }
func (a *OpenAIAdapter) SupportsSession() bool      { return false }
func (a *OpenAIAdapter) SupportedModels() []string {
	return []string{"gpt-4o", "gpt-4o-mini", "gpt-4-turbo", "gpt-3.5-turbo"}
}

// CreateSession is unsupported: Chat Completions carries no server-side
// conversation state, so the orchestrator must replay full history itself.
func (a *OpenAIAdapter) CreateSession(ctx context.Context, systemContext string, opts Options) (string, error) {
	return "", perrors.NewProviderError(perrors.ComponentProvider, "openai", perrors.ErrorKindBadRequest, 0, "openai adapter does not support provider-side sessions", false)
}

func (a *OpenAIAdapter) DestroySession(ctx context.Context, providerSessionID string) error {
	return nil
}

func (a *OpenAIAdapter) Health(ctx context.Context) (HealthStatus, error) {
	start := time.Now()
	_, err := a.call(ctx, []openaiMessage{{Role: "user", Content: "ping"}}, Options{"max_tokens": 1})
	elapsed := time.Since(start)
	if err != nil {
		return HealthStatus{Healthy: false, CheckedAt: time.Now(), ResponseTimeMs: elapsed.Milliseconds(), Error: err.Error()}, nil
	}
	return HealthStatus{Healthy: true, CheckedAt: time.Now(), ResponseTimeMs: elapsed.Milliseconds()}, nil
}

func (a *OpenAIAdapter) SendPrompt(ctx context.Context, providerSessionID, prompt string, opts Options) (Response, error) {
	messages := []openaiMessage{{Role: "user", Content: prompt}}
	if sys, ok := opts["system"].(string); ok && sys != "" {
		messages = append([]openaiMessage{{Role: "system", Content: sys}}, messages...)
	}

	resp, err := a.call(ctx, messages, opts)
	if err != nil {
		return Response{}, err
	}

	var content, finishReason string
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
		finishReason = resp.Choices[0].FinishReason
	}

	return Response{
		Content: content,
		TokenUsage: TokenUsage{
			Input:  resp.Usage.PromptTokens,
			Output: resp.Usage.CompletionTokens,
			Total:  resp.Usage.TotalTokens,
		},
		Metadata: map[string]interface{}{
			"model":         resp.Model,
			"id":            resp.ID,
			"finish_reason": finishReason,
		},
		StopReason: mapOpenAIFinishReason(finishReason),
	}, nil
}

func (a *OpenAIAdapter) call(ctx context.Context, messages []openaiMessage, opts Options) (*openaiResponse, error) {
	if a.apiKey == "" {
		return nil, perrors.NewProviderError(perrors.ComponentProvider, "openai", perrors.ErrorKindAuth, 0, "openai API key is required", false)
	}

	req := openaiRequest{
		Model:       a.model,
		Messages:    messages,
		MaxTokens:   4096,
		Temperature: 0.1,
	}
	if mt, ok := opts["max_tokens"].(int); ok && mt > 0 {
		req.MaxTokens = mt
	}
	if temp, ok := opts["temperature"].(float64); ok {
		req.Temperature = temp
	}
	if jsonMode, ok := opts["json_mode"].(bool); ok && jsonMode {
		req.ResponseFormat = &struct {
			Type string `json:"type"`
		}{Type: "json_object"}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, perrors.NewProviderError(perrors.ComponentProvider, "openai", perrors.ErrorKindBadRequest, 0, fmt.Sprintf("failed to marshal request: %v", err), false)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, perrors.NewProviderError(perrors.ComponentProvider, "openai", perrors.ErrorKindBadRequest, 0, fmt.Sprintf("failed to build request: %v", err), false)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, perrors.NewCancelledError(perrors.ComponentProvider, ctx.Err().Error())
		}
		return nil, perrors.NewProviderError(perrors.ComponentProvider, "openai", perrors.ErrorKindTransport, 0, err.Error(), true)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, perrors.NewProviderError(perrors.ComponentProvider, "openai", perrors.ErrorKindTransport, resp.StatusCode, fmt.Sprintf("failed to read response: %v", err), true)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr openaiError
		_ = json.Unmarshal(respBody, &apiErr)
		kind, retryable := ClassifyHTTPStatus(resp.StatusCode)
		msg := apiErr.Error.Message
		if msg == "" {
			msg = string(respBody)
		}
		return nil, perrors.NewProviderError(perrors.ComponentProvider, "openai", perrors.ErrorKind(kind), resp.StatusCode, msg, retryable)
	}

	var out openaiResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, perrors.NewProviderError(perrors.ComponentProvider, "openai", perrors.ErrorKindTransport, resp.StatusCode, fmt.Sprintf("failed to parse response: %v", err), false)
	}
	return &out, nil
}

func mapOpenAIFinishReason(r string) StopReason {
	switch r {
	case "stop":
		return StopEndTurn
	case "length":
		return StopMaxTokens
	default:
		return StopOther
	}
}
