package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"FlowAdvisor/internal/config"
	"FlowAdvisor/internal/domain"
	"FlowAdvisor/internal/ports"
)

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

// ChatGPTClient implements ports.Completer backed by OpenAI-compatible APIs.
type ChatGPTClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

var _ ports.Completer = (*ChatGPTClient)(nil)

// NewChatGPTClient builds a client from configuration. Deadlines come from
// the caller's context; the http.Client timeout is a backstop.
func NewChatGPTClient(cfg config.ChatGPTConfig) *ChatGPTClient {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &ChatGPTClient{
		endpoint: endpoint,
		apiKey:   strings.TrimSpace(cfg.APIKey),
		httpClient: &http.Client{
			Timeout: 2 * timeout,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	Seed        *int          `json:"seed,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Complete posts a chat-completions request and returns the first choice.
func (c *ChatGPTClient) Complete(ctx context.Context, in domain.CompletionRequest) (domain.Completion, error) {
	if c == nil || c.apiKey == "" {
		return domain.Completion{}, domain.ErrMissingCredential
	}

	payload := chatRequest{
		Model:       in.Model,
		Messages:    make([]chatMessage, 0, len(in.Messages)),
		Temperature: in.Temperature,
		MaxTokens:   in.MaxTokens,
		Seed:        in.Seed,
	}
	for _, m := range in.Messages {
		payload.Messages = append(payload.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("marshal chatgpt payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Completion{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Completion{}, &domain.TransportError{Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.Completion{}, &domain.UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		if isTimeout(err) {
			return domain.Completion{}, &domain.TransportError{Timeout: true, Err: err}
		}
		return domain.Completion{}, fmt.Errorf("decode chatgpt response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return domain.Completion{}, domain.ErrEmptyCompletion
	}

	first := decoded.Choices[0]
	text := strings.TrimSpace(first.Message.Content)
	if text == "" {
		return domain.Completion{}, domain.ErrEmptyCompletion
	}
	return domain.Completion{Text: text, FinishReason: first.FinishReason}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
