// Package generate provides a pluggable boundary around the external
// text-generation call.
package generate

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultTimeout bounds one generation call. The backend defines no timeout
// of its own, so the contract is imposed here at the boundary.
const DefaultTimeout = 60 * time.Second

// Message is one role-tagged input text.
type Message struct {
	Role    string
	Content string
}

// Generator produces a single text completion from role-tagged inputs. The
// session key is an opaque per-conversation identifier the backend may use
// for affinity or accounting.
type Generator interface {
	Generate(ctx context.Context, messages []Message, sessionKey string) (string, error)
}

// OpenAIConfig configures the OpenAI-compatible generator.
type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// OpenAIGenerator implements Generator against any OpenAI-compatible API.
type OpenAIGenerator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAI creates an OpenAI-compatible generator.
func NewOpenAI(cfg OpenAIConfig) *OpenAIGenerator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OpenAIGenerator{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   model,
		timeout: timeout,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, messages []Message, sessionKey string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: g.model,
		User:  sessionKey,
	}
	for _, m := range messages {
		role := m.Role
		switch role {
		case openai.ChatMessageRoleSystem, openai.ChatMessageRoleUser, openai.ChatMessageRoleAssistant:
		default:
			role = openai.ChatMessageRoleUser
		}
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("generation call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generation call: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// NewFromEnv creates a generator from environment variables, or nil when
// unconfigured (summarization and refresh are then disabled).
// PROJECTDESK_GENERATE_API_KEY: API key (required to enable)
// PROJECTDESK_GENERATE_URL: base URL override
// PROJECTDESK_GENERATE_MODEL: model name
// PROJECTDESK_GENERATE_TIMEOUT_S: per-call timeout in seconds
func NewFromEnv() Generator {
	key := os.Getenv("PROJECTDESK_GENERATE_API_KEY")
	if key == "" {
		return nil
	}
	cfg := OpenAIConfig{
		BaseURL: os.Getenv("PROJECTDESK_GENERATE_URL"),
		APIKey:  key,
		Model:   os.Getenv("PROJECTDESK_GENERATE_MODEL"),
	}
	if s := os.Getenv("PROJECTDESK_GENERATE_TIMEOUT_S"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			cfg.Timeout = time.Duration(n) * time.Second
		}
	}
	return NewOpenAI(cfg)
}
