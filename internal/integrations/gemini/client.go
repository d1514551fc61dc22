package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"language-learner/internal/domain"
)

// DefaultModel is the model the single-prompt endpoint has always used.
const DefaultModel = "gemini-1.5-flash"

// KeyResolver yields the provider API key. *paramstore.KeyResolver satisfies it.
type KeyResolver interface {
	Resolve(ctx context.Context) (string, error)
}

type modelFactory func(ctx context.Context, apiKey, model string) (llms.Model, error)

// Client generates text from a single prompt through langchaingo. The
// underlying model is built on first use, once the key is available.
type Client struct {
	keys     KeyResolver
	model    string
	newModel modelFactory

	mu  sync.Mutex
	llm llms.Model
}

type Option func(*Client)

func WithModel(model string) Option {
	return func(c *Client) {
		if m := strings.TrimSpace(model); m != "" {
			c.model = m
		}
	}
}

func NewClient(keys KeyResolver, opts ...Option) (*Client, error) {
	if keys == nil {
		return nil, errors.New("gemini: key resolver must not be nil")
	}
	c := &Client{
		keys:     keys,
		model:    DefaultModel,
		newModel: newGoogleAI,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func newGoogleAI(ctx context.Context, apiKey, model string) (llms.Model, error) {
	return googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
}

func (c *Client) resolveModel(ctx context.Context) (llms.Model, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.llm != nil {
		return c.llm, nil
	}
	apiKey, err := c.keys.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("gemini: resolve api key: %w", err)
	}
	llm, err := c.newModel(ctx, apiKey, c.model)
	if err != nil {
		return nil, fmt.Errorf("gemini: initialize model: %w", err)
	}
	c.llm = llm
	return llm, nil
}

// Generate sends the prompt, preceded by the system instruction when one is
// set, and returns the first choice.
func (c *Client) Generate(ctx context.Context, req domain.PromptRequest) (string, error) {
	llm, err := c.resolveModel(ctx)
	if err != nil {
		return "", err
	}

	content := make([]llms.MessageContent, 0, 2)
	if req.System != "" {
		content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}
	content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt))

	resp, err := llm.GenerateContent(ctx, content)
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", errors.New("gemini: no choices in response")
	}
	return resp.Choices[0].Content, nil
}
