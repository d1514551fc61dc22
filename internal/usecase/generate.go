package usecase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"language-learner/internal/domain"
)

const (
	defaultChatModel = "gpt-4o-mini"
	anonymousCaller  = "anonymous"

	// NoResponseText is returned when the provider answers without content.
	NoResponseText = "No response from AI."

	EndpointPrompt  = "processStringWithGenKit"
	EndpointHistory = "processStringWithOpenAI"
)

type ChatClient interface {
	Chat(ctx context.Context, model string, messages []domain.ChatMessage) (string, error)
}

type PromptGenerator interface {
	Generate(ctx context.Context, req domain.PromptRequest) (string, error)
}

type UsageRecorder interface {
	RecordCall(ctx context.Context, event domain.UsageEvent) error
}

type PromptInput struct {
	SystemInstruction string
	Prompt            string
	CallerID          string
}

type HistoryInput struct {
	SystemInstruction string
	Messages          []domain.HistoryMessage
	CallerID          string
}

type Output struct {
	Result string
}

// GenerateService turns validated chat payloads into a single generated
// response. It keeps no state between calls.
type GenerateService struct {
	chat      ChatClient
	generator PromptGenerator
	usage     UsageRecorder
	chatModel string
	logger    *zap.Logger
}

type Option func(*GenerateService)

func WithUsageRecorder(r UsageRecorder) Option {
	return func(s *GenerateService) {
		s.usage = r
	}
}

func WithChatModel(model string) Option {
	return func(s *GenerateService) {
		if m := strings.TrimSpace(model); m != "" {
			s.chatModel = m
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *GenerateService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewGenerateService(chat ChatClient, generator PromptGenerator, opts ...Option) (*GenerateService, error) {
	if chat == nil {
		return nil, errors.New("usecase: chat client must not be nil")
	}
	if generator == nil {
		return nil, errors.New("usecase: prompt generator must not be nil")
	}
	s := &GenerateService{
		chat:      chat,
		generator: generator,
		chatModel: defaultChatModel,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// FromPrompt generates text for a single prompt.
func (s *GenerateService) FromPrompt(ctx context.Context, in PromptInput) (Output, error) {
	if in.Prompt == "" {
		return Output{}, InvalidInput("empty_prompt",
			`Invalid input. Please provide a valid "systemInstruction" and "prompt" parameter.`)
	}

	s.recordUsage(ctx, domain.UsageEvent{
		CallerID:     in.CallerID,
		Endpoint:     EndpointPrompt,
		LastMessage:  in.Prompt,
		MessageCount: 1,
	})

	text, err := s.generator.Generate(ctx, buildPromptRequest(in.SystemInstruction, in.Prompt))
	if err != nil {
		return Output{}, providerFailure("genkit_error", err)
	}
	return Output{Result: text}, nil
}

// FromHistory generates the next assistant turn for an ordered message history.
func (s *GenerateService) FromHistory(ctx context.Context, in HistoryInput) (Output, error) {
	if in.Messages == nil {
		return Output{}, InvalidInput("missing_messages",
			`Invalid input. Please provide a valid "systemInstruction" and "messages" array.`)
	}

	s.recordUsage(ctx, domain.UsageEvent{
		CallerID:     in.CallerID,
		Endpoint:     EndpointHistory,
		LastMessage:  lastText(in.Messages),
		MessageCount: len(in.Messages),
	})

	text, err := s.chat.Chat(ctx, s.chatModel, buildProviderMessages(in.SystemInstruction, in.Messages))
	if err != nil {
		return Output{}, providerFailure("openai_error", err)
	}
	if text == "" {
		text = NoResponseText
	}
	return Output{Result: text}, nil
}

// recordUsage never fails the request; accounting is best effort.
func (s *GenerateService) recordUsage(ctx context.Context, event domain.UsageEvent) {
	if s.usage == nil {
		return
	}
	if strings.TrimSpace(event.CallerID) == "" {
		event.CallerID = anonymousCaller
	}
	if err := s.usage.RecordCall(ctx, event); err != nil {
		s.logger.Warn("failed to record api call",
			zap.String("caller", event.CallerID),
			zap.String("endpoint", event.Endpoint),
			zap.Error(err))
	}
}
