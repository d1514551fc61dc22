package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"language-learner/internal/domain"
	"language-learner/internal/integrations/openai"
)

type mockChat struct {
	mock.Mock
}

func (m *mockChat) Chat(ctx context.Context, model string, messages []domain.ChatMessage) (string, error) {
	args := m.Called(ctx, model, messages)
	return args.String(0), args.Error(1)
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, req domain.PromptRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type recordingUsage struct {
	events []domain.UsageEvent
	err    error
}

func (r *recordingUsage) RecordCall(_ context.Context, event domain.UsageEvent) error {
	r.events = append(r.events, event)
	return r.err
}

type blankError struct{}

func (blankError) Error() string { return "  " }

func newTestService(t *testing.T, chat ChatClient, gen PromptGenerator, opts ...Option) *GenerateService {
	t.Helper()
	svc, err := NewGenerateService(chat, gen, opts...)
	require.NoError(t, err)
	return svc
}

func expectError(t *testing.T, err error, code ErrorCode, reason string) *Error {
	t.Helper()
	var usecaseErr *Error
	require.ErrorAs(t, err, &usecaseErr)
	require.Equal(t, code, usecaseErr.Code)
	require.Equal(t, reason, usecaseErr.Reason)
	require.NotEmpty(t, usecaseErr.Message)
	return usecaseErr
}

func TestNewGenerateService_ValidatesDependencies(t *testing.T) {
	_, err := NewGenerateService(nil, &mockGenerator{})
	require.Error(t, err)

	_, err = NewGenerateService(&mockChat{}, nil)
	require.Error(t, err)
}

func TestFromPrompt_OmitsBlankSystemInstruction(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, domain.PromptRequest{Prompt: "Hello"}).Return("Hi there", nil).Twice()
	svc := newTestService(t, &mockChat{}, gen)

	for _, sys := range []string{"", "   \n\t"} {
		out, err := svc.FromPrompt(context.Background(), PromptInput{SystemInstruction: sys, Prompt: "Hello"})
		require.NoError(t, err)
		require.Equal(t, "Hi there", out.Result)
	}
	gen.AssertExpectations(t)
}

func TestFromPrompt_PassesSystemInstruction(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, domain.PromptRequest{Prompt: "Hola", System: "Be formal"}).Return("Buenos días", nil)
	svc := newTestService(t, &mockChat{}, gen)

	out, err := svc.FromPrompt(context.Background(), PromptInput{SystemInstruction: "Be formal", Prompt: "Hola"})
	require.NoError(t, err)
	require.Equal(t, "Buenos días", out.Result)
	gen.AssertExpectations(t)
}

func TestFromPrompt_EmptyPrompt(t *testing.T) {
	gen := &mockGenerator{}
	svc := newTestService(t, &mockChat{}, gen)

	_, err := svc.FromPrompt(context.Background(), PromptInput{Prompt: ""})
	expectError(t, err, ErrorInvalidInput, "empty_prompt")
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestFromPrompt_ProviderFailure(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded")).Once()
	gen.On("Generate", mock.Anything, mock.Anything).Return("", blankError{}).Once()
	svc := newTestService(t, &mockChat{}, gen)

	_, err := svc.FromPrompt(context.Background(), PromptInput{Prompt: "Hello"})
	e := expectError(t, err, ErrorProviderFailure, "genkit_error")
	require.Equal(t, "quota exceeded", e.Message)

	_, err = svc.FromPrompt(context.Background(), PromptInput{Prompt: "Hello"})
	e = expectError(t, err, ErrorProviderFailure, "genkit_error")
	require.Equal(t, FallbackProviderMessage, e.Message)
}

func TestFromHistory_RoleMappingAndOrder(t *testing.T) {
	chat := &mockChat{}
	want := []domain.ChatMessage{
		{Role: "system", Content: "Be formal"},
		{Role: "user", Content: "Hi"},
		{Role: "assistant", Content: "Hello! How are you?"},
		{Role: "user", Content: "Good"},
	}
	chat.On("Chat", mock.Anything, "gpt-test", want).Return("Great.", nil)
	svc := newTestService(t, chat, &mockGenerator{}, WithChatModel("gpt-test"))

	out, err := svc.FromHistory(context.Background(), HistoryInput{
		SystemInstruction: "Be formal",
		Messages: []domain.HistoryMessage{
			{Text: "Hi", SenderType: "user"},
			{Text: "Hello! How are you?", SenderType: "bot"},
			{Text: "Good", SenderType: "user"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "Great.", out.Result)
	chat.AssertExpectations(t)
}

func TestFromHistory_BlankSystemInstructionProducesNoSystemEntry(t *testing.T) {
	chat := &mockChat{}
	chat.On("Chat", mock.Anything, defaultChatModel, []domain.ChatMessage{{Role: "user", Content: "Hi"}}).Return("ok", nil)
	svc := newTestService(t, chat, &mockGenerator{})

	_, err := svc.FromHistory(context.Background(), HistoryInput{
		SystemInstruction: " \n ",
		Messages:          []domain.HistoryMessage{{Text: "Hi", SenderType: "user"}},
	})
	require.NoError(t, err)
	chat.AssertExpectations(t)
}

func TestFromHistory_EmptyContentFallsBack(t *testing.T) {
	chat := &mockChat{}
	chat.On("Chat", mock.Anything, mock.Anything, mock.Anything).Return("", nil)
	svc := newTestService(t, chat, &mockGenerator{})

	out, err := svc.FromHistory(context.Background(), HistoryInput{Messages: []domain.HistoryMessage{{Text: "Hi", SenderType: "user"}}})
	require.NoError(t, err)
	require.Equal(t, NoResponseText, out.Result)
}

func TestFromHistory_MissingMessages(t *testing.T) {
	chat := &mockChat{}
	svc := newTestService(t, chat, &mockGenerator{})

	_, err := svc.FromHistory(context.Background(), HistoryInput{SystemInstruction: "x"})
	expectError(t, err, ErrorInvalidInput, "missing_messages")
	chat.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything, mock.Anything)
}

func TestFromHistory_ProviderFailure(t *testing.T) {
	chat := &mockChat{}
	chat.On("Chat", mock.Anything, mock.Anything, mock.Anything).
		Return("", &openai.HTTPStatusError{StatusCode: http.StatusUnauthorized, URL: "u", Body: "bad key"})
	svc := newTestService(t, chat, &mockGenerator{})

	_, err := svc.FromHistory(context.Background(), HistoryInput{Messages: []domain.HistoryMessage{}})
	e := expectError(t, err, ErrorProviderFailure, "openai_error")
	require.Contains(t, e.Message, "401")

	var statusErr *openai.HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
}

func TestRecordUsage(t *testing.T) {
	chat := &mockChat{}
	chat.On("Chat", mock.Anything, mock.Anything, mock.Anything).Return("ok", nil)
	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything).Return("ok", nil)
	usage := &recordingUsage{err: errors.New("dynamodb down")}
	svc := newTestService(t, chat, gen, WithUsageRecorder(usage))

	_, err := svc.FromHistory(context.Background(), HistoryInput{
		CallerID: "device-1",
		Messages: []domain.HistoryMessage{{Text: "one", SenderType: "user"}, {Text: "two", SenderType: "user"}},
	})
	require.NoError(t, err, "usage failures must not fail the call")

	_, err = svc.FromPrompt(context.Background(), PromptInput{Prompt: "Hello"})
	require.NoError(t, err)

	require.Len(t, usage.events, 2)
	require.Equal(t, domain.UsageEvent{CallerID: "device-1", Endpoint: EndpointHistory, LastMessage: "two", MessageCount: 2}, usage.events[0])
	require.Equal(t, domain.UsageEvent{CallerID: "anonymous", Endpoint: EndpointPrompt, LastMessage: "Hello", MessageCount: 1}, usage.events[1])
}

func TestRecordUsage_SkippedOnInvalidInput(t *testing.T) {
	usage := &recordingUsage{}
	svc := newTestService(t, &mockChat{}, &mockGenerator{}, WithUsageRecorder(usage))

	_, err := svc.FromPrompt(context.Background(), PromptInput{})
	require.Error(t, err)
	require.Empty(t, usage.events)
}
