package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"language-learner/internal/domain"
)

func TestBuildProviderMessages(t *testing.T) {
	history := []domain.HistoryMessage{
		{Text: "one", SenderType: "bot"},
		{Text: "two", SenderType: "user"},
		{Text: "three", SenderType: "robot"},
	}

	got := buildProviderMessages("Be formal", history)
	require.Equal(t, []domain.ChatMessage{
		{Role: "system", Content: "Be formal"},
		{Role: "assistant", Content: "one"},
		{Role: "user", Content: "two"},
		{Role: "user", Content: "three"},
	}, got)

	got = buildProviderMessages("\t", history)
	require.Len(t, got, 3)
	for i, m := range got {
		require.NotEqual(t, "system", m.Role)
		require.Equal(t, history[i].Text, m.Content)
	}

	require.Empty(t, buildProviderMessages("", nil))
}

func TestBuildPromptRequest(t *testing.T) {
	require.Equal(t, domain.PromptRequest{Prompt: "Hello"}, buildPromptRequest("", "Hello"))
	require.Equal(t, domain.PromptRequest{Prompt: "Hello"}, buildPromptRequest("  ", "Hello"))
	require.Equal(t, domain.PromptRequest{Prompt: "Hello", System: " Be formal "}, buildPromptRequest(" Be formal ", "Hello"))
}
