package usecase

import (
	"strings"

	"language-learner/internal/domain"
)

// buildProviderMessages prepends the system instruction when it is not blank
// and maps every history element to a provider role, preserving order.
func buildProviderMessages(systemInstruction string, history []domain.HistoryMessage) []domain.ChatMessage {
	messages := make([]domain.ChatMessage, 0, len(history)+1)
	if strings.TrimSpace(systemInstruction) != "" {
		messages = append(messages, domain.ChatMessage{
			Role:    domain.RoleSystem,
			Content: systemInstruction,
		})
	}
	for _, m := range history {
		messages = append(messages, domain.ChatMessage{
			Role:    domain.ProviderRole(m.SenderType),
			Content: m.Text,
		})
	}
	return messages
}

func buildPromptRequest(systemInstruction, prompt string) domain.PromptRequest {
	req := domain.PromptRequest{Prompt: prompt}
	if strings.TrimSpace(systemInstruction) != "" {
		req.System = systemInstruction
	}
	return req
}

func lastText(history []domain.HistoryMessage) string {
	if len(history) == 0 {
		return "na"
	}
	return history[len(history)-1].Text
}
