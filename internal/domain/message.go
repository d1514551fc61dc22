package domain

import (
	"strings"

	"github.com/google/uuid"
)

// SenderType distinguishes human-authored messages from model-authored ones.
type SenderType string

const (
	SenderUser SenderType = "user"
	SenderBot  SenderType = "bot"
)

// ProviderRole maps a sender to the provider role: bot becomes assistant,
// everything else is treated as user.
func ProviderRole(senderType string) string {
	if SenderType(senderType) == SenderBot {
		return RoleAssistant
	}
	return RoleUser
}

// Message is a single chat bubble on the client.
type Message struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	SenderType SenderType `json:"senderType"`
}

// NewMessage returns a message with a fresh ID.
func NewMessage(text string, sender SenderType) Message {
	return Message{
		ID:         uuid.NewString(),
		Text:       text,
		SenderType: sender,
	}
}

// ToHistory converts client messages to the wire form, preserving order.
func ToHistory(messages []Message) []HistoryMessage {
	out := make([]HistoryMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, HistoryMessage{Text: m.Text, SenderType: string(m.SenderType)})
	}
	return out
}

// IsBlank reports whether s has no non-space characters.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
