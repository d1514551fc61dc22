package domain

// Provider-facing roles.
const (
	RoleSystem    = "system"
	RoleAssistant = "assistant"
	RoleUser      = "user"
)

// ChatMessage is the provider-agnostic chat message shape used by the handler
// and LLM integrations.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// HistoryMessage is one element of the "messages" array sent by clients.
// Role mapping happens server-side.
type HistoryMessage struct {
	Text       string `json:"text"`
	SenderType string `json:"senderType"`
}

// PromptRequest is the single-prompt generation request. System is left empty
// when the caller's system instruction is blank.
type PromptRequest struct {
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
}

// UsageEvent describes one accepted generation call for per-caller accounting.
type UsageEvent struct {
	CallerID     string
	Endpoint     string
	LastMessage  string
	MessageCount int
}
