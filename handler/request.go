package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"

	"language-learner/internal/domain"
	"language-learner/internal/usecase"
)

const (
	msgInvalidPrompt      = `Invalid input. Please provide a valid "systemInstruction" and "prompt" parameter.`
	msgInvalidBody        = `Invalid input. Request body must be JSON of the form {"data": {...}}.`
	msgInvalidInstruction = `Invalid input. "systemInstruction" must be a string.`
	msgInvalidMessages    = `Invalid input. "messages" must be an array.`
	msgInvalidElement     = `Invalid input. Message at index %d must have a string "text" and a string "senderType".`
)

// payload holds the fields of the callable envelope {"data": {...}}, still
// undecoded so their JSON types can be checked.
type payload map[string]json.RawMessage

func parsePayload(body []byte) (payload, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return payload{}, nil
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, usecase.InvalidInput("invalid_body", msgInvalidBody)
	}
	if isNull(env.Data) {
		return payload{}, nil
	}
	var p payload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		return nil, usecase.InvalidInput("invalid_body", msgInvalidBody)
	}
	return p, nil
}

// field returns the query parameter when it is non-empty, otherwise the raw
// body field.
func (p payload) field(query url.Values, name string) (raw json.RawMessage, fromQuery string, ok bool) {
	if v := query.Get(name); v != "" {
		return nil, v, true
	}
	raw, ok = p[name]
	if !ok || isNull(raw) {
		return nil, "", false
	}
	return raw, "", true
}

func parsePromptInput(query url.Values, body []byte, callerID string) (usecase.PromptInput, error) {
	p, err := parsePayload(body)
	if err != nil {
		return usecase.PromptInput{}, err
	}

	system, err := systemInstruction(p, query, msgInvalidPrompt)
	if err != nil {
		return usecase.PromptInput{}, err
	}

	raw, q, ok := p.field(query, "prompt")
	if !ok {
		return usecase.PromptInput{}, usecase.InvalidInput("missing_prompt", msgInvalidPrompt)
	}
	prompt := q
	if raw != nil {
		s, isString := decodeString(raw)
		if !isString {
			return usecase.PromptInput{}, usecase.InvalidInput("prompt_not_string", msgInvalidPrompt)
		}
		prompt = s
	}
	if prompt == "" {
		return usecase.PromptInput{}, usecase.InvalidInput("empty_prompt", msgInvalidPrompt)
	}

	return usecase.PromptInput{SystemInstruction: system, Prompt: prompt, CallerID: callerID}, nil
}

func parseHistoryInput(query url.Values, body []byte, callerID string) (usecase.HistoryInput, error) {
	p, err := parsePayload(body)
	if err != nil {
		return usecase.HistoryInput{}, err
	}

	system, err := systemInstruction(p, query, msgInvalidInstruction)
	if err != nil {
		return usecase.HistoryInput{}, err
	}

	raw, q, ok := p.field(query, "messages")
	if !ok {
		return usecase.HistoryInput{}, usecase.InvalidInput("missing_messages", msgInvalidMessages)
	}
	if raw == nil {
		// Query form carries the array as a URL-encoded JSON string.
		raw = json.RawMessage(q)
	}

	elements, isArray := decodeArray(raw)
	if !isArray {
		return usecase.HistoryInput{}, usecase.InvalidInput("messages_not_array", msgInvalidMessages)
	}

	messages := make([]domain.HistoryMessage, 0, len(elements))
	for i, el := range elements {
		m, valid := decodeHistoryMessage(el)
		if !valid {
			return usecase.HistoryInput{}, usecase.InvalidInput("invalid_message", fmt.Sprintf(msgInvalidElement, i))
		}
		messages = append(messages, m)
	}

	return usecase.HistoryInput{SystemInstruction: system, Messages: messages, CallerID: callerID}, nil
}

// systemInstruction is optional and defaults to "", but must be a string
// when present.
func systemInstruction(p payload, query url.Values, invalidMsg string) (string, error) {
	raw, q, ok := p.field(query, "systemInstruction")
	if !ok {
		return "", nil
	}
	if raw == nil {
		return q, nil
	}
	s, isString := decodeString(raw)
	if !isString {
		return "", usecase.InvalidInput("system_instruction_not_string", invalidMsg)
	}
	return s, nil
}

func decodeHistoryMessage(raw json.RawMessage) (domain.HistoryMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return domain.HistoryMessage{}, false
	}
	text, ok := decodeString(fields["text"])
	if !ok {
		return domain.HistoryMessage{}, false
	}
	sender, ok := decodeString(fields["senderType"])
	if !ok {
		return domain.HistoryMessage{}, false
	}
	return domain.HistoryMessage{Text: text, SenderType: sender}, true
}

func decodeString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func decodeArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, false
	}
	if elements == nil {
		elements = []json.RawMessage{}
	}
	return elements, true
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
