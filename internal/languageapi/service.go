package languageapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"language-learner/internal/domain"
)

const (
	functionHistory = "processStringWithOpenAI"
	functionPrompt  = "processStringWithGenKit"
)

// ErrUnexpectedResponse means the backend answered 2xx without a usable
// string result.
var ErrUnexpectedResponse = errors.New("languageapi: unexpected response")

// Service is the client-side entry point to the language backend. It holds no
// per-call state and is safe for concurrent use.
type Service struct {
	caller Caller
	logger *zap.Logger
}

func NewService(caller Caller, logger *zap.Logger) (*Service, error) {
	if caller == nil {
		return nil, errors.New("languageapi: caller must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{caller: caller, logger: logger}, nil
}

type historyRequest struct {
	SystemInstruction string                  `json:"systemInstruction"`
	Messages          []domain.HistoryMessage `json:"messages"`
}

type promptRequest struct {
	SystemInstruction string `json:"systemInstruction"`
	Prompt            string `json:"prompt"`
}

// LanguageHelper sends the conversation to the backend and returns the reply
// with surrounding whitespace removed.
func (s *Service) LanguageHelper(ctx context.Context, systemInstruction string, messages []domain.Message) (string, error) {
	return s.call(ctx, functionHistory, historyRequest{
		SystemInstruction: systemInstruction,
		Messages:          domain.ToHistory(messages),
	}, zap.Int("messages", len(messages)))
}

// Ask sends a single prompt to the backend.
func (s *Service) Ask(ctx context.Context, systemInstruction, prompt string) (string, error) {
	return s.call(ctx, functionPrompt, promptRequest{
		SystemInstruction: systemInstruction,
		Prompt:            prompt,
	}, zap.Int("prompt_len", len(prompt)))
}

func (s *Service) call(ctx context.Context, name string, data any, field zap.Field) (string, error) {
	log := s.logger.With(zap.String("function", name))
	log.Debug("calling backend", field)

	raw, err := s.caller.Call(ctx, name, data)
	if err != nil {
		log.Error("backend call failed", zap.Error(err))
		return "", err
	}

	result, err := decodeResult(raw)
	if err != nil {
		log.Error("backend returned unusable payload", zap.Error(err))
		return "", err
	}
	log.Info("backend call completed", zap.Int("result_len", len(result)))
	return result, nil
}

func decodeResult(raw json.RawMessage) (string, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	field := bytes.TrimSpace(payload["result"])
	if len(field) == 0 || field[0] != '"' {
		return "", fmt.Errorf("%w: result is missing or not a string", ErrUnexpectedResponse)
	}
	var result string
	if err := json.Unmarshal(field, &result); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	result = strings.TrimSpace(result)
	if result == "" {
		return "", fmt.Errorf("%w: result is blank", ErrUnexpectedResponse)
	}
	return result, nil
}
