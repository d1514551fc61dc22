// Package practice runs one learner's writing session: it keeps the stored
// language and prompt, the visible conversation and the calls to the backend.
package practice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"language-learner/internal/conversation"
	"language-learner/internal/domain"
	"language-learner/internal/languageapi"
	"language-learner/internal/settings"
)

var (
	ErrBlankInput = errors.New("practice: message is blank")
	ErrBusy       = errors.New("practice: a reply is already being fetched")
)

// Helper is the backend call a session needs. *languageapi.Service satisfies it.
type Helper interface {
	LanguageHelper(ctx context.Context, systemInstruction string, messages []domain.Message) (string, error)
}

type Session struct {
	repo   settings.Repository
	helper Helper
	conv   *conversation.Conversation
	logger *zap.Logger

	inFlight atomic.Bool
	updateMu sync.Mutex

	mu       sync.Mutex
	language domain.Language
	prompt   domain.QuestionPrompt
}

// NewSession loads the stored settings and seeds the welcome message.
func NewSession(ctx context.Context, repo settings.Repository, helper Helper, logger *zap.Logger) (*Session, error) {
	if repo == nil {
		return nil, errors.New("practice: settings repository must not be nil")
	}
	if helper == nil {
		return nil, errors.New("practice: helper must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	st, err := repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("practice: load settings: %w", err)
	}

	return &Session{
		repo:     repo,
		helper:   helper,
		conv:     conversation.New(domain.WelcomeText(st.Language, st.Prompt)),
		logger:   logger,
		language: st.Language,
		prompt:   st.Prompt,
	}, nil
}

func (s *Session) Conversation() *conversation.Conversation {
	return s.conv
}

func (s *Session) Language() domain.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

func (s *Session) Prompt() domain.QuestionPrompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompt
}

// Submit sends text as the learner's answer and appends the reply. When the
// backend fails, an "Error: ..." bot message is appended and the error is
// returned alongside it.
func (s *Session) Submit(ctx context.Context, text string) (domain.Message, error) {
	if domain.IsBlank(text) {
		return domain.Message{}, ErrBlankInput
	}
	text = strings.TrimSpace(text)
	if !s.inFlight.CompareAndSwap(false, true) {
		return domain.Message{}, ErrBusy
	}
	defer s.inFlight.Store(false)

	s.conv.Append(domain.NewMessage(text, domain.SenderUser))

	s.mu.Lock()
	instruction := domain.SystemInstruction(s.language, s.prompt)
	s.mu.Unlock()

	s.conv.BeginFetch()
	reply, err := s.helper.LanguageHelper(ctx, instruction, s.conv.History())
	s.conv.EndFetch()

	if err != nil {
		s.logger.Warn("language helper failed", zap.Error(err))
		msg := domain.NewMessage("Error: "+errorText(err), domain.SenderBot)
		s.conv.Append(msg)
		return msg, err
	}

	msg := domain.NewMessage(strings.TrimSpace(reply), domain.SenderBot)
	s.conv.Append(msg)
	return msg, nil
}

// ChangeLanguage stores l and rewrites the welcome message.
func (s *Session) ChangeLanguage(ctx context.Context, l domain.Language) error {
	if !l.Valid() {
		return fmt.Errorf("practice: unknown language %q", l)
	}
	return s.update(ctx, func(st *domain.Settings) { st.Language = l })
}

// ChangePrompt stores p and rewrites the welcome message.
func (s *Session) ChangePrompt(ctx context.Context, p domain.QuestionPrompt) error {
	if !p.Valid() {
		return fmt.Errorf("practice: unknown prompt %q", p)
	}
	return s.update(ctx, func(st *domain.Settings) { st.Prompt = p })
}

// update serializes settings writes on updateMu. s.mu only guards the cached
// fields, so listeners fired by ReplaceWelcome may read them.
func (s *Session) update(ctx context.Context, mutate func(*domain.Settings)) error {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	st, err := s.repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("practice: load settings: %w", err)
	}
	mutate(&st)
	if err := s.repo.Set(ctx, st); err != nil {
		return fmt.Errorf("practice: save settings: %w", err)
	}

	s.mu.Lock()
	s.language, s.prompt = st.Language, st.Prompt
	s.mu.Unlock()

	s.conv.ReplaceWelcome(domain.WelcomeText(st.Language, st.Prompt))
	return nil
}

func errorText(err error) string {
	var callErr *languageapi.CallError
	if errors.As(err, &callErr) && callErr.Message != "" {
		return callErr.Message
	}
	return err.Error()
}
