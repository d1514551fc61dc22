package paramstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// tokenPayload is the JSON shape accepted for a stored API token.
type tokenPayload struct {
	Token string `json:"token"`
}

// KeyResolver fetches an API key on first use and reuses it for the lifetime
// of the process. A failed fetch is not cached.
type KeyResolver struct {
	getter Getter
	name   string

	mu  sync.Mutex
	key string
}

func NewKeyResolver(getter Getter, name string) (*KeyResolver, error) {
	if getter == nil {
		return nil, errors.New("paramstore: getter must not be nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("paramstore: key parameter name is empty")
	}
	return &KeyResolver{getter: getter, name: name}, nil
}

func (r *KeyResolver) Resolve(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.key != "" {
		return r.key, nil
	}
	raw, err := r.getter.GetParameter(ctx, r.name)
	if err != nil {
		return "", fmt.Errorf("paramstore: fetch key %q: %w", r.name, err)
	}
	key, err := parseKey(raw)
	if err != nil {
		return "", err
	}
	r.key = key
	return key, nil
}

// parseKey accepts either a bare key or {"token":"..."}.
func parseKey(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "{") {
		var tp tokenPayload
		if err := json.Unmarshal([]byte(raw), &tp); err != nil {
			return "", fmt.Errorf("paramstore: unmarshal key value as JSON: %w", err)
		}
		raw = strings.TrimSpace(tp.Token)
	}
	if raw == "" {
		return "", errors.New("paramstore: API token is empty")
	}
	return raw, nil
}
