package paramstore

import (
	"context"
	"fmt"
	"strings"
)

// Static serves parameters from memory. Local commands fill it from
// environment variables so they can run without AWS.
type Static map[string]string

func (s Static) GetParameter(_ context.Context, name string) (string, error) {
	v, ok := s[strings.TrimSpace(name)]
	if !ok || v == "" {
		return "", fmt.Errorf("paramstore: parameter %q not set", name)
	}
	return v, nil
}
