// Package config reads command configuration from the environment. Only
// cmd/ packages call it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Lookup matches os.LookupEnv.
type Lookup func(key string) (string, bool)

// LoadDotEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}

type env struct {
	lookup  Lookup
	missing []string
}

func (e *env) str(key, def string) string {
	if v, ok := e.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (e *env) required(key string) string {
	v := e.str(key, "")
	if v == "" {
		e.missing = append(e.missing, key)
	}
	return v
}

// integer falls back to def when the value is unset or not a number.
func (e *env) integer(key string, def int) int {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (e *env) err() error {
	if len(e.missing) == 0 {
		return nil
	}
	return fmt.Errorf("config: required environment variables not set: %s", strings.Join(e.missing, ", "))
}

// Lambda configures cmd/lambda.
type Lambda struct {
	ParamPrefix    string
	OpenAIKeyParam string
	GeminiKeyParam string
	// UsageTable is optional; usage is not recorded when it is empty.
	UsageTable  string
	ChatModel   string
	GeminiModel string
}

func LoadLambda(lookup Lookup) (Lambda, error) {
	e := &env{lookup: lookup}
	cfg := Lambda{
		ParamPrefix:    e.required("PARAM_PREFIX"),
		OpenAIKeyParam: e.str("OPENAI_KEY_PARAM", "openai-token"),
		GeminiKeyParam: e.str("GEMINI_KEY_PARAM", "gemini-token"),
		UsageTable:     e.str("USAGE_TABLE", ""),
		ChatModel:      e.str("OPENAI_MODEL", ""),
		GeminiModel:    e.str("GEMINI_MODEL", ""),
	}
	return cfg, e.err()
}

// DevServer configures cmd/devserver. Keys come straight from the
// environment instead of SSM.
type DevServer struct {
	Addr          string
	OpenAIKey     string
	GeminiKey     string
	OpenAIBaseURL string
	ChatModel     string
	GeminiModel   string
}

func LoadDevServer(lookup Lookup) (DevServer, error) {
	e := &env{lookup: lookup}
	cfg := DevServer{
		Addr:          e.str("ADDR", ":8080"),
		OpenAIKey:     e.required("OPENAI_API_KEY"),
		GeminiKey:     e.required("GOOGLE_API_KEY"),
		OpenAIBaseURL: e.str("OPENAI_BASE_URL", ""),
		ChatModel:     e.str("OPENAI_MODEL", ""),
		GeminiModel:   e.str("GEMINI_MODEL", ""),
	}
	return cfg, e.err()
}

// Practice configures the terminal client.
type Practice struct {
	BaseURL    string
	SettingsDB string
	// RequestTimeout bounds each backend call. Zero leaves calls unbounded.
	RequestTimeout time.Duration
}

func LoadPractice(lookup Lookup) Practice {
	e := &env{lookup: lookup}
	return Practice{
		BaseURL:        e.str("LANGUAGE_API_URL", "http://localhost:8080"),
		SettingsDB:     e.str("SETTINGS_DB", "language-learner.db"),
		RequestTimeout: time.Duration(e.integer("REQUEST_TIMEOUT_SECONDS", 0)) * time.Second,
	}
}
