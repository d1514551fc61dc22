package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"language-learner/internal/domain"
)

type fakeKeys struct {
	key   string
	err   error
	calls int
}

func (f *fakeKeys) Resolve(_ context.Context) (string, error) {
	f.calls++
	return f.key, f.err
}

func newTestClient(t *testing.T, srv *httptest.Server, keys KeyResolver) *Client {
	t.Helper()
	c, err := NewClient(keys, WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestChatURL(t *testing.T) {
	require.Equal(t, "https://api.openai.com/v1/chat/completions", chatURL("https://api.openai.com/v1/"))
	require.Equal(t, "http://localhost:8080/v1/chat/completions", chatURL("http://localhost:8080"))
	require.Equal(t, "https://api.openai.com/v1/chat/completions", chatURL(""))
}

func TestNewClient_NilResolver(t *testing.T) {
	_, err := NewClient(nil)
	require.Error(t, err)
}

func TestNewClient_NoDefaultTimeout(t *testing.T) {
	c, err := NewClient(&fakeKeys{key: "sk"})
	require.NoError(t, err)
	require.Same(t, http.DefaultClient, c.httpClient)
	require.Zero(t, c.resolvedHTTPClient().Timeout)
}

func TestClient_Chat_SendsResolvedKeyAndMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-from-store", r.Header.Get("Authorization"))

		reqBody, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var got chatRequest
		require.NoError(t, json.Unmarshal(reqBody, &got))
		require.Equal(t, "gpt-4o", got.Model)
		require.Equal(t, []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: "Correct my Korean"},
			{Role: domain.RoleUser, Content: "저는 학생 이에요"},
		}, got.Messages)

		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"저는 학생이에요."}}]}`))
	}))
	defer srv.Close()

	keys := &fakeKeys{key: "sk-from-store"}
	c := newTestClient(t, srv, keys)
	resp, err := c.Chat(context.Background(), "gpt-4o", []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: "Correct my Korean"},
		{Role: domain.RoleUser, Content: "저는 학생 이에요"},
	})
	require.NoError(t, err)
	require.Equal(t, "저는 학생이에요.", resp)
	require.Equal(t, 1, keys.calls)
}

func TestClient_Chat_KeyErrorSkipsRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	storeErr := errors.New("parameter not found")
	c := newTestClient(t, srv, &fakeKeys{err: storeErr})

	resp, err := c.Chat(context.Background(), "gpt-4o", []domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}})
	require.ErrorIs(t, err, storeErr)
	require.ErrorContains(t, err, "resolve api key")
	require.Empty(t, resp)
	require.Zero(t, hits.Load())
}

func TestClient_Chat_EmptyModelSkipsKeyLookup(t *testing.T) {
	keys := &fakeKeys{key: "sk"}
	c, err := NewClient(keys)
	require.NoError(t, err)

	_, err = c.Chat(context.Background(), "", nil)
	require.ErrorContains(t, err, "model")
	require.Zero(t, keys.calls)
}

func TestClient_Chat_NoChoicesIsEmptyReply(t *testing.T) {
	for name, body := range map[string]string{
		"empty array":   `{"id":"chatcmpl-1","choices":[]}`,
		"missing field": `{"id":"chatcmpl-1"}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			resp, err := newTestClient(t, srv, &fakeKeys{key: "sk"}).Chat(context.Background(), "gpt-4o", nil)
			require.NoError(t, err)
			require.Equal(t, "", resp)
		})
	}
}

func TestClient_Chat_Non2xxIsHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, &fakeKeys{key: "sk"}).Chat(context.Background(), "gpt-4o", nil)
	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusTooManyRequests, statusErr.HTTPStatusCode())
	require.Contains(t, statusErr.Body, "quota exceeded")
}
