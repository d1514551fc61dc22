package handler

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"language-learner/internal/usecase"
)

func makeEvent(path, body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       path,
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       body,
	}
}

func TestHandle_RoutesOnLastPathSegment(t *testing.T) {
	uc := &stubUseCase{out: usecase.Output{Result: "hello"}}
	h := newStubHandler(t, uc)

	event := makeEvent("/prod/processStringWithOpenAI/", `{"data":{"messages":[{"text":"Hi","senderType":"bot"}]}}`)
	event.Headers["x-user-id"] = "device-9"
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "device-9", uc.historyIn.CallerID)
	require.Equal(t, "hello", parseBody[resultResponse](t, []byte(resp.Body)).Result)
	require.NotEmpty(t, resp.Headers["X-Correlation-Id"])
}

func TestHandle_QueryParameters(t *testing.T) {
	uc := &stubUseCase{out: usecase.Output{Result: "ok"}}
	h := newStubHandler(t, uc)

	event := makeEvent("/processStringWithGenKit", "")
	event.HTTPMethod = "get"
	event.QueryStringParameters = map[string]string{"prompt": "Hello", "systemInstruction": "Be kind"}
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, usecase.PromptInput{SystemInstruction: "Be kind", Prompt: "Hello"}, uc.promptIn)
}

func TestHandle_Base64Body(t *testing.T) {
	uc := &stubUseCase{out: usecase.Output{Result: "ok"}}
	h := newStubHandler(t, uc)

	event := makeEvent("/processStringWithGenKit", base64.StdEncoding.EncodeToString([]byte(`{"data":{"prompt":"Hello"}}`)))
	event.IsBase64Encoded = true
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Hello", uc.promptIn.Prompt)

	event.Body = "%%%not-base64"
	resp, err = h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandle_UnknownRoute(t *testing.T) {
	h := newStubHandler(t, &stubUseCase{})
	resp, err := h.Handle(context.Background(), makeEvent("/ask", `{}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "application/json", resp.Headers["Content-Type"])
}

func TestHandle_EchoesCorrelationID(t *testing.T) {
	h := newStubHandler(t, &stubUseCase{out: usecase.Output{Result: "ok"}})
	event := makeEvent("/processStringWithGenKit", `{"data":{"prompt":"hi"}}`)
	event.Headers["X-CORRELATION-ID"] = "corr-42"
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "corr-42", resp.Headers["X-Correlation-Id"])
}
