package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"language-learner/internal/usecase"
)

const (
	headerCorrelationID = "X-Correlation-Id"
	headerCallerID      = "X-User-Id"
)

// Generator is the usecase surface the transports need.
type Generator interface {
	FromPrompt(ctx context.Context, in usecase.PromptInput) (usecase.Output, error)
	FromHistory(ctx context.Context, in usecase.HistoryInput) (usecase.Output, error)
}

// Request is the transport-neutral view of an inbound call.
type Request struct {
	Method string
	// Route is the endpoint name, e.g. "processStringWithOpenAI".
	Route   string
	Query   url.Values
	Headers http.Header
	Body    []byte
}

type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

type resultResponse struct {
	Result string `json:"result"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Handler struct {
	gen    Generator
	logger *zap.Logger
}

func NewHandler(gen Generator, logger *zap.Logger) (*Handler, error) {
	if gen == nil {
		return nil, errors.New("handler: generator must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{gen: gen, logger: logger}, nil
}

// Serve routes one request to the matching endpoint and always produces a JSON
// response.
func (h *Handler) Serve(ctx context.Context, req Request) Response {
	correlationID := correlationFrom(req.Headers)
	log := h.logger.With(
		zap.String("correlation_id", correlationID),
		zap.String("route", req.Route),
	)

	if req.Method != http.MethodGet && req.Method != http.MethodPost {
		log.Warn("method not allowed", zap.String("method", req.Method))
		return jsonResponse(http.StatusMethodNotAllowed, correlationID, errorResponse{Error: "Method not allowed."})
	}

	callerID := strings.TrimSpace(req.Headers.Get(headerCallerID))

	var (
		out usecase.Output
		err error
	)
	switch req.Route {
	case usecase.EndpointPrompt:
		var in usecase.PromptInput
		if in, err = parsePromptInput(req.Query, req.Body, callerID); err == nil {
			out, err = h.gen.FromPrompt(ctx, in)
		}
	case usecase.EndpointHistory:
		var in usecase.HistoryInput
		if in, err = parseHistoryInput(req.Query, req.Body, callerID); err == nil {
			out, err = h.gen.FromHistory(ctx, in)
		}
	default:
		log.Warn("unknown route")
		return jsonResponse(http.StatusNotFound, correlationID, errorResponse{Error: "Not found."})
	}

	if err != nil {
		status, body := mapError(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed", zap.Int("status", status), zap.Error(err))
		} else {
			log.Warn("request rejected", zap.Int("status", status), zap.Error(err))
		}
		return jsonResponse(status, correlationID, body)
	}

	log.Info("request completed", zap.Int("result_len", len(out.Result)))
	return jsonResponse(http.StatusOK, correlationID, resultResponse{Result: out.Result})
}

// correlationFrom echoes the caller's correlation id or mints a new one.
// http.Header lookups are case-insensitive.
func correlationFrom(hdr http.Header) string {
	if id := strings.TrimSpace(hdr.Get(headerCorrelationID)); id != "" {
		return id
	}
	return uuid.NewString()
}

func mapError(err error) (int, errorResponse) {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		return http.StatusInternalServerError, errorResponse{Error: usecase.FallbackProviderMessage}
	}

	msg := ucErr.Message
	if msg == "" {
		msg = usecase.FallbackProviderMessage
	}
	switch ucErr.Code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest, errorResponse{Error: msg}
	default:
		return http.StatusInternalServerError, errorResponse{Error: msg}
	}
}

func jsonResponse(status int, correlationID string, payload any) Response {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"` + usecase.FallbackProviderMessage + `"}`)
	}
	return Response{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":      "application/json",
			headerCorrelationID: correlationID,
		},
		Body: body,
	}
}
