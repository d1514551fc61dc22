package handler

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// Handle adapts an API Gateway proxy event. The route is the last path segment,
// so both "/processStringWithOpenAI" and "/prod/processStringWithOpenAI" match.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			resp := jsonResponse(http.StatusBadRequest, correlationFrom(eventHeaders(event)), errorResponse{Error: msgInvalidBody})
			return toProxyResponse(resp), nil
		}
		body = decoded
	}

	resp := h.Serve(ctx, Request{
		Method:  strings.ToUpper(event.HTTPMethod),
		Route:   path.Base(strings.TrimRight(event.Path, "/")),
		Query:   eventQuery(event),
		Headers: eventHeaders(event),
		Body:    body,
	})
	return toProxyResponse(resp), nil
}

func toProxyResponse(resp Response) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       string(resp.Body),
	}
}

func eventQuery(event events.APIGatewayProxyRequest) url.Values {
	q := url.Values{}
	for k, vs := range event.MultiValueQueryStringParameters {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	for k, v := range event.QueryStringParameters {
		if _, ok := q[k]; !ok {
			q.Set(k, v)
		}
	}
	return q
}

func eventHeaders(event events.APIGatewayProxyRequest) http.Header {
	hdr := http.Header{}
	for k, vs := range event.MultiValueHeaders {
		for _, v := range vs {
			hdr.Add(k, v)
		}
	}
	for k, v := range event.Headers {
		if hdr.Get(k) == "" {
			hdr.Set(k, v)
		}
	}
	return hdr
}
