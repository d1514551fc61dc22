package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxBodyBytes = 1 << 20

// RegisterRoutes mounts both endpoints on a gin router for local development.
// Method and route checks stay in Serve so both transports answer the same way.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.Any("/:route", h.ServeGin)
}

// ServeGin adapts a gin request context.
func (h *Handler) ServeGin(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		resp := jsonResponse(http.StatusBadRequest, correlationFrom(c.Request.Header), errorResponse{Error: msgInvalidBody})
		writeGin(c, resp)
		return
	}

	resp := h.Serve(c.Request.Context(), Request{
		Method:  strings.ToUpper(c.Request.Method),
		Route:   c.Param("route"),
		Query:   c.Request.URL.Query(),
		Headers: c.Request.Header,
		Body:    body,
	})
	writeGin(c, resp)
}

func writeGin(c *gin.Context, resp Response) {
	for k, v := range resp.Headers {
		if k == "Content-Type" {
			continue
		}
		c.Header(k, v)
	}
	c.Data(resp.StatusCode, resp.Headers["Content-Type"], resp.Body)
}
