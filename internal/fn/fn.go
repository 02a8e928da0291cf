// Package fn is the function-runtime boundary: it turns an inbound HTTP call
// into a Request, runs a Handler and writes its Response envelope. A Handler
// never returns a Go error; failures travel as Response.Errors.
package fn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIError is one entry of the errors array.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Response is the envelope written for every invocation.
type Response struct {
	Code   int        `json:"code"`
	Body   any        `json:"body,omitempty"`
	Errors []APIError `json:"errors,omitempty"`
}

// Request carries the raw body of an invocation.
type Request struct {
	Body json.RawMessage
}

// Handler serves one route.
type Handler func(ctx context.Context, r Request) Response

// OK wraps body in a 200 envelope.
func OK(body any) Response {
	return Response{Code: http.StatusOK, Body: body}
}

// Fail builds an error envelope whose code and single error share code.
func Fail(code int, message string) Response {
	return Response{Code: code, Errors: []APIError{{Code: code, Message: message}}}
}

// Handle adapts h to gin.
func Handle(h Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.GetRawData()
		if err != nil {
			write(c, Fail(http.StatusInternalServerError, fmt.Sprintf("Internal server error: read body: %v", err)))
			return
		}
		resp := h(c.Request.Context(), Request{Body: raw})
		write(c, resp)
	}
}

func write(c *gin.Context, resp Response) {
	if resp.Code == 0 {
		resp.Code = http.StatusOK
	}
	c.JSON(resp.Code, resp)
}

// Recovery turns a panic into a 500 envelope.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("handler panic", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		resp := Fail(http.StatusInternalServerError, fmt.Sprintf("Internal server error: %v", recovered))
		c.AbortWithStatusJSON(resp.Code, resp)
	})
}
