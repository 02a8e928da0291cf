package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/initify/identity-context/internal/fn"
)

// NewRouterWithServer returns an http.Handler (Gin engine) with routes wired to the given Server.
func NewRouterWithServer(s *Server) http.Handler {
	r := gin.New()
	r.Use(requestLogger(s.logger), fn.Recovery(s.logger))

	// Health checks
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	// Support both paths for local and serverless
	r.GET("/linked-accounts", fn.Handle(s.LinkedAccounts))
	r.GET("/api/linked-accounts", fn.Handle(s.LinkedAccounts))

	return r
}

// RouterFromEnv creates a Server from env and returns a Gin router wired to it.
func RouterFromEnv() (http.Handler, error) {
	srv, err := ServerFromEnv()
	if err != nil {
		return nil, err
	}
	return NewRouterWithServer(srv), nil
}
