package handler

import (
	"net/http"
	"sync"

	"github.com/initify/identity-context/internal/app"
)

var (
	router   http.Handler
	routerMu sync.Mutex
)

// Handler is the serverless function entrypoint for /api/linked-accounts.
func Handler(w http.ResponseWriter, r *http.Request) {
	h, err := loadRouter()
	if err != nil {
		http.Error(w, "config error", http.StatusInternalServerError)
		return
	}
	// Delegate to the shared Gin router.
	h.ServeHTTP(w, r)
}

// loadRouter builds the router on first success; a config error is retried
// on the next invocation.
func loadRouter() (http.Handler, error) {
	routerMu.Lock()
	defer routerMu.Unlock()
	if router != nil {
		return router, nil
	}
	h, err := app.RouterFromEnv()
	if err != nil {
		return nil, err
	}
	router = h
	return router, nil
}
