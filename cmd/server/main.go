package main

import (
	"errors"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/initify/identity-context/internal/app"
)

func main() {
	_ = godotenv.Load()

	srv, err := app.ServerFromEnv()
	if err != nil {
		// Logger config lives in the same env; fall back to a default logger.
		zap.Must(zap.NewProduction()).Fatal("config error", zap.Error(err))
	}
	logger := srv.Logger()
	defer func() { _ = logger.Sync() }()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}
	logger.Info("identity-context listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, app.NewRouterWithServer(srv)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
