package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/initify/identity-context/internal/falcon"
	"github.com/initify/identity-context/internal/fn"
	"github.com/initify/identity-context/internal/identity"
)

type Config struct {
	Falcon   falcon.Credentials
	BaseURL  string
	Timeout  time.Duration
	LogLevel string
}

func LoadConfigFromEnv() (*Config, error) {
	creds := falcon.Credentials{
		ClientID:     os.Getenv("FALCON_CLIENT_ID"),
		ClientSecret: os.Getenv("FALCON_CLIENT_SECRET"),
		MemberCID:    os.Getenv("FALCON_MEMBER_CID"),
		AccessToken:  os.Getenv("FALCON_ACCESS_TOKEN"),
	}
	if (creds.ClientID == "" || creds.ClientSecret == "") && creds.AccessToken == "" {
		return nil, fmt.Errorf("missing FALCON_CLIENT_ID and FALCON_CLIENT_SECRET, or FALCON_ACCESS_TOKEN")
	}

	baseURL := strings.TrimSpace(os.Getenv("FALCON_BASE_URL"))
	if baseURL == "" {
		cloud, err := falcon.ParseCloud(os.Getenv("FALCON_CLOUD"))
		if err != nil {
			return nil, err
		}
		baseURL = cloud.BaseURL()
	}

	timeout := 30 * time.Second
	if v := os.Getenv("FALCON_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid FALCON_HTTP_TIMEOUT: %w", err)
		}
		timeout = d
	}

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	return &Config{Falcon: creds, BaseURL: baseURL, Timeout: timeout, LogLevel: level}, nil
}

type Server struct {
	cfg      *Config
	logger   *zap.Logger
	resolver *identity.Resolver
}

// NewServer builds the Falcon client from cfg. No network call is made until
// the first request.
func NewServer(cfg *Config, logger *zap.Logger) (*Server, error) {
	client, err := falcon.NewClient(context.Background(), falcon.Options{
		BaseURL:     cfg.BaseURL,
		Credentials: cfg.Falcon,
		Timeout:     cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return NewServerWithClient(cfg, logger, client), nil
}

// NewServerWithClient wires the resolver over an arbitrary graph client.
func NewServerWithClient(cfg *Config, logger *zap.Logger, client identity.GraphQLClient) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:      cfg,
		logger:   logger,
		resolver: identity.NewResolver(client, logger.Named("resolver")),
	}
}

// ServerFromEnv loads config and logger from the environment.
func ServerFromEnv() (*Server, error) {
	cfg, err := LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	logger, err := NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return NewServer(cfg, logger)
}

func (s *Server) Logger() *zap.Logger { return s.logger }

// LinkedAccounts serves GET /linked-accounts.
func (s *Server) LinkedAccounts(ctx context.Context, r fn.Request) fn.Response {
	var req identity.Request
	if len(r.Body) > 0 {
		if err := json.Unmarshal(r.Body, &req); err != nil {
			e := identity.InternalError(fmt.Errorf("decode request body: %w", err))
			return fn.Fail(e.Code, e.Message)
		}
	}
	body, err := s.resolver.Resolve(ctx, req.EntityID)
	if err != nil {
		e := identity.AsError(err)
		return fn.Fail(e.Code, e.Message)
	}
	return fn.OK(body)
}
