package tracker

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUnauthorized     = errors.New("tracker authentication failed")
	ErrNotFound         = errors.New("tracker resource not found")
	ErrRateLimited      = errors.New("tracker rate limit exceeded")
	ErrMalformedPayload = errors.New("malformed tracker payload")
)

// Client is the interface for interacting with the project-management backend.
type Client interface {
	ListProjects(ctx context.Context) ([]Project, error)
	ListTasks(ctx context.Context) ([]Task, error)
	UpdateTaskStatus(ctx context.Context, taskID string, status Status) error
}

// Config holds the connection and authentication settings for the backend.
type Config struct {
	BaseURL string

	// Token takes precedence over TokenFile.
	Token     string
	TokenFile string

	Timeout time.Duration
}

// NewClient creates a new backend client based on the provided configuration.
func NewClient(cfg Config) Client {
	return NewHTTPClient(cfg)
}
