package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type httpClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewHTTPClient creates a client for the REST backend.
func NewHTTPClient(cfg Config) Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &httpClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// token resolves the bearer token, reading the token file on every call so
// a re-login picked up by the file is honored without a restart.
func (c *httpClient) token() string {
	if c.cfg.Token != "" {
		return c.cfg.Token
	}
	if c.cfg.TokenFile == "" {
		return ""
	}
	data, err := os.ReadFile(c.cfg.TokenFile)
	if err != nil {
		log.Warn().Err(err).Str("path", c.cfg.TokenFile).Msg("Failed to read token file")
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (c *httpClient) authenticateRequest(req *http.Request) {
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
}

func (c *httpClient) ListProjects(ctx context.Context) ([]Project, error) {
	var resp listingResponse
	if err := c.do(ctx, http.MethodGet, "/projects", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Projects == nil {
		return nil, fmt.Errorf("%w: projects listing (success=%t, message=%q)", ErrMalformedPayload, resp.Success, resp.Message)
	}

	projects := make([]Project, 0, len(resp.Projects))
	for i, raw := range resp.Projects {
		var dto ProjectDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			log.Warn().Err(err).Int("index", i).Msg("Skipping undecodable project")
			continue
		}
		p := MapProject(dto)
		if p.ID == "" {
			log.Warn().Str("name", dto.Name).Msg("Skipping project without identifier")
			continue
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func (c *httpClient) ListTasks(ctx context.Context) ([]Task, error) {
	var resp listingResponse
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Tasks == nil {
		return nil, fmt.Errorf("%w: tasks listing (success=%t, message=%q)", ErrMalformedPayload, resp.Success, resp.Message)
	}

	tasks := make([]Task, 0, len(resp.Tasks))
	for i, raw := range resp.Tasks {
		var dto TaskDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			log.Warn().Err(err).Int("index", i).Msg("Skipping undecodable task")
			continue
		}
		tasks = append(tasks, MapTask(dto))
	}
	return tasks, nil
}

func (c *httpClient) UpdateTaskStatus(ctx context.Context, taskID string, status Status) error {
	if taskID == "" {
		return fmt.Errorf("update task status: empty task id")
	}
	path := "/tasks/" + url.PathEscape(taskID)
	return c.do(ctx, http.MethodPut, path, TaskUpdateRequest{Status: string(status)}, nil)
}

func (c *httpClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.cfg.BaseURL + path
	log.Debug().Str("method", method).Str("url", target).Msg("Tracker request")

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authenticateRequest(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w (%d) on %s %s", ErrUnauthorized, resp.StatusCode, method, path)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
		case http.StatusTooManyRequests:
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				return fmt.Errorf("%w, retry after %s seconds", ErrRateLimited, retryAfter)
			}
			return ErrRateLimited
		default:
			return fmt.Errorf("tracker API returned status %d for %s %s", resp.StatusCode, method, path)
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode %s response: %v", ErrMalformedPayload, path, err)
	}
	return nil
}
