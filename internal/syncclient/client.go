// Package syncclient talks to the project API on behalf of an editor: it
// signs in, loads a project into a diagram.Store and writes the store back
// as a full snapshot, either on demand or on a timer.
package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"datadesigner/internal/apperrors"
	"datadesigner/internal/dto"
)

const (
	DefaultTimeout          = 15 * time.Second
	DefaultAutoSaveInterval = 30 * time.Second
)

type Client struct {
	baseURL    string
	http       *http.Client
	log        logrus.FieldLogger
	optimistic bool
	randPos    func() (float64, float64)

	mu       sync.Mutex
	token    string
	versions map[string]uint64
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithOptimisticConcurrency makes Save send the version seen by the last
// Load or Save, so a write based on stale state fails with a conflict
// instead of overwriting.
func WithOptimisticConcurrency() Option {
	return func(c *Client) { c.optimistic = true }
}

// New returns a client for the API rooted at baseURL, for example
// http://localhost:8080/api/v1.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: DefaultTimeout},
		log:      logrus.StandardLogger(),
		randPos:  randomPosition,
		versions: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// do sends one request and decodes the envelope's data into out. Failures
// come back as *apperrors.Error carrying the kind of the HTTP status.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 400 {
			return failure(resp.StatusCode, envelope{})
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 400 || !env.Success {
		return failure(resp.StatusCode, env)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

// failure turns an error response into an *apperrors.Error. The kind named
// by the envelope wins over the one implied by the status, which is shared
// by already_exists and conflict.
func failure(status int, env envelope) error {
	kind, ok := apperrors.ParseKind(env.Error)
	if !ok {
		kind = apperrors.FromStatus(status)
	}
	msg := env.Message
	if msg == "" {
		msg = http.StatusText(status)
	}
	return apperrors.New(kind, msg)
}

// raw sends a request whose successful response is not an envelope.
func (c *Client) raw(ctx context.Context, path string, w io.Writer) error {
	resp, err := c.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var env envelope
		_ = json.NewDecoder(resp.Body).Decode(&env)
		return failure(resp.StatusCode, env)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func (c *Client) Register(ctx context.Context, username, email, password string) (string, error) {
	req := dto.RegisterRequest{Username: username, Email: email, Password: password}
	if err := dto.Validate(req); err != nil {
		return "", apperrors.Wrap(apperrors.KindValidation, "invalid registration data", err)
	}
	var res dto.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &res); err != nil {
		return "", err
	}
	return res.UserID, nil
}

// Login signs in and keeps the token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	var res dto.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", dto.LoginRequest{Email: email, Password: password}, &res); err != nil {
		return nil, err
	}
	c.SetToken(res.Token)
	return &res, nil
}

// Logout revokes the current token on the server and forgets it.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

func (c *Client) UserData(ctx context.Context) (*dto.UserData, error) {
	var res dto.UserData
	if err := c.do(ctx, http.MethodGet, "/user/data", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) CreateProject(ctx context.Context, name string) (string, error) {
	var res dto.NewProjectResponse
	if err := c.do(ctx, http.MethodPost, "/user/new-project", dto.ProjectNameRequest{ProjectName: name}, &res); err != nil {
		return "", err
	}
	return res.ProjectID, nil
}

func (c *Client) RenameProject(ctx context.Context, projectID, name string) error {
	return c.do(ctx, http.MethodPatch, "/project/"+projectID, dto.ProjectNameRequest{ProjectName: name}, nil)
}

func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	if err := c.do(ctx, http.MethodDelete, "/project/"+projectID, nil, nil); err != nil {
		return err
	}
	c.mu.Lock()
	delete(c.versions, projectID)
	c.mu.Unlock()
	return nil
}

func (c *Client) ExportMermaid(ctx context.Context, projectID string) (string, error) {
	var sb strings.Builder
	if err := c.raw(ctx, "/project/"+projectID+"/export/mermaid", &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (c *Client) ExportPNG(ctx context.Context, projectID string, w io.Writer) error {
	return c.raw(ctx, "/project/"+projectID+"/export/png", w)
}
