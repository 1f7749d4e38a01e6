package sophia

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrEmptyToken is returned when the authentication endpoint responds with an empty body.
	ErrEmptyToken = errors.New("sophia: authentication returned an empty token")
	// ErrAccessDenied is returned when Sophia rejects the supplied login credentials.
	ErrAccessDenied = errors.New("sophia: access denied")
)

// Guardian identifies the subject Sophia validated a login for.
type Guardian struct {
	ID   string
	Name string
}

// Client calls the Sophia school-management REST API for one tenant.
type Client struct {
	client   *http.Client
	baseURL  string
	user     string
	password string
}

// Option configures the Client during construction.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for Sophia requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// NewClient constructs a Client for the given tenant-scoped base URL and
// system account credentials.
func NewClient(baseURL, user, password string, opts ...Option) *Client {
	c := &Client{
		client:   &http.Client{Timeout: 30 * time.Second},
		baseURL:  strings.TrimRight(baseURL, "/"),
		user:     user,
		password: password,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Authenticate requests a fresh system token. Sophia returns the token as the
// bare response body rather than a JSON document.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	payload := map[string]string{"usuario": c.user, "senha": c.password}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	body, _, err := c.post(ctx, "/api/v1/Autenticacao", "", payload)
	if err != nil {
		return "", err
	}

	token := strings.TrimSpace(string(body))
	if token == "" {
		return "", ErrEmptyToken
	}
	return token, nil
}

type validateLoginResponse struct {
	AcessoValido bool   `json:"acessoValido"`
	AlunoID      string `json:"alunoId"`
	Nome         string `json:"nome"`
}

// ValidateLogin checks a code/password pair against Sophia using the given
// system token. ErrAccessDenied is returned for rejected credentials; any
// other error means the validation could not be performed.
func (c *Client) ValidateLogin(ctx context.Context, token, code, password string) (Guardian, error) {
	payload := map[string]string{"codigo": code, "senha": password}

	body, _, err := c.post(ctx, "/api/v1/Alunos/ValidarLogin", token, payload)
	if err != nil {
		return Guardian{}, err
	}

	var resp validateLoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Guardian{}, fmt.Errorf("sophia: decode validation response: %w", err)
	}

	if !resp.AcessoValido {
		return Guardian{}, ErrAccessDenied
	}

	guardian := Guardian{ID: resp.AlunoID, Name: resp.Nome}
	if guardian.ID == "" {
		guardian.ID = code
	}
	if guardian.Name == "" {
		guardian.Name = "Estudante"
	}
	return guardian, nil
}

func (c *Client) post(ctx context.Context, path, token string, payload any) ([]byte, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("sophia: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("sophia: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("token", token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("sophia: call %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("sophia: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, fmt.Errorf("sophia: %s returned status %d", path, resp.StatusCode)
	}

	return body, resp.StatusCode, nil
}
