package memberhub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/memberhub/go-memberhub/middleware/httpware"
)

const (
	authPath    = "/api/v1/auth"
	membersPath = "/api/v1/members"
)

// APIClient is the REST client for the member backend. Every request
// passes through the shared middleware chain: bearer attachment first,
// then centralized error interception.
type APIClient struct {
	baseURL string
	doer    httpware.Doer
	logger  Logger
}

// APIClientOption configures the APIClient.
type APIClientOption func(*apiClientConfig)

type apiClientConfig struct {
	httpClient     httpware.Doer
	source         httpware.TokenSource
	notifier       Notifier
	onUnauthorized func()
	logger         Logger
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(doer httpware.Doer) APIClientOption {
	return func(c *apiClientConfig) {
		if doer != nil {
			c.httpClient = doer
		}
	}
}

// WithTokenSource wires the session store's token read surface into the
// bearer middleware.
func WithTokenSource(source httpware.TokenSource) APIClientOption {
	return func(c *apiClientConfig) { c.source = source }
}

// WithNotifier wires the notification sink into the error interceptor.
func WithNotifier(n Notifier) APIClientOption {
	return func(c *apiClientConfig) { c.notifier = n }
}

// WithOnUnauthorized registers a callback for 401 responses.
func WithOnUnauthorized(fn func()) APIClientOption {
	return func(c *apiClientConfig) { c.onUnauthorized = fn }
}

// WithAPILogger overrides the logger.
func WithAPILogger(logger Logger) APIClientOption {
	return func(c *apiClientConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewAPIClient builds a client for the given base URL.
func NewAPIClient(baseURL string, opts ...APIClientOption) *APIClient {
	cfg := &apiClientConfig{
		httpClient: http.DefaultClient,
		logger:     defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	var notifier httpware.Notifier
	if cfg.notifier != nil {
		sink := cfg.notifier
		notifier = httpware.NotifierFunc(func(message, level string) {
			sink.Notify(message, Level(level))
		})
	}

	doer := httpware.Chain(
		cfg.httpClient,
		httpware.Bearer(cfg.source),
		httpware.ErrorInterceptor(httpware.ErrorInterceptorConfig{
			Notifier:       notifier,
			OnUnauthorized: cfg.onUnauthorized,
		}),
	)

	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    doer,
		logger:  cfg.logger,
	}
}

// jwtResponse is the login response shape served by the auth backend.
type jwtResponse struct {
	Token             string `json:"token"`
	Type              string `json:"type"`
	ID                string `json:"id"`
	Username          string `json:"userName"`
	Email             string `json:"email"`
	Role              string `json:"role"`
	PasswordTemporary bool   `json:"isPasswordTemporary"`
}

// messageResponse is the generic acknowledgment body.
type messageResponse struct {
	Message string `json:"message"`
}

// Login exchanges credentials for a session. Rejected credentials come
// back as a CategoryAuth error; the caller decides what to do with it.
func (c *APIClient) Login(ctx context.Context, payload LoginRequest) (*Session, error) {
	out := jwtResponse{}
	if err := c.do(ctx, http.MethodPost, authPath+"/login", payload, &out); err != nil {
		return nil, err
	}

	role, ok := ParseRole(out.Role)
	if !ok {
		c.logger.Warn("login response carried unknown role %q, defaulting to USER", out.Role)
		role = RoleUser
	}

	return &Session{
		UserID:            out.ID,
		Username:          out.Username,
		Email:             out.Email,
		Role:              role,
		Token:             out.Token,
		PasswordTemporary: out.PasswordTemporary,
	}, nil
}

// Signup creates a new member record.
func (c *APIClient) Signup(ctx context.Context, payload SignupRequest) (*Member, error) {
	out := &Member{}
	if err := c.do(ctx, http.MethodPost, authPath+"/signup", payload, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListMembers fetches the full roster. The backend restricts this to
// admins; non-admin callers should use MyProfile.
func (c *APIClient) ListMembers(ctx context.Context) ([]Member, error) {
	out := []Member{}
	if err := c.do(ctx, http.MethodGet, membersPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MyProfile fetches the caller's own record.
func (c *APIClient) MyProfile(ctx context.Context) (*Member, error) {
	out := &Member{}
	if err := c.do(ctx, http.MethodGet, membersPath+"/me", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMember fetches a single record by id.
func (c *APIClient) GetMember(ctx context.Context, id string) (*Member, error) {
	out := &Member{}
	if err := c.do(ctx, http.MethodGet, c.memberPath(id), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateMember replaces the editable subset of a record.
func (c *APIClient) UpdateMember(ctx context.Context, id string, payload MemberUpdateRequest) (*Member, error) {
	out := &Member{}
	if err := c.do(ctx, http.MethodPut, c.memberPath(id), payload, out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateRole changes a member's role through the dedicated endpoint.
// The backend invalidates the member's sessions as a side effect.
func (c *APIClient) UpdateRole(ctx context.Context, id string, role UserRole) (string, error) {
	out := messageResponse{}
	body := map[string]string{"role": string(role)}
	if err := c.do(ctx, http.MethodPut, c.memberPath(id)+"/role", body, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// ChangePassword submits an old/new password pair for the member.
func (c *APIClient) ChangePassword(ctx context.Context, id string, payload ChangePasswordRequest) (string, error) {
	out := messageResponse{}
	if err := c.do(ctx, http.MethodPut, c.memberPath(id)+"/change-password", payload, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// DeleteMember removes a record by id.
func (c *APIClient) DeleteMember(ctx context.Context, id string) (string, error) {
	out := messageResponse{}
	if err := c.do(ctx, http.MethodDelete, c.memberPath(id), nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *APIClient) memberPath(id string) string {
	return membersPath + "/" + url.PathEscape(id)
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode request body")
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build request")
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.doer.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput,
			fmt.Sprintf("failed to decode %s %s response", method, path))
	}

	return nil
}
