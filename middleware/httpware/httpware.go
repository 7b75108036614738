// Package httpware provides the client-side middleware chain applied
// uniformly to every request the SDK sends to its own backend: bearer
// identity attachment and centralized error interception. Call sites
// never construct user-facing error text; the interceptor is the single
// message pipeline.
package httpware

import (
	"encoding/json"
	"io"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// Doer executes a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function into a Doer.
type DoerFunc func(req *http.Request) (*http.Response, error)

// Do satisfies the Doer interface.
func (f DoerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Middleware decorates a Doer.
type Middleware func(Doer) Doer

// Chain applies middlewares so the first listed runs outermost.
func Chain(base Doer, mws ...Middleware) Doer {
	d := base
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			d = mws[i](d)
		}
	}
	return d
}

// TokenSource yields the current raw bearer token. An empty string means
// no session: the request proceeds unauthenticated.
// This mirrors the session store's read surface without import cycles.
type TokenSource interface {
	RawToken() string
}

// TokenSourceFunc adapts a function into a TokenSource.
type TokenSourceFunc func() string

// RawToken satisfies the TokenSource interface.
func (f TokenSourceFunc) RawToken() string {
	if f == nil {
		return ""
	}
	return f()
}

// Notifier mirrors the root notification sink without import cycles.
type Notifier interface {
	Notify(message string, level string)
}

// NotifierFunc adapts a function into a Notifier.
type NotifierFunc func(message string, level string)

// Notify satisfies the Notifier interface.
func (f NotifierFunc) Notify(message string, level string) {
	if f != nil {
		f(message, level)
	}
}

const levelError = "error"

// Bearer stamps outgoing requests with the current raw token as a bearer
// credential when one exists.
func Bearer(source TokenSource) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			if source != nil {
				if token := source.RawToken(); token != "" {
					req = req.Clone(req.Context())
					req.Header.Set("Authorization", "Bearer "+token)
				}
			}
			return next.Do(req)
		})
	}
}

const (
	textCodeNetworkFailure = "NETWORK_FAILURE"
	textCodeServerRejected = "SERVER_REJECTED"

	defaultGenericMessage = "An unexpected error occurred"

	// maxErrorBody bounds how much of an error payload is read.
	maxErrorBody = 1 << 16
)

// ErrorInterceptorConfig configures the centralized failure handler.
type ErrorInterceptorConfig struct {
	// Notifier receives exactly one error-level message per failure.
	Notifier Notifier

	// OnUnauthorized runs after notification when the server answered 401.
	OnUnauthorized func()

	// GenericMessage replaces the default last-resort message.
	GenericMessage string
}

type serverErrorBody struct {
	Message string `json:"message"`
}

// ErrorInterceptor converts transport failures and non-2xx responses into
// rich errors exactly once: it extracts a human-readable message
// (server-supplied message field, then network-error description, then a
// generic message), forwards it to the notifier as an error-level event,
// and returns the failure so call sites can still clear their own flags.
func ErrorInterceptor(cfg ErrorInterceptorConfig) Middleware {
	generic := cfg.GenericMessage
	if generic == "" {
		generic = defaultGenericMessage
	}

	notify := func(message string) {
		if cfg.Notifier != nil {
			cfg.Notifier.Notify(message, levelError)
		}
	}

	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			res, err := next.Do(req)
			if err != nil {
				message := "Network Error: " + err.Error()
				notify(message)
				return nil, goerrors.Wrap(err, goerrors.CategoryOperation, message).
					WithTextCode(textCodeNetworkFailure)
			}

			if res.StatusCode < http.StatusBadRequest {
				return res, nil
			}

			message := generic
			body, readErr := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
			res.Body.Close()

			if readErr == nil {
				payload := serverErrorBody{}
				if jsonErr := json.Unmarshal(body, &payload); jsonErr == nil && payload.Message != "" {
					message = payload.Message
				}
			}

			notify(message)

			if res.StatusCode == http.StatusUnauthorized && cfg.OnUnauthorized != nil {
				cfg.OnUnauthorized()
			}

			return nil, goerrors.New(message, categoryForStatus(res.StatusCode)).
				WithTextCode(textCodeServerRejected).
				WithCode(res.StatusCode).
				WithMetadata(map[string]any{
					"status": res.StatusCode,
					"method": req.Method,
					"path":   req.URL.Path,
				})
		})
	}
}

func categoryForStatus(status int) goerrors.Category {
	switch status {
	case http.StatusUnauthorized:
		return goerrors.CategoryAuth
	case http.StatusForbidden:
		return goerrors.CategoryAuthz
	case http.StatusNotFound:
		return goerrors.CategoryNotFound
	case http.StatusConflict:
		return goerrors.CategoryConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return goerrors.CategoryBadInput
	}

	if status >= http.StatusInternalServerError {
		return goerrors.CategoryInternal
	}

	return goerrors.CategoryOperation
}
