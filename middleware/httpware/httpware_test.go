package httpware_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memberhub/go-memberhub/middleware/httpware"
)

func okDoer(t *testing.T, inspect func(req *http.Request)) httpware.Doer {
	t.Helper()
	return httpware.DoerFunc(func(req *http.Request) (*http.Response, error) {
		if inspect != nil {
			inspect(req)
		}
		rec := httptest.NewRecorder()
		rec.WriteHeader(http.StatusOK)
		return rec.Result(), nil
	})
}

func statusDoer(status int, body string) httpware.Doer {
	return httpware.DoerFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(body)),
			Request:    req,
		}, nil
	})
}

func newRequest(t *testing.T) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, "http://backend/api/v1/members", nil)
	require.NoError(t, err)
	return req
}

func TestBearerAttachesToken(t *testing.T) {
	var got string
	doer := httpware.Chain(
		okDoer(t, func(req *http.Request) { got = req.Header.Get("Authorization") }),
		httpware.Bearer(httpware.TokenSourceFunc(func() string { return "tok-123" })),
	)

	res, err := doer.Do(newRequest(t))
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, "Bearer tok-123", got)
}

func TestBearerSkipsWithoutToken(t *testing.T) {
	var header string
	var present bool
	doer := httpware.Chain(
		okDoer(t, func(req *http.Request) {
			header = req.Header.Get("Authorization")
			_, present = req.Header["Authorization"]
		}),
		httpware.Bearer(httpware.TokenSourceFunc(func() string { return "" })),
	)

	res, err := doer.Do(newRequest(t))
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Empty(t, header)
	assert.False(t, present, "no empty Authorization header either")
}

func TestBearerDoesNotMutateOriginalRequest(t *testing.T) {
	doer := httpware.Chain(
		okDoer(t, nil),
		httpware.Bearer(httpware.TokenSourceFunc(func() string { return "tok" })),
	)

	req := newRequest(t)
	res, err := doer.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Empty(t, req.Header.Get("Authorization"), "the caller's request is cloned, not stamped")
}

func TestErrorInterceptorTransportFailure(t *testing.T) {
	var notifications []string
	failing := httpware.DoerFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	})

	doer := httpware.Chain(failing, httpware.ErrorInterceptor(httpware.ErrorInterceptorConfig{
		Notifier: httpware.NotifierFunc(func(message, level string) {
			notifications = append(notifications, level+": "+message)
		}),
	}))

	_, err := doer.Do(newRequest(t))
	require.Error(t, err)

	require.Len(t, notifications, 1, "exactly one notification per failure")
	assert.Equal(t, "error: Network Error: dial tcp: connection refused", notifications[0])

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, goerrors.CategoryOperation, richErr.Category)
	assert.Equal(t, "NETWORK_FAILURE", richErr.TextCode)
}

func TestErrorInterceptorPrefersServerMessage(t *testing.T) {
	var notifications []string

	doer := httpware.Chain(
		statusDoer(http.StatusConflict, `{"message":"Username already taken."}`),
		httpware.ErrorInterceptor(httpware.ErrorInterceptorConfig{
			Notifier: httpware.NotifierFunc(func(message, _ string) {
				notifications = append(notifications, message)
			}),
		}),
	)

	_, err := doer.Do(newRequest(t))
	require.Error(t, err)

	require.Len(t, notifications, 1)
	assert.Equal(t, "Username already taken.", notifications[0])

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, goerrors.CategoryConflict, richErr.Category)
	assert.Equal(t, http.StatusConflict, richErr.Code)
	assert.Equal(t, http.StatusConflict, richErr.Metadata["status"])
}

func TestErrorInterceptorFallsBackToGenericMessage(t *testing.T) {
	var notifications []string

	doer := httpware.Chain(
		statusDoer(http.StatusInternalServerError, `<html>nope</html>`),
		httpware.ErrorInterceptor(httpware.ErrorInterceptorConfig{
			Notifier: httpware.NotifierFunc(func(message, _ string) {
				notifications = append(notifications, message)
			}),
		}),
	)

	_, err := doer.Do(newRequest(t))
	require.Error(t, err)

	require.Len(t, notifications, 1)
	assert.Equal(t, "An unexpected error occurred", notifications[0])

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, goerrors.CategoryInternal, richErr.Category)
}

func TestErrorInterceptorFiresOnUnauthorized(t *testing.T) {
	var torn bool
	var order []string

	doer := httpware.Chain(
		statusDoer(http.StatusUnauthorized, `{"message":"Session expired"}`),
		httpware.ErrorInterceptor(httpware.ErrorInterceptorConfig{
			Notifier: httpware.NotifierFunc(func(string, string) {
				order = append(order, "notify")
			}),
			OnUnauthorized: func() {
				torn = true
				order = append(order, "unauthorized")
			},
		}),
	)

	_, err := doer.Do(newRequest(t))
	require.Error(t, err)
	assert.True(t, torn)
	assert.Equal(t, []string{"notify", "unauthorized"}, order, "the message lands before the session is torn down")
}

func TestErrorInterceptorPassesSuccessThrough(t *testing.T) {
	notified := false
	doer := httpware.Chain(
		okDoer(t, nil),
		httpware.ErrorInterceptor(httpware.ErrorInterceptorConfig{
			Notifier: httpware.NotifierFunc(func(string, string) { notified = true }),
		}),
	)

	res, err := doer.Do(newRequest(t))
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.False(t, notified)
}

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) httpware.Middleware {
		return func(next httpware.Doer) httpware.Doer {
			return httpware.DoerFunc(func(req *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.Do(req)
			})
		}
	}

	doer := httpware.Chain(okDoer(t, nil), tag("first"), tag("second"))
	res, err := doer.Do(newRequest(t))
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, []string{"first", "second"}, order)
}
