package memberhub

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInspector answers validity questions about raw tokens held by the
// client. The client owns no key material, so tokens are decoded without
// signature verification and treated as opaque otherwise; any decode
// failure is reported as expired (fail closed).
type TokenInspector struct {
	now    func() time.Time
	logger Logger
}

// TokenInspectorOption customizes the inspector.
type TokenInspectorOption func(*TokenInspector)

// WithInspectorClock injects a custom clock (useful for tests).
func WithInspectorClock(clock func() time.Time) TokenInspectorOption {
	return func(ti *TokenInspector) {
		if clock != nil {
			ti.now = clock
		}
	}
}

// WithInspectorLogger overrides the logger.
func WithInspectorLogger(logger Logger) TokenInspectorOption {
	return func(ti *TokenInspector) {
		if logger != nil {
			ti.logger = logger
		}
	}
}

// NewTokenInspector creates a new TokenInspector instance
func NewTokenInspector(opts ...TokenInspectorOption) *TokenInspector {
	ti := &TokenInspector{
		now:    time.Now,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ti)
		}
	}

	return ti
}

// IsExpired reports whether the raw token is past its expiry claim.
// Malformed tokens and tokens without an expiry claim are expired,
// never valid. It does not return an error and never panics.
func (ti *TokenInspector) IsExpired(raw string) bool {
	if raw == "" {
		return true
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()

	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		ti.logger.Debug("token inspector decode failed", "error", err)
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		ti.logger.Debug("token inspector missing expiry claim")
		return true
	}

	return ti.now().After(exp.Time)
}
