package memberhub

import (
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Storage is the durable key-value store backing session persistence.
// Read reports whether the key was present; a missing key is not an error.
type Storage interface {
	Read(key string) ([]byte, bool, error)
	Write(key string, value []byte) error
	Delete(key string) error
}

// Navigator receives navigation requests produced by route guards and by
// the session lifecycle (e.g. redirect to the login surface after logout).
type Navigator interface {
	NavigateTo(route string)
}

// NavigatorFunc adapts a function into a Navigator.
type NavigatorFunc func(route string)

func (f NavigatorFunc) NavigateTo(route string) {
	if f != nil {
		f(route)
	}
}

// Config holds client options
type Config interface {
	GetBaseURL() string
	GetStorageKey() string
	GetLogoutDelay() time.Duration
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] MEMBERHUB "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] MEMBERHUB "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] MEMBERHUB "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] MEMBERHUB "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
