package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	memberhub "github.com/memberhub/go-memberhub"
	"github.com/memberhub/go-memberhub/middleware/httpware"
	"github.com/memberhub/go-memberhub/storage/bunstore"
)

// app wires the SDK together for one command invocation: storage, the
// session store, the API client with its middleware chain, the roster
// controller, and the password flow.
type app struct {
	cfg    *Config
	store  *memberhub.Store
	client *memberhub.APIClient
	roster *memberhub.RosterController
	flow   *memberhub.PasswordFlow

	closers []io.Closer
}

func newApp() (*app, error) {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}

	storage, err := a.openStorage(cfg)
	if err != nil {
		return nil, err
	}

	notifier := memberhub.NotifierFunc(printNotification)

	// The client needs the store's token and the store needs the client
	// for login, so the token source binds late through the app.
	a.client = memberhub.NewAPIClient(cfg.BaseURL,
		memberhub.WithNotifier(notifier),
		memberhub.WithTokenSource(httpware.TokenSourceFunc(a.rawToken)),
		memberhub.WithOnUnauthorized(a.onUnauthorized),
	)

	a.store = memberhub.NewStore(a.client,
		memberhub.WithStorage(storage),
	)

	// A CLI process has no event loop, so deferred logouts block in
	// place instead of being scheduled.
	blocking := memberhub.Scheduler(func(delay time.Duration, fn func()) {
		time.Sleep(delay)
		fn()
	})

	a.flow = memberhub.NewPasswordFlow(a.client,
		memberhub.WithFlowNotifier(notifier),
		memberhub.WithFlowLogoutFunc(a.store.Logout),
		memberhub.WithFlowScheduler(blocking),
		memberhub.WithFlowLogoutDelay(cfg.LogoutDelay),
	)
	a.flow.SyncSession(a.store.Current())

	a.roster = memberhub.NewRosterController(a.client, a.store,
		memberhub.WithRosterNotifier(notifier),
		memberhub.WithPasswordGate(a.flow),
		memberhub.WithLogoutFunc(a.store.Logout),
		memberhub.WithScheduler(blocking),
		memberhub.WithLogoutDelay(cfg.LogoutDelay),
	)

	return a, nil
}

func (a *app) openStorage(cfg *Config) (memberhub.Storage, error) {
	if cfg.StorageDriver == "sqlite" {
		if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
			return nil, err
		}
		s, err := bunstore.Open(filepath.Join(cfg.StateDir, "state.db"))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s)
		return s, nil
	}
	return memberhub.NewFileStorage(cfg.StateDir)
}

func (a *app) rawToken() string {
	if a.store == nil {
		return ""
	}
	return a.store.RawToken()
}

func (a *app) onUnauthorized() {
	if a.store != nil {
		a.store.Logout()
	}
}

func (a *app) close() {
	for _, c := range a.closers {
		c.Close()
	}
}

// requireSession fails fast when no live session exists, mirroring the
// authenticated route guard.
func (a *app) requireSession() error {
	if !a.store.IsLoggedIn() {
		return fmt.Errorf("not logged in, run: memberctl login <username>")
	}
	if a.flow.Required() {
		return fmt.Errorf("a password change is required before anything else, run: memberctl passwd")
	}
	return nil
}

func printNotification(message string, level memberhub.Level) {
	fmt.Fprintf(os.Stderr, "[%s] %s\n", strings.ToUpper(string(level)), message)
}

// confirm prompts on stderr and reads a y/n answer from stdin.
func confirm(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// promptLine reads a single line from stdin with a prompt on stderr.
func promptLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
