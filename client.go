package memberhub

import (
	"time"

	"github.com/memberhub/go-memberhub/middleware/httpware"
)

// Client wires the SDK pieces into one working assembly: the API client
// with its middleware chain, the session store, the notification
// dispatcher, the password flow, and the roster controller, all sharing
// the same sinks. Use the individual constructors instead when the
// composition needs to differ.
type Client struct {
	API           *APIClient
	Store         *Store
	Roster        *RosterController
	PasswordFlow  *PasswordFlow
	Notifications *Dispatcher

	stop func()
}

// Close ends the assembly's session-sync subscription. Safe to call
// more than once.
func (c *Client) Close() {
	if c.stop != nil {
		c.stop()
	}
}

// ClientOption configures the assembly.
type ClientOption func(*clientConfig)

type clientConfig struct {
	storage   Storage
	navigator Navigator
	logger    Logger
	scheduler Scheduler
}

// WithClientStorage sets the durable storage backend for the session.
func WithClientStorage(storage Storage) ClientOption {
	return func(c *clientConfig) { c.storage = storage }
}

// WithClientNavigator sets the navigation sink.
func WithClientNavigator(nav Navigator) ClientOption {
	return func(c *clientConfig) { c.navigator = nav }
}

// WithClientLogger sets the logger shared across the assembly.
func WithClientLogger(logger Logger) ClientOption {
	return func(c *clientConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClientScheduler overrides how deferred logouts are scheduled.
func WithClientScheduler(s Scheduler) ClientOption {
	return func(c *clientConfig) { c.scheduler = s }
}

// New assembles a ready Client from the shared Config surface. The
// session's raw token feeds the bearer middleware, interceptor failures
// land on the shared dispatcher, a 401 tears the session down, and the
// password flow tracks session changes through its own subscription.
func New(cfg Config, opts ...ClientOption) *Client {
	cc := &clientConfig{logger: defLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(cc)
		}
	}

	dispatcher := NewDispatcher(WithDispatcherLogger(cc.logger))

	c := &Client{Notifications: dispatcher}

	api := NewAPIClient(cfg.GetBaseURL(),
		WithNotifier(dispatcher),
		WithAPILogger(cc.logger),
		WithTokenSource(httpware.TokenSourceFunc(func() string {
			if c.Store == nil {
				return ""
			}
			return c.Store.RawToken()
		})),
		WithOnUnauthorized(func() {
			if c.Store != nil {
				c.Store.Logout()
			}
		}),
	)
	c.API = api

	storeOpts := []StoreOption{
		WithStoreLogger(cc.logger),
		WithStorageKey(cfg.GetStorageKey()),
	}
	if cc.storage != nil {
		storeOpts = append(storeOpts, WithStorage(cc.storage))
	}
	if cc.navigator != nil {
		storeOpts = append(storeOpts, WithNavigator(cc.navigator))
	}
	c.Store = NewStore(api, storeOpts...)

	flowOpts := []PasswordFlowOption{
		WithFlowNotifier(dispatcher),
		WithFlowLogger(cc.logger),
		WithFlowLogoutFunc(c.Store.Logout),
		WithFlowLogoutDelay(cfg.GetLogoutDelay()),
	}
	if cc.scheduler != nil {
		flowOpts = append(flowOpts, WithFlowScheduler(cc.scheduler))
	}
	c.PasswordFlow = NewPasswordFlow(api, flowOpts...)
	c.PasswordFlow.SyncSession(c.Store.Current())

	rosterOpts := []RosterOption{
		WithRosterNotifier(dispatcher),
		WithRosterLogger(cc.logger),
		WithPasswordGate(c.PasswordFlow),
		WithLogoutFunc(c.Store.Logout),
		WithLogoutDelay(cfg.GetLogoutDelay()),
	}
	if cc.scheduler != nil {
		rosterOpts = append(rosterOpts, WithScheduler(cc.scheduler))
	}
	c.Roster = NewRosterController(api, c.Store, rosterOpts...)

	// keep the flow in step with later logins and logouts; Close ends
	// the subscription, which closes the channel and the goroutine
	sessions, cancel := c.Store.Observe()
	c.stop = cancel
	go func() {
		for sess := range sessions {
			c.PasswordFlow.SyncSession(sess)
		}
	}()

	return c
}

// StaticConfig is a plain value Config for callers that do not bring
// their own configuration layer.
type StaticConfig struct {
	BaseURL     string
	StorageKey  string
	LogoutDelay time.Duration
}

func (c StaticConfig) GetBaseURL() string { return c.BaseURL }

func (c StaticConfig) GetStorageKey() string {
	if c.StorageKey == "" {
		return DefaultStorageKey
	}
	return c.StorageKey
}

func (c StaticConfig) GetLogoutDelay() time.Duration {
	if c.LogoutDelay <= 0 {
		return DefaultLogoutDelay
	}
	return c.LogoutDelay
}

var _ Config = StaticConfig{}
