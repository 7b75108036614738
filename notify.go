package memberhub

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level is the severity of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// DefaultDisplayDuration is how long consumers are expected to keep a
// notification visible before auto-dismissal. Dismissal is owned by the
// consumer, not by the dispatcher.
const DefaultDisplayDuration = 5 * time.Second

// Notification is a single toast-style message. Seq increases
// monotonically per dispatcher so consumers can handle removal of
// individual messages while several are visible at once.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	Seq       uint64    `json:"seq"`
	Message   string    `json:"message"`
	Level     Level     `json:"level"`
	EmittedAt time.Time `json:"emitted_at"`
}

// Notifier is the sink that accepts leveled user-facing messages.
type Notifier interface {
	Notify(message string, level Level)
}

// NotifierFunc adapts a function into a Notifier.
type NotifierFunc func(message string, level Level)

func (f NotifierFunc) Notify(message string, level Level) {
	if f != nil {
		f(message, level)
	}
}

type noopNotifier struct{}

func (noopNotifier) Notify(string, Level) {}

// Dispatcher fans notifications out to subscribers. Publishing never
// blocks: a subscriber that cannot keep up loses messages rather than
// stalling the event that produced them.
type Dispatcher struct {
	mu          sync.Mutex
	seq         uint64
	nextSubID   int
	subscribers map[int]chan Notification
	now         func() time.Time
	logger      Logger
}

// DispatcherOption customizes the dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherClock injects a custom clock (useful for tests).
func WithDispatcherClock(clock func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		if clock != nil {
			d.now = clock
		}
	}
}

// WithDispatcherLogger overrides the logger.
func WithDispatcherLogger(logger Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher returns a ready Dispatcher.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		subscribers: map[int]chan Notification{},
		now:         time.Now,
		logger:      defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	return d
}

// Notify publishes a leveled message to all subscribers.
func (d *Dispatcher) Notify(message string, level Level) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	n := Notification{
		ID:        uuid.New(),
		Seq:       d.seq,
		Message:   message,
		Level:     level,
		EmittedAt: d.now(),
	}

	for id, ch := range d.subscribers {
		select {
		case ch <- n:
		default:
			d.logger.Warn("notification subscriber %d is not draining, dropping seq %d", id, n.Seq)
		}
	}
}

// Success publishes a success-level message.
func (d *Dispatcher) Success(message string) { d.Notify(message, LevelSuccess) }

// Error publishes an error-level message.
func (d *Dispatcher) Error(message string) { d.Notify(message, LevelError) }

// Warning publishes a warning-level message.
func (d *Dispatcher) Warning(message string) { d.Notify(message, LevelWarning) }

// Info publishes an info-level message.
func (d *Dispatcher) Info(message string) { d.Notify(message, LevelInfo) }

// Subscribe registers a new consumer. The returned cancel function
// removes the subscription and closes the channel.
func (d *Dispatcher) Subscribe() (<-chan Notification, func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextSubID
	d.nextSubID++

	ch := make(chan Notification, 16)
	d.subscribers[id] = ch

	cancel := func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if sub, ok := d.subscribers[id]; ok {
			delete(d.subscribers, id)
			close(sub)
		}
	}

	return ch, cancel
}
