package memberhub

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const textCodeInvalidFlowTransition = "INVALID_PASSWORD_FLOW_TRANSITION"

// ErrInvalidFlowTransition is returned when a requested flow state change
// is not allowed.
var ErrInvalidFlowTransition = goerrors.New("invalid password flow transition", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidFlowTransition).
	WithCode(goerrors.CodeBadRequest)

// FlowState is a phase of the forced password change flow.
type FlowState string

const (
	// FlowInactive: no temporary password, nothing to do.
	FlowInactive FlowState = "inactive"
	// FlowRequired: the session carries a temporary password and the
	// change surface must stay up until it is resolved.
	FlowRequired FlowState = "required"
	// FlowSubmitting: a change request is in flight.
	FlowSubmitting FlowState = "submitting"
	// FlowCompleted: the password was changed; a sign-out follows.
	FlowCompleted FlowState = "completed"
)

// PasswordAPI is the slice of the backend the flow depends on.
type PasswordAPI interface {
	ChangePassword(ctx context.Context, id string, payload ChangePasswordRequest) (string, error)
}

// PasswordFlow drives the forced password change required after an admin
// hands out a temporary password. While the flow is required it cannot be
// dismissed; the only ways out are a successful change or an explicit
// logout. A successful change always ends in a sign-out, since the old
// credentials embedded in the session are no longer valid.
type PasswordFlow struct {
	mu      sync.Mutex
	state   FlowState
	session *Session

	transitions map[FlowState]map[FlowState]struct{}

	api         PasswordAPI
	notifier    Notifier
	logger      Logger
	schedule    Scheduler
	logoutDelay time.Duration
	logout      func()
}

// PasswordFlowOption configures the flow.
type PasswordFlowOption func(*PasswordFlow)

// WithFlowNotifier sets the notification sink.
func WithFlowNotifier(n Notifier) PasswordFlowOption {
	return func(pf *PasswordFlow) {
		if n != nil {
			pf.notifier = n
		}
	}
}

// WithFlowLogger overrides the logger.
func WithFlowLogger(logger Logger) PasswordFlowOption {
	return func(pf *PasswordFlow) {
		if logger != nil {
			pf.logger = logger
		}
	}
}

// WithFlowLogoutFunc sets the sign-out invoked after a successful change.
func WithFlowLogoutFunc(fn func()) PasswordFlowOption {
	return func(pf *PasswordFlow) { pf.logout = fn }
}

// WithFlowLogoutDelay overrides the notification-readable delay before
// the post-change sign-out.
func WithFlowLogoutDelay(d time.Duration) PasswordFlowOption {
	return func(pf *PasswordFlow) {
		if d >= 0 {
			pf.logoutDelay = d
		}
	}
}

// WithFlowScheduler overrides how the deferred sign-out is scheduled.
func WithFlowScheduler(s Scheduler) PasswordFlowOption {
	return func(pf *PasswordFlow) {
		if s != nil {
			pf.schedule = s
		}
	}
}

// NewPasswordFlow builds an inactive flow. Feed it session changes via
// SyncSession, typically from a Store.Observe subscription.
func NewPasswordFlow(api PasswordAPI, opts ...PasswordFlowOption) *PasswordFlow {
	pf := &PasswordFlow{
		state: FlowInactive,
		transitions: map[FlowState]map[FlowState]struct{}{
			FlowInactive: {
				FlowRequired: {},
				// voluntary change, no temporary password involved
				FlowSubmitting: {},
			},
			FlowRequired: {
				FlowSubmitting: {},
				FlowInactive:   {},
			},
			FlowSubmitting: {
				FlowCompleted: {},
				FlowRequired:  {},
				FlowInactive:  {},
			},
			FlowCompleted: {
				FlowInactive: {},
			},
		},
		api:         api,
		notifier:    noopNotifier{},
		logger:      defLogger{},
		logoutDelay: DefaultLogoutDelay,
		schedule: func(delay time.Duration, fn func()) {
			time.AfterFunc(delay, fn)
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(pf)
		}
	}

	return pf
}

// SyncSession folds a session change into the flow. A session flagged
// with a temporary password activates the flow; a logout resets it.
func (pf *PasswordFlow) SyncSession(sess *Session) {
	pf.mu.Lock()
	defer pf.mu.Unlock()

	pf.session = sess

	if sess == nil {
		if pf.state != FlowSubmitting {
			pf.state = FlowInactive
		}
		return
	}

	if sess.PasswordTemporary && pf.state == FlowInactive {
		pf.state = FlowRequired
		pf.logger.Info("temporary password detected for %s, password change required", sess.Username)
	}
}

// State returns the current flow state.
func (pf *PasswordFlow) State() FlowState {
	pf.mu.Lock()
	defer pf.mu.Unlock()
	return pf.state
}

// Required reports whether the caller must change their password before
// doing anything else.
func (pf *PasswordFlow) Required() bool {
	pf.mu.Lock()
	defer pf.mu.Unlock()
	return pf.state == FlowRequired || pf.state == FlowSubmitting
}

// Dismiss attempts to close the change surface. While the change is
// required the surface is not dismissible and Dismiss reports false.
func (pf *PasswordFlow) Dismiss() bool {
	pf.mu.Lock()
	defer pf.mu.Unlock()

	switch pf.state {
	case FlowRequired, FlowSubmitting:
		pf.logger.Info("password change is mandatory, dismiss ignored")
		return false
	case FlowCompleted:
		pf.state = FlowInactive
	}
	return true
}

// Submit validates and sends the change request for the current session's
// member. Validation failures, including a confirm mismatch, surface
// before anything reaches the network. A failed request returns the flow
// to its origin state so the caller can retry; success completes the flow,
// notifies, and schedules the unconditional sign-out.
func (pf *PasswordFlow) Submit(ctx context.Context, payload ChangePasswordRequest) error {
	if err := payload.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password change payload")
	}

	pf.mu.Lock()
	sess := pf.session
	if sess == nil {
		pf.mu.Unlock()
		return ErrSessionRequired
	}
	origin := pf.state
	if err := pf.moveLocked(FlowSubmitting); err != nil {
		pf.mu.Unlock()
		return err
	}
	pf.mu.Unlock()

	message, err := pf.api.ChangePassword(ctx, sess.UserID, payload)

	pf.mu.Lock()
	if err != nil {
		// a failed request returns the flow to wherever it started
		if terr := pf.moveLocked(origin); terr != nil {
			pf.logger.Warn("password flow rollback failed: %v", terr)
		}
		pf.mu.Unlock()
		return err
	}
	if terr := pf.moveLocked(FlowCompleted); terr != nil {
		pf.mu.Unlock()
		return terr
	}
	pf.mu.Unlock()

	if message == "" {
		message = "Password changed successfully."
	}
	pf.notifier.Notify(message+" Please log in with your new password.", LevelSuccess)

	if pf.logout == nil {
		pf.logger.Warn("no logout func configured, skipping post-change sign out")
		return nil
	}
	pf.schedule(pf.logoutDelay, pf.logout)

	return nil
}

// moveLocked must be called with the lock held.
func (pf *PasswordFlow) moveLocked(target FlowState) error {
	if pf.state == target {
		return nil
	}
	allowed, ok := pf.transitions[pf.state]
	if !ok {
		return ErrInvalidFlowTransition.WithMetadata(map[string]any{
			"from": pf.state,
			"to":   target,
		})
	}
	if _, ok := allowed[target]; !ok {
		return ErrInvalidFlowTransition.WithMetadata(map[string]any{
			"from": pf.state,
			"to":   target,
		})
	}
	pf.state = target
	return nil
}
