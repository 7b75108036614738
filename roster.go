package memberhub

import (
	"context"
	"fmt"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// DefaultPageSize is the fixed pagination window width.
const DefaultPageSize = 10

// DefaultLogoutDelay is how long a "you will be signed out" notification
// stays readable before the deferred logout fires.
const DefaultLogoutDelay = 1500 * time.Millisecond

// Confirmation prompt variants. Deleting your own account and deleting
// an ADMIN account each escalate with a distinct warning.
const (
	DeletePromptDefault = "Are you sure you want to delete this member?"
	DeletePromptSelf    = "You are about to delete your own account. You will be signed out immediately afterwards. Delete anyway?"
	DeletePromptAdmin   = "WARNING: this account has the ADMIN role. Deleting it permanently removes its elevated access. Delete anyway?"
)

// RosterAPI is the slice of the backend the controller depends on.
type RosterAPI interface {
	ListMembers(ctx context.Context) ([]Member, error)
	MyProfile(ctx context.Context) (*Member, error)
	Signup(ctx context.Context, payload SignupRequest) (*Member, error)
	UpdateMember(ctx context.Context, id string, payload MemberUpdateRequest) (*Member, error)
	DeleteMember(ctx context.Context, id string) (string, error)
}

// SessionReader is the controller's read-only view of the session store.
type SessionReader interface {
	Current() *Session
	IsAdmin() bool
	CanModify(target Member) bool
}

// PasswordGate reports whether a forced password change is pending, in
// which case the controller refuses to load data at all.
type PasswordGate interface {
	Required() bool
}

// ConfirmFunc answers a destructive-action prompt. A nil ConfirmFunc
// counts as declined: the confirmation step is never optional.
type ConfirmFunc func(prompt string) bool

// Scheduler defers a function, letting tests run deferred logouts
// synchronously.
type Scheduler func(delay time.Duration, fn func())

// RosterController owns the locally held roster and its pagination
// window, reconciling local state after create/update/delete without a
// refetch. It is the roster's single writer; mutations happen only on
// confirmed server responses.
type RosterController struct {
	mu          sync.Mutex
	members     []Member
	profileMode bool
	currentPage int
	pageSize    int
	loading     bool
	submitting  bool

	api         RosterAPI
	session     SessionReader
	gate        PasswordGate
	notifier    Notifier
	logger      Logger
	schedule    Scheduler
	logoutDelay time.Duration
	logout      func()
}

// RosterOption configures the controller.
type RosterOption func(*RosterController)

// WithRosterNotifier sets the notification sink for success messages.
func WithRosterNotifier(n Notifier) RosterOption {
	return func(rc *RosterController) {
		if n != nil {
			rc.notifier = n
		}
	}
}

// WithRosterLogger overrides the logger.
func WithRosterLogger(logger Logger) RosterOption {
	return func(rc *RosterController) {
		if logger != nil {
			rc.logger = logger
		}
	}
}

// WithPasswordGate wires the forced password change flow in.
func WithPasswordGate(gate PasswordGate) RosterOption {
	return func(rc *RosterController) { rc.gate = gate }
}

// WithLogoutFunc sets the cleanup invoked when an operation invalidates
// the caller's own session (role change, self deletion).
func WithLogoutFunc(fn func()) RosterOption {
	return func(rc *RosterController) { rc.logout = fn }
}

// WithLogoutDelay overrides the notification-readable delay before a
// deferred logout.
func WithLogoutDelay(d time.Duration) RosterOption {
	return func(rc *RosterController) {
		if d >= 0 {
			rc.logoutDelay = d
		}
	}
}

// WithScheduler overrides how deferred logouts are scheduled.
func WithScheduler(s Scheduler) RosterOption {
	return func(rc *RosterController) {
		if s != nil {
			rc.schedule = s
		}
	}
}

// WithPageSize overrides the pagination window width.
func WithPageSize(size int) RosterOption {
	return func(rc *RosterController) {
		if size > 0 {
			rc.pageSize = size
		}
	}
}

// NewRosterController builds a controller over the given backend slice
// and session view.
func NewRosterController(api RosterAPI, session SessionReader, opts ...RosterOption) *RosterController {
	rc := &RosterController{
		api:         api,
		session:     session,
		currentPage: 1,
		pageSize:    DefaultPageSize,
		notifier:    noopNotifier{},
		logger:      defLogger{},
		logoutDelay: DefaultLogoutDelay,
		schedule: func(delay time.Duration, fn func()) {
			time.AfterFunc(delay, fn)
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(rc)
		}
	}

	return rc
}

// LoadRoster fetches the full roster for admins, or the caller's own
// record as a single-element profile view otherwise. The loading flag
// clears on success and on failure alike. Nothing loads while a forced
// password change is pending.
func (rc *RosterController) LoadRoster(ctx context.Context) error {
	if rc.gate != nil && rc.gate.Required() {
		rc.logger.Info("roster load skipped: password change pending")
		return nil
	}

	rc.mu.Lock()
	rc.loading = true
	admin := rc.session.IsAdmin()
	rc.mu.Unlock()

	var (
		members []Member
		err     error
	)

	if admin {
		members, err = rc.api.ListMembers(ctx)
	} else {
		var me *Member
		me, err = rc.api.MyProfile(ctx)
		if err == nil && me != nil {
			members = []Member{*me}
		}
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.loading = false
	if err != nil {
		return err
	}

	rc.members = members
	rc.profileMode = !admin
	rc.clampPage()

	return nil
}

// Create validates and submits a new member. On success the record is
// prepended so recent activity surfaces first, and the success
// notification carries the created identifier. A failed submission
// leaves the roster untouched.
func (rc *RosterController) Create(ctx context.Context, input SignupRequest) (*Member, error) {
	if err := input.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid member payload")
	}

	rc.setSubmitting(true)

	created, err := rc.api.Signup(ctx, input)
	if err != nil {
		rc.setSubmitting(false)
		return nil, err
	}

	rc.mu.Lock()
	rc.members = append([]Member{*created}, rc.members...)
	rc.clampPage()
	rc.submitting = false
	rc.mu.Unlock()

	rc.notifier.Notify(
		fmt.Sprintf("Member %s added successfully! (id %s)", created.Name, created.ID),
		LevelSuccess,
	)

	return created, nil
}

// Update submits the editable subset for a record and replaces the
// matching roster entry in place. When the caller edits their own
// record and its role changes, the session's authorization claims are
// stale: the flow notifies first, then signs out after a short delay so
// the notification stays readable.
func (rc *RosterController) Update(ctx context.Context, id string, input MemberUpdateRequest) (*Member, error) {
	if err := input.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid member payload")
	}

	rc.setSubmitting(true)

	updated, err := rc.api.UpdateMember(ctx, id, input)
	if err != nil {
		rc.setSubmitting(false)
		return nil, err
	}

	rc.mu.Lock()
	priorRole, found := rc.replaceByID(id, *updated)
	rc.submitting = false
	rc.mu.Unlock()

	sess := rc.session.Current()
	isSelf := sess != nil && sess.Username == updated.Username
	roleChanged := found && priorRole != updated.Role

	if isSelf && roleChanged {
		rc.notifier.Notify("Role updated and session invalidated. You will be signed out.", LevelSuccess)
		rc.deferLogout()
		return updated, nil
	}

	rc.notifier.Notify("Member updated successfully.", LevelSuccess)

	return updated, nil
}

// Delete asks for confirmation (with escalated prompt text for the
// caller's own account and for ADMIN accounts), then sends the
// destructive request. Deleting your own account notifies and signs out
// after a delay; deleting anyone else splices the roster and reclamps
// the page. Returns whether a deletion happened.
func (rc *RosterController) Delete(ctx context.Context, member Member, confirm ConfirmFunc) (bool, error) {
	if confirm == nil || !confirm(rc.DeletePrompt(member)) {
		return false, nil
	}

	message, err := rc.api.DeleteMember(ctx, member.ID)
	if err != nil {
		return false, err
	}
	if message == "" {
		message = "Member deleted successfully."
	}

	sess := rc.session.Current()
	if sess != nil && sess.Username == member.Username {
		rc.notifier.Notify("Your account was deleted. You will be signed out.", LevelSuccess)
		rc.deferLogout()
		return true, nil
	}

	rc.mu.Lock()
	rc.removeByID(member.ID)
	rc.clampPage()
	rc.mu.Unlock()

	rc.notifier.Notify(message, LevelSuccess)

	return true, nil
}

// DeletePrompt returns the confirmation text for the target, escalated
// for self-deletion and for ADMIN accounts.
func (rc *RosterController) DeletePrompt(member Member) string {
	if sess := rc.session.Current(); sess != nil && sess.Username == member.Username {
		return DeletePromptSelf
	}
	if member.Role.IsAdmin() {
		return DeletePromptAdmin
	}
	return DeletePromptDefault
}

// ChangePage moves the window. Out-of-range targets are a no-op; the
// method is pure and performs no I/O.
func (rc *RosterController) ChangePage(n int) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if n < 1 || n > rc.totalPages() {
		return false
	}
	rc.currentPage = n
	return true
}

// Visible returns a copy of the slice the current window exposes.
func (rc *RosterController) Visible() []Member {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	start := (rc.currentPage - 1) * rc.pageSize
	if start >= len(rc.members) {
		return []Member{}
	}

	end := start + rc.pageSize
	if end > len(rc.members) {
		end = len(rc.members)
	}

	out := make([]Member, end-start)
	copy(out, rc.members[start:end])
	return out
}

// Members returns a copy of the whole roster.
func (rc *RosterController) Members() []Member {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	out := make([]Member, len(rc.members))
	copy(out, rc.members)
	return out
}

// CurrentPage returns the 1-based page the window sits on.
func (rc *RosterController) CurrentPage() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.currentPage
}

// TotalPages returns ceil(len/pageSize).
func (rc *RosterController) TotalPages() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.totalPages()
}

// Len returns the roster length.
func (rc *RosterController) Len() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.members)
}

// Loading reports whether a roster load is in flight.
func (rc *RosterController) Loading() bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.loading
}

// Submitting reports whether a create/update submission is in flight.
// The UI layer is expected to disable its trigger while true; the
// controller itself only exposes the flag.
func (rc *RosterController) Submitting() bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.submitting
}

// ProfileMode reports whether the roster is the single-record self view.
func (rc *RosterController) ProfileMode() bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.profileMode
}

func (rc *RosterController) setSubmitting(v bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.submitting = v
}

// totalPages must be called with the lock held.
func (rc *RosterController) totalPages() int {
	return (len(rc.members) + rc.pageSize - 1) / rc.pageSize
}

// clampPage must be called with the lock held. The page only ever clamps
// downward; it never auto-advances to chase new entries.
func (rc *RosterController) clampPage() {
	tp := rc.totalPages()
	if tp == 0 {
		rc.currentPage = 1
		return
	}
	if rc.currentPage > tp {
		rc.currentPage = tp
	}
}

// replaceByID must be called with the lock held. Returns the replaced
// entry's prior role and whether a match was found; position is
// preserved.
func (rc *RosterController) replaceByID(id string, updated Member) (UserRole, bool) {
	for i := range rc.members {
		if rc.members[i].ID == id {
			prior := rc.members[i].Role
			rc.members[i] = updated
			return prior, true
		}
	}
	return "", false
}

// removeByID must be called with the lock held.
func (rc *RosterController) removeByID(id string) {
	out := rc.members[:0]
	for _, m := range rc.members {
		if m.ID != id {
			out = append(out, m)
		}
	}
	rc.members = out
}

func (rc *RosterController) deferLogout() {
	if rc.logout == nil {
		rc.logger.Warn("no logout func configured, skipping deferred logout")
		return
	}
	rc.schedule(rc.logoutDelay, rc.logout)
}
