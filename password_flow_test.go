package memberhub_test

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memberhub "github.com/memberhub/go-memberhub"
)

type fakePasswordAPI struct {
	calls  int
	change func(ctx context.Context, id string, payload memberhub.ChangePasswordRequest) (string, error)
}

func (f *fakePasswordAPI) ChangePassword(ctx context.Context, id string, payload memberhub.ChangePasswordRequest) (string, error) {
	f.calls++
	if f.change == nil {
		return "", errors.New("no change handler")
	}
	return f.change(ctx, id, payload)
}

func temporarySession() *memberhub.Session {
	return &memberhub.Session{
		UserID:            "u-1",
		Username:          "alice",
		Role:              memberhub.RoleUser,
		Token:             "t",
		PasswordTemporary: true,
	}
}

func changePayload() memberhub.ChangePasswordRequest {
	return memberhub.ChangePasswordRequest{
		OldPassword:     "temp-pass",
		NewPassword:     "fresh-pass",
		ConfirmPassword: "fresh-pass",
	}
}

func TestPasswordFlowActivatesOnTemporaryPassword(t *testing.T) {
	flow := memberhub.NewPasswordFlow(&fakePasswordAPI{})
	assert.Equal(t, memberhub.FlowInactive, flow.State())
	assert.False(t, flow.Required())

	flow.SyncSession(temporarySession())
	assert.Equal(t, memberhub.FlowRequired, flow.State())
	assert.True(t, flow.Required())

	flow.SyncSession(nil)
	assert.Equal(t, memberhub.FlowInactive, flow.State(), "logout resets the flow")
}

func TestPasswordFlowStaysInactiveForRegularSession(t *testing.T) {
	flow := memberhub.NewPasswordFlow(&fakePasswordAPI{})

	sess := temporarySession()
	sess.PasswordTemporary = false
	flow.SyncSession(sess)

	assert.Equal(t, memberhub.FlowInactive, flow.State())
}

func TestPasswordFlowCannotBeDismissedWhileRequired(t *testing.T) {
	flow := memberhub.NewPasswordFlow(&fakePasswordAPI{})
	flow.SyncSession(temporarySession())

	assert.False(t, flow.Dismiss())
	assert.True(t, flow.Required(), "still required after the dismiss attempt")
}

func TestPasswordFlowSubmitValidatesFirst(t *testing.T) {
	api := &fakePasswordAPI{}
	flow := memberhub.NewPasswordFlow(api)
	flow.SyncSession(temporarySession())

	payload := changePayload()
	payload.ConfirmPassword = "different"

	err := flow.Submit(context.Background(), payload)
	require.Error(t, err)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, goerrors.CategoryValidation, richErr.Category)
	assert.Zero(t, api.calls, "a confirm mismatch never reaches the network")
	assert.True(t, flow.Required())
}

func TestPasswordFlowSubmitRequiresSession(t *testing.T) {
	flow := memberhub.NewPasswordFlow(&fakePasswordAPI{})

	err := flow.Submit(context.Background(), changePayload())
	assert.ErrorIs(t, err, memberhub.ErrSessionRequired)
}

func TestPasswordFlowSubmitSuccessSignsOut(t *testing.T) {
	api := &fakePasswordAPI{
		change: func(_ context.Context, id string, payload memberhub.ChangePasswordRequest) (string, error) {
			assert.Equal(t, "u-1", id)
			assert.Equal(t, "temp-pass", payload.OldPassword)
			return "Password changed successfully.", nil
		},
	}

	var delays []time.Duration
	var loggedOut bool
	var notifications []string
	flow := memberhub.NewPasswordFlow(api,
		memberhub.WithFlowNotifier(memberhub.NotifierFunc(func(message string, level memberhub.Level) {
			notifications = append(notifications, string(level)+": "+message)
		})),
		memberhub.WithFlowScheduler(immediateScheduler(&delays)),
		memberhub.WithFlowLogoutFunc(func() { loggedOut = true }),
		memberhub.WithFlowLogoutDelay(100*time.Millisecond),
	)
	flow.SyncSession(temporarySession())

	require.NoError(t, flow.Submit(context.Background(), changePayload()))
	assert.Equal(t, memberhub.FlowCompleted, flow.State())
	assert.True(t, loggedOut, "a successful change always ends in a sign-out")
	assert.Equal(t, []time.Duration{100 * time.Millisecond}, delays)

	require.Len(t, notifications, 1)
	assert.Contains(t, notifications[0], "Password changed successfully.")
}

func TestPasswordFlowSubmitFailureAllowsRetry(t *testing.T) {
	api := &fakePasswordAPI{
		change: func(context.Context, string, memberhub.ChangePasswordRequest) (string, error) {
			return "", errors.New("old password incorrect")
		},
	}

	var loggedOut bool
	flow := memberhub.NewPasswordFlow(api,
		memberhub.WithFlowLogoutFunc(func() { loggedOut = true }),
		memberhub.WithFlowScheduler(func(_ time.Duration, fn func()) { fn() }),
	)
	flow.SyncSession(temporarySession())

	err := flow.Submit(context.Background(), changePayload())
	require.Error(t, err)
	assert.Equal(t, memberhub.FlowRequired, flow.State(), "back to required for another attempt")
	assert.False(t, loggedOut)
}

func TestPasswordFlowVoluntaryChange(t *testing.T) {
	api := &fakePasswordAPI{
		change: func(context.Context, string, memberhub.ChangePasswordRequest) (string, error) {
			return "Password changed successfully.", nil
		},
	}

	var loggedOut bool
	flow := memberhub.NewPasswordFlow(api,
		memberhub.WithFlowLogoutFunc(func() { loggedOut = true }),
		memberhub.WithFlowScheduler(func(_ time.Duration, fn func()) { fn() }),
	)

	sess := temporarySession()
	sess.PasswordTemporary = false
	flow.SyncSession(sess)
	require.Equal(t, memberhub.FlowInactive, flow.State())

	require.NoError(t, flow.Submit(context.Background(), changePayload()))
	assert.Equal(t, memberhub.FlowCompleted, flow.State())
	assert.True(t, loggedOut)
}
