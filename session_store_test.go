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

type fakeAuthAPI struct {
	calls int
	login func(ctx context.Context, payload memberhub.LoginRequest) (*memberhub.Session, error)
}

func (f *fakeAuthAPI) Login(ctx context.Context, payload memberhub.LoginRequest) (*memberhub.Session, error) {
	f.calls++
	if f.login == nil {
		return nil, errors.New("no login handler")
	}
	return f.login(ctx, payload)
}

func validSession(t *testing.T) *memberhub.Session {
	t.Helper()
	return &memberhub.Session{
		UserID:   "11111111-2222-3333-4444-555555555555",
		Username: "alice",
		Email:    "alice@example.com",
		Role:     memberhub.RoleAdmin,
		Token:    mintToken(t, time.Now().Add(time.Hour)),
	}
}

func TestStoreLoginPublishesAndPersists(t *testing.T) {
	sess := validSession(t)
	api := &fakeAuthAPI{
		login: func(_ context.Context, payload memberhub.LoginRequest) (*memberhub.Session, error) {
			assert.Equal(t, "alice", payload.Username)
			return sess, nil
		},
	}
	storage := memberhub.NewMemoryStorage()
	store := memberhub.NewStore(api, memberhub.WithStorage(storage))

	got, err := store.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, sess, got)
	assert.Equal(t, sess, store.Current())

	raw, found, err := storage.Read(memberhub.DefaultStorageKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, string(raw), "alice")
}

func TestStoreLoginValidatesBeforeCallingAPI(t *testing.T) {
	api := &fakeAuthAPI{}
	store := memberhub.NewStore(api)

	_, err := store.Login(context.Background(), "", "")
	require.Error(t, err)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, goerrors.CategoryValidation, richErr.Category)
	assert.Zero(t, api.calls, "invalid payloads never reach the network")
}

func TestStoreLoginWrapsRejection(t *testing.T) {
	api := &fakeAuthAPI{
		login: func(context.Context, memberhub.LoginRequest) (*memberhub.Session, error) {
			return nil, errors.New("boom")
		},
	}
	store := memberhub.NewStore(api)

	_, err := store.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, goerrors.CategoryAuth, richErr.Category)
	assert.Equal(t, memberhub.TextCodeInvalidCredentials, richErr.TextCode)
	assert.Nil(t, store.Current(), "a failed login leaves the store logged out")
}

func TestStoreRehydratesPersistedSession(t *testing.T) {
	sess := validSession(t)
	storage := memberhub.NewMemoryStorage()

	first := memberhub.NewStore(&fakeAuthAPI{
		login: func(context.Context, memberhub.LoginRequest) (*memberhub.Session, error) {
			return sess, nil
		},
	}, memberhub.WithStorage(storage))
	_, err := first.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	second := memberhub.NewStore(&fakeAuthAPI{}, memberhub.WithStorage(storage))
	require.NotNil(t, second.Current())
	assert.Equal(t, sess, second.Current(), "every field survives the round trip")
}

func TestStoreDiscardsMalformedPersistedSession(t *testing.T) {
	storage := memberhub.NewMemoryStorage()
	require.NoError(t, storage.Write(memberhub.DefaultStorageKey, []byte("{not json")))

	store := memberhub.NewStore(&fakeAuthAPI{}, memberhub.WithStorage(storage))
	assert.Nil(t, store.Current())

	_, found, err := storage.Read(memberhub.DefaultStorageKey)
	require.NoError(t, err)
	assert.False(t, found, "the malformed entry is purged, not left to fail again")
}

func TestStoreDiscardsPersistedSessionWithoutToken(t *testing.T) {
	storage := memberhub.NewMemoryStorage()
	require.NoError(t, storage.Write(memberhub.DefaultStorageKey, []byte(`{"userName":"alice"}`)))

	store := memberhub.NewStore(&fakeAuthAPI{}, memberhub.WithStorage(storage))
	assert.Nil(t, store.Current())
}

func TestStoreObserveReplaysCurrentValue(t *testing.T) {
	sess := validSession(t)
	api := &fakeAuthAPI{
		login: func(context.Context, memberhub.LoginRequest) (*memberhub.Session, error) {
			return sess, nil
		},
	}
	store := memberhub.NewStore(api)

	// a subscriber arriving before login sees the logged-out state first
	ch, cancel := store.Observe()
	defer cancel()

	select {
	case got := <-ch:
		assert.Nil(t, got)
	default:
		t.Fatal("expected an immediate replay of the current value")
	}

	_, err := store.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	select {
	case got := <-ch:
		assert.Equal(t, sess, got)
	default:
		t.Fatal("expected the login to be published")
	}

	store.Logout()

	select {
	case got := <-ch:
		assert.Nil(t, got)
	default:
		t.Fatal("expected the logout to be published")
	}
}

func TestStoreObserveCancelClosesChannel(t *testing.T) {
	store := memberhub.NewStore(&fakeAuthAPI{})

	ch, cancel := store.Observe()
	<-ch
	cancel()

	_, open := <-ch
	assert.False(t, open)

	cancel() // second cancel is a no-op
}

func TestStoreLogoutIsIdempotentAndNavigates(t *testing.T) {
	var visited []string
	nav := memberhub.NavigatorFunc(func(route string) {
		visited = append(visited, route)
	})

	store := memberhub.NewStore(&fakeAuthAPI{}, memberhub.WithNavigator(nav))

	store.Logout()
	store.Logout()

	assert.Nil(t, store.Current())
	assert.Equal(t, []string{memberhub.RouteLogin, memberhub.RouteLogin}, visited)
}

func TestStoreIsLoggedInPurgesExpiredSession(t *testing.T) {
	expired := &memberhub.Session{
		UserID:   "1",
		Username: "alice",
		Role:     memberhub.RoleUser,
		Token:    mintToken(t, time.Now().Add(-time.Hour)),
	}
	storage := memberhub.NewMemoryStorage()

	first := memberhub.NewStore(&fakeAuthAPI{
		login: func(context.Context, memberhub.LoginRequest) (*memberhub.Session, error) {
			return expired, nil
		},
	}, memberhub.WithStorage(storage))
	_, err := first.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	require.NotNil(t, first.Current())

	assert.False(t, first.IsLoggedIn())
	assert.Nil(t, first.Current(), "the expired session is purged on first check")

	_, found, err := storage.Read(memberhub.DefaultStorageKey)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStoreRoleAndTokenDefaults(t *testing.T) {
	store := memberhub.NewStore(&fakeAuthAPI{})

	assert.Equal(t, memberhub.RoleUser, store.Role())
	assert.Empty(t, store.RawToken())
	assert.False(t, store.IsAdmin())
	assert.False(t, store.IsLoggedIn())
}
