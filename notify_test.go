package memberhub_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memberhub "github.com/memberhub/go-memberhub"
)

func TestDispatcherSequenceIncrements(t *testing.T) {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	d := memberhub.NewDispatcher(memberhub.WithDispatcherClock(func() time.Time { return now }))

	ch, cancel := d.Subscribe()
	defer cancel()

	d.Success("first")
	d.Error("second")
	d.Warning("third")

	first := <-ch
	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, "first", first.Message)
	assert.Equal(t, memberhub.LevelSuccess, first.Level)
	assert.Equal(t, now, first.EmittedAt)

	second := <-ch
	assert.Equal(t, uint64(2), second.Seq)
	assert.Equal(t, memberhub.LevelError, second.Level)
	assert.NotEqual(t, first.ID, second.ID)

	third := <-ch
	assert.Equal(t, uint64(3), third.Seq)
	assert.Equal(t, memberhub.LevelWarning, third.Level)
}

func TestDispatcherDropsWhenSubscriberStalls(t *testing.T) {
	d := memberhub.NewDispatcher()

	ch, cancel := d.Subscribe()
	defer cancel()

	// the subscriber buffer holds 16; anything beyond is dropped, not blocked
	for i := 0; i < 40; i++ {
		d.Info("flood")
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
		default:
			assert.Equal(t, 16, received)
			return
		}
	}
}

func TestDispatcherSubscribeCancelClosesChannel(t *testing.T) {
	d := memberhub.NewDispatcher()

	ch, cancel := d.Subscribe()
	cancel()

	_, open := <-ch
	require.False(t, open)

	d.Info("after cancel") // must not panic
	cancel()               // second cancel is a no-op
}

func TestNotifierFuncNilSafe(t *testing.T) {
	var fn memberhub.NotifierFunc
	fn.Notify("ignored", memberhub.LevelInfo) // must not panic

	var got string
	memberhub.NotifierFunc(func(message string, _ memberhub.Level) {
		got = message
	}).Notify("hello", memberhub.LevelSuccess)
	assert.Equal(t, "hello", got)
}
