package session

import (
	"context"
	"testing"
	"time"

	"github.com/mahalaxmi-group/site-api/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(ttl time.Duration) (*Store, *testClock) {
	clock := &testClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	s := NewStore(ttl)
	s.now = clock.Now
	return s, clock
}

func TestStore_SaveGet(t *testing.T) {
	s, clock := newTestStore(time.Hour)

	sess := domain.NewSession("sid-1", clock.Now())
	sess.RecordSubmit(clock.Now())
	s.Save(sess)

	got, ok := s.Get("sid-1")
	require.True(t, ok)
	assert.Equal(t, sess.LastSubmitAt, got.LastSubmitAt)
	assert.False(t, got.Modified(), "loaded sessions start clean")

	got.SignIn(clock.Now())
	again, _ := s.Get("sid-1")
	assert.False(t, again.Admin.Authenticated, "mutating a copy must not leak into the store")
}

func TestStore_IdleExpiry(t *testing.T) {
	s, clock := newTestStore(time.Hour)
	s.Save(domain.NewSession("sid-1", clock.Now()))

	clock.Advance(50 * time.Minute)
	_, ok := s.Get("sid-1")
	require.True(t, ok, "access refreshes the idle timer")

	clock.Advance(50 * time.Minute)
	_, ok = s.Get("sid-1")
	require.True(t, ok)

	clock.Advance(61 * time.Minute)
	_, ok = s.Get("sid-1")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestStore_Sweep(t *testing.T) {
	s, clock := newTestStore(time.Hour)
	s.Save(domain.NewSession("old", clock.Now()))
	clock.Advance(30 * time.Minute)
	s.Save(domain.NewSession("fresh", clock.Now()))
	clock.Advance(45 * time.Minute)

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())
	_, ok := s.Get("fresh")
	assert.True(t, ok)
}

func TestStore_Delete(t *testing.T) {
	s, clock := newTestStore(time.Hour)
	s.Save(domain.NewSession("sid-1", clock.Now()))
	s.Delete("sid-1")
	_, ok := s.Get("sid-1")
	assert.False(t, ok)
}

func TestStore_BackgroundCleanup(t *testing.T) {
	s := NewStore(time.Millisecond)
	s.Save(domain.NewSession("sid-1", time.Now()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.StartBackgroundCleanup(ctx, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
}
