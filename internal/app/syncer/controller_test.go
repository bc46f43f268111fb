package syncer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger/internal/app/mirror"
	"messenger/internal/app/model"
	"messenger/internal/app/store"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Fetch(ctx context.Context) (model.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.Snapshot), args.Error(1)
}

func (m *MockTransport) Push(ctx context.Context, snap model.Snapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

var errUnreachable = errors.New("connection refused")

func openMirror(t *testing.T) *mirror.Mirror {
	t.Helper()
	m, err := mirror.Open(filepath.Join(t.TempDir(), "mirror"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func seededSnapshot(t *testing.T, usernames ...string) model.Snapshot {
	t.Helper()
	s := store.New()
	require.NoError(t, s.Seed("admin"))
	for _, name := range usernames {
		_, err := s.Register(name, "secret", "", "")
		require.NoError(t, err)
	}
	return s.Snapshot()
}

func TestInitializeSeedsEmptyServer(t *testing.T) {
	tr := new(MockTransport)
	tr.On("Fetch", mock.Anything).Return(model.EmptyDocument(), nil).Once()
	tr.On("Push", mock.Anything, mock.MatchedBy(func(snap model.Snapshot) bool {
		return len(snap.Users) == 1 && snap.Users[0].Username == "admin" && len(snap.Roles) == 4
	})).Return(nil).Once()

	s := store.New()
	c := New(s, tr, openMirror(t), WithAdminPassword("s3cret"))
	require.NoError(t, c.Initialize(context.Background()))

	assert.True(t, c.Online())
	_, err := s.Login("admin", "s3cret")
	assert.NoError(t, err)
	tr.AssertExpectations(t)
}

func TestInitializeLeavesCompleteDocumentAlone(t *testing.T) {
	snap := seededSnapshot(t, "alice")

	tr := new(MockTransport)
	tr.On("Fetch", mock.Anything).Return(snap, nil).Once()

	s := store.New()
	c := New(s, tr, openMirror(t))
	require.NoError(t, c.Initialize(context.Background()))

	assert.Len(t, s.Users(), 2)
	tr.AssertNotCalled(t, "Push", mock.Anything, mock.Anything)
}

func TestOfflineFallsBackToMirror(t *testing.T) {
	m := openMirror(t)
	snap := seededSnapshot(t, "alice", "bob")
	require.NoError(t, m.Store(snap))

	tr := new(MockTransport)
	tr.On("Fetch", mock.Anything).Return(model.Snapshot{}, errUnreachable)

	s := store.New()
	c := New(s, tr, m)
	require.NoError(t, c.Initialize(context.Background()))

	assert.False(t, c.Online())
	assert.Len(t, s.Users(), 3, "the mirror is served while offline")

	// Offline saves reach the mirror and skip the server.
	require.NoError(t, c.Do(context.Background(), func(s *store.Store) error {
		_, err := s.Register("carol", "secret", "", "")
		return err
	}))
	tr.AssertNotCalled(t, "Push", mock.Anything, mock.Anything)

	mirrored, ok, err := m.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, mirrored.Users, 4)
}

func TestFetchTimeout(t *testing.T) {
	tr := new(MockTransport)
	tr.On("Fetch", mock.Anything).Return(model.Snapshot{}, context.DeadlineExceeded).Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		deadline, ok := ctx.Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)
	})

	c := New(store.New(), tr, openMirror(t), WithFetchTimeout(50*time.Millisecond))
	c.Sync(context.Background())

	assert.False(t, c.Online())
	tr.AssertExpectations(t)
}

func TestReconnect(t *testing.T) {
	m := openMirror(t)
	remote := seededSnapshot(t, "alice")

	tr := new(MockTransport)
	tr.On("Fetch", mock.Anything).Return(model.Snapshot{}, errUnreachable).Once()
	tr.On("Fetch", mock.Anything).Return(remote, nil).Once()

	s := store.New()
	c := New(s, tr, m)

	c.Sync(context.Background())
	assert.False(t, c.Online())

	c.Sync(context.Background())
	assert.True(t, c.Online())
	assert.Len(t, s.Users(), 2)

	mirrored, ok, err := m.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, mirrored.Users, 2, "a successful pull refreshes the mirror")
}

func TestPushFailureGoesOffline(t *testing.T) {
	tr := new(MockTransport)
	tr.On("Fetch", mock.Anything).Return(seededSnapshot(t), nil).Once()
	tr.On("Push", mock.Anything, mock.Anything).Return(errUnreachable).Once()

	s := store.New()
	c := New(s, tr, openMirror(t))
	require.NoError(t, c.Initialize(context.Background()))
	require.True(t, c.Online())

	require.NoError(t, c.Do(context.Background(), func(s *store.Store) error {
		_, err := s.AddAd("Sale", "", "", "")
		return err
	}))
	assert.False(t, c.Online())

	// The next save stays local.
	require.NoError(t, c.Do(context.Background(), func(s *store.Store) error {
		_, err := s.AddAd("Another", "", "", "")
		return err
	}))
	tr.AssertNumberOfCalls(t, "Push", 1)
}

func TestLastWriterWins(t *testing.T) {
	tr := new(MockTransport)
	tr.On("Fetch", mock.Anything).Return(seededSnapshot(t, "alice"), nil).Once()

	var pushed model.Snapshot
	tr.On("Push", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		pushed = args.Get(1).(model.Snapshot)
	})

	s := store.New()
	c := New(s, tr, openMirror(t))
	require.NoError(t, c.Initialize(context.Background()))

	require.NoError(t, c.Do(context.Background(), func(s *store.Store) error {
		_, err := s.AddRole("Helper", "", "")
		return err
	}))
	assert.Len(t, pushed.Users, 2, "the whole document is pushed")
	assert.Len(t, pushed.Roles, 5)
}

func TestDoErrorSkipsSave(t *testing.T) {
	tr := new(MockTransport)
	tr.On("Fetch", mock.Anything).Return(seededSnapshot(t), nil).Once()

	c := New(store.New(), tr, openMirror(t))
	require.NoError(t, c.Initialize(context.Background()))

	err := c.Do(context.Background(), func(s *store.Store) error {
		return s.DeleteAd("ad-missing")
	})
	assert.Error(t, err)
	tr.AssertNotCalled(t, "Push", mock.Anything, mock.Anything)
}

func TestRunStopsOnCancel(t *testing.T) {
	tr := new(MockTransport)
	tr.On("Fetch", mock.Anything).Return(seededSnapshot(t), nil)

	c := New(store.New(), tr, openMirror(t))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		c.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		var n int
		c.Read(func(s *store.Store) { n = len(s.Users()) })
		return n == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
