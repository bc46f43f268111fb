package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger/internal/app/chat"
	"messenger/internal/app/mirror"
	"messenger/internal/app/model"
	"messenger/internal/app/store"
	"messenger/internal/app/syncer"
	"messenger/internal/configs"
	"messenger/internal/pkg/auth/jwt"
	"messenger/internal/pkg/errs"
)

type unreachable struct{}

func (unreachable) Fetch(context.Context) (model.Snapshot, error) {
	return model.Snapshot{}, errors.New("connection refused")
}

func (unreachable) Push(context.Context, model.Snapshot) error {
	return errors.New("connection refused")
}

func newTestApp(t *testing.T) *App {
	t.Helper()

	m, err := mirror.Open(filepath.Join(t.TempDir(), "mirror"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	s := store.New()
	require.NoError(t, s.Seed("admin"))

	return &App{
		cfg:    &configs.ClientConfig{SessionSecret: "test-secret"},
		mirror: m,
		ctl:    syncer.New(s, unreachable{}, m),
		chat:   chat.NewManager(s),
		out:    &bytes.Buffer{},
	}
}

func (a *App) register(t *testing.T, username string) model.User {
	t.Helper()

	var u model.User
	require.NoError(t, a.ctl.Do(context.Background(), func(s *store.Store) error {
		var err error
		u, err = s.Register(username, "secret", "", "")
		return err
	}))
	return u
}

func (a *App) update(t *testing.T, id string, upd store.ProfileUpdate) model.User {
	t.Helper()

	var u model.User
	require.NoError(t, a.ctl.Do(context.Background(), func(s *store.Store) error {
		var err error
		u, err = s.UpdateProfile(id, upd)
		return err
	}))
	return u
}

func TestCurrentUserWithoutSession(t *testing.T) {
	a := newTestApp(t)

	_, err := a.currentUser()
	assert.ErrorIs(t, err, errs.NewError(errs.ErrSessionInvalid))
}

func TestCurrentUserRestoresSession(t *testing.T) {
	a := newTestApp(t)
	alice := a.register(t, "alice")
	require.NoError(t, a.rememberSession(alice))

	u, err := a.currentUser()
	require.NoError(t, err)
	assert.Equal(t, alice.ID, u.ID)
}

func TestPasswordChangeInvalidatesSession(t *testing.T) {
	a := newTestApp(t)
	alice := a.register(t, "alice")
	require.NoError(t, a.rememberSession(alice))

	newSecret := "another-secret"
	updated := a.update(t, alice.ID, store.ProfileUpdate{Password: &newSecret})
	require.NotEqual(t, alice.PasswordHash, updated.PasswordHash)

	_, err := a.currentUser()
	assert.ErrorIs(t, err, errs.NewError(errs.ErrSessionInvalid))

	require.NoError(t, a.rememberSession(updated))
	u, err := a.currentUser()
	require.NoError(t, err)
	assert.Equal(t, alice.ID, u.ID)
}

func TestCurrentUserRejects(t *testing.T) {
	t.Run("forged token", func(t *testing.T) {
		a := newTestApp(t)
		alice := a.register(t, "alice")

		token, err := jwt.GenerateToken(&jwt.Payload{
			ID:         alice.ID,
			Username:   alice.Username,
			Credential: jwt.CredentialFingerprint(alice.PasswordHash),
		}, "other-secret", jwt.SessionExpiration)
		require.NoError(t, err)
		require.NoError(t, a.mirror.SetSession(alice.ID, token))

		_, err = a.currentUser()
		assert.ErrorIs(t, err, errs.NewError(errs.ErrSessionInvalid))
	})

	t.Run("banned account", func(t *testing.T) {
		a := newTestApp(t)
		alice := a.register(t, "alice")
		require.NoError(t, a.rememberSession(alice))

		banned := true
		a.update(t, alice.ID, store.ProfileUpdate{IsBanned: &banned})

		_, err := a.currentUser()
		assert.ErrorIs(t, err, errs.NewError(errs.ErrAccountBanned))
	})

	t.Run("deleted account", func(t *testing.T) {
		a := newTestApp(t)
		alice := a.register(t, "alice")
		require.NoError(t, a.rememberSession(alice))

		require.NoError(t, a.ctl.Do(context.Background(), func(s *store.Store) error {
			return s.DeleteUser(alice.ID)
		}))

		_, err := a.currentUser()
		assert.ErrorIs(t, err, errs.NewError(errs.ErrSessionInvalid))
	})
}

func TestRequireAdmin(t *testing.T) {
	a := newTestApp(t)
	alice := a.register(t, "alice")
	require.NoError(t, a.rememberSession(alice))

	_, err := a.requireAdmin()
	assert.ErrorIs(t, err, errs.NewError(errs.ErrNotGroupAdmin))

	var admin model.User
	a.ctl.Read(func(s *store.Store) { admin, _ = s.UserByUsername("admin") })
	require.NoError(t, a.rememberSession(admin))

	u, err := a.requireAdmin()
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
}

func TestLookup(t *testing.T) {
	a := newTestApp(t)
	alice := a.register(t, "alice")
	bob := a.register(t, "bob")

	a.ctl.Read(func(s *store.Store) {
		u, err := lookup(s, "ALICE")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, u.ID)

		u, err = lookup(s, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, "bob", u.Username)

		ids, err := lookupAll(s, []string{"alice", "bob"})
		require.NoError(t, err)
		assert.Equal(t, []string{alice.ID, bob.ID}, ids)

		_, err = lookupAll(s, []string{"alice", "nobody"})
		assert.ErrorIs(t, err, errs.NewError(errs.ErrUserNotFound))
		assert.Contains(t, err.Error(), "nobody")
	})
}
