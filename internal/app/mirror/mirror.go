/*
Package mirror is the client-local persisted copy of the shared document.

The five collections live under fixed keys of a Pebble database so the client
keeps working from its last known state when the snapshot server is
unreachable. The same database caches the logged-in identity and the
remembered session token.
*/
package mirror

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/pebble"

	"messenger/internal/app/model"
)

// Fixed keys.
const (
	KeyUsers         = "messenger/users"
	KeyConversations = "messenger/conversations"
	KeyRoles         = "messenger/roles"
	KeyCountryBans   = "messenger/country_bans"
	KeyAds           = "messenger/ads"
	KeyCurrentUser   = "messenger/current_user"
	KeySession       = "messenger/session"
)

// Mirror is a Pebble-backed key/value copy of the document.
type Mirror struct {
	db *pebble.DB
}

// Open opens or creates the mirror database at path.
func Open(path string) (*Mirror, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create mirror directory: %w", err)
	}
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror at %s: %w", path, err)
	}
	return &Mirror{db: db}, nil
}

// Close releases the database. Closing twice is a no-op.
func (m *Mirror) Close() error {
	if m == nil || m.db == nil {
		return nil
	}
	db := m.db
	m.db = nil
	return db.Close()
}

// Store writes every collection of snap in one batch. Nil collections are
// written as empty ones.
func (m *Mirror) Store(snap model.Snapshot) error {
	b := m.db.NewBatch()
	defer b.Close()

	entries := []struct {
		key   string
		value any
	}{
		{KeyUsers, nonNil(snap.Users)},
		{KeyConversations, nonNil(snap.Conversations)},
		{KeyRoles, nonNil(snap.Roles)},
		{KeyCountryBans, nonNil(snap.CountryBans)},
		{KeyAds, nonNil(snap.Ads)},
	}
	for _, e := range entries {
		raw, err := json.Marshal(e.value)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", e.key, err)
		}
		if err := b.Set([]byte(e.key), raw, nil); err != nil {
			return err
		}
	}

	return b.Commit(pebble.Sync)
}

// Load reads the mirrored document. ok is false when the mirror has never
// held a user collection. Collections missing from the mirror stay nil.
func (m *Mirror) Load() (snap model.Snapshot, ok bool, err error) {
	found, err := m.get(KeyUsers, &snap.Users)
	if err != nil || !found {
		return model.Snapshot{}, false, err
	}

	if _, err := m.get(KeyConversations, &snap.Conversations); err != nil {
		return model.Snapshot{}, false, err
	}
	if _, err := m.get(KeyRoles, &snap.Roles); err != nil {
		return model.Snapshot{}, false, err
	}
	if _, err := m.get(KeyCountryBans, &snap.CountryBans); err != nil {
		return model.Snapshot{}, false, err
	}
	if _, err := m.get(KeyAds, &snap.Ads); err != nil {
		return model.Snapshot{}, false, err
	}

	return snap, true, nil
}

// CurrentUser returns the cached logged-in user ID.
func (m *Mirror) CurrentUser() (string, bool, error) {
	var id string
	found, err := m.get(KeyCurrentUser, &id)
	return id, found && id != "", err
}

// Session returns the remembered session token.
func (m *Mirror) Session() (string, bool, error) {
	var token string
	found, err := m.get(KeySession, &token)
	return token, found && token != "", err
}

// SetSession caches the logged-in identity together with its session token.
func (m *Mirror) SetSession(userID, token string) error {
	b := m.db.NewBatch()
	defer b.Close()

	for key, value := range map[string]string{KeyCurrentUser: userID, KeySession: token} {
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		if err := b.Set([]byte(key), raw, nil); err != nil {
			return err
		}
	}
	return b.Commit(pebble.Sync)
}

// ClearSession forgets the logged-in identity.
func (m *Mirror) ClearSession() error {
	b := m.db.NewBatch()
	defer b.Close()

	if err := b.Delete([]byte(KeyCurrentUser), nil); err != nil {
		return err
	}
	if err := b.Delete([]byte(KeySession), nil); err != nil {
		return err
	}
	return b.Commit(pebble.Sync)
}

// get decodes the value at key into dst and reports whether it existed.
func (m *Mirror) get(key string, dst any) (bool, error) {
	v, closer, err := m.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	defer closer.Close()

	if err := json.Unmarshal(v, dst); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
