package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger/internal/app/model"
	"messenger/internal/pkg/errs"
	"messenger/internal/pkg/randx"
)

func newSeeded(t *testing.T) *Store {
	t.Helper()
	s := New(WithClock(func() time.Time { return time.UnixMilli(1_700_000_000_000) }))
	require.NoError(t, s.Seed("admin"))
	return s
}

func register(t *testing.T, s *Store, username, country string) model.User {
	t.Helper()
	u, err := s.Register(username, "secret", "", country)
	require.NoError(t, err)
	return u
}

func TestSeed(t *testing.T) {
	s := newSeeded(t)

	admin, ok := s.UserByUsername("admin")
	require.True(t, ok)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.True(t, admin.IsVerified)
	assert.Equal(t, model.StatusOffline, admin.Status)

	for _, id := range []string{model.RoleAdmin, model.RoleUser, model.RoleBanned, "MODERATOR"} {
		_, ok := s.Role(id)
		assert.True(t, ok, id)
	}
	assert.Len(t, s.Ads(), 2)
	assert.Empty(t, s.CountryBans())
	assert.Empty(t, s.AllConversations())
}

func TestEnsureSystem(t *testing.T) {
	s := New()
	s.Replace(model.Snapshot{
		Users:         []model.User{},
		Conversations: []model.Conversation{},
		Roles:         []model.Role{{ID: "MODERATOR", Name: "Moderator"}},
	})

	changed, err := s.EnsureSystem("admin")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, s.Roles(), 4)

	_, ok := s.UserByUsername("admin")
	assert.True(t, ok)

	changed, err = s.EnsureSystem("admin")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestRegister(t *testing.T) {
	s := newSeeded(t)

	u := register(t, s, "Alice", "")
	assert.True(t, randx.HasPrefix(u.ID, randx.PrefixUser))
	assert.Equal(t, "Alice", u.DisplayName)
	assert.Equal(t, "US", u.Country)
	assert.Equal(t, model.RoleUser, u.Role)
	assert.Equal(t, model.StatusOnline, u.Status)
	assert.NotEqual(t, "secret", u.PasswordHash)
	assert.Equal(t, AvatarFor("Alice"), u.AvatarURL)

	t.Run("username is case-insensitively unique", func(t *testing.T) {
		_, err := s.Register("alice", "secret", "", "")
		assert.ErrorIs(t, err, errs.NewError(errs.ErrUsernameTaken))
	})

	t.Run("invalid username", func(t *testing.T) {
		_, err := s.Register("a b", "secret", "", "")
		assert.ErrorIs(t, err, errs.NewError(errs.ErrInvalidUsername))
	})

	t.Run("short password", func(t *testing.T) {
		_, err := s.Register("bob", "ab", "", "")
		assert.ErrorIs(t, err, errs.NewError(errs.ErrInvalidPassword))
	})
}

func TestLogin(t *testing.T) {
	s := newSeeded(t)
	u := register(t, s, "alice", "de")
	require.NoError(t, s.Logout(u.ID))

	got, _ := s.User(u.ID)
	assert.Equal(t, model.StatusOffline, got.Status)

	_, err := s.Login("alice", "wrong")
	assert.ErrorIs(t, err, errs.NewError(errs.ErrInvalidCredentials))

	_, err = s.Login("nobody", "secret")
	assert.ErrorIs(t, err, errs.NewError(errs.ErrInvalidCredentials))

	got, err = s.Login("ALICE", "secret")
	require.NoError(t, err)
	assert.Equal(t, model.StatusOnline, got.Status)
	assert.Equal(t, "DE", got.Country)

	_, err = s.SetBanned(u.ID, true)
	require.NoError(t, err)
	_, err = s.Login("alice", "secret")
	assert.ErrorIs(t, err, errs.NewError(errs.ErrAccountBanned))
}

func TestUpdateProfile(t *testing.T) {
	s := newSeeded(t)
	alice := register(t, s, "alice", "")
	register(t, s, "bob", "")

	taken := "BOB"
	_, err := s.UpdateProfile(alice.ID, ProfileUpdate{Username: &taken})
	assert.ErrorIs(t, err, errs.NewError(errs.ErrUsernameTaken))

	role := "NOPE"
	display := "Ally"
	_, err = s.UpdateProfile(alice.ID, ProfileUpdate{Role: &role, DisplayName: &display})
	assert.ErrorIs(t, err, errs.NewError(errs.ErrRoleNotFound))

	got, _ := s.User(alice.ID)
	assert.Equal(t, "alice", got.DisplayName, "a failed update writes nothing")

	same := "Alice"
	country := " fr "
	got, err = s.UpdateProfile(alice.ID, ProfileUpdate{Username: &same, DisplayName: &display, Country: &country})
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Username)
	assert.Equal(t, "Ally", got.DisplayName)
	assert.Equal(t, "FR", got.Country)
}

func TestModifiers(t *testing.T) {
	s := newSeeded(t)
	u := register(t, s, "alice", "")

	got, err := s.SetModifiers(u.ID, []model.Modifier{model.ModifierAlwaysOnline, model.ModifierVIP, model.ModifierVIP})
	require.NoError(t, err)
	assert.Equal(t, []model.Modifier{model.ModifierAlwaysOnline, model.ModifierVIP}, got.Modifiers)

	require.NoError(t, s.Logout(u.ID))
	viewed, _ := s.User(u.ID)
	assert.Equal(t, model.StatusOnline, viewed.Status, "always-online overrides the stored status")
	assert.Equal(t, 1, s.Stats().ActiveNow)

	got, err = s.SetModifiers(u.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, got.Modifiers)
}

func TestAccessorsReturnCopies(t *testing.T) {
	s := newSeeded(t)
	u := register(t, s, "alice", "")
	bob := register(t, s, "bob", "")
	_, err := s.ToggleBlock(u.ID, bob.ID)
	require.NoError(t, err)

	got, _ := s.User(u.ID)
	got.BlockedUserIDs[0] = "tampered"
	got.DisplayName = "tampered"

	again, _ := s.User(u.ID)
	assert.Equal(t, []string{bob.ID}, again.BlockedUserIDs)
	assert.Equal(t, "alice", again.DisplayName)
}

func TestToggleBlock(t *testing.T) {
	s := newSeeded(t)
	a := register(t, s, "alice", "")
	b := register(t, s, "bob", "")

	got, err := s.ToggleBlock(a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, got.HasBlocked(b.ID))

	got, err = s.ToggleBlock(a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, got.HasBlocked(b.ID))

	_, err = s.ToggleBlock(a.ID, "user-missing")
	assert.ErrorIs(t, err, errs.NewError(errs.ErrUserNotFound))
}

func TestContactsAndSearch(t *testing.T) {
	s := newSeeded(t)
	a := register(t, s, "alice", "")
	b := register(t, s, "bob", "")
	c := register(t, s, "bobby", "")

	s.InsertConversation(&model.Conversation{ID: "conv-1", Participants: []string{a.ID, b.ID}})
	s.InsertConversation(&model.Conversation{ID: "conv-2", Participants: []string{a.ID, c.ID}})

	assert.Len(t, s.Contacts(a.ID), 2)

	_, err := s.ToggleBlock(c.ID, a.ID)
	require.NoError(t, err)
	contacts := s.Contacts(a.ID)
	require.Len(t, contacts, 1)
	assert.Equal(t, b.ID, contacts[0].ID)

	found := s.Search(b.ID, "BOB")
	require.Len(t, found, 1)
	assert.Equal(t, c.ID, found[0].ID, "the viewer is excluded")
	assert.Empty(t, s.Search(a.ID, "  "))
}

func TestDeleteUser(t *testing.T) {
	s := newSeeded(t)
	a := register(t, s, "alice", "")
	b := register(t, s, "bob", "")
	c := register(t, s, "carol", "")

	s.InsertConversation(&model.Conversation{ID: "conv-ab", Participants: []string{a.ID, b.ID}})
	s.InsertConversation(&model.Conversation{ID: "group-abc", IsGroup: true, Participants: []string{a.ID, b.ID, c.ID}})
	s.InsertConversation(&model.Conversation{ID: "conv-bc", Participants: []string{b.ID, c.ID}})

	require.NoError(t, s.DeleteUser(a.ID))

	_, ok := s.User(a.ID)
	assert.False(t, ok)

	convs := s.AllConversations()
	require.Len(t, convs, 1)
	assert.Equal(t, "conv-bc", convs[0].ID)

	assert.ErrorIs(t, s.DeleteUser(a.ID), errs.NewError(errs.ErrUserNotFound))
}

func TestRoles(t *testing.T) {
	s := newSeeded(t)
	u := register(t, s, "alice", "")

	role, err := s.AddRole("Super Star", "shiny", "gold")
	require.NoError(t, err)
	assert.Equal(t, "SUPER_STAR", role.ID)
	assert.False(t, role.IsSystem)

	_, err = s.AddRole("super star", "", "")
	assert.ErrorIs(t, err, errs.NewError(errs.ErrRoleExists))

	_, err = s.AddRole("   ", "", "")
	assert.ErrorIs(t, err, errs.NewError(errs.ErrInvalidParams))

	_, err = s.UpdateProfile(u.ID, ProfileUpdate{Role: &role.ID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteRole(role.ID))
	got, _ := s.User(u.ID)
	assert.Equal(t, model.RoleUser, got.Role, "holders fall back to the default role")

	assert.ErrorIs(t, s.DeleteRole(role.ID), errs.NewError(errs.ErrRoleNotFound))
	assert.ErrorIs(t, s.DeleteRole(model.RoleAdmin), errs.NewError(errs.ErrSystemRoleProtected))
}

func TestCountryBans(t *testing.T) {
	s := newSeeded(t)
	u := register(t, s, "alice", "de")

	full, err := s.AddCountryBan(" ru ", model.BanFullChat, "ignored", "ignored")
	require.NoError(t, err)
	assert.Equal(t, "RU", full.CountryCode)
	assert.Empty(t, full.TargetRoleID)
	assert.Empty(t, full.TargetUserID)

	_, err = s.AddCountryBan("", model.BanFullChat, "", "")
	assert.ErrorIs(t, err, errs.NewError(errs.ErrInvalidBan))

	_, err = s.AddCountryBan("DE", model.BanRoleInteraction, "NOPE", "")
	assert.ErrorIs(t, err, errs.NewError(errs.ErrRoleNotFound))

	_, err = s.AddCountryBan("DE", model.BanUsername, "", "user-missing")
	assert.ErrorIs(t, err, errs.NewError(errs.ErrUserNotFound))

	byName, err := s.BanUsername("ALICE")
	require.NoError(t, err)
	assert.Equal(t, "DE", byName.CountryCode)
	assert.Equal(t, u.ID, byName.TargetUserID)

	bans := s.CountryBans()
	require.Len(t, bans, 2)
	assert.Equal(t, full.ID, bans[0].ID, "stored order is insertion order")

	require.NoError(t, s.DeleteCountryBan(full.ID))
	assert.ErrorIs(t, s.DeleteCountryBan(full.ID), errs.NewError(errs.ErrBanNotFound))
	assert.Len(t, s.CountryBans(), 1)
}

func TestAds(t *testing.T) {
	s := newSeeded(t)

	ad, err := s.AddAd("Spring", "Sale", "https://example.com/p.png", "")
	require.NoError(t, err)
	assert.Len(t, s.Ads(), 3)

	require.NoError(t, s.DeleteAd(ad.ID))
	assert.ErrorIs(t, s.DeleteAd(ad.ID), errs.NewError(errs.ErrAdNotFound))
}

func TestConversationsOfOrdering(t *testing.T) {
	s := newSeeded(t)
	s.InsertConversation(&model.Conversation{ID: "old", Participants: []string{"u1", "u2"}, LastMessageTimestamp: 10})
	s.InsertConversation(&model.Conversation{ID: "new", Participants: []string{"u1", "u3"}, LastMessageTimestamp: 30})
	s.InsertConversation(&model.Conversation{ID: "other", Participants: []string{"u2", "u3"}, LastMessageTimestamp: 20})

	convs := s.ConversationsOf("u1")
	require.Len(t, convs, 2)
	assert.Equal(t, "new", convs[0].ID)
	assert.Equal(t, "old", convs[1].ID)

	assert.NotNil(t, s.FindDirect("u2", "u1"))
	assert.Nil(t, s.FindDirect("u1", "u4"))

	_, err := s.Conversation("missing")
	assert.ErrorIs(t, err, errs.NewError(errs.ErrConversationNotFound))
}

func TestSnapshotReplace(t *testing.T) {
	s := newSeeded(t)
	register(t, s, "alice", "")

	snap := s.Snapshot()
	assert.Len(t, snap.Users, 2)
	assert.NotNil(t, snap.CountryBans)
	assert.NotNil(t, snap.Conversations)

	other := New()
	other.Replace(snap)
	assert.Len(t, other.Users(), 2)
	assert.Len(t, other.Roles(), 4)

	// Absent collections leave the current ones alone.
	other.Replace(model.Snapshot{Users: []model.User{}})
	assert.Empty(t, other.Users())
	assert.Len(t, other.Roles(), 4)
}
