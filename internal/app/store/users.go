package store

import (
	"fmt"
	"slices"
	"strings"

	"messenger/internal/app/model"
	"messenger/internal/pkg/auth/password"
	"messenger/internal/pkg/errs"
	"messenger/internal/pkg/randx"
)

const defaultCountry = "US"

// AvatarFor returns the generated placeholder avatar for seed.
func AvatarFor(seed string) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/200/200", seed)
}

func normalizeCountry(country string) string {
	country = strings.ToUpper(strings.TrimSpace(country))
	if country == "" {
		return defaultCountry
	}
	return country
}

// userRef returns the stored user, or nil.
func (s *Store) userRef(id string) *model.User {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *Store) userByUsernameRef(username string) *model.User {
	username = strings.ToLower(strings.TrimSpace(username))
	for _, u := range s.users {
		if strings.ToLower(u.Username) == username {
			return u
		}
	}
	return nil
}

// User returns the effective view of a user.
func (s *Store) User(id string) (model.User, bool) {
	u := s.userRef(id)
	if u == nil {
		return model.User{}, false
	}
	return u.Clone().Effective(), true
}

// Users returns the effective view of every user in stored order.
func (s *Store) Users() []model.User {
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Clone().Effective())
	}
	return out
}

// UserByUsername looks a user up by case-insensitive username.
func (s *Store) UserByUsername(username string) (model.User, bool) {
	u := s.userByUsernameRef(username)
	if u == nil {
		return model.User{}, false
	}
	return u.Clone().Effective(), true
}

// Register creates a self-service account with the default role. The new
// user starts online.
func (s *Store) Register(username, secret, displayName, country string) (model.User, error) {
	return s.insertUser(NewUser{
		Username:    username,
		Password:    secret,
		DisplayName: displayName,
		Country:     country,
		Role:        model.RoleUser,
	}, model.StatusOnline)
}

// NewUser is the admin form for creating accounts.
type NewUser struct {
	Username    string
	DisplayName string
	Password    string
	Role        string
	Country     string
}

// CreateUser creates an account on behalf of an administrator. The new user
// starts offline.
func (s *Store) CreateUser(form NewUser) (model.User, error) {
	if form.Role == "" {
		form.Role = model.RoleUser
	}
	if s.roleIndex(form.Role) < 0 {
		return model.User{}, errs.NewError(errs.ErrRoleNotFound)
	}
	return s.insertUser(form, model.StatusOffline)
}

func (s *Store) insertUser(form NewUser, status model.Status) (model.User, error) {
	username := strings.TrimSpace(form.Username)
	if err := password.ValidateUsername(username); err != nil {
		return model.User{}, err
	}
	if s.userByUsernameRef(username) != nil {
		return model.User{}, errs.NewError(errs.ErrUsernameTaken)
	}

	hash, err := password.Hash(form.Password)
	if err != nil {
		return model.User{}, err
	}

	displayName := strings.TrimSpace(form.DisplayName)
	if displayName == "" {
		displayName = username
	}

	u := &model.User{
		ID:             randx.ID(randx.PrefixUser),
		Username:       username,
		DisplayName:    displayName,
		PasswordHash:   hash,
		Role:           form.Role,
		AvatarURL:      AvatarFor(username),
		Status:         status,
		LastSeen:       s.NowMillis(),
		Country:        normalizeCountry(form.Country),
		BlockedUserIDs: []string{},
		Modifiers:      []model.Modifier{},
		Preferences:    model.DefaultPreferences(),
	}
	s.users = append(s.users, u)

	s.logger.Info().Str("user_id", u.ID).Str("username", u.Username).Msg("User registered.")
	return u.Clone(), nil
}

// Login verifies credentials and marks the account online.
func (s *Store) Login(username, secret string) (model.User, error) {
	u := s.userByUsernameRef(username)
	if u == nil || !password.Verify(u.PasswordHash, secret) {
		return model.User{}, errs.NewError(errs.ErrInvalidCredentials)
	}

	if u.IsBanned || u.Role == model.RoleBanned {
		return model.User{}, errs.NewError(errs.ErrAccountBanned)
	}

	u.Status = model.StatusOnline
	u.LastSeen = s.NowMillis()
	return u.Clone(), nil
}

// Logout marks the account offline.
func (s *Store) Logout(userID string) error {
	u := s.userRef(userID)
	if u == nil {
		return errs.NewError(errs.ErrUserNotFound)
	}
	u.Status = model.StatusOffline
	u.LastSeen = s.NowMillis()
	return nil
}

// ProfileUpdate lists the fields to change; nil fields are left alone.
type ProfileUpdate struct {
	Username    *string
	DisplayName *string
	Password    *string
	AvatarURL   *string
	Status      *model.Status
	Country     *string
	Preferences *model.Preferences
	AutoMessage *string

	// Administrative fields.
	Role       *string
	IsBanned   *bool
	IsVerified *bool
	Modifiers  []model.Modifier
}

// UpdateProfile applies upd to the user and returns the stored result.
// The whole update is validated before anything is written.
func (s *Store) UpdateProfile(userID string, upd ProfileUpdate) (model.User, error) {
	u := s.userRef(userID)
	if u == nil {
		return model.User{}, errs.NewError(errs.ErrUserNotFound)
	}

	next := u.Clone()

	if upd.Username != nil {
		name := strings.TrimSpace(*upd.Username)
		if err := password.ValidateUsername(name); err != nil {
			return model.User{}, err
		}
		if other := s.userByUsernameRef(name); other != nil && other.ID != userID {
			return model.User{}, errs.NewError(errs.ErrUsernameTaken)
		}
		next.Username = name
	}
	if upd.Password != nil {
		hash, err := password.Hash(*upd.Password)
		if err != nil {
			return model.User{}, err
		}
		next.PasswordHash = hash
	}
	if upd.Role != nil {
		if s.roleIndex(*upd.Role) < 0 {
			return model.User{}, errs.NewError(errs.ErrRoleNotFound)
		}
		next.Role = *upd.Role
	}
	if upd.DisplayName != nil {
		next.DisplayName = strings.TrimSpace(*upd.DisplayName)
	}
	if upd.AvatarURL != nil {
		next.AvatarURL = *upd.AvatarURL
	}
	if upd.Status != nil {
		next.Status = *upd.Status
	}
	if upd.Country != nil {
		next.Country = normalizeCountry(*upd.Country)
	}
	if upd.Preferences != nil {
		next.Preferences = *upd.Preferences
	}
	if upd.AutoMessage != nil {
		next.AutoMessage = *upd.AutoMessage
	}
	if upd.IsBanned != nil {
		next.IsBanned = *upd.IsBanned
	}
	if upd.IsVerified != nil {
		next.IsVerified = *upd.IsVerified
	}
	if upd.Modifiers != nil {
		next.Modifiers = compactModifiers(upd.Modifiers)
	}

	*u = next
	return u.Clone(), nil
}

func compactModifiers(in []model.Modifier) []model.Modifier {
	out := make([]model.Modifier, 0, len(in))
	for _, m := range in {
		if !slices.Contains(out, m) {
			out = append(out, m)
		}
	}
	return out
}

// DeleteUser removes the user and then every conversation they participate
// in. The two removals are sequential and not atomic.
func (s *Store) DeleteUser(userID string) error {
	idx := slices.IndexFunc(s.users, func(u *model.User) bool { return u.ID == userID })
	if idx < 0 {
		return errs.NewError(errs.ErrUserNotFound)
	}
	s.users = slices.Delete(s.users, idx, idx+1)

	removed := 0
	s.conversations = slices.DeleteFunc(s.conversations, func(c *model.Conversation) bool {
		if c.HasParticipant(userID) {
			removed++
			return true
		}
		return false
	})

	s.logger.Info().Str("user_id", userID).Int("conversations_removed", removed).Msg("User deleted.")
	return nil
}

// ToggleBlock flips targetID in the user's block list. History is untouched.
func (s *Store) ToggleBlock(userID, targetID string) (model.User, error) {
	me := s.userRef(userID)
	if me == nil || s.userRef(targetID) == nil {
		return model.User{}, errs.NewError(errs.ErrUserNotFound)
	}

	if idx := slices.Index(me.BlockedUserIDs, targetID); idx >= 0 {
		me.BlockedUserIDs = slices.Delete(me.BlockedUserIDs, idx, idx+1)
	} else {
		me.BlockedUserIDs = append(me.BlockedUserIDs, targetID)
	}
	return me.Clone(), nil
}

// Contacts returns the users sharing a conversation with viewerID, minus
// those who have blocked the viewer.
func (s *Store) Contacts(viewerID string) []model.User {
	ids := make(map[string]struct{})
	for _, c := range s.conversations {
		if !c.HasParticipant(viewerID) {
			continue
		}
		for _, p := range c.Participants {
			if p != viewerID {
				ids[p] = struct{}{}
			}
		}
	}

	out := []model.User{}
	for _, u := range s.users {
		if _, ok := ids[u.ID]; !ok || u.HasBlocked(viewerID) {
			continue
		}
		out = append(out, u.Clone().Effective())
	}
	return out
}

// Search returns users other than viewerID whose username contains query,
// case-insensitively.
func (s *Store) Search(viewerID, query string) []model.User {
	query = strings.ToLower(strings.TrimSpace(query))

	out := []model.User{}
	if query == "" {
		return out
	}
	for _, u := range s.users {
		if u.ID != viewerID && strings.Contains(strings.ToLower(u.Username), query) {
			out = append(out, u.Clone().Effective())
		}
	}
	return out
}

// SetBanned sets or clears the account ban flag. A banned account cannot log in.
func (s *Store) SetBanned(userID string, banned bool) (model.User, error) {
	return s.UpdateProfile(userID, ProfileUpdate{IsBanned: &banned})
}

// SetModifiers replaces the user's modifier set.
func (s *Store) SetModifiers(userID string, modifiers []model.Modifier) (model.User, error) {
	if modifiers == nil {
		modifiers = []model.Modifier{}
	}
	return s.UpdateProfile(userID, ProfileUpdate{Modifiers: modifiers})
}
