/*
Package model defines the entities of the shared messenger document.

Every type here is serialized verbatim into the snapshot held by the transport
server and into the local mirror, so JSON tags are part of the wire format.
Timestamps are Unix milliseconds.
*/
package model

import (
	"fmt"
	"slices"
)

// Status is the presence state a user advertises.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
	StatusBusy    Status = "busy"
)

// Modifier is a per-user behavioural flag set by administrators.
// The set is closed: decoding an unknown modifier fails.
type Modifier string

const (
	// ModifierAlwaysOnline forces the user's effective status to online.
	ModifierAlwaysOnline Modifier = "ALWAYS_ONLINE"

	// ModifierVIP marks a user for display purposes only.
	ModifierVIP Modifier = "VIP"

	// ModifierChatRestricted rejects every message the user tries to send.
	ModifierChatRestricted Modifier = "CANT_CHAT"

	// ModifierMessagesHidden hides conversation history from the user.
	ModifierMessagesHidden Modifier = "CANT_SEE_MESSAGES"
)

// ParseModifier returns the Modifier named by s.
func ParseModifier(s string) (Modifier, error) {
	m := Modifier(s)
	switch m {
	case ModifierAlwaysOnline, ModifierVIP, ModifierChatRestricted, ModifierMessagesHidden:
		return m, nil
	default:
		return "", fmt.Errorf("unknown user modifier %q", s)
	}
}

// UnmarshalText rejects modifiers outside the closed set.
func (m *Modifier) UnmarshalText(text []byte) error {
	parsed, err := ParseModifier(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// FilterLevel selects how aggressively the content filter masks words.
type FilterLevel string

const (
	FilterLow    FilterLevel = "low"
	FilterMedium FilterLevel = "medium"
	FilterMax    FilterLevel = "max"
)

// Preferences is the per-user settings bundle.
type Preferences struct {
	ThemeColor    string      `json:"themeColor"`
	Language      string      `json:"language"`
	FilterEnabled bool        `json:"censorshipEnabled,omitempty"`
	FilterLevel   FilterLevel `json:"censorshipLevel,omitempty"`
}

// DefaultPreferences is the bundle given to newly registered users.
func DefaultPreferences() Preferences {
	return Preferences{
		ThemeColor:  "blue",
		Language:    "en",
		FilterLevel: FilterMedium,
	}
}

// User is a registered account.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`

	// PasswordHash is a bcrypt hash; the clear secret is never stored.
	PasswordHash string `json:"passwordHash"`

	Role           string      `json:"role"`
	AvatarURL      string      `json:"avatarUrl"`
	Status         Status      `json:"status"`
	LastSeen       int64       `json:"lastSeen"`
	Country        string      `json:"country"`
	BlockedUserIDs []string    `json:"blockedUserIds"`
	Modifiers      []Modifier  `json:"modifiers,omitempty"`
	Preferences    Preferences `json:"preferences"`
	IsBanned       bool        `json:"isBanned,omitempty"`
	IsVerified     bool        `json:"isVerified,omitempty"`
	AutoMessage    string      `json:"autoMessage,omitempty"`
}

// HasModifier reports whether the user carries m.
func (u User) HasModifier(m Modifier) bool {
	return slices.Contains(u.Modifiers, m)
}

// HasBlocked reports whether the user has blocked userID.
func (u User) HasBlocked(userID string) bool {
	return slices.Contains(u.BlockedUserIDs, userID)
}

// Effective returns the user as others should see it: status is forced to
// online when the always-online modifier is set, regardless of the stored value.
func (u User) Effective() User {
	for _, m := range u.Modifiers {
		switch m {
		case ModifierAlwaysOnline:
			u.Status = StatusOnline
		case ModifierVIP, ModifierChatRestricted, ModifierMessagesHidden:
		}
	}
	return u
}

// Clone returns a deep copy so callers cannot alias store-owned slices.
func (u User) Clone() User {
	u.BlockedUserIDs = slices.Clone(u.BlockedUserIDs)
	u.Modifiers = slices.Clone(u.Modifiers)
	return u
}
