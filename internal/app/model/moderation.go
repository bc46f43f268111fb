package model

import "fmt"

// System role IDs. They always exist and cannot be deleted.
const (
	RoleAdmin  = "ADMIN"
	RoleUser   = "USER"
	RoleBanned = "BANNED"
)

// Role is an administrative label attached to users.
type Role struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Color       string `json:"color" yaml:"color"`
	IsSystem    bool   `json:"isSystem,omitempty" yaml:"isSystem"`
}

// BanKind selects what a CountryBan restricts.
type BanKind string

const (
	// BanFullChat blocks all messaging from the country.
	BanFullChat BanKind = "FULL_CHAT"

	// BanRoleInteraction blocks direct messages from the country to holders of TargetRoleID.
	BanRoleInteraction BanKind = "ROLE_INTERACTION"

	// BanUsername blocks TargetUserID when they are in the country.
	BanUsername BanKind = "USERNAME"
)

// UnmarshalText rejects ban kinds outside the closed set.
func (k *BanKind) UnmarshalText(text []byte) error {
	switch kind := BanKind(text); kind {
	case BanFullChat, BanRoleInteraction, BanUsername:
		*k = kind
		return nil
	default:
		return fmt.Errorf("unknown country ban type %q", string(text))
	}
}

// CountryBan restricts messaging for senders from CountryCode.
type CountryBan struct {
	ID           string  `json:"id"`
	CountryCode  string  `json:"countryCode"`
	Kind         BanKind `json:"type"`
	TargetRoleID string  `json:"targetRoleId,omitempty"`
	TargetUserID string  `json:"targetUserId,omitempty"`
}

// Ad is a promotional record shown by clients. Only administration mutates it.
type Ad struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Text      string `json:"text" yaml:"text"`
	PosterURL string `json:"posterUrl" yaml:"posterUrl"`
	Link      string `json:"link,omitempty" yaml:"link"`
}
