package store

import (
	"slices"
	"strings"

	"messenger/internal/app/model"
	"messenger/internal/pkg/errs"
	"messenger/internal/pkg/randx"
)

// CountryBans returns every geo-ban in stored order. Stored order is the
// evaluation order of the policy engine.
func (s *Store) CountryBans() []model.CountryBan {
	return slices.Clone(s.bans)
}

// AddCountryBan validates and appends a geo-ban. The target field that does
// not apply to the ban kind is cleared.
func (s *Store) AddCountryBan(country string, kind model.BanKind, targetRoleID, targetUserID string) (model.CountryBan, error) {
	country = strings.ToUpper(strings.TrimSpace(country))
	if country == "" {
		return model.CountryBan{}, errs.NewError(errs.ErrInvalidBan)
	}

	ban := model.CountryBan{
		ID:          randx.ID(randx.PrefixBan),
		CountryCode: country,
		Kind:        kind,
	}

	switch kind {
	case model.BanFullChat:
	case model.BanRoleInteraction:
		if s.roleIndex(targetRoleID) < 0 {
			return model.CountryBan{}, errs.NewError(errs.ErrRoleNotFound)
		}
		ban.TargetRoleID = targetRoleID
	case model.BanUsername:
		if s.userRef(targetUserID) == nil {
			return model.CountryBan{}, errs.NewError(errs.ErrUserNotFound)
		}
		ban.TargetUserID = targetUserID
	default:
		return model.CountryBan{}, errs.NewError(errs.ErrInvalidBan)
	}

	s.bans = append(s.bans, ban)
	s.logger.Info().
		Str("ban_id", ban.ID).
		Str("country", ban.CountryCode).
		Str("kind", string(ban.Kind)).
		Msg("Country ban added.")
	return ban, nil
}

// BanUsername adds a USERNAME ban for the user in their current country.
func (s *Store) BanUsername(username string) (model.CountryBan, error) {
	u := s.userByUsernameRef(username)
	if u == nil {
		return model.CountryBan{}, errs.NewError(errs.ErrUserNotFound)
	}
	return s.AddCountryBan(u.Country, model.BanUsername, "", u.ID)
}

// DeleteCountryBan removes a geo-ban by ID.
func (s *Store) DeleteCountryBan(id string) error {
	idx := slices.IndexFunc(s.bans, func(b model.CountryBan) bool { return b.ID == id })
	if idx < 0 {
		return errs.NewError(errs.ErrBanNotFound)
	}
	s.bans = slices.Delete(s.bans, idx, idx+1)
	return nil
}
