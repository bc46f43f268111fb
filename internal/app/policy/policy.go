/*
Package policy implements the moderation decisions consulted before any
messaging mutation.

Every function here is pure: it reads entity values handed in by the caller
and never touches storage, so the same checks can run against any snapshot.
*/
package policy

import (
	"strings"
	"time"

	"messenger/internal/app/model"
	"messenger/internal/pkg/errs"
	"messenger/internal/pkg/metrics"
)

// defaultCountry is assumed for senders without a country code.
const defaultCountry = "US"

// Directory resolves user IDs. *store.Store satisfies it.
type Directory interface {
	User(id string) (model.User, bool)
}

// CheckSend decides whether sender may post into conv. The rules are
// evaluated in order and the first match is authoritative:
//
//  1. chat-restricted modifier: ErrChatRestricted
//  2. active mute in a group: ErrMuted
//  3. country bans on the sender's country, in stored order:
//     FULL_CHAT: ErrRegionChatBanned
//     USERNAME targeting the sender: ErrRegionUserBanned
//     ROLE_INTERACTION, direct only, peer holds the target role: ErrRegionRoleBanned
//
// A nil return means the message is accepted.
func CheckSend(sender model.User, conv *model.Conversation, dir Directory, bans []model.CountryBan, now time.Time) error {
	err := checkSend(sender, conv, dir, bans, now)
	if err != nil {
		metrics.PolicyRejectionsTotal.WithLabelValues(reason(err)).Inc()
	}
	return err
}

func checkSend(sender model.User, conv *model.Conversation, dir Directory, bans []model.CountryBan, now time.Time) error {
	if sender.HasModifier(model.ModifierChatRestricted) {
		return errs.NewError(errs.ErrChatRestricted)
	}

	if conv.IsGroup && IsMuted(conv, sender.ID, now) {
		return errs.NewError(errs.ErrMuted)
	}

	country := strings.ToUpper(strings.TrimSpace(sender.Country))
	if country == "" {
		country = defaultCountry
	}

	for _, ban := range bans {
		if strings.ToUpper(strings.TrimSpace(ban.CountryCode)) != country {
			continue
		}

		switch ban.Kind {
		case model.BanFullChat:
			return errs.NewError(errs.ErrRegionChatBanned)
		case model.BanUsername:
			if ban.TargetUserID == sender.ID {
				return errs.NewError(errs.ErrRegionUserBanned)
			}
		case model.BanRoleInteraction:
			if conv.IsGroup {
				continue
			}
			peerID, ok := conv.Peer(sender.ID)
			if !ok {
				continue
			}
			if peer, ok := dir.User(peerID); ok && peer.Role == ban.TargetRoleID {
				return errs.NewError(errs.ErrRegionRoleBanned)
			}
		}
	}

	return nil
}

// IsMuted reports whether userID has an active mute in conv at now.
// A value of model.MuteForever never expires.
func IsMuted(conv *model.Conversation, userID string, now time.Time) bool {
	expiry, ok := conv.MutedUsers[userID]
	if !ok {
		return false
	}
	return expiry == model.MuteForever || expiry > now.UnixMilli()
}

// CheckParticipant fails with ErrNotParticipant unless userID is in conv.
func CheckParticipant(conv *model.Conversation, userID string) error {
	if !conv.HasParticipant(userID) {
		return errs.NewError(errs.ErrNotParticipant)
	}
	return nil
}

// IsGroupAdmin reports whether user may run admin-only operations on conv:
// members of the group's admin set, plus holders of the global admin role.
func IsGroupAdmin(conv *model.Conversation, user model.User) bool {
	return conv.IsAdmin(user.ID) || user.Role == model.RoleAdmin
}

// AdmissibleMembers filters candidates for an add-members request by admin.
// Unknown users, users already in the group and users who have blocked the
// admin are dropped silently. Duplicates collapse. Order is preserved.
func AdmissibleMembers(conv *model.Conversation, adminID string, candidates []string, dir Directory) []string {
	out := []string{}
	seen := make(map[string]struct{}, len(candidates))

	for _, id := range candidates {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if conv.HasParticipant(id) {
			continue
		}
		u, ok := dir.User(id)
		if !ok || u.HasBlocked(adminID) {
			continue
		}
		out = append(out, id)
	}
	return out
}

func reason(err error) string {
	switch errs.Code(err) {
	case errs.ErrChatRestricted:
		return "chat_restricted"
	case errs.ErrMuted:
		return "muted"
	case errs.ErrRegionChatBanned:
		return "region_chat"
	case errs.ErrRegionUserBanned:
		return "region_user"
	case errs.ErrRegionRoleBanned:
		return "region_role"
	default:
		return "other"
	}
}
