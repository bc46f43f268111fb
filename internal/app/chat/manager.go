/*
Package chat builds and mutates conversation records.

This file defines the Manager, which owns the direct and group conversation
lifecycle: get-or-create of direct chats, group creation, invites, member
changes, promotion, mutes and settings. Every group lifecycle mutation appends
a system message so that group history doubles as an audit trail.

The Manager performs no locking and no persistence. Callers run it on the
single logical thread of a syncer.Controller, which saves after each call.
*/
package chat

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"messenger/internal/app/model"
	"messenger/internal/app/policy"
	"messenger/internal/app/store"
	"messenger/internal/pkg/errs"
	"messenger/internal/pkg/logx"
	"messenger/internal/pkg/randx"
)

// Manager struct coordinates conversation lifecycle on top of an entity store.
type Manager struct {
	store *store.Store

	// structured logger with Manager context.
	logger zerolog.Logger
}

// NewManager constructs a Manager over s.
func NewManager(s *store.Store) *Manager {
	return &Manager{
		store:  s,
		logger: logx.Component("chat"),
	}
}

// user resolves id or fails with ErrUserNotFound.
func (m *Manager) user(id string) (model.User, error) {
	u, ok := m.store.User(id)
	if !ok {
		return model.User{}, errs.NewError(errs.ErrUserNotFound)
	}
	return u, nil
}

// label is the name used for id in system messages.
func (m *Manager) label(id string) string {
	if u, ok := m.store.User(id); ok {
		return u.Username
	}
	return id
}

// group resolves a group conversation. Direct conversations are reported as
// missing groups.
func (m *Manager) group(id string) (*model.Conversation, error) {
	conv, err := m.store.Conversation(id)
	if err != nil || !conv.IsGroup {
		return nil, errs.NewError(errs.ErrGroupNotFound)
	}
	return conv, nil
}

// requireAdmin fails with ErrNotGroupAdmin unless actorID may administer conv.
func (m *Manager) requireAdmin(conv *model.Conversation, actorID string) error {
	actor, err := m.user(actorID)
	if err != nil {
		return err
	}
	if !policy.IsGroupAdmin(conv, actor) {
		return errs.NewError(errs.ErrNotGroupAdmin)
	}
	return nil
}

// appendSystem records an audit message in conv.
func (m *Manager) appendSystem(conv *model.Conversation, format string, args ...any) {
	conv.Messages = append(conv.Messages, model.Message{
		ID:        randx.ID(randx.PrefixSystem),
		SenderID:  model.SystemSenderID,
		Content:   fmt.Sprintf(format, args...),
		Timestamp: m.store.NowMillis(),
		Kind:      model.KindSystem,
	})
}

// Direct returns the direct conversation between a and b, creating it on
// first use. A new conversation carries b's auto message, if any.
func (m *Manager) Direct(a, b string) (model.Conversation, error) {
	if a == b {
		return model.Conversation{}, errs.NewError(errs.ErrInvalidParams)
	}
	if _, err := m.user(a); err != nil {
		return model.Conversation{}, err
	}
	peer, err := m.user(b)
	if err != nil {
		return model.Conversation{}, err
	}

	if conv := m.store.FindDirect(a, b); conv != nil {
		return conv.Clone(), nil
	}

	conv := &model.Conversation{
		ID:           randx.ID(randx.PrefixDirect),
		Participants: []string{a, b},
		Messages:     []model.Message{},
		UnreadCount:  map[string]int{a: 0, b: 0},
	}

	if greeting := strings.TrimSpace(peer.AutoMessage); greeting != "" {
		now := m.store.NowMillis()
		conv.Messages = append(conv.Messages, model.Message{
			ID:        randx.ID(randx.PrefixMessage),
			SenderID:  b,
			Content:   greeting,
			Timestamp: now,
			Kind:      model.KindText,
			Reactions: []model.Reaction{},
		})
		conv.UnreadCount[a] = 1
		conv.LastMessageTimestamp = now
	}

	m.store.InsertConversation(conv)
	m.logger.Debug().Str("conversation_id", conv.ID).Msg("Direct conversation created.")
	return conv.Clone(), nil
}

// CreateGroup creates a group with creatorID as its sole admin. Invitees
// are deduplicated and every participant starts with one unread message.
func (m *Manager) CreateGroup(name, creatorID string, memberIDs []string) (model.Conversation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Conversation{}, errs.NewError(errs.ErrInvalidParams)
	}
	if _, err := m.user(creatorID); err != nil {
		return model.Conversation{}, err
	}

	participants := []string{creatorID}
	for _, id := range memberIDs {
		if slices.Contains(participants, id) {
			continue
		}
		if _, err := m.user(id); err != nil {
			return model.Conversation{}, err
		}
		participants = append(participants, id)
	}

	now := m.store.NowMillis()
	conv := &model.Conversation{
		ID:                   randx.ID(randx.PrefixGroup),
		Name:                 name,
		Participants:         participants,
		Messages:             []model.Message{},
		UnreadCount:          make(map[string]int, len(participants)),
		LastMessageTimestamp: now,
		IsGroup:              true,
		AdminIDs:             []string{creatorID},
		AvatarURL:            store.AvatarFor(name),
		MutedUsers:           map[string]int64{},
	}
	m.appendSystem(conv, "Group %q created", name)
	for _, p := range participants {
		conv.UnreadCount[p] = 1
	}

	m.store.InsertConversation(conv)
	m.logger.Info().
		Str("group_id", conv.ID).
		Str("creator_id", creatorID).
		Int("participants", len(participants)).
		Msg("Group created.")
	return conv.Clone(), nil
}

// JoinGroup adds userID to the group through an invite link. Joining a group
// one already belongs to changes nothing.
func (m *Manager) JoinGroup(groupID, userID string) (model.Conversation, error) {
	conv, err := m.group(groupID)
	if err != nil {
		return model.Conversation{}, err
	}
	if _, err := m.user(userID); err != nil {
		return model.Conversation{}, err
	}
	if conv.HasParticipant(userID) {
		return conv.Clone(), nil
	}

	conv.Participants = append(conv.Participants, userID)
	m.initUnread(conv, userID)
	m.appendSystem(conv, "%s joined via link", m.label(userID))
	return conv.Clone(), nil
}

// AddMembers adds candidates chosen by adminID. Candidates already present
// or who have blocked the admin are skipped; ErrNoValidMembers is returned
// when nobody is left. It returns the IDs actually added.
func (m *Manager) AddMembers(groupID, adminID string, candidates []string) ([]string, error) {
	conv, err := m.group(groupID)
	if err != nil {
		return nil, err
	}
	if err := m.requireAdmin(conv, adminID); err != nil {
		return nil, err
	}

	added := policy.AdmissibleMembers(conv, adminID, candidates, m.store)
	if len(added) == 0 {
		return nil, errs.NewError(errs.ErrNoValidMembers)
	}

	conv.Participants = append(conv.Participants, added...)
	for _, id := range added {
		m.initUnread(conv, id)
	}

	admin, _ := m.store.User(adminID)
	m.appendSystem(conv, "%s added %d members", admin.DisplayName, len(added))
	return added, nil
}

// Kick removes targetID on behalf of an admin. It reports whether the group
// was dissolved because nobody was left.
func (m *Manager) Kick(groupID, actorID, targetID string) (bool, error) {
	conv, err := m.group(groupID)
	if err != nil {
		return false, err
	}
	if err := m.requireAdmin(conv, actorID); err != nil {
		return false, err
	}
	if err := policy.CheckParticipant(conv, targetID); err != nil {
		return false, err
	}

	m.appendSystem(conv, "%s was kicked", m.label(targetID))
	return m.removeMember(conv, targetID), nil
}

// Leave removes userID from the group. It reports whether the group was
// dissolved because nobody was left.
func (m *Manager) Leave(groupID, userID string) (bool, error) {
	conv, err := m.group(groupID)
	if err != nil {
		return false, err
	}
	if err := policy.CheckParticipant(conv, userID); err != nil {
		return false, err
	}

	m.appendSystem(conv, "%s left the group", m.label(userID))
	return m.removeMember(conv, userID), nil
}

// removeMember drops userID from every per-member field of conv and deletes
// the group once it is empty.
func (m *Manager) removeMember(conv *model.Conversation, userID string) bool {
	conv.Participants = slices.DeleteFunc(conv.Participants, func(id string) bool { return id == userID })
	conv.AdminIDs = slices.DeleteFunc(conv.AdminIDs, func(id string) bool { return id == userID })
	conv.TypingUsers = slices.DeleteFunc(conv.TypingUsers, func(id string) bool { return id == userID })
	delete(conv.UnreadCount, userID)
	delete(conv.MutedUsers, userID)

	if len(conv.Participants) > 0 {
		return false
	}

	m.store.RemoveConversation(conv.ID)
	m.logger.Info().Str("group_id", conv.ID).Msg("Group dissolved.")
	return true
}

// Promote adds targetID to the admin set. Promoting an admin changes nothing.
func (m *Manager) Promote(groupID, actorID, targetID string) error {
	conv, err := m.group(groupID)
	if err != nil {
		return err
	}
	if err := m.requireAdmin(conv, actorID); err != nil {
		return err
	}
	if err := policy.CheckParticipant(conv, targetID); err != nil {
		return err
	}
	if conv.IsAdmin(targetID) {
		return nil
	}

	conv.AdminIDs = append(conv.AdminIDs, targetID)
	m.appendSystem(conv, "%s is now an admin", m.label(targetID))
	return nil
}

// Mute sets targetID's mute in the group. minutes is 0 to unmute,
// model.MuteForever for an indefinite mute, or a positive duration.
func (m *Manager) Mute(groupID, actorID, targetID string, minutes int64) error {
	if minutes < model.MuteForever {
		return errs.NewError(errs.ErrInvalidParams)
	}

	conv, err := m.group(groupID)
	if err != nil {
		return err
	}
	if err := m.requireAdmin(conv, actorID); err != nil {
		return err
	}
	if err := policy.CheckParticipant(conv, targetID); err != nil {
		return err
	}
	if conv.MutedUsers == nil {
		conv.MutedUsers = map[string]int64{}
	}

	name := m.label(targetID)
	switch {
	case minutes == 0:
		if _, ok := conv.MutedUsers[targetID]; !ok {
			return nil
		}
		delete(conv.MutedUsers, targetID)
		m.appendSystem(conv, "%s was unmuted", name)
	case minutes == model.MuteForever:
		conv.MutedUsers[targetID] = model.MuteForever
		m.appendSystem(conv, "%s was muted indefinitely", name)
	default:
		expiry := m.store.Now().Add(time.Duration(minutes) * time.Minute)
		conv.MutedUsers[targetID] = expiry.UnixMilli()
		m.appendSystem(conv, "%s was muted for %d minutes", name, minutes)
	}
	return nil
}

// UpdateSettings renames the group and replaces its avatar. It reports
// whether anything changed; unchanged values leave history untouched.
func (m *Manager) UpdateSettings(groupID, actorID, name, avatarURL string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, errs.NewError(errs.ErrInvalidParams)
	}

	conv, err := m.group(groupID)
	if err != nil {
		return false, err
	}
	if err := m.requireAdmin(conv, actorID); err != nil {
		return false, err
	}

	if conv.Name == name && conv.AvatarURL == avatarURL {
		return false, nil
	}

	conv.Name = name
	conv.AvatarURL = avatarURL
	m.appendSystem(conv, "Group settings updated")
	return true, nil
}

func (m *Manager) initUnread(conv *model.Conversation, userID string) {
	if conv.UnreadCount == nil {
		conv.UnreadCount = map[string]int{}
	}
	if _, ok := conv.UnreadCount[userID]; !ok {
		conv.UnreadCount[userID] = 0
	}
}
