package chat

import (
	"slices"
	"strings"

	"messenger/internal/app/model"
	"messenger/internal/app/policy"
	"messenger/internal/pkg/errs"
	"messenger/internal/pkg/metrics"
	"messenger/internal/pkg/randx"
)

// MaxContentBytes is the maximum allowed size of a message body.
const MaxContentBytes = 4096

// Send records a message from senderID after the moderation policy accepts
// it. Every other participant's unread counter grows by one and the
// conversation's last activity moves to the message timestamp.
func (m *Manager) Send(convID, senderID, content string, kind model.MessageKind, replyToID string) (model.Message, error) {
	if kind == "" {
		kind = model.KindText
	}
	if !kind.Valid() || kind == model.KindSystem {
		return model.Message{}, errs.NewError(errs.ErrInvalidMessageKind)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return model.Message{}, errs.NewError(errs.ErrInvalidParams)
	}
	if len(content) > MaxContentBytes {
		return model.Message{}, errs.NewError(errs.ErrMessageTooLong, MaxContentBytes)
	}

	conv, err := m.store.Conversation(convID)
	if err != nil {
		return model.Message{}, err
	}
	sender, err := m.user(senderID)
	if err != nil {
		return model.Message{}, err
	}
	if err := policy.CheckParticipant(conv, senderID); err != nil {
		return model.Message{}, err
	}

	if err := policy.CheckSend(sender, conv, m.store, m.store.CountryBans(), m.store.Now()); err != nil {
		m.logger.Debug().
			Str("conversation_id", convID).
			Str("sender_id", senderID).
			Int("code", errs.Code(err)).
			Msg("Message rejected by policy.")
		return model.Message{}, err
	}

	if replyToID != "" && conv.Message(replyToID) == nil {
		return model.Message{}, errs.NewError(errs.ErrMessageNotFound)
	}

	msg := model.Message{
		ID:        randx.ID(randx.PrefixMessage),
		SenderID:  senderID,
		Content:   content,
		Timestamp: m.store.NowMillis(),
		Kind:      kind,
		Reactions: []model.Reaction{},
		ReplyToID: replyToID,
	}

	conv.Messages = append(conv.Messages, msg)
	conv.LastMessageTimestamp = msg.Timestamp
	if conv.UnreadCount == nil {
		conv.UnreadCount = map[string]int{}
	}
	for _, p := range conv.Participants {
		if p != senderID {
			conv.UnreadCount[p]++
		}
	}
	conv.TypingUsers = slices.DeleteFunc(conv.TypingUsers, func(id string) bool { return id == senderID })

	metrics.MessagesSentTotal.WithLabelValues(string(kind)).Inc()
	return msg, nil
}

// MarkRead zeroes userID's unread counter in the conversation.
func (m *Manager) MarkRead(convID, userID string) error {
	conv, err := m.store.Conversation(convID)
	if err != nil {
		return err
	}
	if err := policy.CheckParticipant(conv, userID); err != nil {
		return err
	}

	if conv.UnreadCount == nil {
		conv.UnreadCount = map[string]int{}
	}
	conv.UnreadCount[userID] = 0
	return nil
}

// ToggleReaction flips userID's emoji on a message and reports whether the
// reaction is now present. Unread counters are not affected.
func (m *Manager) ToggleReaction(convID, msgID, userID, emoji string) (bool, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return false, errs.NewError(errs.ErrInvalidParams)
	}

	conv, err := m.store.Conversation(convID)
	if err != nil {
		return false, err
	}
	if err := policy.CheckParticipant(conv, userID); err != nil {
		return false, err
	}

	msg := conv.Message(msgID)
	if msg == nil {
		return false, errs.NewError(errs.ErrMessageNotFound)
	}

	idx := slices.IndexFunc(msg.Reactions, func(r model.Reaction) bool {
		return r.UserID == userID && r.Emoji == emoji
	})
	if idx >= 0 {
		msg.Reactions = slices.Delete(msg.Reactions, idx, idx+1)
		return false, nil
	}

	msg.Reactions = append(msg.Reactions, model.Reaction{Emoji: emoji, UserID: userID})
	return true, nil
}

// SetTyping adds or removes userID from the conversation's typing set and
// reports whether the set changed.
func (m *Manager) SetTyping(convID, userID string, typing bool) (bool, error) {
	conv, err := m.store.Conversation(convID)
	if err != nil {
		return false, err
	}
	if err := policy.CheckParticipant(conv, userID); err != nil {
		return false, err
	}

	present := slices.Contains(conv.TypingUsers, userID)
	switch {
	case typing && !present:
		conv.TypingUsers = append(conv.TypingUsers, userID)
		return true, nil
	case !typing && present:
		conv.TypingUsers = slices.DeleteFunc(conv.TypingUsers, func(id string) bool { return id == userID })
		return true, nil
	default:
		return false, nil
	}
}

// Conversations lists the conversations userID belongs to, most recently
// active first.
func (m *Manager) Conversations(userID string) []model.Conversation {
	return m.store.ConversationsOf(userID)
}

// Messages returns the history of a conversation as viewerID should see it.
// Viewers with the messages-hidden modifier get an empty history; viewers
// with the content filter enabled get other users' text messages masked.
func (m *Manager) Messages(convID, viewerID string) ([]model.Message, error) {
	conv, err := m.store.Conversation(convID)
	if err != nil {
		return nil, err
	}
	viewer, err := m.user(viewerID)
	if err != nil {
		return nil, err
	}
	if err := policy.CheckParticipant(conv, viewerID); err != nil {
		return nil, err
	}

	out := []model.Message{}
	if viewer.HasModifier(model.ModifierMessagesHidden) {
		return out, nil
	}

	prefs := viewer.Preferences
	for _, msg := range conv.Clone().Messages {
		if prefs.FilterEnabled && msg.Kind == model.KindText && msg.SenderID != viewerID {
			msg.Content = policy.Censor(msg.Content, prefs.FilterLevel)
		}
		out = append(out, msg)
	}
	return out, nil
}
