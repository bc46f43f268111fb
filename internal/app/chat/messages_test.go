package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger/internal/app/model"
	"messenger/internal/app/store"
	"messenger/internal/pkg/errs"
)

func TestSend(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	conv, err := f.manager.Direct(f.id("alice"), f.id("bob"))
	require.NoError(t, err)

	f.clock.advance(time.Second)
	msg, err := f.manager.Send(conv.ID, f.id("alice"), "  hi bob  ", "", "")
	require.NoError(t, err)
	assert.Equal(t, "hi bob", msg.Content)
	assert.Equal(t, model.KindText, msg.Kind)
	assert.Equal(t, f.clock.t.UnixMilli(), msg.Timestamp)

	got := f.conv(t, conv.ID)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, msg.Timestamp, got.LastMessageTimestamp)
	assert.Equal(t, 1, got.UnreadCount[f.id("bob")])
	assert.Equal(t, 0, got.UnreadCount[f.id("alice")])

	reply, err := f.manager.Send(conv.ID, f.id("bob"), "https://example.com/cat.png", model.KindImage, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, msg.ID, reply.ReplyToID)
	assert.Equal(t, model.KindImage, reply.Kind)
}

func TestSendValidation(t *testing.T) {
	f := newFixture(t, "alice", "bob", "carol")
	conv, err := f.manager.Direct(f.id("alice"), f.id("bob"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		convID  string
		sender  string
		content string
		kind    model.MessageKind
		replyTo string
		want    int
	}{
		{"empty content", conv.ID, f.id("alice"), "   ", model.KindText, "", errs.ErrInvalidParams},
		{"too long", conv.ID, f.id("alice"), strings.Repeat("a", MaxContentBytes+1), model.KindText, "", errs.ErrMessageTooLong},
		{"system kind", conv.ID, f.id("alice"), "hi", model.KindSystem, "", errs.ErrInvalidMessageKind},
		{"unknown kind", conv.ID, f.id("alice"), "hi", model.MessageKind("video"), "", errs.ErrInvalidMessageKind},
		{"unknown conversation", "conv-missing", f.id("alice"), "hi", model.KindText, "", errs.ErrConversationNotFound},
		{"unknown sender", conv.ID, "user-missing", "hi", model.KindText, "", errs.ErrUserNotFound},
		{"outsider", conv.ID, f.id("carol"), "hi", model.KindText, "", errs.ErrNotParticipant},
		{"unknown reply target", conv.ID, f.id("alice"), "hi", model.KindText, "msg-missing", errs.ErrMessageNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.manager.Send(tt.convID, tt.sender, tt.content, tt.kind, tt.replyTo)
			assert.Equal(t, tt.want, errs.Code(err))
		})
	}

	assert.Empty(t, f.conv(t, conv.ID).Messages, "rejected messages are never recorded")
}

func TestSendRejectedByPolicy(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	conv, err := f.manager.Direct(f.id("alice"), f.id("bob"))
	require.NoError(t, err)

	_, err = f.store.AddCountryBan("US", model.BanRoleInteraction, model.RoleUser, "")
	require.NoError(t, err)
	_, err = f.store.AddCountryBan("US", model.BanFullChat, "", "")
	require.NoError(t, err)

	_, err = f.manager.Send(conv.ID, f.id("alice"), "hi", model.KindText, "")
	assert.ErrorIs(t, err, errs.NewError(errs.ErrRegionRoleBanned), "the first matching ban in stored order wins")

	got := f.conv(t, conv.ID)
	assert.Empty(t, got.Messages)
	assert.Equal(t, 0, got.UnreadCount[f.id("bob")])

	_, err = f.store.SetModifiers(f.id("alice"), []model.Modifier{model.ModifierChatRestricted})
	require.NoError(t, err)
	_, err = f.manager.Send(conv.ID, f.id("alice"), "hi", model.KindText, "")
	assert.ErrorIs(t, err, errs.NewError(errs.ErrChatRestricted))
}

func TestRegionBanLiftedByDelete(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	conv, err := f.manager.Direct(f.id("alice"), f.id("bob"))
	require.NoError(t, err)

	ban, err := f.store.AddCountryBan("US", model.BanFullChat, "", "")
	require.NoError(t, err)

	_, err = f.manager.Send(conv.ID, f.id("alice"), "hi", model.KindText, "")
	assert.ErrorIs(t, err, errs.NewError(errs.ErrRegionChatBanned))
	assert.Empty(t, f.conv(t, conv.ID).Messages)

	require.NoError(t, f.store.DeleteCountryBan(ban.ID))

	msg, err := f.manager.Send(conv.ID, f.id("alice"), "hi", model.KindText, "")
	require.NoError(t, err)
	got := f.conv(t, conv.ID)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, msg.ID, got.Messages[0].ID)
	assert.Equal(t, 1, got.UnreadCount[f.id("bob")])
}

func TestUnreadCounters(t *testing.T) {
	f := newFixture(t, "alice", "bob", "carol")
	g, err := f.manager.CreateGroup("Team", f.id("alice"), []string{f.id("bob"), f.id("carol")})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := f.manager.Send(g.ID, f.id("alice"), "ping", model.KindText, "")
		require.NoError(t, err)
	}

	conv := f.conv(t, g.ID)
	assert.Equal(t, 4, conv.UnreadCount[f.id("bob")])
	assert.Equal(t, 4, conv.UnreadCount[f.id("carol")])
	assert.Equal(t, 1, conv.UnreadCount[f.id("alice")], "the sender's own counter does not grow")

	require.NoError(t, f.manager.MarkRead(g.ID, f.id("bob")))
	conv = f.conv(t, g.ID)
	assert.Equal(t, 0, conv.UnreadCount[f.id("bob")])
	assert.Equal(t, 4, conv.UnreadCount[f.id("carol")])

	_, err = f.manager.ToggleReaction(g.ID, lastMessage(conv).ID, f.id("carol"), "👍")
	require.NoError(t, err)
	assert.Equal(t, conv.UnreadCount, f.conv(t, g.ID).UnreadCount, "reactions leave counters alone")

	assert.ErrorIs(t, f.manager.MarkRead(g.ID, f.id("admin")), errs.NewError(errs.ErrNotParticipant))
}

func TestToggleReaction(t *testing.T) {
	f := newFixture(t, "alice", "bob", "carol")
	conv, err := f.manager.Direct(f.id("alice"), f.id("bob"))
	require.NoError(t, err)
	msg, err := f.manager.Send(conv.ID, f.id("alice"), "hello", model.KindText, "")
	require.NoError(t, err)

	added, err := f.manager.ToggleReaction(conv.ID, msg.ID, f.id("bob"), "❤️")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = f.manager.ToggleReaction(conv.ID, msg.ID, f.id("alice"), "❤️")
	require.NoError(t, err)
	assert.True(t, added)

	reactions := f.conv(t, conv.ID).Messages[0].Reactions
	assert.Equal(t, []model.Reaction{
		{Emoji: "❤️", UserID: f.id("bob")},
		{Emoji: "❤️", UserID: f.id("alice")},
	}, reactions)

	added, err = f.manager.ToggleReaction(conv.ID, msg.ID, f.id("bob"), "❤️")
	require.NoError(t, err)
	assert.False(t, added, "toggling twice removes the reaction")
	assert.Equal(t, []model.Reaction{{Emoji: "❤️", UserID: f.id("alice")}}, f.conv(t, conv.ID).Messages[0].Reactions)

	_, err = f.manager.ToggleReaction(conv.ID, "msg-missing", f.id("bob"), "❤️")
	assert.ErrorIs(t, err, errs.NewError(errs.ErrMessageNotFound))

	_, err = f.manager.ToggleReaction(conv.ID, msg.ID, f.id("carol"), "❤️")
	assert.ErrorIs(t, err, errs.NewError(errs.ErrNotParticipant))

	_, err = f.manager.ToggleReaction(conv.ID, msg.ID, f.id("bob"), " ")
	assert.ErrorIs(t, err, errs.NewError(errs.ErrInvalidParams))
}

func TestSetTyping(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	conv, err := f.manager.Direct(f.id("alice"), f.id("bob"))
	require.NoError(t, err)

	changed, err := f.manager.SetTyping(conv.ID, f.id("alice"), true)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = f.manager.SetTyping(conv.ID, f.id("alice"), true)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, []string{f.id("alice")}, f.conv(t, conv.ID).TypingUsers)

	_, err = f.manager.Send(conv.ID, f.id("alice"), "done typing", model.KindText, "")
	require.NoError(t, err)
	assert.Empty(t, f.conv(t, conv.ID).TypingUsers, "sending clears the indicator")

	changed, err = f.manager.SetTyping(conv.ID, f.id("alice"), false)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestMessagesView(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	conv, err := f.manager.Direct(f.id("alice"), f.id("bob"))
	require.NoError(t, err)

	_, err = f.manager.Send(conv.ID, f.id("bob"), "you idiot", model.KindText, "")
	require.NoError(t, err)
	_, err = f.manager.Send(conv.ID, f.id("alice"), "stupid me", model.KindText, "")
	require.NoError(t, err)

	msgs, err := f.manager.Messages(conv.ID, f.id("alice"))
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "you idiot", msgs[0].Content, "filter is off by default")

	prefs := model.DefaultPreferences()
	prefs.FilterEnabled = true
	prefs.FilterLevel = model.FilterMedium
	_, err = f.store.UpdateProfile(f.id("alice"), store.ProfileUpdate{Preferences: &prefs})
	require.NoError(t, err)

	msgs, err = f.manager.Messages(conv.ID, f.id("alice"))
	require.NoError(t, err)
	assert.Equal(t, "you *****", msgs[0].Content)
	assert.Equal(t, "stupid me", msgs[1].Content, "the viewer's own messages are shown verbatim")
	assert.Equal(t, "you idiot", f.conv(t, conv.ID).Messages[0].Content, "the stored content is untouched")

	_, err = f.store.SetModifiers(f.id("alice"), []model.Modifier{model.ModifierMessagesHidden})
	require.NoError(t, err)
	msgs, err = f.manager.Messages(conv.ID, f.id("alice"))
	require.NoError(t, err)
	assert.Empty(t, msgs)

	_, err = f.manager.Messages(conv.ID, f.id("admin"))
	assert.ErrorIs(t, err, errs.NewError(errs.ErrNotParticipant))
}

func TestConversationsListing(t *testing.T) {
	f := newFixture(t, "alice", "bob", "carol")
	first, err := f.manager.Direct(f.id("alice"), f.id("bob"))
	require.NoError(t, err)
	second, err := f.manager.Direct(f.id("alice"), f.id("carol"))
	require.NoError(t, err)

	f.clock.advance(time.Minute)
	_, err = f.manager.Send(second.ID, f.id("carol"), "newer", model.KindText, "")
	require.NoError(t, err)
	f.clock.advance(time.Minute)
	_, err = f.manager.Send(first.ID, f.id("bob"), "newest", model.KindText, "")
	require.NoError(t, err)

	convs := f.manager.Conversations(f.id("alice"))
	require.Len(t, convs, 2)
	assert.Equal(t, first.ID, convs[0].ID)
	assert.Equal(t, second.ID, convs[1].ID)
	assert.Len(t, f.manager.Conversations(f.id("bob")), 1)
}
