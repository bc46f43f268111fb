package model

import (
	"maps"
	"slices"
)

// SystemSenderID is the sender of audit messages synthesized by lifecycle operations.
const SystemSenderID = "system"

// MuteForever is the mute-map value for an indefinite mute.
const MuteForever int64 = -1

// MessageKind is the content type of a message.
type MessageKind string

const (
	KindText   MessageKind = "text"
	KindImage  MessageKind = "image"
	KindSystem MessageKind = "system"
)

// Valid reports whether k is a known kind.
func (k MessageKind) Valid() bool {
	switch k {
	case KindText, KindImage, KindSystem:
		return true
	}
	return false
}

// Reaction is one user's emoji on a message.
type Reaction struct {
	Emoji  string `json:"emoji"`
	UserID string `json:"userId"`
}

// Message is one entry of a conversation history.
type Message struct {
	ID        string      `json:"id"`
	SenderID  string      `json:"senderId"`
	Content   string      `json:"content"`
	Timestamp int64       `json:"timestamp"`
	Kind      MessageKind `json:"type"`
	Reactions []Reaction  `json:"reactions,omitempty"`
	ReplyToID string      `json:"replyToId,omitempty"`
}

// Conversation is a direct chat between two users or a named group.
// The group-only fields are empty for direct conversations.
type Conversation struct {
	ID                   string           `json:"id"`
	Participants         []string         `json:"participants"`
	Messages             []Message        `json:"messages"`
	UnreadCount          map[string]int   `json:"unreadCount"`
	LastMessageTimestamp int64            `json:"lastMessageTimestamp"`
	IsGroup              bool             `json:"isGroup"`
	Name                 string           `json:"name,omitempty"`
	AvatarURL            string           `json:"avatarUrl,omitempty"`
	AdminIDs             []string         `json:"adminIds,omitempty"`
	MutedUsers           map[string]int64 `json:"mutedUsers,omitempty"`
	TypingUsers          []string         `json:"typingUsers,omitempty"`
}

// HasParticipant reports whether userID belongs to the conversation.
func (c *Conversation) HasParticipant(userID string) bool {
	return slices.Contains(c.Participants, userID)
}

// IsAdmin reports whether userID is in the group's admin set.
func (c *Conversation) IsAdmin(userID string) bool {
	return slices.Contains(c.AdminIDs, userID)
}

// Peer returns the other participant of a direct conversation.
func (c *Conversation) Peer(userID string) (string, bool) {
	for _, p := range c.Participants {
		if p != userID {
			return p, true
		}
	}
	return "", false
}

// Message returns a pointer to the message with the given ID.
func (c *Conversation) Message(id string) *Message {
	for i := range c.Messages {
		if c.Messages[i].ID == id {
			return &c.Messages[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the conversation.
func (c Conversation) Clone() Conversation {
	c.Participants = slices.Clone(c.Participants)
	c.AdminIDs = slices.Clone(c.AdminIDs)
	c.TypingUsers = slices.Clone(c.TypingUsers)
	c.UnreadCount = maps.Clone(c.UnreadCount)
	c.MutedUsers = maps.Clone(c.MutedUsers)

	msgs := make([]Message, len(c.Messages))
	for i, m := range c.Messages {
		m.Reactions = slices.Clone(m.Reactions)
		msgs[i] = m
	}
	c.Messages = msgs
	return c
}
