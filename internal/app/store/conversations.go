package store

import (
	"cmp"
	"slices"

	"messenger/internal/app/model"
	"messenger/internal/pkg/errs"
)

// Conversation returns the stored conversation for in-place mutation.
func (s *Store) Conversation(id string) (*model.Conversation, error) {
	for _, c := range s.conversations {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, errs.NewError(errs.ErrConversationNotFound)
}

// FindDirect returns the direct conversation between a and b, in either
// order, or nil.
func (s *Store) FindDirect(a, b string) *model.Conversation {
	for _, c := range s.conversations {
		if !c.IsGroup && c.HasParticipant(a) && c.HasParticipant(b) {
			return c
		}
	}
	return nil
}

// InsertConversation appends a new conversation record.
func (s *Store) InsertConversation(c *model.Conversation) {
	s.conversations = append(s.conversations, c)
}

// RemoveConversation deletes a conversation by ID. Unknown IDs are ignored.
func (s *Store) RemoveConversation(id string) {
	s.conversations = slices.DeleteFunc(s.conversations, func(c *model.Conversation) bool {
		return c.ID == id
	})
}

// ConversationsOf returns copies of the conversations userID participates
// in, most recently active first.
func (s *Store) ConversationsOf(userID string) []model.Conversation {
	out := []model.Conversation{}
	for _, c := range s.conversations {
		if c.HasParticipant(userID) {
			out = append(out, c.Clone())
		}
	}
	slices.SortStableFunc(out, func(a, b model.Conversation) int {
		return cmp.Compare(b.LastMessageTimestamp, a.LastMessageTimestamp)
	})
	return out
}

// AllConversations returns copies of every conversation in stored order.
func (s *Store) AllConversations() []model.Conversation {
	out := make([]model.Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		out = append(out, c.Clone())
	}
	return out
}
