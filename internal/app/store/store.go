/*
Package store holds the in-memory entity collections of the shared document.

A Store is the canonical object every other component reads and writes:
users, conversations, roles, country bans and ads, plus their accessors and
mutators. It performs no locking. A client owns exactly one Store and drives
it from a single logical flow (see syncer.Controller), which is what makes
the absence of locks safe.

Accessors return copies. The only exception is Conversation, which hands
the lifecycle manager a pointer so it can mutate a conversation in place.
*/
package store

import (
	"time"

	"github.com/rs/zerolog"

	"messenger/internal/app/model"
	"messenger/internal/pkg/logx"
)

// Store is the in-memory entity store.
type Store struct {
	users         []*model.User
	conversations []*model.Conversation
	roles         []model.Role
	bans          []model.CountryBan
	ads           []model.Ad

	// now is the clock used for timestamps and mute expiry.
	now func() time.Time

	logger zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		now:    time.Now,
		logger: logx.Component("store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// NowMillis returns the store clock's current time in Unix milliseconds.
func (s *Store) NowMillis() int64 {
	return s.now().UnixMilli()
}

// Stats summarizes the collections for the admin dashboard.
type Stats struct {
	TotalUsers         int `json:"totalUsers"`
	TotalConversations int `json:"totalConversations"`
	TotalMessages      int `json:"totalMessages"`
	ActiveNow          int `json:"activeNow"`
}

// Stats computes collection totals. ActiveNow counts effective status, so
// always-online users are included.
func (s *Store) Stats() Stats {
	st := Stats{
		TotalUsers:         len(s.users),
		TotalConversations: len(s.conversations),
	}
	for _, c := range s.conversations {
		st.TotalMessages += len(c.Messages)
	}
	for _, u := range s.users {
		if u.Effective().Status == model.StatusOnline {
			st.ActiveNow++
		}
	}
	return st
}

// Snapshot returns a deep copy of every collection. Collections are never
// nil in the result, so the document always passes the transport shape check.
func (s *Store) Snapshot() model.Snapshot {
	snap := model.EmptyDocument()

	for _, u := range s.users {
		snap.Users = append(snap.Users, u.Clone())
	}
	for _, c := range s.conversations {
		snap.Conversations = append(snap.Conversations, c.Clone())
	}
	snap.Roles = append(snap.Roles, s.roles...)
	snap.CountryBans = append(snap.CountryBans, s.bans...)
	snap.Ads = append(snap.Ads, s.ads...)

	return snap
}

// Replace swaps in the collections present in snap wholesale. There is no
// field-level merge; a nil collection (absent from the source document)
// leaves the current one untouched.
func (s *Store) Replace(snap model.Snapshot) {
	if snap.Users != nil {
		users := make([]*model.User, 0, len(snap.Users))
		for _, u := range snap.Users {
			u := u.Clone()
			users = append(users, &u)
		}
		s.users = users
	}

	if snap.Conversations != nil {
		convs := make([]*model.Conversation, 0, len(snap.Conversations))
		for _, c := range snap.Conversations {
			c := c.Clone()
			convs = append(convs, &c)
		}
		s.conversations = convs
	}

	if snap.Roles != nil {
		s.roles = append([]model.Role(nil), snap.Roles...)
	}
	if snap.CountryBans != nil {
		s.bans = append([]model.CountryBan(nil), snap.CountryBans...)
	}
	if snap.Ads != nil {
		s.ads = append([]model.Ad(nil), snap.Ads...)
	}
}
