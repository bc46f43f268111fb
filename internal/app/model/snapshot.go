package model

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the whole shared document. A nil collection means the
// collection was absent from the source document, which is different from
// an empty one.
type Snapshot struct {
	Users         []User         `json:"users"`
	Conversations []Conversation `json:"conversations"`
	Roles         []Role         `json:"roles"`
	CountryBans   []CountryBan   `json:"countryBans"`
	Ads           []Ad           `json:"ads"`
}

// ValidateDocument performs the transport's minimal shape check: the raw
// document must be a JSON object carrying both a users and a conversations
// collection.
func ValidateDocument(raw []byte) error {
	var shape map[string]json.RawMessage
	if err := json.Unmarshal(raw, &shape); err != nil {
		return fmt.Errorf("document is not a JSON object: %w", err)
	}

	for _, key := range []string{"users", "conversations"} {
		v, ok := shape[key]
		if !ok || string(v) == "null" {
			return fmt.Errorf("document is missing the %q collection", key)
		}
	}

	return nil
}

// EmptyDocument is the document a fresh transport starts from.
func EmptyDocument() Snapshot {
	return Snapshot{
		Users:         []User{},
		Conversations: []Conversation{},
		Roles:         []Role{},
		CountryBans:   []CountryBan{},
		Ads:           []Ad{},
	}
}
