package models

import (
	"encoding/json"
	"fmt"
)

// EmojiFlags is a bitmask of emoji properties.
type EmojiFlags uint8

const (
	EmojiRequireColons EmojiFlags = 1 << iota
	EmojiManaged
	EmojiAnimated
	EmojiAvailable
)

// Emoji is a custom guild emoji.
type Emoji struct {
	Managed
	Name    string
	UserID  Snowflake
	Flags   EmojiFlags
}

// EmojiMap groups emoji by ID.
type EmojiMap map[Snowflake]*Emoji

// FillFromJSON populates the emoji from an API JSON document.
func (e *Emoji) FillFromJSON(data []byte) error {
	var raw struct {
		ID            Snowflake `json:"id"`
		Name          string    `json:"name"`
		User          *struct {
			ID Snowflake `json:"id"`
		} `json:"user"`
		RequireColons bool `json:"require_colons"`
		Managed       bool `json:"managed"`
		Animated      bool `json:"animated"`
		Available     bool `json:"available"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("fill emoji: %w", err)
	}
	e.ID = raw.ID
	e.Name = raw.Name
	if raw.User != nil {
		e.UserID = raw.User.ID
	}
	e.Flags = 0
	if raw.RequireColons {
		e.Flags |= EmojiRequireColons
	}
	if raw.Managed {
		e.Flags |= EmojiManaged
	}
	if raw.Animated {
		e.Flags |= EmojiAnimated
	}
	if raw.Available {
		e.Flags |= EmojiAvailable
	}
	return nil
}

func (e *Emoji) RequiresColons() bool { return e.Flags&EmojiRequireColons != 0 }
func (e *Emoji) IsManaged() bool      { return e.Flags&EmojiManaged != 0 }
func (e *Emoji) IsAnimated() bool     { return e.Flags&EmojiAnimated != 0 }
func (e *Emoji) IsAvailable() bool    { return e.Flags&EmojiAvailable != 0 }
