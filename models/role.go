package models

import (
	"encoding/json"
	"fmt"
)

// RoleFlags is a bitmask of role properties.
type RoleFlags uint8

const (
	RoleHoist RoleFlags = 1 << iota
	RoleManaged
	RoleMentionable
)

// Role is a guild role carrying a permission set.
type Role struct {
	Managed
	Name        string
	GuildID     Snowflake
	Colour      uint32
	Position    uint8
	Permissions uint64
	Flags       RoleFlags
}

// RoleMap groups roles by ID.
type RoleMap map[Snowflake]*Role

// FillFromJSON populates the role from an API JSON document. Permissions
// arrive as a decimal string.
func (r *Role) FillFromJSON(data []byte, guildID Snowflake) error {
	var raw struct {
		ID          Snowflake `json:"id"`
		Name        string    `json:"name"`
		Color       uint32    `json:"color"`
		Position    uint8     `json:"position"`
		Permissions Snowflake `json:"permissions"`
		Hoist       bool      `json:"hoist"`
		Managed     bool      `json:"managed"`
		Mentionable bool      `json:"mentionable"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("fill role: %w", err)
	}
	r.ID = raw.ID
	r.GuildID = guildID
	r.Name = raw.Name
	r.Colour = raw.Color
	r.Position = raw.Position
	r.Permissions = uint64(raw.Permissions)
	r.Flags = 0
	if raw.Hoist {
		r.Flags |= RoleHoist
	}
	if raw.Managed {
		r.Flags |= RoleManaged
	}
	if raw.Mentionable {
		r.Flags |= RoleMentionable
	}
	return nil
}

func (r *Role) IsHoisted() bool     { return r.Flags&RoleHoist != 0 }
func (r *Role) IsManaged() bool     { return r.Flags&RoleManaged != 0 }
func (r *Role) IsMentionable() bool { return r.Flags&RoleMentionable != 0 }
