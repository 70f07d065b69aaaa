package models

import (
	"encoding/json"
	"fmt"
)

// ChannelFlags is a bitmask of channel type and property bits.
type ChannelFlags uint16

const (
	ChannelNSFW ChannelFlags = 1 << iota
	ChannelText
	ChannelDM
	ChannelVoice
	ChannelGroupDM
	ChannelCategory
	ChannelNews
	ChannelStore
)

// Channel is a guild channel or direct-message channel.
type Channel struct {
	Managed
	Name             string
	Topic            string
	GuildID          Snowflake
	ParentID         Snowflake
	LastMessageID    Snowflake
	Position         uint16
	RateLimitPerUser uint16
	UserLimit        uint8
	Bitrate          uint16
	Flags            ChannelFlags
}

// ChannelMap groups channels by ID.
type ChannelMap map[Snowflake]*Channel

// channelTypeFlags maps the API numeric channel type to a type flag bit.
var channelTypeFlags = map[int]ChannelFlags{
	0: ChannelText,
	1: ChannelDM,
	2: ChannelVoice,
	3: ChannelGroupDM,
	4: ChannelCategory,
	5: ChannelNews,
	6: ChannelStore,
}

// FillFromJSON populates the channel from an API JSON document. Unknown
// channel types leave the type bits clear.
func (c *Channel) FillFromJSON(data []byte) error {
	var raw struct {
		ID               Snowflake `json:"id"`
		Type             int       `json:"type"`
		Name             string    `json:"name"`
		Topic            string    `json:"topic"`
		GuildID          Snowflake `json:"guild_id"`
		ParentID         Snowflake `json:"parent_id"`
		LastMessageID    Snowflake `json:"last_message_id"`
		Position         uint16    `json:"position"`
		RateLimitPerUser uint16    `json:"rate_limit_per_user"`
		UserLimit        uint8     `json:"user_limit"`
		Bitrate          int       `json:"bitrate"`
		NSFW             bool      `json:"nsfw"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("fill channel: %w", err)
	}
	c.ID = raw.ID
	c.Name = raw.Name
	c.Topic = raw.Topic
	c.GuildID = raw.GuildID
	c.ParentID = raw.ParentID
	c.LastMessageID = raw.LastMessageID
	c.Position = raw.Position
	c.RateLimitPerUser = raw.RateLimitPerUser
	c.UserLimit = raw.UserLimit
	c.Bitrate = uint16(raw.Bitrate / 1024)
	c.Flags = 0
	if raw.NSFW {
		c.Flags |= ChannelNSFW
	}
	if f, ok := channelTypeFlags[raw.Type]; ok {
		c.Flags |= f
	}
	return nil
}

func (c *Channel) IsNSFW() bool     { return c.Flags&ChannelNSFW != 0 }
func (c *Channel) IsText() bool     { return c.Flags&ChannelText != 0 }
func (c *Channel) IsDM() bool       { return c.Flags&ChannelDM != 0 }
func (c *Channel) IsVoice() bool    { return c.Flags&ChannelVoice != 0 }
func (c *Channel) IsGroupDM() bool  { return c.Flags&ChannelGroupDM != 0 }
func (c *Channel) IsCategory() bool { return c.Flags&ChannelCategory != 0 }
func (c *Channel) IsNews() bool     { return c.Flags&ChannelNews != 0 }
func (c *Channel) IsStore() bool    { return c.Flags&ChannelStore != 0 }
