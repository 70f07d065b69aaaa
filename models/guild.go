package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// parseTimestamp converts an ISO8601 timestamp to unix seconds. Empty or
// unparseable input yields 0.
func parseTimestamp(s string) int64 {
	if s == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0
	}
	return t.Unix()
}

// GuildFlags is a bitmask of properties and enabled features of a Guild.
type GuildFlags uint32

const (
	GuildLarge GuildFlags = 1 << iota
	GuildUnavailable
	GuildWidgetEnabled
	GuildInviteSplash
	GuildVIPRegions
	GuildVanityURL
	GuildVerified
	GuildPartnered
	GuildCommunity
	GuildCommerce
	GuildNews
	GuildDiscoverable
	GuildFeatureable
	GuildAnimatedIcon
	GuildBanner
	GuildWelcomeScreenEnabled
	GuildMemberVerificationGate
	GuildPreviewEnabled
	GuildNoJoinNotifications
	GuildNoBoostNotifications
)

// Region is a Discord voice region.
type Region uint8

const (
	RegionBrazil Region = iota
	RegionCentralEurope
	RegionHongKong
	RegionIndia
	RegionJapan
	RegionRussia
	RegionSingapore
	RegionSouthAfrica
	RegionSydney
	RegionUSCentral
	RegionUSEast
	RegionUSSouth
	RegionUSWest
	RegionWesternEurope
)

// featureMap translates API feature strings to flag bits. Unknown feature
// strings are ignored.
var featureMap = map[string]GuildFlags{
	"INVITE_SPLASH":                     GuildInviteSplash,
	"VIP_REGIONS":                       GuildVIPRegions,
	"VANITY_URL":                        GuildVanityURL,
	"VERIFIED":                          GuildVerified,
	"PARTNERED":                         GuildPartnered,
	"COMMUNITY":                         GuildCommunity,
	"COMMERCE":                          GuildCommerce,
	"NEWS":                              GuildNews,
	"DISCOVERABLE":                      GuildDiscoverable,
	"FEATUREABLE":                       GuildFeatureable,
	"ANIMATED_ICON":                     GuildAnimatedIcon,
	"BANNER":                            GuildBanner,
	"WELCOME_SCREEN_ENABLED":            GuildWelcomeScreenEnabled,
	"MEMBER_VERIFICATION_GATE_ENABLED":  GuildMemberVerificationGate,
	"PREVIEW_ENABLED":                   GuildPreviewEnabled,
}

// regionMap translates API voice region names. Unknown region strings leave
// the guild's region at its default.
var regionMap = map[string]Region{
	"brazil":         RegionBrazil,
	"central-europe": RegionCentralEurope,
	"hong-kong":      RegionHongKong,
	"india":          RegionIndia,
	"japan":          RegionJapan,
	"russia":         RegionRussia,
	"singapore":      RegionSingapore,
	"south-africa":   RegionSouthAfrica,
	"sydney":         RegionSydney,
	"us-central":     RegionUSCentral,
	"us-east":        RegionUSEast,
	"us-south":       RegionUSSouth,
	"us-west":        RegionUSWest,
	"western-europe": RegionWesternEurope,
}

// Guild is a Discord guild (a "server" in the UI).
type Guild struct {
	Managed
	Name                     string
	Icon                     string
	DiscoverySplash          string
	OwnerID                  Snowflake
	VoiceRegion              Region
	AFKChannelID             Snowflake
	AFKTimeout               uint16
	WidgetChannelID          Snowflake
	VerificationLevel        uint8
	DefaultMessageNotifs     uint8
	ExplicitContentFilter    uint8
	MFALevel                 uint8
	ApplicationID            Snowflake
	SystemChannelID          Snowflake
	RulesChannelID           Snowflake
	MemberCount              uint32
	VanityURLCode            string
	Description              string
	Banner                   string
	PremiumTier              uint8
	PremiumSubscriptionCount uint16
	PublicUpdatesChannelID   Snowflake
	MaxVideoChannelUsers     uint32
	Flags                    GuildFlags
}

// GuildMap groups guilds by ID.
type GuildMap map[Snowflake]*Guild

// GuildMemberFlags is a bitmask of per-guild member properties.
type GuildMemberFlags uint8

const (
	MemberDeaf GuildMemberFlags = 1 << iota
	MemberMute
	MemberPending
)

// GuildMember binds a User to a Guild with per-guild state.
type GuildMember struct {
	GuildID      Snowflake
	UserID       Snowflake
	Nickname     string
	JoinedAt     int64
	PremiumSince int64
	Roles        []Snowflake
	Flags        GuildMemberFlags
}

// FillFromJSON populates the guild from an API JSON document. A document with
// "unavailable": true carries only the ID; the guild gets the unavailable
// flag and nothing else.
func (g *Guild) FillFromJSON(data []byte) error {
	var raw struct {
		ID                  Snowflake   `json:"id"`
		Unavailable         bool        `json:"unavailable"`
		Name                string      `json:"name"`
		Icon                string      `json:"icon"`
		DiscoverySplash     string      `json:"discovery_splash"`
		OwnerID             Snowflake   `json:"owner_id"`
		Region              string      `json:"region"`
		Large               bool        `json:"large"`
		WidgetEnabled       bool        `json:"widget_enabled"`
		Features            []string    `json:"features"`
		SystemChannelFlags  uint8       `json:"system_channel_flags"`
		AFKChannelID        Snowflake   `json:"afk_channel_id"`
		AFKTimeout          uint16      `json:"afk_timeout"`
		WidgetChannelID     Snowflake   `json:"widget_channel_id"`
		VerificationLevel   uint8       `json:"verification_level"`
		DefaultNotifs       uint8       `json:"default_message_notifications"`
		ExplicitFilter      uint8       `json:"explicit_content_filter"`
		MFALevel            uint8       `json:"mfa_level"`
		ApplicationID       Snowflake   `json:"application_id"`
		SystemChannelID     Snowflake   `json:"system_channel_id"`
		RulesChannelID      Snowflake   `json:"rules_channel_id"`
		MemberCount         uint32      `json:"member_count"`
		VanityURLCode       string      `json:"vanity_url_code"`
		Description         string      `json:"description"`
		Banner              string      `json:"banner"`
		PremiumTier         uint8       `json:"premium_tier"`
		PremiumSubs         uint16      `json:"premium_subscription_count"`
		PublicUpdatesChanID Snowflake   `json:"public_updates_channel_id"`
		MaxVideoChanUsers   uint32      `json:"max_video_channel_users"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("fill guild: %w", err)
	}
	g.ID = raw.ID
	if raw.Unavailable {
		g.Flags |= GuildUnavailable
		return nil
	}
	g.Name = raw.Name
	g.Icon = raw.Icon
	g.DiscoverySplash = raw.DiscoverySplash
	g.OwnerID = raw.OwnerID
	g.VoiceRegion = RegionUSCentral
	if r, ok := regionMap[raw.Region]; ok {
		g.VoiceRegion = r
	}
	if raw.Large {
		g.Flags |= GuildLarge
	}
	if raw.WidgetEnabled {
		g.Flags |= GuildWidgetEnabled
	}
	for _, feature := range raw.Features {
		if f, ok := featureMap[feature]; ok {
			g.Flags |= f
		}
	}
	if raw.SystemChannelFlags&1 != 0 {
		g.Flags |= GuildNoJoinNotifications
	}
	if raw.SystemChannelFlags&2 != 0 {
		g.Flags |= GuildNoBoostNotifications
	}
	g.AFKChannelID = raw.AFKChannelID
	g.AFKTimeout = raw.AFKTimeout
	g.WidgetChannelID = raw.WidgetChannelID
	g.VerificationLevel = raw.VerificationLevel
	g.DefaultMessageNotifs = raw.DefaultNotifs
	g.ExplicitContentFilter = raw.ExplicitFilter
	g.MFALevel = raw.MFALevel
	g.ApplicationID = raw.ApplicationID
	g.SystemChannelID = raw.SystemChannelID
	g.RulesChannelID = raw.RulesChannelID
	g.MemberCount = raw.MemberCount
	g.VanityURLCode = raw.VanityURLCode
	g.Description = raw.Description
	g.Banner = raw.Banner
	g.PremiumTier = raw.PremiumTier
	g.PremiumSubscriptionCount = raw.PremiumSubs
	g.PublicUpdatesChannelID = raw.PublicUpdatesChanID
	g.MaxVideoChannelUsers = raw.MaxVideoChanUsers
	return nil
}

// BuildJSON produces the API-facing JSON body for creating or modifying a
// guild. Zero-valued optional fields are omitted.
func (g *Guild) BuildJSON(withID bool) ([]byte, error) {
	doc := map[string]interface{}{
		"widget_enabled":                g.WidgetEnabled(),
		"default_message_notifications": g.DefaultMessageNotifs,
		"explicit_content_filter":       g.ExplicitContentFilter,
		"mfa_level":                     g.MFALevel,
	}
	if withID {
		doc["id"] = g.ID.String()
	}
	if g.Name != "" {
		doc["name"] = g.Name
	}
	if g.AFKChannelID != 0 {
		doc["afk_channel_id"] = g.AFKChannelID.String()
		doc["afk_timeout"] = g.AFKTimeout
	}
	if g.WidgetEnabled() {
		doc["widget_channel_id"] = g.WidgetChannelID.String()
	}
	if g.SystemChannelID != 0 {
		doc["system_channel_id"] = g.SystemChannelID.String()
	}
	if g.RulesChannelID != 0 {
		doc["rules_channel_id"] = g.RulesChannelID.String()
	}
	if g.VanityURLCode != "" {
		doc["vanity_url_code"] = g.VanityURLCode
	}
	if g.Description != "" {
		doc["description"] = g.Description
	}
	return json.Marshal(doc)
}

// FillFromJSON populates the member from an API JSON document plus the guild
// and user it binds.
func (m *GuildMember) FillFromJSON(data []byte, guildID, userID Snowflake) error {
	var raw struct {
		Nickname     string      `json:"nickname"`
		JoinedAt     string      `json:"joined_at"`
		PremiumSince string      `json:"premium_since"`
		Roles        []Snowflake `json:"roles"`
		Deaf         bool        `json:"deaf"`
		Mute         bool        `json:"mute"`
		Pending      bool        `json:"pending"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("fill guild member: %w", err)
	}
	m.GuildID = guildID
	m.UserID = userID
	m.Nickname = raw.Nickname
	m.JoinedAt = parseTimestamp(raw.JoinedAt)
	m.PremiumSince = parseTimestamp(raw.PremiumSince)
	m.Roles = raw.Roles
	if raw.Deaf {
		m.Flags |= MemberDeaf
	}
	if raw.Mute {
		m.Flags |= MemberMute
	}
	if raw.Pending {
		m.Flags |= MemberPending
	}
	return nil
}

func (g *Guild) IsLarge() bool       { return g.Flags&GuildLarge != 0 }
func (g *Guild) IsUnavailable() bool { return g.Flags&GuildUnavailable != 0 }
func (g *Guild) WidgetEnabled() bool { return g.Flags&GuildWidgetEnabled != 0 }
func (g *Guild) HasInviteSplash() bool {
	return g.Flags&GuildInviteSplash != 0
}
func (g *Guild) HasVIPRegions() bool { return g.Flags&GuildVIPRegions != 0 }
func (g *Guild) HasVanityURL() bool  { return g.Flags&GuildVanityURL != 0 }
func (g *Guild) IsVerified() bool    { return g.Flags&GuildVerified != 0 }
func (g *Guild) IsPartnered() bool   { return g.Flags&GuildPartnered != 0 }
func (g *Guild) IsCommunity() bool   { return g.Flags&GuildCommunity != 0 }
func (g *Guild) HasCommerce() bool   { return g.Flags&GuildCommerce != 0 }
func (g *Guild) HasNews() bool       { return g.Flags&GuildNews != 0 }
func (g *Guild) IsDiscoverable() bool {
	return g.Flags&GuildDiscoverable != 0
}
func (g *Guild) IsFeatureable() bool { return g.Flags&GuildFeatureable != 0 }
func (g *Guild) HasAnimatedIcon() bool {
	return g.Flags&GuildAnimatedIcon != 0
}
func (g *Guild) HasBanner() bool { return g.Flags&GuildBanner != 0 }
func (g *Guild) IsWelcomeScreenEnabled() bool {
	return g.Flags&GuildWelcomeScreenEnabled != 0
}
func (g *Guild) HasMemberVerificationGate() bool {
	return g.Flags&GuildMemberVerificationGate != 0
}
func (g *Guild) IsPreviewEnabled() bool {
	return g.Flags&GuildPreviewEnabled != 0
}

func (m *GuildMember) IsDeaf() bool    { return m.Flags&MemberDeaf != 0 }
func (m *GuildMember) IsMute() bool    { return m.Flags&MemberMute != 0 }
func (m *GuildMember) IsPending() bool { return m.Flags&MemberPending != 0 }
