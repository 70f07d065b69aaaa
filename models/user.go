package models

import (
	"encoding/json"
	"fmt"
)

// UserFlags is a bitmask of properties of a User.
type UserFlags uint32

const (
	UserBot UserFlags = 1 << iota
	UserSystem
	UserMFAEnabled
	UserVerified
	UserNitroFull
	UserNitroClassic
	UserDiscordEmployee
	UserPartneredOwner
	UserHypesquadEvents
	UserBugHunter1
	UserHouseBravery
	UserHouseBrilliance
	UserHouseBalance
	UserEarlySupporter
	UserTeamUser
	UserBugHunter2
	UserVerifiedBot
	UserVerifiedBotDev
)

// User is a Discord user, which may or may not be a member of one or more
// guilds.
type User struct {
	Managed
	Username      string
	Discriminator uint16
	Avatar        string
	Flags         UserFlags
}

// UserMap groups users by ID.
type UserMap map[Snowflake]*User

// FillFromJSON populates the user from an API JSON document.
func (u *User) FillFromJSON(data []byte) error {
	var raw struct {
		ID            Snowflake `json:"id"`
		Username      string    `json:"username"`
		Discriminator string    `json:"discriminator"`
		Avatar        string    `json:"avatar"`
		Bot           bool      `json:"bot"`
		System        bool      `json:"system"`
		MFAEnabled    bool      `json:"mfa_enabled"`
		Verified      bool      `json:"verified"`
		PremiumType   int       `json:"premium_type"`
		PublicFlags   uint32    `json:"public_flags"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("fill user: %w", err)
	}
	u.ID = raw.ID
	u.Username = raw.Username
	u.Avatar = raw.Avatar
	if raw.Discriminator != "" {
		var d uint16
		fmt.Sscanf(raw.Discriminator, "%d", &d)
		u.Discriminator = d
	}
	u.Flags = 0
	setIf(&u.Flags, raw.Bot, UserBot)
	setIf(&u.Flags, raw.System, UserSystem)
	setIf(&u.Flags, raw.MFAEnabled, UserMFAEnabled)
	setIf(&u.Flags, raw.Verified, UserVerified)
	switch raw.PremiumType {
	case 1:
		u.Flags |= UserNitroClassic
	case 2:
		u.Flags |= UserNitroFull
	}
	for _, pf := range []struct {
		bit  uint32
		flag UserFlags
	}{
		{1 << 0, UserDiscordEmployee},
		{1 << 1, UserPartneredOwner},
		{1 << 2, UserHypesquadEvents},
		{1 << 3, UserBugHunter1},
		{1 << 6, UserHouseBravery},
		{1 << 7, UserHouseBrilliance},
		{1 << 8, UserHouseBalance},
		{1 << 9, UserEarlySupporter},
		{1 << 10, UserTeamUser},
		{1 << 14, UserBugHunter2},
		{1 << 16, UserVerifiedBot},
		{1 << 17, UserVerifiedBotDev},
	} {
		if raw.PublicFlags&pf.bit != 0 {
			u.Flags |= pf.flag
		}
	}
	return nil
}

func setIf(flags *UserFlags, cond bool, bit UserFlags) {
	if cond {
		*flags |= bit
	}
}

func (u *User) IsBot() bool             { return u.Flags&UserBot != 0 }
func (u *User) IsSystem() bool          { return u.Flags&UserSystem != 0 }
func (u *User) IsMFAEnabled() bool      { return u.Flags&UserMFAEnabled != 0 }
func (u *User) IsVerified() bool        { return u.Flags&UserVerified != 0 }
func (u *User) HasNitroFull() bool      { return u.Flags&UserNitroFull != 0 }
func (u *User) HasNitroClassic() bool   { return u.Flags&UserNitroClassic != 0 }
func (u *User) IsDiscordEmployee() bool { return u.Flags&UserDiscordEmployee != 0 }
func (u *User) IsPartneredOwner() bool  { return u.Flags&UserPartneredOwner != 0 }
func (u *User) HasHypesquadEvents() bool {
	return u.Flags&UserHypesquadEvents != 0
}
func (u *User) IsBugHunter1() bool      { return u.Flags&UserBugHunter1 != 0 }
func (u *User) IsHouseBravery() bool    { return u.Flags&UserHouseBravery != 0 }
func (u *User) IsHouseBrilliance() bool { return u.Flags&UserHouseBrilliance != 0 }
func (u *User) IsHouseBalance() bool    { return u.Flags&UserHouseBalance != 0 }
func (u *User) IsEarlySupporter() bool  { return u.Flags&UserEarlySupporter != 0 }
func (u *User) IsTeamUser() bool        { return u.Flags&UserTeamUser != 0 }
func (u *User) IsBugHunter2() bool      { return u.Flags&UserBugHunter2 != 0 }
func (u *User) IsVerifiedBot() bool     { return u.Flags&UserVerifiedBot != 0 }
func (u *User) IsVerifiedBotDev() bool  { return u.Flags&UserVerifiedBotDev != 0 }
