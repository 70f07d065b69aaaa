// Package models contains the Discord domain objects cached and exchanged by
// the library: users, guilds, channels, roles and emoji. Each object carries a
// Snowflake ID and a flags bitmask filled from the API's JSON representation.
package models

import (
	"fmt"
	"strconv"
)

// Snowflake is Discord's 64-bit object identifier. On the wire it is a
// decimal string; internally it is an unsigned integer.
type Snowflake uint64

// ParseSnowflake converts a decimal string ID to a Snowflake.
func ParseSnowflake(s string) (Snowflake, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse snowflake %q: %w", s, err)
	}
	return Snowflake(v), nil
}

// String returns the decimal wire form of the ID.
func (s Snowflake) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

// MarshalJSON encodes the ID as a decimal string, matching the wire format.
func (s Snowflake) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON accepts a decimal string, a bare number, or null.
func (s *Snowflake) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" {
		*s = 0
		return nil
	}
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	v, err := ParseSnowflake(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}
