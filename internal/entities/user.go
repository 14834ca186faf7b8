package entities

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// CallerProfile is the identity of the operator who completed the OAuth flow.
// Avatar is nil when the account has none.
type CallerProfile struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Discriminator string  `json:"discriminator"`
	Avatar        *string `json:"avatar"`
}

// PermissionBits is a Discord permission bitmask. Discord serializes it as a
// decimal string; plain JSON numbers are accepted as well.
type PermissionBits uint64

func (p *PermissionBits) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = 0
		return nil
	}
	var raw json.Number
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = json.Number(s)
	} else {
		raw = json.Number(data)
	}
	v, err := strconv.ParseUint(raw.String(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid permissions %q: %w", raw.String(), err)
	}
	*p = PermissionBits(v)
	return nil
}

// PartialGuild is one entry of the caller's guild list.
type PartialGuild struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Icon        *string        `json:"icon"`
	Permissions PermissionBits `json:"permissions"`
}

// AdminGuild is a guild the caller administers, as shown on the dashboard.
type AdminGuild struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Icon   *string `json:"icon"`
	HasBot bool    `json:"hasBot"`
}

type ExchangeResult struct {
	User        CallerProfile `json:"user"`
	Guilds      []AdminGuild  `json:"guilds"`
	AccessToken string        `json:"accessToken"`
}
