package entities

import (
	"bytes"
	"encoding/json"
)

type CommandCategory struct {
	Key   string `json:"-"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
	Color string `json:"color"`
	Count int    `json:"count"`
}

// CommandCatalog encodes as a JSON object keyed by category, in slice order.
type CommandCatalog []CommandCategory

func (c CommandCatalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cat := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(cat.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(cat)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c CommandCatalog) Total() int {
	total := 0
	for _, cat := range c {
		total += cat.Count
	}
	return total
}

type BotInfo struct {
	Name              string         `json:"name"`
	Avatar            *string        `json:"avatar"`
	Guilds            int            `json:"guilds"`
	Users             int            `json:"users"`
	Commands          int            `json:"commands"`
	CommandCategories CommandCatalog `json:"commandCategories"`
	Uptime            int64          `json:"uptime"`
}
