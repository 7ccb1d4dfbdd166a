package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// SocialNetworks is the closed set of keys accepted in a business's
// social-links map.
var SocialNetworks = []string{"instagram", "linkedin", "x", "tiktok", "pinterest"}

// SocialLinks maps a social network key to a profile URL, persisted as JSONB.
type SocialLinks map[string]string

// HasAnyLink reports whether at least one known network has a non-empty URL.
func (s SocialLinks) HasAnyLink() bool {
	for _, network := range SocialNetworks {
		if strings.TrimSpace(s[network]) != "" {
			return true
		}
	}
	return false
}

// Value marshals the map into JSON for Postgres.
func (s SocialLinks) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	buf, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the map.
func (s *SocialLinks) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("social links: unsupported scan type %T", value)
	}

	result := make(SocialLinks)
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*s = result
	return nil
}
