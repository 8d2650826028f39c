package tokenstore

import (
	"encoding/json"
	"time"
)

// Credential is the access/refresh token pair plus its optional expiry.
type Credential struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Complete reports whether both tokens are present.
func (c Credential) Complete() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}

// HasExpiry reports whether an expiry was recorded for the pair.
func (c Credential) HasExpiry() bool {
	return !c.ExpiresAt.IsZero()
}

// Expired reports whether the recorded expiry has passed at now.
// A pair without expiry never expires.
func (c Credential) Expired(now time.Time) bool {
	return c.HasExpiry() && !now.Before(c.ExpiresAt)
}

// record is the persisted form: one JSON document under one key, expiry in epoch milliseconds.
type record struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    int64  `json:"expiresAt,omitempty"`
}

func encodeRecord(c Credential) (string, error) {
	rec := record{AccessToken: c.AccessToken, RefreshToken: c.RefreshToken}
	if c.HasExpiry() {
		rec.ExpiresAt = c.ExpiresAt.UnixMilli()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeRecord(raw string) (Credential, error) {
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Credential{}, err
	}
	c := Credential{AccessToken: rec.AccessToken, RefreshToken: rec.RefreshToken}
	if rec.ExpiresAt > 0 {
		c.ExpiresAt = time.UnixMilli(rec.ExpiresAt)
	}
	return c, nil
}
