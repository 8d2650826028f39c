package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"campuscomplaint/internal/common/kv"
)

const otpKeyPrefix = "otp:"

type otpRecord struct {
	Code      string `json:"code"`
	ExpiresAt int64  `json:"expiresAt"`
}

// OTPRepository keeps password reset codes in a key-value store so a Redis
// backend can share them between stub server instances.
type OTPRepository struct {
	store kv.Store
	now   func() time.Time
}

func NewOTPRepository(store kv.Store) *OTPRepository {
	return &OTPRepository{store: store, now: time.Now}
}

func otpKey(email string) string {
	return otpKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}

// Save replaces any pending code for email.
func (r *OTPRepository) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	raw, err := json.Marshal(otpRecord{Code: code, ExpiresAt: r.now().Add(ttl).UnixMilli()})
	if err != nil {
		return fmt.Errorf("marshal otp failed: %w", err)
	}
	return r.store.Set(ctx, otpKey(email), string(raw))
}

// Get returns the pending code. Expired codes are removed and reported as missing.
func (r *OTPRepository) Get(ctx context.Context, email string) (string, error) {
	raw, ok, err := r.store.Get(ctx, otpKey(email))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrOTPNotFound
	}
	var rec otpRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		_ = r.store.Del(ctx, otpKey(email))
		return "", ErrOTPNotFound
	}
	if r.now().UnixMilli() >= rec.ExpiresAt {
		_ = r.store.Del(ctx, otpKey(email))
		return "", ErrOTPNotFound
	}
	return rec.Code, nil
}

// Delete removes the pending code for email.
func (r *OTPRepository) Delete(ctx context.Context, email string) error {
	return r.store.Del(ctx, otpKey(email))
}
