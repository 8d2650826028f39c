// Package tokenstore persists the session credential pair and decides whether it is still valid.
package tokenstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"campuscomplaint/internal/common/kv"
	pkgerrors "campuscomplaint/pkg/errors"
	"campuscomplaint/pkg/utils/logger"

	"go.uber.org/zap"
)

const (
	// DefaultKey holds the compound credential record.
	DefaultKey = "session"

	// DefaultValidityWindow is how long a saved pair stays valid locally.
	DefaultValidityWindow = 7 * 24 * time.Hour
)

// Keys used by the earlier three-entry layout.
const (
	legacyAccessKey  = "accessToken"
	legacyRefreshKey = "refreshToken"
	legacyExpiryKey  = "tokenExpiry"
)

// Store owns the credential pair. All methods are safe to call on an empty backend.
type Store struct {
	kv           kv.Store
	key          string
	window       time.Duration
	now          func() time.Time
	presenceOnly bool
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithValidityWindow overrides how long saved tokens stay valid.
func WithValidityWindow(window time.Duration) Option {
	return func(s *Store) {
		if window > 0 {
			s.window = window
		}
	}
}

// WithKey overrides the key of the compound record.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithPresenceOnly makes the store skip expiry tracking: SaveTokens records no expiry and a
// stored pair counts as authenticated for as long as it exists.
//
// Deprecated: this reproduces the earlier store variant. Keep the default expiry-aware behaviour.
func WithPresenceOnly() Option {
	return func(s *Store) {
		s.presenceOnly = true
	}
}

// New creates a Store over the given backend.
func New(backend kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:     backend,
		key:    DefaultKey,
		window: DefaultValidityWindow,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveTokens replaces the stored pair. Expiry is now + validity window unless presence-only.
func (s *Store) SaveTokens(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" || refreshToken == "" {
		return pkgerrors.New(pkgerrors.InvalidParams).WithMessage("access and refresh token are both required")
	}
	cred := Credential{AccessToken: accessToken, RefreshToken: refreshToken}
	if !s.presenceOnly {
		cred.ExpiresAt = s.now().Add(s.window)
	}
	raw, err := encodeRecord(cred)
	if err != nil {
		return pkgerrors.Wrapf(err, pkgerrors.StorageError, "encode session failed")
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		logger.Error(ctx, "save tokens failed", zap.Error(err))
		return pkgerrors.Wrapf(err, pkgerrors.StorageError, "save tokens failed")
	}
	return nil
}

// Credential returns the stored pair; ok is false when nothing usable is stored or the read failed.
func (s *Store) Credential(ctx context.Context) (Credential, bool) {
	cred, ok, err := s.load(ctx)
	if err != nil {
		logger.Warn(ctx, "read session failed", zap.Error(err))
		return Credential{}, false
	}
	return cred, ok
}

// AccessToken returns the stored access token or "".
func (s *Store) AccessToken(ctx context.Context) string {
	cred, _ := s.Credential(ctx)
	return cred.AccessToken
}

// RefreshToken returns the stored refresh token or "".
func (s *Store) RefreshToken(ctx context.Context) string {
	cred, _ := s.Credential(ctx)
	return cred.RefreshToken
}

// TokenExpiry returns the recorded expiry or the zero time.
func (s *Store) TokenExpiry(ctx context.Context) time.Time {
	cred, _ := s.Credential(ctx)
	return cred.ExpiresAt
}

// IsTokenValid reports whether a complete, unexpired pair is stored.
// An expired pair is cleared before returning false.
func (s *Store) IsTokenValid(ctx context.Context) bool {
	cred, ok := s.Credential(ctx)
	if !ok || !cred.Complete() {
		return false
	}
	if !cred.HasExpiry() {
		return s.presenceOnly
	}
	if cred.Expired(s.now()) {
		if err := s.ClearTokens(ctx); err != nil {
			logger.Warn(ctx, "clear expired tokens failed", zap.Error(err))
		}
		return false
	}
	return true
}

// IsAuthenticated is IsTokenValid under the store's configured mode.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	return s.IsTokenValid(ctx)
}

// ClearTokens removes the stored pair. Clearing an empty store is not an error.
func (s *Store) ClearTokens(ctx context.Context) error {
	if err := s.kv.Del(ctx, s.key, legacyAccessKey, legacyRefreshKey, legacyExpiryKey); err != nil {
		logger.Error(ctx, "clear tokens failed", zap.Error(err))
		return pkgerrors.Wrapf(err, pkgerrors.StorageError, "clear tokens failed")
	}
	return nil
}

func (s *Store) load(ctx context.Context) (Credential, bool, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return Credential{}, false, err
	}
	if !ok {
		return s.migrateLegacy(ctx)
	}
	cred, err := decodeRecord(raw)
	if err != nil {
		return Credential{}, false, fmt.Errorf("decode session failed: %w", err)
	}
	return cred, cred.Complete(), nil
}

// migrateLegacy folds the three-entry layout into the compound record.
// A partial legacy pair is ignored and left in place.
func (s *Store) migrateLegacy(ctx context.Context) (Credential, bool, error) {
	access, hasAccess, err := s.kv.Get(ctx, legacyAccessKey)
	if err != nil {
		return Credential{}, false, err
	}
	refresh, hasRefresh, err := s.kv.Get(ctx, legacyRefreshKey)
	if err != nil {
		return Credential{}, false, err
	}
	if !hasAccess || !hasRefresh || access == "" || refresh == "" {
		return Credential{}, false, nil
	}
	cred := Credential{AccessToken: access, RefreshToken: refresh}
	if expiry, ok, err := s.kv.Get(ctx, legacyExpiryKey); err == nil && ok {
		if ms, parseErr := strconv.ParseInt(expiry, 10, 64); parseErr == nil && ms > 0 {
			cred.ExpiresAt = time.UnixMilli(ms)
		}
	}

	raw, err := encodeRecord(cred)
	if err != nil {
		return cred, true, nil
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		logger.Warn(ctx, "migrate legacy session failed", zap.Error(err))
		return cred, true, nil
	}
	if err := s.kv.Del(ctx, legacyAccessKey, legacyRefreshKey, legacyExpiryKey); err != nil {
		logger.Warn(ctx, "remove legacy session keys failed", zap.Error(err))
	}
	logger.Info(ctx, "migrated legacy session layout")
	return cred, true, nil
}
