package tokenstore

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"campuscomplaint/internal/common/kv"
	pkgerrors "campuscomplaint/pkg/errors"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(opts ...Option) (*Store, *kv.MemoryStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	backend := kv.NewMemoryStore()
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return New(backend, opts...), backend, clock
}

type failingKV struct {
	getErr error
	setErr error
	delErr error
}

func (f failingKV) Get(context.Context, string) (string, bool, error) { return "", false, f.getErr }
func (f failingKV) Set(context.Context, string, string) error         { return f.setErr }
func (f failingKV) Del(context.Context, ...string) error              { return f.delErr }
func (f failingKV) Close() error                                      { return nil }

func TestSaveThenClearLeavesNothing(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore()

	pairs := [][2]string{{"a1", "r1"}, {"a2", "r2"}, {"a3", "r3"}}
	for _, pair := range pairs {
		if err := store.SaveTokens(ctx, pair[0], pair[1]); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	if err := store.ClearTokens(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if got := store.AccessToken(ctx); got != "" {
		t.Fatalf("access token = %q, want empty", got)
	}
	if got := store.RefreshToken(ctx); got != "" {
		t.Fatalf("refresh token = %q, want empty", got)
	}
	if err := store.ClearTokens(ctx); err != nil {
		t.Fatalf("clearing an empty store should succeed: %v", err)
	}
}

func TestInvalidWhenNeverSaved(t *testing.T) {
	store, _, _ := newTestStore()
	if store.IsTokenValid(context.Background()) {
		t.Fatalf("expected invalid with no tokens")
	}
	if store.IsAuthenticated(context.Background()) {
		t.Fatalf("expected unauthenticated with no tokens")
	}
}

func TestExpiryWindowAndSelfClearing(t *testing.T) {
	ctx := context.Background()
	store, backend, clock := newTestStore()
	savedAt := clock.now

	if err := store.SaveTokens(ctx, "access", "refresh"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !store.IsTokenValid(ctx) {
		t.Fatalf("expected valid right after save")
	}
	if got, want := store.TokenExpiry(ctx), savedAt.Add(7*24*time.Hour); !got.Equal(want) {
		t.Fatalf("expiry = %v, want %v", got, want)
	}

	clock.Advance(7*24*time.Hour - time.Millisecond)
	if !store.IsTokenValid(ctx) {
		t.Fatalf("expected valid just before expiry")
	}

	clock.Advance(2 * time.Millisecond)
	if store.IsTokenValid(ctx) {
		t.Fatalf("expected invalid after expiry")
	}
	if got := store.AccessToken(ctx); got != "" {
		t.Fatalf("expired access token should be cleared, got %q", got)
	}
	if _, ok, _ := backend.Get(ctx, DefaultKey); ok {
		t.Fatalf("expected session record to be removed")
	}
}

func TestSaveOverwritesAndStoresOneRecord(t *testing.T) {
	ctx := context.Background()
	store, backend, _ := newTestStore(WithKey("auth"))

	_ = store.SaveTokens(ctx, "old-a", "old-r")
	if err := store.SaveTokens(ctx, "new-a", "new-r"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if store.AccessToken(ctx) != "new-a" || store.RefreshToken(ctx) != "new-r" {
		t.Fatalf("expected overwritten pair")
	}
	if _, ok, _ := backend.Get(ctx, "auth"); !ok {
		t.Fatalf("expected record under custom key")
	}
	for _, key := range []string{legacyAccessKey, legacyRefreshKey, legacyExpiryKey} {
		if _, ok, _ := backend.Get(ctx, key); ok {
			t.Fatalf("unexpected separate key %q", key)
		}
	}
}

func TestSaveRejectsHalfPair(t *testing.T) {
	store, _, _ := newTestStore()
	err := store.SaveTokens(context.Background(), "access", "")
	if !pkgerrors.Is(err, pkgerrors.InvalidParams) {
		t.Fatalf("expected InvalidParams, got %v", err)
	}
}

func TestCustomValidityWindow(t *testing.T) {
	ctx := context.Background()
	store, _, clock := newTestStore(WithValidityWindow(time.Hour))
	_ = store.SaveTokens(ctx, "a", "r")
	clock.Advance(time.Hour)
	if store.IsTokenValid(ctx) {
		t.Fatalf("expected expiry after one hour")
	}
}

func TestIncompleteRecordIsInvalid(t *testing.T) {
	ctx := context.Background()
	store, backend, clock := newTestStore()
	expires := strconv.FormatInt(clock.now.Add(time.Hour).UnixMilli(), 10)
	_ = backend.Set(ctx, DefaultKey, `{"accessToken":"a","expiresAt":`+expires+`}`)

	if store.IsTokenValid(ctx) {
		t.Fatalf("a record missing the refresh token must be invalid")
	}
	if got := store.AccessToken(ctx); got != "" {
		t.Fatalf("incomplete record should read as absent, got %q", got)
	}
}

func TestMissingExpiryIsInvalidInExpiryAwareMode(t *testing.T) {
	ctx := context.Background()
	store, backend, _ := newTestStore()
	_ = backend.Set(ctx, DefaultKey, `{"accessToken":"a","refreshToken":"r"}`)

	if store.IsTokenValid(ctx) {
		t.Fatalf("expected invalid without expiry marker")
	}
	if store.AccessToken(ctx) != "a" {
		t.Fatalf("token should still be readable")
	}
}

func TestPresenceOnlyMode(t *testing.T) {
	ctx := context.Background()
	store, _, clock := newTestStore(WithPresenceOnly())

	if err := store.SaveTokens(ctx, "a", "r"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !store.TokenExpiry(ctx).IsZero() {
		t.Fatalf("presence-only store must not record expiry")
	}
	clock.Advance(365 * 24 * time.Hour)
	if !store.IsAuthenticated(ctx) {
		t.Fatalf("presence-only store should stay authenticated while tokens exist")
	}
	_ = store.ClearTokens(ctx)
	if store.IsAuthenticated(ctx) {
		t.Fatalf("expected unauthenticated after clear")
	}
}

func TestLegacyLayoutMigration(t *testing.T) {
	ctx := context.Background()
	store, backend, clock := newTestStore()
	expiry := clock.now.Add(48 * time.Hour)
	_ = backend.Set(ctx, legacyAccessKey, "legacy-a")
	_ = backend.Set(ctx, legacyRefreshKey, "legacy-r")
	_ = backend.Set(ctx, legacyExpiryKey, strconv.FormatInt(expiry.UnixMilli(), 10))

	if !store.IsTokenValid(ctx) {
		t.Fatalf("expected migrated legacy tokens to be valid")
	}
	if got := store.TokenExpiry(ctx); got.UnixMilli() != expiry.UnixMilli() {
		t.Fatalf("expiry = %v, want %v", got, expiry)
	}
	if _, ok, _ := backend.Get(ctx, legacyAccessKey); ok {
		t.Fatalf("legacy keys should be removed after migration")
	}
	if _, ok, _ := backend.Get(ctx, DefaultKey); !ok {
		t.Fatalf("compound record should exist after migration")
	}
}

func TestLegacyPartialPairIgnored(t *testing.T) {
	ctx := context.Background()
	store, backend, _ := newTestStore()
	_ = backend.Set(ctx, legacyAccessKey, "only-access")

	if store.IsTokenValid(ctx) {
		t.Fatalf("partial legacy pair must be invalid")
	}
	if store.AccessToken(ctx) != "" {
		t.Fatalf("partial legacy pair must read as absent")
	}
}

func TestStorageErrorsFailSoft(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk unavailable")
	store := New(failingKV{getErr: boom, setErr: boom, delErr: boom})

	if got := store.AccessToken(ctx); got != "" {
		t.Fatalf("read error should yield empty token, got %q", got)
	}
	if store.IsTokenValid(ctx) {
		t.Fatalf("read error should yield invalid session")
	}
	if err := store.SaveTokens(ctx, "a", "r"); !pkgerrors.Is(err, pkgerrors.StorageError) {
		t.Fatalf("save should report StorageError, got %v", err)
	}
	if err := store.ClearTokens(ctx); !errors.Is(err, boom) {
		t.Fatalf("clear should wrap the backend error, got %v", err)
	}
}
