package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"campuscomplaint/internal/backend/repository"
	"campuscomplaint/internal/common/kv"
	"campuscomplaint/internal/common/storage"
	"campuscomplaint/internal/complaint"
	"campuscomplaint/internal/model"
	pkgerrors "campuscomplaint/pkg/errors"
)

func newTokenIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(TokenConfig{Secret: "unit-secret"})
	if err != nil {
		t.Fatalf("new token issuer failed: %v", err)
	}
	return issuer
}

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := newTokenIssuer(t)
	pair, err := issuer.Issue(Principal{ID: 42, Roles: []string{model.RoleUser}})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	p, err := issuer.Authenticate(pair.AccessToken)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if p.ID != 42 || !p.HasRole(model.RoleUser) {
		t.Fatalf("unexpected principal: %+v", p)
	}
	if _, err := issuer.Authenticate(pair.RefreshToken); !pkgerrors.Is(err, pkgerrors.TokenInvalid) {
		t.Fatalf("refresh token must not authenticate requests, got %v", err)
	}
}

func TestTokenIssuerExpiry(t *testing.T) {
	issuer := newTokenIssuer(t)
	now := time.Now()
	issuer.now = func() time.Time { return now }
	pair, _ := issuer.Issue(Principal{ID: 1})

	issuer.now = func() time.Time { return now.Add(defaultAccessTokenTTL + time.Minute) }
	if _, err := issuer.Authenticate(pair.AccessToken); !pkgerrors.Is(err, pkgerrors.TokenExpired) {
		t.Fatalf("expected TokenExpired, got %v", err)
	}
	if _, err := issuer.Parse(pair.RefreshToken, tokenTypeRefresh); err != nil {
		t.Fatalf("refresh token should outlive the access token: %v", err)
	}

	other, _ := NewTokenIssuer(TokenConfig{Secret: "other"})
	if _, err := other.Parse(pair.RefreshToken, tokenTypeRefresh); !pkgerrors.Is(err, pkgerrors.TokenInvalid) {
		t.Fatalf("expected TokenInvalid for foreign signature, got %v", err)
	}
}

func TestSignupValidation(t *testing.T) {
	svc := NewAuthService(repository.NewMemoryUserRepository(), repository.NewOTPRepository(kv.NewMemoryStore()), newTokenIssuer(t), nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		input SignupInput
		code  pkgerrors.ErrorCode
	}{
		{"missing email", SignupInput{Name: "A", MobileNumber: "9876543210", Password: "p", ConfirmPassword: "p"}, pkgerrors.RequiredFieldEmpty},
		{"mismatch", SignupInput{Name: "A", MobileNumber: "9876543210", Email: "a@b.c", Password: "p", ConfirmPassword: "q"}, pkgerrors.PasswordMismatch},
		{"bad mobile", SignupInput{Name: "A", MobileNumber: "98765", Email: "a@b.c", Password: "p", ConfirmPassword: "p"}, pkgerrors.InvalidMobileNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.Signup(ctx, tt.input); !pkgerrors.Is(err, tt.code) {
				t.Fatalf("got %v, want %v", err, tt.code)
			}
		})
	}
}

type recordingGeocoder struct{ calls int }

func (g *recordingGeocoder) ReverseGeocode(context.Context, complaint.Coordinates) (string, error) {
	g.calls++
	return "Main Library", nil
}

func newComplaintService(t *testing.T) (*ComplaintService, *repository.MemoryNotificationRepository, int64) {
	t.Helper()
	users := repository.NewMemoryUserRepository()
	ownerID, err := users.Create(context.Background(), &repository.User{Name: "Owner", MobileNumber: "9000000001", Email: "o@campus.edu"})
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	notifications := repository.NewMemoryNotificationRepository()
	svc := NewComplaintService(repository.NewMemoryComplaintRepository(), users, notifications, storage.NewMemoryStorage(), &recordingGeocoder{}, ComplaintServiceConfig{MaxPhotoBytes: 16})
	return svc, notifications, ownerID
}

func TestSubmitUsesGeocoderAndStoresPhoto(t *testing.T) {
	svc, _, ownerID := newComplaintService(t)
	ctx := context.Background()

	created, err := svc.Submit(ctx, SubmitInput{
		OwnerID:     ownerID,
		Description: "  Broken bench ",
		Latitude:    12.9,
		Longitude:   77.6,
		Photo:       &PhotoInput{Name: "bench.JPG", Size: 3, Reader: bytes.NewReader([]byte("abc"))},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if created.Description != "Broken bench" || created.LocationAddress != "Main Library" || created.OwnerName != "Owner" {
		t.Fatalf("unexpected complaint: %+v", created)
	}
	reader, stat, err := svc.OpenPhoto(ctx, created.PhotoKey)
	if err != nil {
		t.Fatalf("open photo failed: %v", err)
	}
	_ = reader.Close()
	if stat.ContentType != "image/jpeg" {
		t.Fatalf("content type = %q", stat.ContentType)
	}
}

func TestSubmitRejectsOversizedPhoto(t *testing.T) {
	svc, _, ownerID := newComplaintService(t)
	_, err := svc.Submit(context.Background(), SubmitInput{
		OwnerID:     ownerID,
		Description: "x",
		Photo:       &PhotoInput{Name: "big.png", Size: 17, Reader: bytes.NewReader(make([]byte, 17))},
	})
	if !pkgerrors.Is(err, pkgerrors.PhotoUploadFailed) {
		t.Fatalf("expected PhotoUploadFailed, got %v", err)
	}
}

func TestUpdateNotifiesOwner(t *testing.T) {
	svc, notifications, ownerID := newComplaintService(t)
	ctx := context.Background()
	created, _ := svc.Submit(ctx, SubmitInput{OwnerID: ownerID, Description: "leak"})

	if _, err := svc.Update(ctx, created.ID, "DONE", ""); !pkgerrors.Is(err, pkgerrors.InvalidFormat) {
		t.Fatalf("expected invalid status error, got %v", err)
	}
	if _, err := svc.Update(ctx, created.ID, string(model.StatusResolved), "Pipe replaced"); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	items, total, _ := notifications.Unread(ctx, ownerID, repository.PageRequest{Size: 10})
	if total != 1 || items[0].Message != "Your complaint #1 is now RESOLVED: Pipe replaced" {
		t.Fatalf("unexpected notifications: %+v", items)
	}

	updated, err := svc.BulkUpdate(ctx, []int64{created.ID, 77}, string(model.StatusRejected), "")
	if err != nil || updated != 1 {
		t.Fatalf("bulk update = %d, %v", updated, err)
	}
}

func TestMapListFiltersByStatusAndRadius(t *testing.T) {
	svc, _, ownerID := newComplaintService(t)
	ctx := context.Background()
	points := []struct {
		desc     string
		lat, lng float64
	}{
		{"Library lamp", 12.9716, 77.5946},
		{"Hostel tap", 12.9800, 77.5946},
		{"Off-campus pothole", 13.0827, 80.2707},
	}
	ids := make([]int64, 0, len(points))
	for _, p := range points {
		created, err := svc.Submit(ctx, SubmitInput{OwnerID: ownerID, Description: p.desc, Latitude: p.lat, Longitude: p.lng})
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		ids = append(ids, created.ID)
	}
	if _, err := svc.Update(ctx, ids[1], string(model.StatusResolved), ""); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	page := repository.PageRequest{Page: 0, Size: 10}
	lat, lng, radius := 12.9716, 77.5946, 2.0

	_, total, err := svc.MapList(ctx, MapFilter{}, page)
	if err != nil || total != 3 {
		t.Fatalf("unfiltered map list: total=%d err=%v", total, err)
	}
	_, total, _ = svc.MapList(ctx, MapFilter{Lat: &lat, Lng: &lng, Radius: &radius}, page)
	if total != 2 {
		t.Fatalf("radius filter: total=%d", total)
	}
	items, total, _ := svc.MapList(ctx, MapFilter{Status: string(model.StatusPending), Lat: &lat, Lng: &lng, Radius: &radius}, page)
	if total != 1 || items[0].ID != ids[0] {
		t.Fatalf("status and radius filter: total=%d items=%+v", total, items)
	}
	_, total, _ = svc.MapList(ctx, MapFilter{Lat: &lat, Lng: &lng}, page)
	if total != 2 {
		t.Fatalf("default radius should cover campus only: total=%d", total)
	}

	zero := 0.0
	invalid := []struct {
		name   string
		filter MapFilter
		code   pkgerrors.ErrorCode
	}{
		{"lat without lng", MapFilter{Lat: &lat}, pkgerrors.InvalidFormat},
		{"radius without point", MapFilter{Radius: &radius}, pkgerrors.RequiredFieldEmpty},
		{"zero radius", MapFilter{Lat: &lat, Lng: &lng, Radius: &zero}, pkgerrors.InvalidFormat},
		{"unknown status", MapFilter{Status: "DONE"}, pkgerrors.InvalidFormat},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := svc.MapList(ctx, tt.filter, page); !pkgerrors.Is(err, tt.code) {
				t.Fatalf("expected %v, got %v", tt.code, err)
			}
		})
	}
}
