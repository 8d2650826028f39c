package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"campuscomplaint/internal/common/kv"
)

func TestUserUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()
	if _, err := repo.Create(ctx, &User{Name: "A", MobileNumber: "9000000001", Email: "a@campus.edu"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := repo.Create(ctx, &User{Name: "B", MobileNumber: "9000000001", Email: "b@campus.edu"}); !errors.Is(err, ErrMobileExists) {
		t.Fatalf("expected ErrMobileExists, got %v", err)
	}
	if _, err := repo.Create(ctx, &User{Name: "B", MobileNumber: "9000000002", Email: "A@campus.edu"}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
	if _, err := repo.GetByEmail(ctx, "A@CAMPUS.EDU"); err != nil {
		t.Fatalf("email lookup should ignore case: %v", err)
	}
}

func TestComplaintFindPagesNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryComplaintRepository()
	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		owner := int64(1)
		if i%2 == 1 {
			owner = 2
		}
		_, _ = repo.Create(ctx, &Complaint{OwnerID: owner, Description: "item", Status: "PENDING", SubmittedAt: base.AddDate(0, 0, i)})
	}

	items, total, err := repo.Find(ctx, ComplaintQuery{OwnerID: 1}, PageRequest{Page: 0, Size: 2})
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if total != 3 || len(items) != 2 || items[0].ID != 5 || items[1].ID != 3 {
		t.Fatalf("unexpected page: total=%d items=%+v", total, items)
	}

	items, total, _ = repo.Find(ctx, ComplaintQuery{FromDate: base.AddDate(0, 0, 3)}, PageRequest{Page: 0, Size: 10})
	if total != 2 || len(items) != 2 {
		t.Fatalf("fromDate filter: total=%d", total)
	}

	items, _, _ = repo.Find(ctx, ComplaintQuery{}, PageRequest{Page: 9, Size: 10})
	if len(items) != 0 {
		t.Fatalf("page past the end should be empty")
	}
}

func TestComplaintFindNear(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryComplaintRepository()
	nearID, _ := repo.Create(ctx, &Complaint{Description: "near", Status: "PENDING", Latitude: 12.9806, Longitude: 77.5946})
	_, _ = repo.Create(ctx, &Complaint{Description: "far", Status: "PENDING", Latitude: 13.0827, Longitude: 80.2707})
	_, _ = repo.Create(ctx, &Complaint{Description: "near resolved", Status: "RESOLVED", Latitude: 12.9716, Longitude: 77.5950})

	circle := &GeoCircle{Latitude: 12.9716, Longitude: 77.5946, RadiusKm: 2}
	items, total, err := repo.Find(ctx, ComplaintQuery{Near: circle}, PageRequest{Page: 0, Size: 10})
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 complaints in range, got %d: %+v", total, items)
	}

	items, total, _ = repo.Find(ctx, ComplaintQuery{Status: "PENDING", Near: circle}, PageRequest{Page: 0, Size: 10})
	if total != 1 || items[0].ID != nearID {
		t.Fatalf("status and radius filter: total=%d items=%+v", total, items)
	}
}

func TestDistanceKm(t *testing.T) {
	if d := DistanceKm(12.9716, 77.5946, 12.9716, 77.5946); d != 0 {
		t.Fatalf("same point distance = %v", d)
	}
	// one hundredth of a degree of latitude is about 1.11 km
	if d := DistanceKm(0, 0, 0.01, 0); d < 1.10 || d > 1.12 {
		t.Fatalf("unexpected distance %v", d)
	}
}

func TestComplaintAppendUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryComplaintRepository()
	id, _ := repo.Create(ctx, &Complaint{Description: "x", Status: "PENDING"})
	updated, err := repo.AppendUpdate(ctx, id, ComplaintUpdate{Status: "RESOLVED", Note: "done"})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if updated.Status != "RESOLVED" || updated.ResolutionNote != "done" || len(updated.Updates) != 1 {
		t.Fatalf("unexpected complaint: %+v", updated)
	}
	if _, err := repo.AppendUpdate(ctx, 99, ComplaintUpdate{}); !errors.Is(err, ErrComplaintNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestNotificationMarkReadOnlyOwn(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryNotificationRepository()
	mine, _ := repo.Create(ctx, &Notification{UserID: 1, Message: "m"})
	theirs, _ := repo.Create(ctx, &Notification{UserID: 2, Message: "t"})

	changed, _ := repo.MarkRead(ctx, 1, []int64{mine, theirs})
	if changed != 1 {
		t.Fatalf("changed = %d, want 1", changed)
	}
	if _, total, _ := repo.Unread(ctx, 2, PageRequest{Size: 10}); total != 1 {
		t.Fatalf("other user's notification must stay unread")
	}
}

func TestOTPExpiry(t *testing.T) {
	ctx := context.Background()
	repo := NewOTPRepository(kv.NewMemoryStore())
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	if err := repo.Save(ctx, "A@campus.edu", "123456", 10*time.Minute); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	code, err := repo.Get(ctx, "a@campus.edu")
	if err != nil || code != "123456" {
		t.Fatalf("get = %q, %v", code, err)
	}
	now = now.Add(10 * time.Minute)
	if _, err := repo.Get(ctx, "a@campus.edu"); !errors.Is(err, ErrOTPNotFound) {
		t.Fatalf("expected expired code to be gone, got %v", err)
	}
}
