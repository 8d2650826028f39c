package repository

import (
	"context"
	"sort"
	"sync"
	"time"
)

type Notification struct {
	ID                 int64
	UserID             int64
	Message            string
	RelatedComplaintID *int64
	SentAt             time.Time
	Read               bool
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) (int64, error)
	// Unread returns one page of unread notifications for userID, newest first.
	Unread(ctx context.Context, userID int64, page PageRequest) ([]Notification, int64, error)
	// MarkRead marks the given notifications of userID as read and reports how many changed.
	MarkRead(ctx context.Context, userID int64, ids []int64) (int, error)
}

// MemoryNotificationRepository is a NotificationRepository backed by a map.
type MemoryNotificationRepository struct {
	mu            sync.RWMutex
	nextID        int64
	notifications map[int64]*Notification
}

func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{notifications: make(map[int64]*Notification)}
}

func (r *MemoryNotificationRepository) Create(_ context.Context, n *Notification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := *n
	stored.ID = r.nextID
	r.notifications[stored.ID] = &stored
	return stored.ID, nil
}

func (r *MemoryNotificationRepository) Unread(_ context.Context, userID int64, page PageRequest) ([]Notification, int64, error) {
	r.mu.RLock()
	matches := make([]Notification, 0)
	for _, n := range r.notifications {
		if n.UserID == userID && !n.Read {
			matches = append(matches, *n)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool { return matches[i].ID > matches[j].ID })
	start, end := page.window(len(matches))
	return matches[start:end], int64(len(matches)), nil
}

func (r *MemoryNotificationRepository) MarkRead(_ context.Context, userID int64, ids []int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	changed := 0
	for _, id := range ids {
		n, ok := r.notifications[id]
		if !ok || n.UserID != userID {
			continue
		}
		if !n.Read {
			n.Read = true
			changed++
		}
	}
	return changed, nil
}
