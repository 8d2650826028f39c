package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type ComplaintUpdate struct {
	Status    string
	Note      string
	Timestamp time.Time
}

type Complaint struct {
	ID              int64
	OwnerID         int64
	OwnerName       string
	Description     string
	Status          string
	Latitude        float64
	Longitude       float64
	LocationAddress string
	PhotoKey        string
	ResolutionNote  string
	SubmittedAt     time.Time
	Updates         []ComplaintUpdate
}

// ComplaintQuery filters listings. Zero values match everything.
type ComplaintQuery struct {
	OwnerID  int64
	Status   string
	FromDate time.Time
	Text     string
	// Near keeps only complaints within the circle.
	Near *GeoCircle
}

func (q ComplaintQuery) matches(c *Complaint) bool {
	if q.OwnerID != 0 && c.OwnerID != q.OwnerID {
		return false
	}
	if q.Status != "" && c.Status != q.Status {
		return false
	}
	if !q.FromDate.IsZero() && c.SubmittedAt.Before(q.FromDate) {
		return false
	}
	if q.Near != nil && !q.Near.Contains(c.Latitude, c.Longitude) {
		return false
	}
	if q.Text != "" {
		text := strings.ToLower(q.Text)
		if !strings.Contains(strings.ToLower(c.Description), text) &&
			!strings.Contains(strings.ToLower(c.LocationAddress), text) &&
			!strings.Contains(strings.ToLower(c.OwnerName), text) {
			return false
		}
	}
	return true
}

type ComplaintRepository interface {
	Create(ctx context.Context, complaint *Complaint) (int64, error)
	GetByID(ctx context.Context, id int64) (*Complaint, error)
	// Find returns one page, newest first, and the total number of matches.
	Find(ctx context.Context, query ComplaintQuery, page PageRequest) ([]Complaint, int64, error)
	// AppendUpdate sets the status and records it in the history.
	AppendUpdate(ctx context.Context, id int64, update ComplaintUpdate) (*Complaint, error)
}

// MemoryComplaintRepository is a ComplaintRepository backed by a map.
type MemoryComplaintRepository struct {
	mu         sync.RWMutex
	nextID     int64
	complaints map[int64]*Complaint
}

func NewMemoryComplaintRepository() *MemoryComplaintRepository {
	return &MemoryComplaintRepository{complaints: make(map[int64]*Complaint)}
}

func (r *MemoryComplaintRepository) Create(_ context.Context, complaint *Complaint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := *complaint
	stored.ID = r.nextID
	stored.Updates = append([]ComplaintUpdate(nil), complaint.Updates...)
	r.complaints[stored.ID] = &stored
	return stored.ID, nil
}

func (r *MemoryComplaintRepository) GetByID(_ context.Context, id int64) (*Complaint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.complaints[id]
	if !ok {
		return nil, ErrComplaintNotFound
	}
	return copyComplaint(c), nil
}

func (r *MemoryComplaintRepository) Find(_ context.Context, query ComplaintQuery, page PageRequest) ([]Complaint, int64, error) {
	r.mu.RLock()
	matches := make([]Complaint, 0)
	for _, c := range r.complaints {
		if query.matches(c) {
			matches = append(matches, *copyComplaint(c))
		}
	}
	r.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool { return matches[i].ID > matches[j].ID })
	start, end := page.window(len(matches))
	return matches[start:end], int64(len(matches)), nil
}

func (r *MemoryComplaintRepository) AppendUpdate(_ context.Context, id int64, update ComplaintUpdate) (*Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.complaints[id]
	if !ok {
		return nil, ErrComplaintNotFound
	}
	c.Status = update.Status
	if update.Note != "" {
		c.ResolutionNote = update.Note
	}
	c.Updates = append(c.Updates, update)
	return copyComplaint(c), nil
}

func copyComplaint(c *Complaint) *Complaint {
	out := *c
	out.Updates = append([]ComplaintUpdate(nil), c.Updates...)
	return &out
}
