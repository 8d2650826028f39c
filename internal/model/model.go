// Package model holds the records exchanged with the campus-complaint backend.
package model

// Envelope is the {success, message, data} wrapper used by list and detail responses.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data,omitempty"`
}

// Page is one slice of a paginated listing. Page numbers are zero-based.
type Page[T any] struct {
	Content       []T   `json:"content" validate:"dive"`
	TotalElements int64 `json:"totalElements" validate:"gte=0"`
	Last          bool  `json:"last"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// Role names used by the backend.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is the profile of a signed-in account.
type User struct {
	ID           int64    `json:"id" validate:"required"`
	Name         string   `json:"name" validate:"required"`
	Email        string   `json:"email,omitempty" validate:"omitempty,email"`
	MobileNumber string   `json:"mobileNumber,omitempty"`
	Roles        []string `json:"roles,omitempty"`
}

// HasRole reports whether the user carries role.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ComplaintStatus is the processing state of a complaint.
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "PENDING"
	StatusInProgress ComplaintStatus = "IN_PROGRESS"
	StatusResolved   ComplaintStatus = "RESOLVED"
	StatusRejected   ComplaintStatus = "REJECTED"
)

// Valid reports whether s is one of the known statuses.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// ComplaintUpdate is one entry of a complaint's status history.
type ComplaintUpdate struct {
	Status    ComplaintStatus `json:"status"`
	Note      string          `json:"note,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// Complaint is a submitted report. Timestamps are kept as the server sends them.
type Complaint struct {
	ID              int64             `json:"id" validate:"required"`
	Description     string            `json:"description" validate:"required"`
	Status          ComplaintStatus   `json:"status" validate:"required"`
	Latitude        float64           `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude       float64           `json:"longitude" validate:"gte=-180,lte=180"`
	LocationAddress string            `json:"locationAddress,omitempty"`
	PhotoURL        string            `json:"photoUrl,omitempty"`
	SubmittedAt     string            `json:"submittedAt,omitempty"`
	SubmittedByName string            `json:"submittedByName,omitempty"`
	ResolutionNote  string            `json:"resolutionNote,omitempty"`
	Updates         []ComplaintUpdate `json:"updates,omitempty"`
}

// LatestUpdate returns the newest history entry, if any.
func (c Complaint) LatestUpdate() (ComplaintUpdate, bool) {
	if len(c.Updates) == 0 {
		return ComplaintUpdate{}, false
	}
	return c.Updates[len(c.Updates)-1], true
}

// Notification tells a user about a change to one of their complaints.
type Notification struct {
	ID                 int64  `json:"id" validate:"required"`
	Message            string `json:"message" validate:"required"`
	RelatedComplaintID *int64 `json:"relatedComplaintId,omitempty"`
	SentAt             string `json:"sentAt,omitempty"`
}

// AuthTokens is the pair returned by login and refresh.
type AuthTokens struct {
	AccessToken  string `json:"accessToken" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}
