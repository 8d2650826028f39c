package controller

import (
	"strings"
	"time"

	"campuscomplaint/internal/backend/repository"
	"campuscomplaint/internal/model"

	"github.com/gin-gonic/gin"
)

// timestampLayout matches the local date-time strings the mobile app displays.
const timestampLayout = "2006-01-02T15:04:05"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timestampLayout)
}

func toUser(u repository.User) model.User {
	return model.User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		MobileNumber: u.MobileNumber,
		Roles:        u.Roles,
	}
}

func toComplaint(c repository.Complaint, photoBase string) model.Complaint {
	out := model.Complaint{
		ID:              c.ID,
		Description:     c.Description,
		Status:          model.ComplaintStatus(c.Status),
		Latitude:        c.Latitude,
		Longitude:       c.Longitude,
		LocationAddress: c.LocationAddress,
		SubmittedAt:     formatTime(c.SubmittedAt),
		SubmittedByName: c.OwnerName,
		ResolutionNote:  c.ResolutionNote,
	}
	if c.PhotoKey != "" {
		out.PhotoURL = photoBase + "/uploads/" + c.PhotoKey
	}
	for _, u := range c.Updates {
		out.Updates = append(out.Updates, model.ComplaintUpdate{
			Status:    model.ComplaintStatus(u.Status),
			Note:      u.Note,
			Timestamp: formatTime(u.Timestamp),
		})
	}
	return out
}

func toComplaints(items []repository.Complaint, photoBase string) []model.Complaint {
	out := make([]model.Complaint, 0, len(items))
	for _, c := range items {
		out = append(out, toComplaint(c, photoBase))
	}
	return out
}

func toNotifications(items []repository.Notification) []model.Notification {
	out := make([]model.Notification, 0, len(items))
	for _, n := range items {
		out = append(out, model.Notification{
			ID:                 n.ID,
			Message:            n.Message,
			RelatedComplaintID: n.RelatedComplaintID,
			SentAt:             formatTime(n.SentAt),
		})
	}
	return out
}

// publicBase is the externally visible root used in photo URLs.
func publicBase(c *gin.Context, configured string) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if forwarded := c.GetHeader("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return scheme + "://" + c.Request.Host
}
