package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"campuscomplaint/internal/complaint"
	"campuscomplaint/internal/model"
	pkgerrors "campuscomplaint/pkg/errors"
)

const fromDateLayout = "2006-01-02"

// ComplaintFilter narrows complaint listings. Zero values mean no filter.
type ComplaintFilter struct {
	Status   model.ComplaintStatus
	FromDate time.Time
}

func (f ComplaintFilter) apply(query url.Values) {
	if f.Status != "" {
		query.Set("status", string(f.Status))
	}
	if !f.FromDate.IsZero() {
		query.Set("fromDate", f.FromDate.Format(fromDateLayout))
	}
}

// MapFilter narrows the map listing. Nil coordinates and radius are not sent.
// Radius is in kilometres around (Lat, Lng).
type MapFilter struct {
	Status model.ComplaintStatus
	Lat    *float64
	Lng    *float64
	Radius *float64
}

func (f MapFilter) apply(query url.Values) {
	if f.Status != "" {
		query.Set("status", string(f.Status))
	}
	if f.Lat != nil {
		query.Set("lat", strconv.FormatFloat(*f.Lat, 'f', -1, 64))
	}
	if f.Lng != nil {
		query.Set("lng", strconv.FormatFloat(*f.Lng, 'f', -1, 64))
	}
	if f.Radius != nil {
		query.Set("radius", strconv.FormatFloat(*f.Radius, 'f', -1, 64))
	}
}

// ComplaintChange is an admin status change with an optional note.
type ComplaintChange struct {
	Status model.ComplaintStatus `json:"status" validate:"required,oneof=PENDING IN_PROGRESS RESOLVED REJECTED"`
	Note   string                `json:"note,omitempty"`
}

// BulkComplaintChange applies one change to several complaints.
type BulkComplaintChange struct {
	ComplaintIDs []int64               `json:"complaintIds" validate:"required,min=1"`
	Status       model.ComplaintStatus `json:"status" validate:"required,oneof=PENDING IN_PROGRESS RESOLVED REJECTED"`
	Note         string                `json:"note,omitempty"`
}

// SubmitComplaint sends an assembled complaint as multipart/form-data.
func (c *Client) SubmitComplaint(ctx context.Context, payload *complaint.Payload) (*model.Complaint, error) {
	body, contentType, err := payload.Encode()
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.InternalServerError)
	}
	var out model.Complaint
	r := request{method: http.MethodPost, path: PathSubmitComplaint, body: body, contentType: contentType}
	if _, err := c.call(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) listComplaints(ctx context.Context, path string, query url.Values) (*model.Page[model.Complaint], error) {
	var out model.Page[model.Complaint]
	if _, err := c.call(ctx, request{method: http.MethodGet, path: path, query: query}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMyComplaints lists the signed-in user's complaints, newest first.
func (c *Client) GetMyComplaints(ctx context.Context, filter ComplaintFilter, page, size int) (*model.Page[model.Complaint], error) {
	query := pageQuery(page, size)
	filter.apply(query)
	return c.listComplaints(ctx, PathMyComplaints, query)
}

// SearchComplaints runs a free-text search.
func (c *Client) SearchComplaints(ctx context.Context, text string, filter ComplaintFilter, page, size int) (*model.Page[model.Complaint], error) {
	query := pageQuery(page, size)
	if q := strings.TrimSpace(text); q != "" {
		query.Set("query", q)
	}
	filter.apply(query)
	return c.listComplaints(ctx, PathSearchComplaints, query)
}

// GetAllComplaints lists every complaint. Admin only.
func (c *Client) GetAllComplaints(ctx context.Context, filter ComplaintFilter, page, size int) (*model.Page[model.Complaint], error) {
	query := pageQuery(page, size)
	filter.apply(query)
	return c.listComplaints(ctx, PathAllComplaints, query)
}

// GetComplaintsMap lists complaints for the map view, optionally by status
// and within a radius of a point.
func (c *Client) GetComplaintsMap(ctx context.Context, filter MapFilter, page, size int) (*model.Page[model.Complaint], error) {
	query := pageQuery(page, size)
	filter.apply(query)
	return c.listComplaints(ctx, PathComplaintsMap, query)
}

func (c *Client) GetComplaintDetail(ctx context.Context, id int64) (*model.Complaint, error) {
	var out model.Complaint
	if _, err := c.call(ctx, request{method: http.MethodGet, path: ComplaintPath(id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateComplaint(ctx context.Context, id int64, change ComplaintChange) (*model.Complaint, error) {
	if err := model.ValidateInput(change); err != nil {
		return nil, err
	}
	r, err := jsonRequest(http.MethodPut, ComplaintPath(id), change)
	if err != nil {
		return nil, err
	}
	var out model.Complaint
	if _, err := c.call(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) BulkUpdateComplaints(ctx context.Context, change BulkComplaintChange) (*Ack, error) {
	if err := model.ValidateInput(change); err != nil {
		return nil, err
	}
	return c.ack(ctx, http.MethodPut, PathBulkUpdate, change)
}
