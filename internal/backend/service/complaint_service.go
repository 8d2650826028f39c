package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"campuscomplaint/internal/backend/repository"
	"campuscomplaint/internal/common/storage"
	"campuscomplaint/internal/complaint"
	"campuscomplaint/internal/model"
	pkgerrors "campuscomplaint/pkg/errors"
	"campuscomplaint/pkg/utils/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPhotoBucket   = "complaint-photos"
	defaultMaxPhotoBytes = 10 << 20
	photoKeyPrefix       = "complaints/"
)

// ComplaintServiceConfig holds photo storage settings.
type ComplaintServiceConfig struct {
	Bucket        string `yaml:"bucket"`
	MaxPhotoBytes int64  `yaml:"maxPhotoBytes"`
}

// ComplaintService owns complaint submission and the admin workflow.
type ComplaintService struct {
	complaints    repository.ComplaintRepository
	users         repository.UserRepository
	notifications repository.NotificationRepository
	photos        storage.ObjectStorage
	geocoder      complaint.Geocoder
	config        ComplaintServiceConfig
	now           func() time.Time
}

// NewComplaintService creates the service. geocoder may be nil.
func NewComplaintService(
	complaints repository.ComplaintRepository,
	users repository.UserRepository,
	notifications repository.NotificationRepository,
	photos storage.ObjectStorage,
	geocoder complaint.Geocoder,
	cfg ComplaintServiceConfig,
) *ComplaintService {
	if cfg.Bucket == "" {
		cfg.Bucket = defaultPhotoBucket
	}
	if cfg.MaxPhotoBytes <= 0 {
		cfg.MaxPhotoBytes = defaultMaxPhotoBytes
	}
	return &ComplaintService{
		complaints:    complaints,
		users:         users,
		notifications: notifications,
		photos:        photos,
		geocoder:      geocoder,
		config:        cfg,
		now:           time.Now,
	}
}

// PhotoInput is an uploaded photo part.
type PhotoInput struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// SubmitInput is a new complaint from ownerID.
type SubmitInput struct {
	OwnerID     int64
	Description string
	Latitude    float64
	Longitude   float64
	Photo       *PhotoInput
}

// ListFilter narrows listings.
type ListFilter struct {
	Status   string
	FromDate time.Time
}

// DefaultMapRadiusKm applies when a map listing gives a point but no radius.
const DefaultMapRadiusKm = 5.0

// MapFilter narrows the map listing. Lat and Lng come together; Radius needs them.
type MapFilter struct {
	Status string
	Lat    *float64
	Lng    *float64
	Radius *float64
}

func (f MapFilter) circle() (*repository.GeoCircle, error) {
	if f.Lat == nil && f.Lng == nil {
		if f.Radius != nil {
			return nil, pkgerrors.ValidationError(pkgerrors.RequiredFieldEmpty, "lat")
		}
		return nil, nil
	}
	if f.Lat == nil || *f.Lat < -90 || *f.Lat > 90 {
		return nil, pkgerrors.ValidationError(pkgerrors.InvalidFormat, "lat")
	}
	if f.Lng == nil || *f.Lng < -180 || *f.Lng > 180 {
		return nil, pkgerrors.ValidationError(pkgerrors.InvalidFormat, "lng")
	}
	radius := DefaultMapRadiusKm
	if f.Radius != nil {
		if *f.Radius <= 0 {
			return nil, pkgerrors.ValidationError(pkgerrors.InvalidFormat, "radius")
		}
		radius = *f.Radius
	}
	return &repository.GeoCircle{Latitude: *f.Lat, Longitude: *f.Lng, RadiusKm: radius}, nil
}

func (s *ComplaintService) Submit(ctx context.Context, in SubmitInput) (*repository.Complaint, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, pkgerrors.ValidationError(pkgerrors.DescriptionRequired, "description")
	}
	if in.Latitude < -90 || in.Latitude > 90 || in.Longitude < -180 || in.Longitude > 180 {
		return nil, pkgerrors.ValidationError(pkgerrors.LocationRequired, "location")
	}
	owner, err := s.users.GetByID(ctx, in.OwnerID)
	if err != nil {
		return nil, mapUserError(err)
	}

	record := &repository.Complaint{
		OwnerID:         owner.ID,
		OwnerName:       owner.Name,
		Description:     description,
		Status:          string(model.StatusPending),
		Latitude:        in.Latitude,
		Longitude:       in.Longitude,
		LocationAddress: s.address(ctx, in.Latitude, in.Longitude),
		SubmittedAt:     s.now(),
	}
	record.Updates = []repository.ComplaintUpdate{{Status: record.Status, Note: "Complaint submitted", Timestamp: record.SubmittedAt}}

	if in.Photo != nil {
		key, err := s.storePhoto(ctx, in.Photo)
		if err != nil {
			return nil, err
		}
		record.PhotoKey = key
	}

	id, err := s.complaints.Create(ctx, record)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.StorageError)
	}
	record.ID = id
	logger.Info(ctx, "complaint submitted", zap.Int64("complaint_id", id), zap.Int64("user_id", owner.ID), zap.Bool("photo", record.PhotoKey != ""))
	return record, nil
}

func (s *ComplaintService) address(ctx context.Context, lat, lng float64) string {
	fallback := fmt.Sprintf("%.5f, %.5f", lat, lng)
	if s.geocoder == nil {
		return fallback
	}
	address, err := s.geocoder.ReverseGeocode(ctx, complaint.Coordinates{Latitude: lat, Longitude: lng})
	if err != nil {
		logger.Warn(ctx, "reverse geocoding failed", zap.Error(err))
		return fallback
	}
	return address
}

func (s *ComplaintService) storePhoto(ctx context.Context, photo *PhotoInput) (string, error) {
	if photo.Size > s.config.MaxPhotoBytes {
		return "", pkgerrors.New(pkgerrors.PhotoUploadFailed).WithMessage("Photo is too large")
	}
	contentType := photo.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = complaint.PhotoContentType(photo.Name)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", pkgerrors.New(pkgerrors.PhotoUploadFailed).WithMessage("Photo must be an image")
	}
	key := photoKeyPrefix + uuid.NewString() + strings.ToLower(path.Ext(photo.Name))
	if err := s.photos.PutObject(ctx, s.config.Bucket, key, photo.Reader, photo.Size, contentType); err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.PhotoUploadFailed)
	}
	return key, nil
}

// OpenPhoto streams a stored photo. Caller must close the reader.
func (s *ComplaintService) OpenPhoto(ctx context.Context, key string) (storage.ObjectReader, storage.ObjectStat, error) {
	if !strings.HasPrefix(key, photoKeyPrefix) {
		return nil, storage.ObjectStat{}, pkgerrors.NotFoundError("photo")
	}
	stat, err := s.photos.StatObject(ctx, s.config.Bucket, key)
	if err != nil {
		if stderrors.Is(err, storage.ErrObjectNotFound) {
			return nil, storage.ObjectStat{}, pkgerrors.NotFoundError("photo")
		}
		return nil, storage.ObjectStat{}, pkgerrors.Wrap(err, pkgerrors.StorageError)
	}
	reader, err := s.photos.GetObject(ctx, s.config.Bucket, key)
	if err != nil {
		return nil, storage.ObjectStat{}, pkgerrors.Wrap(err, pkgerrors.StorageError)
	}
	return reader, stat, nil
}

func (s *ComplaintService) find(ctx context.Context, query repository.ComplaintQuery, page repository.PageRequest) ([]repository.Complaint, int64, error) {
	if query.Status != "" && !model.ComplaintStatus(query.Status).Valid() {
		return nil, 0, pkgerrors.ValidationError(pkgerrors.InvalidFormat, "status")
	}
	items, total, err := s.complaints.Find(ctx, query, page)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(err, pkgerrors.StorageError)
	}
	return items, total, nil
}

// ListMine lists the caller's own complaints.
func (s *ComplaintService) ListMine(ctx context.Context, ownerID int64, filter ListFilter, page repository.PageRequest) ([]repository.Complaint, int64, error) {
	return s.find(ctx, repository.ComplaintQuery{OwnerID: ownerID, Status: filter.Status, FromDate: filter.FromDate}, page)
}

// Search matches text against description, address and submitter name.
// A non-zero ownerID limits the search to that user's complaints.
func (s *ComplaintService) Search(ctx context.Context, ownerID int64, text string, filter ListFilter, page repository.PageRequest) ([]repository.Complaint, int64, error) {
	return s.find(ctx, repository.ComplaintQuery{OwnerID: ownerID, Text: strings.TrimSpace(text), Status: filter.Status, FromDate: filter.FromDate}, page)
}

func (s *ComplaintService) ListAll(ctx context.Context, filter ListFilter, page repository.PageRequest) ([]repository.Complaint, int64, error) {
	return s.find(ctx, repository.ComplaintQuery{Status: filter.Status, FromDate: filter.FromDate}, page)
}

// MapList lists complaints for the map view, by status and distance from a point.
func (s *ComplaintService) MapList(ctx context.Context, filter MapFilter, page repository.PageRequest) ([]repository.Complaint, int64, error) {
	near, err := filter.circle()
	if err != nil {
		return nil, 0, err
	}
	return s.find(ctx, repository.ComplaintQuery{Status: filter.Status, Near: near}, page)
}

func (s *ComplaintService) Detail(ctx context.Context, id int64) (*repository.Complaint, error) {
	c, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		return nil, mapComplaintError(err)
	}
	return c, nil
}

// Update changes the status of one complaint and notifies its owner.
func (s *ComplaintService) Update(ctx context.Context, id int64, status, note string) (*repository.Complaint, error) {
	if !model.ComplaintStatus(status).Valid() {
		return nil, pkgerrors.ValidationError(pkgerrors.InvalidFormat, "status")
	}
	updated, err := s.complaints.AppendUpdate(ctx, id, repository.ComplaintUpdate{
		Status:    status,
		Note:      strings.TrimSpace(note),
		Timestamp: s.now(),
	})
	if err != nil {
		return nil, mapComplaintError(err)
	}
	s.notifyOwner(ctx, updated)
	return updated, nil
}

// BulkUpdate applies one status change to every listed complaint. Unknown ids are skipped.
func (s *ComplaintService) BulkUpdate(ctx context.Context, ids []int64, status, note string) (int, error) {
	if len(ids) == 0 {
		return 0, pkgerrors.ValidationError(pkgerrors.RequiredFieldEmpty, "complaintIds")
	}
	if !model.ComplaintStatus(status).Valid() {
		return 0, pkgerrors.ValidationError(pkgerrors.InvalidFormat, "status")
	}
	updated := 0
	for _, id := range ids {
		if _, err := s.Update(ctx, id, status, note); err != nil {
			if pkgerrors.Is(err, pkgerrors.ComplaintNotFound) {
				continue
			}
			return updated, err
		}
		updated++
	}
	return updated, nil
}

func (s *ComplaintService) notifyOwner(ctx context.Context, c *repository.Complaint) {
	message := fmt.Sprintf("Your complaint #%d is now %s", c.ID, strings.ReplaceAll(c.Status, "_", " "))
	if len(c.Updates) > 0 {
		if note := c.Updates[len(c.Updates)-1].Note; note != "" {
			message += ": " + note
		}
	}
	related := c.ID
	if _, err := s.notifications.Create(ctx, &repository.Notification{
		UserID:             c.OwnerID,
		Message:            message,
		RelatedComplaintID: &related,
		SentAt:             s.now(),
	}); err != nil {
		logger.Warn(ctx, "create notification failed", zap.Int64("complaint_id", c.ID), zap.Error(err))
	}
}

func mapComplaintError(err error) error {
	if stderrors.Is(err, repository.ErrComplaintNotFound) {
		return pkgerrors.New(pkgerrors.ComplaintNotFound)
	}
	return pkgerrors.Wrap(err, pkgerrors.StorageError)
}
