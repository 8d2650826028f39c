package complaint

import (
	"context"
	"time"

	"campuscomplaint/internal/model"
	"campuscomplaint/pkg/utils/logger"

	"go.uber.org/zap"
)

// ConfirmationDelay is how long front-ends show the success message before leaving the form.
const ConfirmationDelay = 1500 * time.Millisecond

// Submitter sends an assembled payload to the backend.
type Submitter interface {
	SubmitComplaint(ctx context.Context, payload *Payload) (*model.Complaint, error)
}

// Flow drives one complaint form: it owns the draft, fills its location and submits it.
// A Flow belongs to a single screen and is not safe for concurrent use.
type Flow struct {
	Draft Draft

	submitter Submitter
	locations LocationService
	geocoder  Geocoder
}

// NewFlow creates a flow with an empty draft. geocoder may be nil.
func NewFlow(submitter Submitter, locations LocationService, geocoder Geocoder) *Flow {
	return &Flow{submitter: submitter, locations: locations, geocoder: geocoder}
}

// SetDescription replaces the description text.
func (f *Flow) SetDescription(text string) {
	f.Draft.Description = text
}

// AttachPhoto sets the local photo reference; an empty ref removes the photo.
func (f *Flow) AttachPhoto(ref string) {
	f.Draft.PhotoRef = ref
}

// LocateDevice fetches the current location into the draft.
func (f *Flow) LocateDevice(ctx context.Context) (*Location, error) {
	loc, err := FetchLocation(ctx, f.locations, f.geocoder)
	if err != nil {
		return nil, err
	}
	f.Draft.Location = loc
	return loc, nil
}

// Submit validates and sends the draft. The draft is reset only when the backend accepts it.
func (f *Flow) Submit(ctx context.Context) (*model.Complaint, error) {
	payload, err := Assemble(f.Draft)
	if err != nil {
		return nil, err
	}
	created, err := f.submitter.SubmitComplaint(ctx, payload)
	if err != nil {
		logger.Warn(ctx, "submit complaint failed", zap.Error(err))
		return nil, err
	}
	f.Draft.Reset()
	return created, nil
}
