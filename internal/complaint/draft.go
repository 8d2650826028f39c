// Package complaint turns a complaint draft into the multipart submission the backend expects.
package complaint

import (
	"strings"

	pkgerrors "campuscomplaint/pkg/errors"
)

// Location is where the complaint was raised. Address is best effort.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// Draft is the unsaved complaint held by the front-end until it is submitted.
type Draft struct {
	Description string
	// PhotoRef is a local file path or file:// URI; empty means no photo.
	PhotoRef string
	Location *Location
}

// Validate checks the draft in submission order: description, then location.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Description) == "" {
		return pkgerrors.ValidationError(pkgerrors.DescriptionRequired, "description")
	}
	if d.Location == nil {
		return pkgerrors.ValidationError(pkgerrors.LocationRequired, "location")
	}
	return nil
}

// Reset empties the draft after a successful submission.
func (d *Draft) Reset() {
	d.Description = ""
	d.PhotoRef = ""
	d.Location = nil
}
