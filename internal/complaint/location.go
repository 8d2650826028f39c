package complaint

import (
	"context"

	pkgerrors "campuscomplaint/pkg/errors"
	"campuscomplaint/pkg/utils/logger"

	"go.uber.org/zap"
)

// PermissionStatus is the foreground location permission state.
type PermissionStatus string

const (
	PermissionGranted      PermissionStatus = "granted"
	PermissionDenied       PermissionStatus = "denied"
	PermissionUndetermined PermissionStatus = "undetermined"
)

// Accuracy selects the positioning mode.
type Accuracy int

const (
	AccuracyBalanced Accuracy = iota
	AccuracyHigh
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// LocationService abstracts the device positioning facility.
type LocationService interface {
	ServicesEnabled(ctx context.Context) (bool, error)
	Permission(ctx context.Context) (PermissionStatus, error)
	RequestPermission(ctx context.Context) (PermissionStatus, error)
	CurrentPosition(ctx context.Context, accuracy Accuracy) (Coordinates, error)
}

// Geocoder resolves coordinates into a human readable address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, at Coordinates) (string, error)
}

// FetchLocation reads the current high accuracy position.
// Reverse geocoding is optional: a nil geocoder or a failed lookup leaves Address empty.
func FetchLocation(ctx context.Context, svc LocationService, geocoder Geocoder) (*Location, error) {
	if svc == nil {
		return nil, pkgerrors.New(pkgerrors.LocationUnavailable)
	}

	enabled, err := svc.ServicesEnabled(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.LocationUnavailable)
	}
	if !enabled {
		return nil, pkgerrors.New(pkgerrors.ServicesDisabled)
	}

	status, err := svc.Permission(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.PermissionDenied)
	}
	if status != PermissionGranted {
		status, err = svc.RequestPermission(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.PermissionDenied)
		}
	}
	if status != PermissionGranted {
		return nil, pkgerrors.New(pkgerrors.PermissionDenied)
	}

	at, err := svc.CurrentPosition(ctx, AccuracyHigh)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.LocationUnavailable)
	}

	loc := &Location{Latitude: at.Latitude, Longitude: at.Longitude}
	if geocoder == nil {
		return loc, nil
	}
	address, err := geocoder.ReverseGeocode(ctx, at)
	if err != nil {
		logger.Warn(ctx, "reverse geocoding failed", zap.Float64("latitude", at.Latitude), zap.Float64("longitude", at.Longitude), zap.Error(err))
		return loc, nil
	}
	loc.Address = address
	return loc, nil
}

// StaticLocationService reports a fixed position. The CLI uses it with coordinates from config or flags.
type StaticLocationService struct {
	Disabled bool
	Status   PermissionStatus
	// Grant is the status returned when permission is requested.
	Grant  PermissionStatus
	Coords Coordinates
	Err    error
}

func (s *StaticLocationService) ServicesEnabled(context.Context) (bool, error) {
	return !s.Disabled, nil
}

func (s *StaticLocationService) Permission(context.Context) (PermissionStatus, error) {
	if s.Status == "" {
		return PermissionGranted, nil
	}
	return s.Status, nil
}

func (s *StaticLocationService) RequestPermission(context.Context) (PermissionStatus, error) {
	if s.Grant == "" {
		return PermissionDenied, nil
	}
	s.Status = s.Grant
	return s.Grant, nil
}

func (s *StaticLocationService) CurrentPosition(context.Context, Accuracy) (Coordinates, error) {
	if s.Err != nil {
		return Coordinates{}, s.Err
	}
	return s.Coords, nil
}
