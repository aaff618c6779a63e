package project

import "errors"

var (
	ErrNotFound            = errors.New("project not found")
	ErrMissingName         = errors.New("project name is required")
	ErrMissingUser         = errors.New("project owner is required")
	ErrStoreFailure        = errors.New("project store request failed")
	ErrGeocoderUnavailable = errors.New("geocoder is not configured")
)
