package geocoder

import "errors"

var (
	ErrMissingToken  = errors.New("geocoder access token is required")
	ErrNoResult      = errors.New("no geocoding result for address")
	ErrRequestFailed = errors.New("geocoding request failed")
)
