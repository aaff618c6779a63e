package profile

import "errors"

var (
	ErrNotFound     = errors.New("profile not found")
	ErrStoreFailure = errors.New("profile store request failed")
)
