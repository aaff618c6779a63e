package apr

import "errors"

var (
	ErrNotFound     = errors.New("apr not found")
	ErrStoreFailure = errors.New("apr store request failed")
)
