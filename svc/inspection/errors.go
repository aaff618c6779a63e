package inspection

import "errors"

var (
	ErrNotFound     = errors.New("inspection not found")
	ErrStoreFailure = errors.New("inspection store request failed")
)
