package apperr

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrParse            = errors.New("parse error")
	ErrStoreUnavailable = errors.New("store unavailable")
)
