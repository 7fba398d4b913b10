package generate

import "errors"

// Generation errors.
var (
	ErrSelfCheck     = errors.New("model self-check failed")
	ErrUnknownKind   = errors.New("style kind missing from table")
	ErrEmptyManifest = errors.New("manifest has no styles")
)
