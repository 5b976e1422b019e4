package store

import "errors"

// Engine failure taxonomy. These are returned as-is to callers so the HTTP
// layer can map them without inspecting message text. Only ErrConflict is
// worth an automatic retry with fresh state; everything else is terminal for
// the request.
var (
	ErrNotFound         = errors.New("not found")
	ErrNotEligible      = errors.New("reviewer not eligible")
	ErrNotReviewable    = errors.New("submission is not pending review")
	ErrAlreadyFinalized = errors.New("submission already verified")
	ErrConflict         = errors.New("concurrent update conflict")
	ErrValidation       = errors.New("validation failed")
)
