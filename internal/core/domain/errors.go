package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrPhotoNotFound marks lookups for unknown photo ids.
	ErrPhotoNotFound = errors.New("photo not found")
	// ErrAssetNotFound marks asset identifiers the image source cannot resolve.
	ErrAssetNotFound = errors.New("asset not found")
	// ErrDecode marks images that cannot be turned into an analyzable form.
	// Fatal for that single photo's analysis call, never for a batch.
	ErrDecode = errors.New("image decode failed")
	// ErrProviderUnavailable marks detector failures. Never surfaces past the
	// orchestrator; sub-analyses degrade to empty/absent observations instead.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrInvalidInput marks malformed top-level input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrTemporary marks retryable infrastructure failures.
	ErrTemporary = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
