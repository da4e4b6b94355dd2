package router

import (
	"errors"
	"fmt"
)

// Common routing errors that can be checked with errors.Is().
var (
	// ErrProviderNotFound is returned when an explicit provider:model pin
	// names a provider that doesn't exist or isn't enabled.
	ErrProviderNotFound = errors.New("provider not found or disabled")

	// ErrModelNotFound is returned when an explicit provider:model pin
	// names a model the provider's catalog doesn't have enabled.
	ErrModelNotFound = errors.New("model not found or disabled for provider")
)

// PinNotAvailableError is returned when an explicit provider:model pin
// cannot be satisfied. Every other resolution step degrades gracefully
// instead of erroring (escalating tiers, then the hard default), so this
// is the router's only error path.
type PinNotAvailableError struct {
	ProviderID string
	ModelID    string
}

func (e *PinNotAvailableError) Error() string {
	return fmt.Sprintf("pinned provider:model %q:%q not available", e.ProviderID, e.ModelID)
}

func (e *PinNotAvailableError) Is(target error) bool {
	return target == ErrProviderNotFound || target == ErrModelNotFound
}
