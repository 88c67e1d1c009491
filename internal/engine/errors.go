package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrExternalVolumeMissing means a volume marked external is not
	// present on the engine. External volumes are never created here.
	ErrExternalVolumeMissing = errors.New("external volume does not exist")

	// ErrExternalNetworkMissing is the network counterpart.
	ErrExternalNetworkMissing = errors.New("external network does not exist")
)

// ResourceError wraps an error with the resource that produced it.
type ResourceError struct {
	Kind string // network, volume, image or service
	Name string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Name, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}
