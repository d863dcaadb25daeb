package registry

import (
	"errors"
	"fmt"
)

// ErrUnknownCode value is not registered
var ErrUnknownCode = errors.New("registry: unknown code")

// Registry kinds
const (
	KindCategory = "category"
	KindSeason   = "season"
)

// RegistryError lookup of an unregistered category or season
type RegistryError struct {
	Kind  string
	Value string
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("registry: unknown %s %q", e.Kind, e.Value)
}

func (e *RegistryError) Unwrap() error {
	return ErrUnknownCode
}
