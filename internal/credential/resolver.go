package credential

import (
	"errors"
	"fmt"

	"github.com/andreagrandi/conformance-wizard/internal/wizard"
)

// ErrNotSupported is returned by sources that do not support persisting values.
var ErrNotSupported = errors.New("store operation not supported")

// Source provides configuration field values.
type Source interface {
	Name() string
	Get(field wizard.Field) (string, bool)
	Store(field wizard.Field, value string) error
}

// FieldSetter receives resolved values.
type FieldSetter interface {
	SetField(field wizard.Field, value string) (bool, error)
}

// Resolution records where a prefilled value came from.
type Resolution struct {
	Field  wizard.Field
	Source string
}

// Resolver resolves field values by checking sources in order.
type Resolver struct {
	sources []Source
}

// NewResolver creates a resolver with a fixed source order.
func NewResolver(sources ...Source) *Resolver {
	resolverSources := make([]Source, len(sources))
	copy(resolverSources, sources)

	return &Resolver{sources: resolverSources}
}

// Resolve tries each source in order.
//
// It returns the value, source name, and whether a non-empty value was found.
func (r *Resolver) Resolve(field wizard.Field) (value string, source string, found bool) {
	if r == nil {
		return "", "", false
	}

	for _, src := range r.sources {
		if src == nil {
			continue
		}

		resolvedValue, ok := src.Get(field)
		if !ok || resolvedValue == "" {
			continue
		}

		return resolvedValue, src.Name(), true
	}

	return "", "", false
}

// Prefill copies every resolvable field into setter and reports which
// fields were filled from where.
func (r *Resolver) Prefill(setter FieldSetter, fields ...wizard.Field) ([]Resolution, error) {
	resolutions := make([]Resolution, 0, len(fields))

	for _, field := range fields {
		value, source, found := r.Resolve(field)
		if !found {
			continue
		}

		if _, err := setter.SetField(field, value); err != nil {
			return resolutions, fmt.Errorf("prefill %s: %w", field.Key(), err)
		}

		resolutions = append(resolutions, Resolution{Field: field, Source: source})
	}

	return resolutions, nil
}
