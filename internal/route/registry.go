package route

import (
	"github.com/vyrodovalexey/boombff/internal/config"
	"github.com/vyrodovalexey/boombff/internal/observability"
)

// Registry is the ordered set of descriptors built at startup. It is not safe
// for concurrent registration; once serving starts it is only read.
type Registry struct {
	descriptors []*Descriptor
	byID        map[string]*Descriptor
	logger      observability.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger observability.Logger) *Registry {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Registry{
		byID:   make(map[string]*Descriptor),
		logger: logger,
	}
}

// Register appends a descriptor. Route ids must be unique.
func (r *Registry) Register(d *Descriptor) error {
	if d == nil {
		return newDescriptorError("", "nil descriptor", ErrInvalidName)
	}
	if _, exists := r.byID[d.ID()]; exists {
		return newDescriptorError(d.Name(), "already registered", ErrDuplicateRouteID)
	}

	r.descriptors = append(r.descriptors, d)
	r.byID[d.ID()] = d

	r.logger.Info("integration registered",
		observability.String("integration", d.Name()),
		observability.String("kind", d.Kind().String()),
		observability.String("route", d.ID()),
		observability.String("destination", d.destination.Redacted()),
	)
	return nil
}

// RegisterIntegrations builds and registers a descriptor per integration.
// Integrations missing a base URL or API key are skipped with a warning;
// any other failure is returned and should abort startup.
func (r *Registry) RegisterIntegrations(integrations []config.IntegrationConfig) error {
	for _, in := range integrations {
		kind, err := ParseKind(in.Kind)
		if err != nil {
			return newDescriptorError(in.Name, "cannot build route", err)
		}

		d, err := New(kind, in.Name, in.BaseURL, in.APIKey)
		if IsMissingConfig(err) {
			r.logger.Warn("integration not registered: base URL or API key is missing",
				observability.String("integration", in.Name),
				observability.String("base_url_var", config.BaseURLKey(in.Name)),
				observability.String("api_key_var", config.APIKeyKey(in.Name)),
			)
			continue
		}
		if err != nil {
			return err
		}

		if err := r.Register(d); err != nil {
			return err
		}
	}
	return nil
}

// All returns the registered descriptors in insertion order.
func (r *Registry) All() []*Descriptor {
	out := make([]*Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// Lookup returns the descriptor with the given route id.
func (r *Registry) Lookup(id string) (*Descriptor, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// Len returns the number of registered descriptors.
func (r *Registry) Len() int {
	return len(r.descriptors)
}
