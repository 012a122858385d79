package route

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/vyrodovalexey/boombff/internal/credential"
)

// RemainderParam is the catch-all parameter every integration route ends with.
const RemainderParam = "remainder"

// Pattern returns the route pattern for an integration name.
func Pattern(name string) string {
	return name + "/{**" + RemainderParam + "}"
}

// Descriptor describes one backend integration. It is immutable and safe for
// concurrent use.
type Descriptor struct {
	name        string
	kind        Kind
	id          string
	destination *url.URL
	transform   Transform
}

// New builds a descriptor of the given kind. The destination must be an
// absolute http or https URL and the token must not be blank.
func New(kind Kind, name, destination, token string) (*Descriptor, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, "/{}") {
		return nil, newDescriptorError(name, "cannot build route", ErrInvalidName)
	}

	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, newDescriptorError(name, "no base URL configured", ErrMissingDestination)
	}

	auth := credential.New(token)
	if !auth.HasCredential() {
		return nil, newDescriptorError(name, "no API key configured", ErrMissingCredential)
	}

	dest, err := url.Parse(destination)
	if err != nil {
		return nil, newDescriptorError(name, "cannot parse base URL", ErrInvalidDestination)
	}
	if (dest.Scheme != "http" && dest.Scheme != "https") || dest.Host == "" {
		return nil, newDescriptorError(name, "base URL must be an absolute http(s) URL", ErrInvalidDestination)
	}

	d := &Descriptor{
		name:        name,
		kind:        kind,
		id:          Pattern(name),
		destination: dest,
	}

	switch kind {
	case KindTypeCatalog:
		d.transform = typeCatalogTransform(auth)
	case KindRecordStorage:
		d.transform = recordStorageTransform(auth)
	default:
		return nil, newDescriptorError(name, kind.String(), ErrUnknownKind)
	}

	return d, nil
}

// NewTypeCatalog builds a type catalog descriptor.
func NewTypeCatalog(name, destination, token string) (*Descriptor, error) {
	return New(KindTypeCatalog, name, destination, token)
}

// NewRecordStorage builds a record storage descriptor.
func NewRecordStorage(name, destination, token string) (*Descriptor, error) {
	return New(KindRecordStorage, name, destination, token)
}

// ID returns the route id, which is also the match pattern.
func (d *Descriptor) ID() string { return d.id }

// Name returns the integration name.
func (d *Descriptor) Name() string { return d.name }

// Kind returns the integration variant.
func (d *Descriptor) Kind() Kind { return d.kind }

// Destination returns a copy of the destination base URL.
func (d *Descriptor) Destination() *url.URL {
	u := *d.destination
	return &u
}

// Apply runs the integration transform on an outbound request. Authorization
// is applied first; when it fails nothing else is changed.
func (d *Descriptor) Apply(req *http.Request) error {
	return d.transform(req)
}
