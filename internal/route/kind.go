package route

import (
	"fmt"

	"github.com/vyrodovalexey/boombff/internal/config"
)

// Kind identifies the integration variant of a Descriptor.
type Kind int

const (
	// KindTypeCatalog forwards to the object type catalog. Requests get the
	// authorization header and lose the caller's cookies.
	KindTypeCatalog Kind = iota + 1

	// KindRecordStorage forwards to the object record store. In addition to
	// the type catalog rewriting, POST requests carrying a body are marked as
	// JSON in the EPSG:4326 coordinate reference system.
	KindRecordStorage
)

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case KindTypeCatalog:
		return config.KindTypeCatalog
	case KindRecordStorage:
		return config.KindRecordStorage
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps a configuration kind name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case config.KindTypeCatalog:
		return KindTypeCatalog, nil
	case config.KindRecordStorage:
		return KindRecordStorage, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}
