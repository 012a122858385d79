package route

import (
	"net/http"

	"github.com/vyrodovalexey/boombff/internal/credential"
)

// Headers written or removed by the integration transforms.
const (
	HeaderCookie      = "Cookie"
	HeaderContentType = "Content-Type"
	HeaderContentCrs  = "Content-Crs"

	ContentTypeJSON = "application/json"
	CrsEPSG4326     = "EPSG:4326"
)

// Transform rewrites the headers of an outbound request in place. It must not
// block and must only touch the request it is given.
type Transform func(req *http.Request) error

// typeCatalogTransform sets authorization and strips cookies.
func typeCatalogTransform(auth *credential.Provider) Transform {
	return func(req *http.Request) error {
		if err := auth.ApplyTo(req.Header); err != nil {
			return err
		}
		req.Header.Del(HeaderCookie)
		return nil
	}
}

// recordStorageTransform extends the type catalog rewriting with the content
// headers the record store requires on create.
func recordStorageTransform(auth *credential.Provider) Transform {
	base := typeCatalogTransform(auth)
	return func(req *http.Request) error {
		if err := base(req); err != nil {
			return err
		}
		if req.Method == http.MethodPost && HasBody(req) {
			req.Header.Set(HeaderContentType, ContentTypeJSON)
			req.Header.Set(HeaderContentCrs, CrsEPSG4326)
		}
		return nil
	}
}

// HasBody reports whether req carries a request body. An unknown length
// (ContentLength -1) with a non-empty Body counts as a body.
func HasBody(req *http.Request) bool {
	if req.Body == nil || req.Body == http.NoBody {
		return false
	}
	return req.ContentLength != 0
}
