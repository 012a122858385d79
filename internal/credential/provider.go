package credential

import (
	"net/http"
	"strings"
)

// SchemeToken is the authorization scheme expected by the backends.
const SchemeToken = "Token"

// HeaderAuthorization is the header a Provider writes.
const HeaderAuthorization = "Authorization"

// Credential is a scheme/token pair.
type Credential struct {
	Scheme string
	Token  string
}

// HeaderValue returns the Authorization header value for the credential.
func (c Credential) HeaderValue() string {
	return c.Scheme + " " + c.Token
}

// Provider produces the Authorization header for one integration.
// A Provider is immutable and safe for concurrent use.
type Provider struct {
	credential *Credential
}

// New creates a provider from a raw token. An empty or all-whitespace token
// yields a provider that holds no credential.
func New(token string) *Provider {
	if strings.TrimSpace(token) == "" {
		return &Provider{}
	}
	return &Provider{credential: &Credential{Scheme: SchemeToken, Token: token}}
}

// HasCredential reports whether the provider holds a usable credential.
func (p *Provider) HasCredential() bool {
	return p != nil && p.credential != nil
}

// HeaderValue returns the ready-to-apply Authorization header value.
func (p *Provider) HeaderValue() (string, error) {
	if !p.HasCredential() {
		return "", newMisconfiguredError("header_value")
	}
	return p.credential.HeaderValue(), nil
}

// ApplyTo sets the Authorization header, overwriting any existing value.
// It fails with ErrMisconfiguredCredential when no credential is held and
// leaves h untouched in that case.
func (p *Provider) ApplyTo(h http.Header) error {
	if !p.HasCredential() {
		return newMisconfiguredError("apply")
	}
	h.Set(HeaderAuthorization, p.credential.HeaderValue())
	return nil
}

// String never reveals the token.
func (p *Provider) String() string {
	if !p.HasCredential() {
		return "credential(none)"
	}
	return "credential(" + p.credential.Scheme + " ***)"
}
