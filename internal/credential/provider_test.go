package credential

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{name: "empty", token: "", want: false},
		{name: "spaces", token: "   ", want: false},
		{name: "tabs and newlines", token: "\t\n", want: false},
		{name: "token", token: "abc123", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, New(tt.token).HasCredential())
		})
	}
}

func TestProvider_ApplyTo(t *testing.T) {
	t.Parallel()

	p := New("abc123")
	h := http.Header{}
	h.Set("Authorization", "Bearer caller-supplied")

	require.NoError(t, p.ApplyTo(h))
	assert.Equal(t, "Token abc123", h.Get("Authorization"))
	assert.Len(t, h.Values("Authorization"), 1)
}

func TestProvider_ApplyTo_Misconfigured(t *testing.T) {
	t.Parallel()

	p := New(" ")
	h := http.Header{}
	h.Set("Authorization", "Bearer caller-supplied")

	err := p.ApplyTo(h)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMisconfiguredCredential))

	var credErr *CredentialError
	require.True(t, errors.As(err, &credErr))
	assert.Equal(t, "apply", credErr.Operation)
	assert.Equal(t, "Bearer caller-supplied", h.Get("Authorization"))
}

func TestProvider_NilIsMisconfigured(t *testing.T) {
	t.Parallel()

	var p *Provider
	assert.False(t, p.HasCredential())
	assert.ErrorIs(t, p.ApplyTo(http.Header{}), ErrMisconfiguredCredential)
}

func TestProvider_HeaderValue(t *testing.T) {
	t.Parallel()

	v, err := New("xyz").HeaderValue()
	require.NoError(t, err)
	assert.Equal(t, "Token xyz", v)

	_, err = New("").HeaderValue()
	assert.ErrorIs(t, err, ErrMisconfiguredCredential)
}

func TestProvider_StringRedactsToken(t *testing.T) {
	t.Parallel()

	p := New("super-secret")
	assert.NotContains(t, p.String(), "super-secret")
	assert.NotContains(t, fmt.Sprintf("%v", p), "super-secret")
	assert.Equal(t, "credential(none)", New("").String())
}

func TestCredentialError(t *testing.T) {
	t.Parallel()

	err := &CredentialError{Operation: "apply", Message: "boom"}
	assert.Equal(t, "credential apply: boom", err.Error())
	assert.Nil(t, err.Unwrap())
	assert.True(t, errors.Is(err, &CredentialError{}))

	wrapped := newMisconfiguredError("apply")
	assert.Contains(t, wrapped.Error(), ErrMisconfiguredCredential.Error())
}
