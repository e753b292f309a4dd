package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDeviceURI(t *testing.T) {
	uri, err := ResolveDeviceURI("printmanager:socket://192.168.1.123:9100")
	require.NoError(t, err)

	assert.Equal(t, "socket://192.168.1.123:9100", uri.RealURI)
	assert.Equal(t, "socket", uri.Scheme)
	assert.Equal(t, "printmanager:socket://192.168.1.123:9100", uri.Raw)
}

func TestResolveDeviceURIKeepsNestedColons(t *testing.T) {
	uri, err := ResolveDeviceURI("printmanager:ipp://printer.local:631/ipp/print")
	require.NoError(t, err)
	assert.Equal(t, "ipp", uri.Scheme)
	assert.Equal(t, "ipp://printer.local:631/ipp/print", uri.RealURI)
}

func TestResolveDeviceURIErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"unset", "", ErrInvalidDeviceURI},
		{"no prefix", "socket://10.0.0.5:9100", ErrInvalidDeviceURI},
		{"prefix without colon", "printmanager", ErrInvalidDeviceURI},
		{"empty remainder", "printmanager:", ErrMissingRealURI},
		{"no colon", "printmanager:socket", ErrMissingScheme},
		{"empty scheme", "printmanager::foo", ErrMissingScheme},
		{"path traversal", "printmanager:../../bin/sh:x", ErrInvalidScheme},
		{"self reference", "printmanager:printmanager:socket://h", ErrInvalidScheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveDeviceURI(tt.raw)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
