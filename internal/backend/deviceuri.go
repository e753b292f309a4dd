// internal/backend/deviceuri.go
package backend

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// DeviceURIEnv carries the device URI for the queue being printed to.
	DeviceURIEnv = "DEVICE_URI"
	// PrinterEnv carries the queue name.
	PrinterEnv = "PRINTER"

	// Prefix marks a device URI wrapped by this backend.
	Prefix = "printmanager:"
	// SelfScheme is the scheme this backend is installed under.
	SelfScheme = "printmanager"
)

var schemePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*$`)

// DeviceURI is a wrapped device URI split into its parts.
type DeviceURI struct {
	Raw     string // printmanager:socket://10.0.0.5:9100
	RealURI string // socket://10.0.0.5:9100
	Scheme  string // socket
}

// ResolveDeviceURI unwraps raw into the real device URI and its scheme.
func ResolveDeviceURI(raw string) (DeviceURI, error) {
	if raw == "" {
		return DeviceURI{}, fmt.Errorf("%w: %s is not set", ErrInvalidDeviceURI, DeviceURIEnv)
	}
	if !strings.HasPrefix(raw, Prefix) {
		return DeviceURI{}, fmt.Errorf("%w: expected %q prefix", ErrInvalidDeviceURI, Prefix)
	}

	rest := strings.TrimPrefix(raw, Prefix)
	if rest == "" {
		return DeviceURI{}, ErrMissingRealURI
	}

	scheme, _, ok := strings.Cut(rest, ":")
	if !ok || scheme == "" {
		return DeviceURI{}, fmt.Errorf("%w: %q", ErrMissingScheme, rest)
	}
	if !schemePattern.MatchString(scheme) || scheme == SelfScheme {
		return DeviceURI{}, fmt.Errorf("%w: %q", ErrInvalidScheme, scheme)
	}

	return DeviceURI{Raw: raw, RealURI: rest, Scheme: scheme}, nil
}
