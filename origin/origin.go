// Package origin implements the scheme/host/port identity used for
// same-origin security checks.
package origin

import (
	"fmt"
	"net/url"
	"strings"
)

// Origin is the scheme+host+port tuple of a URL, or an opaque origin for
// URLs that have no meaningful tuple (about:blank, data:, parse failures
// of the scheme-relative parts).
type Origin struct {
	Scheme string
	Host   string
	Port   string // empty means the scheme's default port
	Opaque bool
}

// Opaque returns a new opaque origin. Opaque origins are same-origin with
// nothing, including other opaque origins.
func NewOpaque() Origin {
	return Origin{Opaque: true}
}

// Parse extracts the origin of a URL string.
// Returns an error if the string does not parse as an absolute URL.
func Parse(rawURL string) (Origin, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Origin{}, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if !u.IsAbs() {
		return Origin{}, fmt.Errorf("invalid URL %q: not absolute", rawURL)
	}
	return FromURL(u), nil
}

// FromURL extracts the origin of an already-parsed URL.
func FromURL(u *url.URL) Origin {
	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case "http", "https", "ws", "wss", "ftp", "file":
		return Origin{
			Scheme: scheme,
			Host:   strings.ToLower(u.Hostname()),
			Port:   normalizePort(scheme, u.Port()),
		}
	default:
		// data:, about:, javascript:, mailto: and friends carry no
		// authority; their origin is opaque.
		return NewOpaque()
	}
}

// normalizePort drops a port that matches the scheme's default, so
// "http://a.com" and "http://a.com:80" serialize identically.
func normalizePort(scheme, port string) string {
	if port == "" {
		return ""
	}
	if defaultPort(scheme) == port {
		return ""
	}
	return port
}

func defaultPort(scheme string) string {
	switch scheme {
	case "http", "ws":
		return "80"
	case "https", "wss":
		return "443"
	case "ftp":
		return "21"
	default:
		return ""
	}
}

// IsSameOrigin reports whether two origins are the same origin.
// Opaque origins are never same-origin with anything.
func (o Origin) IsSameOrigin(other Origin) bool {
	if o.Opaque || other.Opaque {
		return false
	}
	return o.Scheme == other.Scheme && o.Host == other.Host && o.Port == other.Port
}

// Serialize returns the ASCII serialization of the origin:
// scheme://host[:port], or "null" for opaque origins.
func (o Origin) Serialize() string {
	if o.Opaque {
		return "null"
	}
	if o.Port != "" {
		return fmt.Sprintf("%s://%s:%s", o.Scheme, o.Host, o.Port)
	}
	return fmt.Sprintf("%s://%s", o.Scheme, o.Host)
}

func (o Origin) String() string {
	return o.Serialize()
}
