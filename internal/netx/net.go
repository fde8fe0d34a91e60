// Package netx holds URL helpers for talking to the backend.
package netx

import (
	"net/url"
	"strings"
)

// ResolveURL turns an image reference returned by the backend into an
// absolute URL. Absolute references are returned unchanged; relative ones
// ("uploads/x.png", "/uploads/x.png") are joined onto base. An empty ref
// yields "".
func ResolveURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref
	}
	if base == "" {
		return ref
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(ref, "/")
}
