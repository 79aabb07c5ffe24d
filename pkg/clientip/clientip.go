// Package clientip resolves the originating client IP of an HTTP request,
// looking through the proxy headers common in front of the service before
// falling back to the connection address.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// proxyHeaders in resolution order. X-Forwarded-For may carry a chain; the
// first valid entry is the originating client.
var proxyHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// FromRequest returns the client IP for r, or "" when no valid address can
// be determined.
func FromRequest(r *http.Request) string {
	for _, header := range proxyHeaders {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}
		for part := range strings.SplitSeq(value, ",") {
			if ip := normalize(part); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port, assume it is a bare IP.
		return normalize(r.RemoteAddr)
	}
	return normalize(host)
}

func normalize(raw string) string {
	ip := net.ParseIP(strings.TrimSpace(raw))
	if ip == nil {
		return ""
	}
	return ip.String()
}
