package httpx

import (
	"net"
	"net/http"
	"strings"
)

// UnknownIP is reported when no client address can be determined.
const UnknownIP = "unknown"

// ClientIP returns the caller's address: the first X-Forwarded-For entry,
// then X-Real-IP, then the host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	return RemoteIP(r)
}

// RemoteIP returns the host part of the peer address, ignoring any
// forwarding headers the client may have set.
func RemoteIP(r *http.Request) string {
	if r.RemoteAddr == "" {
		return UnknownIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
