package handler

import (
	"net/http"
	"strings"
)

// AddressExtractor resolves the client address of a request. By
// default it uses the socket peer; behind a trusted proxy it reads the
// X-Forwarded-For header, taking the configured hop.
type AddressExtractor struct {
	// TrustProxyHeader enables X-Forwarded-For lookup.
	TrustProxyHeader bool

	// Hop selects the X-Forwarded-For entry: "first" (nearest the
	// client) or "last" (nearest the server).
	Hop string
}

// ClientAddr returns the client's address for the request. Socket
// addresses keep their port; forwarded entries are returned as the
// proxy sent them.
func (a *AddressExtractor) ClientAddr(r *http.Request) string {
	if a != nil && a.TrustProxyHeader {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			hops := strings.Split(xff, ",")
			if a.Hop == "last" {
				return strings.TrimSpace(hops[len(hops)-1])
			}
			return strings.TrimSpace(hops[0])
		}
	}
	return r.RemoteAddr
}
