package http

import (
	"net"
	"net/http"
	"strings"
)

// IPConfig holds configuration for client IP extraction
type IPConfig struct {
	TrustedProxies []string // CIDR ranges of trusted proxies
}

// ExtractClientIP returns the real client IP for a request. Forwarding
// headers are honored only when the direct peer is a trusted proxy,
// otherwise they are attacker-controlled and ignored.
func ExtractClientIP(r *http.Request, config *IPConfig) string {
	remoteIP := remoteAddrIP(r)

	if config != nil && isTrustedProxy(remoteIP, config.TrustedProxies) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// First valid entry is the originating client
			for _, candidate := range strings.Split(xff, ",") {
				candidate = strings.TrimSpace(candidate)
				if net.ParseIP(candidate) != nil {
					return candidate
				}
			}
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" && net.ParseIP(xri) != nil {
			return xri
		}
	}

	return remoteIP
}

func remoteAddrIP(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func isTrustedProxy(ip string, trustedProxies []string) bool {
	clientIP := net.ParseIP(ip)
	if clientIP == nil {
		return false
	}

	for _, cidr := range trustedProxies {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}
		if ipNet.Contains(clientIP) {
			return true
		}
	}
	return false
}
