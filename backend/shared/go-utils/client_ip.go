package utils

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP extracts the best IP address from proxy headers or RemoteAddr.
// It returns "" when nothing parses.
func ClientIP(r *http.Request) string {
	if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		for _, ip := range strings.Split(forwardedFor, ",") {
			if clean := strings.TrimSpace(ip); isValidIP(clean) {
				return clean
			}
		}
	}
	if ip := r.Header.Get("CF-Connecting-IP"); isValidIP(ip) {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); isValidIP(ip) {
		return ip
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && isValidIP(ip) {
		return ip
	}
	return ""
}

func isValidIP(ip string) bool {
	return ip != "" && net.ParseIP(ip) != nil
}
