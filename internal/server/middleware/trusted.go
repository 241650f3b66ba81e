package middleware

import (
	"fmt"
	"net"
	"net/http"

	"github.com/and161185/pgsql-check/internal/errs"
)

// TrustedCIDR only lets through requests whose X-Real-IP lies in cidr.
// An empty cidr allows everything.
func TrustedCIDR(cidr string) (func(http.Handler) http.Handler, error) {
	var ipnet *net.IPNet
	if cidr != "" {
		_, n, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("%w: trusted subnet: %w", errs.ErrConfiguration, err)
		}
		ipnet = n
	}

	return func(next http.Handler) http.Handler {
		if ipnet == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := net.ParseIP(r.Header.Get("X-Real-IP"))
			if ip == nil || !ipnet.Contains(ip) {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}
