package http

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// defaultProxyCIDRs covers loopback and the private ranges, which is where
// the dashboard's reverse proxy sits in every deployment we run.
var defaultProxyCIDRs = []string{
	"127.0.0.0/8",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
}

// proxyTrust decides which peers may rewrite the client address through
// forwarding headers. Rate limiting keys on the client IP, so an untrusted
// peer must never be able to spoof it.
type proxyTrust struct {
	networks []*net.IPNet
}

// newProxyTrust parses the CIDR list; an empty list means the defaults.
func newProxyTrust(cidrs []string) (*proxyTrust, error) {
	if len(cidrs) == 0 {
		cidrs = defaultProxyCIDRs
	}
	pt := &proxyTrust{}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(strings.TrimSpace(cidr))
		if err != nil {
			return nil, fmt.Errorf("parse trusted proxy %q: %w", cidr, err)
		}
		pt.networks = append(pt.networks, network)
	}
	return pt, nil
}

func (pt *proxyTrust) trusts(ip net.IP) bool {
	for _, network := range pt.networks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// clientIP resolves the calling address. Forwarding headers count only when
// the direct peer is a trusted proxy: first parsable X-Forwarded-For entry,
// then X-Real-IP, otherwise the peer itself.
func (pt *proxyTrust) clientIP(r *http.Request) string {
	direct, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		direct = r.RemoteAddr
	}

	peer := net.ParseIP(direct)
	if peer == nil || !pt.trusts(peer) {
		return direct
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}

	return direct
}
