package utils

import (
	"net"
	"net/url"
	"strings"
)

var privateNetworks = mustParseCIDRs(
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"::1/128",
	"fe80::/10",
	"fc00::/7",
)

// IsAllowedOrigin reports whether an Origin header value should be trusted.
// Localhost, private/link-local IPs, .local mDNS names and single-label LAN
// hostnames are allowed; public internet origins are not.
func IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}

	hostname := parsed.Hostname()
	if hostname == "localhost" || strings.HasSuffix(hostname, ".local") {
		return true
	}
	if !strings.Contains(hostname, ".") {
		return true
	}
	if ip := net.ParseIP(hostname); ip != nil {
		for _, network := range privateNetworks {
			if network.Contains(ip) {
				return true
			}
		}
	}
	return false
}

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	networks := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(err)
		}
		networks = append(networks, network)
	}
	return networks
}
