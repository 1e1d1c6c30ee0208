package uri

import (
	"fmt"
	"net/netip"
	"strings"
)

type HostKind int

const (
	HostDomain HostKind = iota
	HostIPv4
	HostIPv6
)

// Host is either a domain name, an IPv4 address or an IPv6 address with an
// optional zone.
type Host struct {
	kind HostKind
	name string
	zone string
}

func DomainHost(name string) Host { return Host{kind: HostDomain, name: name} }

func IPv4Host(addr string) Host { return Host{kind: HostIPv4, name: addr} }

func IPv6Host(addr, zone string) Host { return Host{kind: HostIPv6, name: addr, zone: zone} }

// ParseHost classifies s, which must not contain brackets or a port.
func ParseHost(s string) (Host, error) {
	if s == "" {
		return Host{}, fmt.Errorf("empty host")
	}
	if addr, err := netip.ParseAddr(strings.ReplaceAll(s, "%25", "%")); err == nil {
		if addr.Is4() {
			return Host{kind: HostIPv4, name: addr.String()}, nil
		}
		return Host{kind: HostIPv6, name: addr.WithZone("").String(), zone: addr.Zone()}, nil
	}
	for i := 0; i < len(s); i++ {
		if s[i] >= 128 || !allowedHostByte(s[i]) {
			return Host{}, fmt.Errorf("invalid host %q", s)
		}
	}
	return Host{kind: HostDomain, name: strings.ToLower(s)}, nil
}

func allowedHostByte(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-' || c == '.' || c == '_':
		return true
	}
	return false
}

func (h Host) Kind() HostKind { return h.kind }

func (h Host) Zone() string { return h.zone }

// String returns the host without brackets. URL rendering adds brackets for
// IPv6 hosts.
func (h Host) String() string {
	if h.kind == HostIPv6 && h.zone != "" {
		return h.name + "%" + h.zone
	}
	return h.name
}

func (h Host) IsIP() bool { return h.kind != HostDomain }
