package discovery

import (
	"context"
	"fmt"
	"net"
	"os"
)

// HostResolver looks up the local host name and its addresses.
type HostResolver interface {
	Hostname() (string, error)
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// SystemResolver resolves through the operating system.
type SystemResolver struct {
	Resolver *net.Resolver
}

func (s SystemResolver) Hostname() (string, error) { return os.Hostname() }

func (s SystemResolver) LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error) {
	r := s.Resolver
	if r == nil {
		r = net.DefaultResolver
	}
	return r.LookupIPAddr(ctx, host)
}

// lookupLocalAddress resolves the host name to the address the agent should
// probe: the first non-loopback IPv4, else any IPv4, else the first address.
func lookupLocalAddress(ctx context.Context, hr HostResolver) (string, string, error) {
	host, err := hr.Hostname()
	if err != nil {
		return "", "", err
	}

	addrs, err := hr.LookupIPAddr(ctx, host)
	if err != nil {
		return host, "", err
	}
	ip := pickAddress(addrs)
	if ip == nil {
		return host, "", fmt.Errorf("no addresses for host %q", host)
	}
	return host, ip.String(), nil
}

func pickAddress(addrs []net.IPAddr) net.IP {
	var firstV4 net.IP
	for _, a := range addrs {
		v4 := a.IP.To4()
		if v4 == nil {
			continue
		}
		if !v4.IsLoopback() {
			return v4
		}
		if firstV4 == nil {
			firstV4 = v4
		}
	}
	if firstV4 != nil {
		return firstV4
	}
	if len(addrs) > 0 {
		return addrs[0].IP
	}
	return nil
}
