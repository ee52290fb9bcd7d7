// Package discover sweeps a subnet for Gramofon devices by probing the
// JSON-RPC login endpoint on every candidate address, with optional mDNS and
// SSDP passes to surface candidates the sweep range missed.
package discover

import (
	"fmt"
	"net/netip"
)

// ConfigError reports an unusable network specification, such as a malformed
// CIDR. It is distinct from probe failures: a ConfigError means no probes ran.
type ConfigError struct {
	Spec string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid network %q: %v", e.Spec, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Hosts expands an IPv4 CIDR into its usable host addresses. Network and
// broadcast addresses are excluded for prefixes shorter than /31; a /31
// yields both addresses and a /32 yields the single address, matching
// point-to-point conventions.
func Hosts(spec string) ([]string, error) {
	prefix, err := netip.ParsePrefix(spec)
	if err != nil {
		return nil, &ConfigError{Spec: spec, Err: err}
	}
	if !prefix.Addr().Is4() {
		return nil, &ConfigError{Spec: spec, Err: fmt.Errorf("only IPv4 networks are supported")}
	}
	prefix = prefix.Masked()

	switch prefix.Bits() {
	case 32:
		return []string{prefix.Addr().String()}, nil
	case 31:
		first := prefix.Addr()
		return []string{first.String(), first.Next().String()}, nil
	}

	var hosts []string
	// Skip the network address, stop before the broadcast address.
	for addr := prefix.Addr().Next(); prefix.Contains(addr); addr = addr.Next() {
		next := addr.Next()
		if !prefix.Contains(next) {
			break
		}
		hosts = append(hosts, addr.String())
	}
	return hosts, nil
}
