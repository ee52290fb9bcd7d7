package discover

import (
	"errors"
	"testing"
)

func TestHosts(t *testing.T) {
	tests := []struct {
		spec      string
		wantCount int
		wantFirst string
		wantLast  string
	}{
		{"192.168.10.0/24", 254, "192.168.10.1", "192.168.10.254"},
		{"10.0.0.0/30", 2, "10.0.0.1", "10.0.0.2"},
		{"10.0.0.0/31", 2, "10.0.0.0", "10.0.0.1"},
		{"10.0.0.7/32", 1, "10.0.0.7", "10.0.0.7"},
		{"172.16.4.0/28", 14, "172.16.4.1", "172.16.4.14"},
	}

	for _, tc := range tests {
		hosts, err := Hosts(tc.spec)
		if err != nil {
			t.Errorf("Hosts(%q) error = %v", tc.spec, err)
			continue
		}
		if len(hosts) != tc.wantCount {
			t.Errorf("Hosts(%q) count = %d, want %d", tc.spec, len(hosts), tc.wantCount)
			continue
		}
		if hosts[0] != tc.wantFirst {
			t.Errorf("Hosts(%q)[0] = %q, want %q", tc.spec, hosts[0], tc.wantFirst)
		}
		if last := hosts[len(hosts)-1]; last != tc.wantLast {
			t.Errorf("Hosts(%q) last = %q, want %q", tc.spec, last, tc.wantLast)
		}
	}
}

func TestHostsNormalizesAddress(t *testing.T) {
	// A host address inside the network is accepted; the prefix is masked.
	hosts, err := Hosts("192.168.1.77/24")
	if err != nil {
		t.Fatalf("Hosts() error = %v", err)
	}
	if hosts[0] != "192.168.1.1" {
		t.Errorf("hosts[0] = %q, want network swept from .1", hosts[0])
	}
}

func TestHostsInvalidSpec(t *testing.T) {
	for _, spec := range []string{"", "not-a-network", "192.168.1.0", "192.168.1.0/33", "fe80::/64"} {
		_, err := Hosts(spec)
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("Hosts(%q) error = %v, want ConfigError", spec, err)
			continue
		}
		if cfgErr.Spec != spec {
			t.Errorf("ConfigError.Spec = %q, want %q", cfgErr.Spec, spec)
		}
	}
}
