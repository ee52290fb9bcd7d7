package diag

import (
	"context"
	"encoding/binary"
	"testing"
)

// errorPayload builds the quoted packet an ICMP error message carries: a
// 20-byte IPv4 header followed by the first 8 bytes of the echo request.
func errorPayload(id, seq int) []byte {
	data := make([]byte, 28)
	data[0] = 0x45 // version 4, IHL 5
	data[20] = 8   // echo request
	binary.BigEndian.PutUint16(data[24:26], uint16(id))
	binary.BigEndian.PutUint16(data[26:28], uint16(seq))
	return data
}

func TestMatchesPayload(t *testing.T) {
	if !matchesPayload(errorPayload(0x1234, 7), 0x1234, 7) {
		t.Error("matchesPayload() = false for matching id/seq, want true")
	}
	if matchesPayload(errorPayload(0x1234, 7), 0x1234, 8) {
		t.Error("matchesPayload() = true for wrong seq, want false")
	}
	if matchesPayload(errorPayload(0x9999, 7), 0x1234, 7) {
		t.Error("matchesPayload() = true for wrong id, want false")
	}
}

func TestMatchesPayloadMalformed(t *testing.T) {
	if matchesPayload(nil, 1, 1) {
		t.Error("nil payload matched")
	}
	if matchesPayload(make([]byte, 10), 1, 1) {
		t.Error("short payload matched")
	}

	// Quoted packet is not an echo request.
	data := errorPayload(1, 1)
	data[20] = 0 // echo reply type
	if matchesPayload(data, 1, 1) {
		t.Error("non-echo quoted packet matched")
	}
}

func TestResolveIPv4(t *testing.T) {
	ip, err := resolveIPv4(context.Background(), "192.168.10.1")
	if err != nil {
		t.Fatalf("resolveIPv4() error = %v", err)
	}
	if ip.String() != "192.168.10.1" {
		t.Errorf("resolveIPv4() = %v, want 192.168.10.1", ip)
	}

	if _, err := resolveIPv4(context.Background(), "fe80::1"); err == nil {
		t.Error("resolveIPv4() accepted IPv6 target, want error")
	}
}
