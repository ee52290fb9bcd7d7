// Package diag holds the connectivity diagnostics behind the check command:
// when a device does not answer its API, a hop-by-hop trace shows whether
// the path dies at the local router or at the device itself.
package diag

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"os"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// Hop is one step on the path to the target.
type Hop struct {
	Hop      int     `json:"hop" yaml:"hop"`
	IP       string  `json:"ip,omitempty" yaml:"ip,omitempty"`
	Hostname string  `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	RTTMs    float64 `json:"rtt_ms" yaml:"rtt_ms"`
	Timeout  bool    `json:"timeout" yaml:"timeout"`
}

// Trace is the result of a traceroute run.
type Trace struct {
	Target  string `json:"target" yaml:"target"`
	Hops    []Hop  `json:"hops" yaml:"hops"`
	Reached bool   `json:"reached" yaml:"reached"`
}

const (
	defaultMaxHops    = 30
	defaultHopTimeout = time.Second
)

// Traceroute runs an ICMP traceroute toward target, one echo per TTL. For a
// device on the same subnet a healthy result is a single hop; anything
// longer means the route goes through the wrong gateway.
func Traceroute(ctx context.Context, target string, logger *zap.Logger) (*Trace, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	targetIP, err := resolveIPv4(ctx, target)
	if err != nil {
		return nil, err
	}

	conn, network, err := openICMPConn()
	if err != nil {
		return nil, fmt.Errorf("open ICMP connection: %w", err)
	}
	defer conn.Close()

	trace := &Trace{Target: targetIP.String()}
	icmpID := os.Getpid() & 0xffff

	for ttl := 1; ttl <= defaultMaxHops; ttl++ {
		if err := ctx.Err(); err != nil {
			return trace, err
		}

		hop, reached := probeHop(ctx, conn, network, targetIP, ttl, icmpID, logger)
		trace.Hops = append(trace.Hops, hop)
		if reached {
			trace.Reached = true
			break
		}
	}

	resolveHostnames(trace.Hops)
	return trace, nil
}

func resolveIPv4(ctx context.Context, target string) (net.IP, error) {
	ip := net.ParseIP(target)
	if ip == nil {
		addrs, err := net.DefaultResolver.LookupHost(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("resolve target %q: %w", target, err)
		}
		if len(addrs) == 0 {
			return nil, fmt.Errorf("no addresses for target %q", target)
		}
		ip = net.ParseIP(addrs[0])
	}
	if ip = ip.To4(); ip == nil {
		return nil, fmt.Errorf("only IPv4 targets are supported")
	}
	return ip, nil
}

// openICMPConn prefers the unprivileged datagram socket where the kernel
// allows it and falls back to a raw socket.
func openICMPConn() (*icmp.PacketConn, string, error) {
	if runtime.GOOS == "windows" {
		conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
		return conn, "ip4:icmp", err
	}

	conn, err := icmp.ListenPacket("udp4", "")
	if err == nil {
		return conn, "udp4", nil
	}
	conn, err = icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	return conn, "ip4:icmp", err
}

// probeHop sends one echo with the given TTL and waits for either an echo
// reply (target reached) or a time-exceeded from an intermediate router.
func probeHop(ctx context.Context, conn *icmp.PacketConn, network string, target net.IP, ttl, id int, logger *zap.Logger) (hop Hop, reached bool) {
	hop.Hop = ttl
	seq := ttl

	if err := conn.IPv4PacketConn().SetTTL(ttl); err != nil {
		logger.Debug("set TTL failed", zap.Int("ttl", ttl), zap.Error(err))
		hop.Timeout = true
		return hop, false
	}

	msg := &icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   id,
			Seq:  seq,
			Data: []byte("gramofonctl-trace"),
		},
	}
	msgBytes, err := msg.Marshal(nil)
	if err != nil {
		hop.Timeout = true
		return hop, false
	}

	var dst net.Addr
	if network == "udp4" {
		dst = &net.UDPAddr{IP: target}
	} else {
		dst = &net.IPAddr{IP: target}
	}

	sendTime := time.Now()
	if _, err := conn.WriteTo(msgBytes, dst); err != nil {
		logger.Debug("send probe failed", zap.Int("ttl", ttl), zap.Error(err))
		hop.Timeout = true
		return hop, false
	}

	deadline := sendTime.Add(defaultHopTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		hop.Timeout = true
		return hop, false
	}

	buf := make([]byte, 1500)
	for {
		n, peer, err := conn.ReadFrom(buf)
		if err != nil {
			hop.Timeout = true
			return hop, false
		}
		rtt := time.Since(sendTime)

		var peerIP string
		switch p := peer.(type) {
		case *net.UDPAddr:
			peerIP = p.IP.String()
		case *net.IPAddr:
			peerIP = p.IP.String()
		default:
			peerIP = peer.String()
		}

		reply, err := icmp.ParseMessage(1, buf[:n])
		if err != nil {
			continue
		}

		switch reply.Type {
		case ipv4.ICMPTypeEchoReply:
			if echo, ok := reply.Body.(*icmp.Echo); ok && echo.ID == id && echo.Seq == seq {
				hop.IP = peerIP
				hop.RTTMs = float64(rtt.Microseconds()) / 1000.0
				return hop, true
			}
		case ipv4.ICMPTypeTimeExceeded:
			if matchesProbe(reply, id, seq) {
				hop.IP = peerIP
				hop.RTTMs = float64(rtt.Microseconds()) / 1000.0
				return hop, false
			}
		case ipv4.ICMPTypeDestinationUnreachable:
			if matchesProbe(reply, id, seq) {
				hop.IP = peerIP
				hop.RTTMs = float64(rtt.Microseconds()) / 1000.0
				return hop, true
			}
		}

		// Someone else's packet; keep reading until the deadline.
		if time.Now().After(deadline) {
			hop.Timeout = true
			return hop, false
		}
	}
}

// matchesProbe checks whether an ICMP error message carries our original
// echo request. Error messages quote the triggering packet's IP header plus
// at least 8 bytes of its payload.
func matchesProbe(reply *icmp.Message, id, seq int) bool {
	switch body := reply.Body.(type) {
	case *icmp.TimeExceeded:
		return matchesPayload(body.Data, id, seq)
	case *icmp.DstUnreach:
		return matchesPayload(body.Data, id, seq)
	default:
		return false
	}
}

func matchesPayload(data []byte, id, seq int) bool {
	if len(data) < 28 {
		return false
	}
	ihl := int(data[0]&0x0f) * 4
	if ihl < 20 || len(data) < ihl+8 {
		return false
	}

	inner := data[ihl:]
	if inner[0] != 8 { // echo request
		return false
	}
	return int(binary.BigEndian.Uint16(inner[4:6])) == id &&
		int(binary.BigEndian.Uint16(inner[6:8])) == seq
}

// resolveHostnames fills hop hostnames by reverse DNS, best effort.
func resolveHostnames(hops []Hop) {
	for i := range hops {
		if hops[i].IP == "" || hops[i].Timeout {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		names, err := net.DefaultResolver.LookupAddr(ctx, hops[i].IP)
		cancel()
		if err != nil || len(names) == 0 {
			continue
		}
		hops[i].Hostname = strings.TrimSuffix(names[0], ".")
	}
}
