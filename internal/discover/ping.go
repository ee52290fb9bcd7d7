package discover

import (
	"context"
	"runtime"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// Pinger answers whether an address responds to ICMP echo. Used as a cheap
// pre-filter so the sweep spends its RPC probes on hosts that exist.
type Pinger struct {
	timeout time.Duration
	count   int
}

// NewPinger creates a pinger sending count echoes with the given deadline.
func NewPinger(timeout time.Duration, count int) *Pinger {
	if count < 1 {
		count = 1
	}
	return &Pinger{timeout: timeout, count: count}
}

// Alive reports whether the target answered at least one echo. Any setup or
// send failure counts as not alive; the caller falls back to skipping the
// address, never to aborting the sweep.
func (p *Pinger) Alive(ctx context.Context, target string) bool {
	pinger, err := probing.NewPinger(target)
	if err != nil {
		return false
	}

	pinger.Count = p.count
	pinger.Timeout = p.timeout
	pinger.SetPrivileged(runtime.GOOS == "windows")

	done := make(chan error, 1)
	go func() {
		done <- pinger.Run()
	}()

	select {
	case runErr := <-done:
		if runErr != nil {
			return false
		}
		return pinger.Statistics().PacketsRecv > 0
	case <-ctx.Done():
		pinger.Stop()
		return false
	}
}
