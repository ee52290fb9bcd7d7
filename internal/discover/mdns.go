//go:build !windows

package discover

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/mdns"
	"go.uber.org/zap"

	"gramofonctl/pkg/models"
)

// mdnsServices are the service types a Gramofon announces: Spotify Connect
// for playback, plus the management UI over plain HTTP.
var mdnsServices = []string{
	"_spotify-connect._tcp",
	"_http._tcp",
}

const mdnsQueryTimeout = 3 * time.Second

// MDNSCandidates runs a one-shot mDNS query for the services a Gramofon
// advertises and returns the responders as unconfirmed candidates. A hit
// here only means something answered the service query; confirming it is a
// Gramofon still requires an API probe.
func MDNSCandidates(ctx context.Context, logger *zap.Logger) []models.DeviceSummary {
	if logger == nil {
		logger = zap.NewNop()
	}

	seen := make(map[string]bool)
	var candidates []models.DeviceSummary

	for _, svc := range mdnsServices {
		if ctx.Err() != nil {
			break
		}
		for _, entry := range queryService(svc, logger) {
			ip := entryIP(entry)
			if ip == "" || seen[ip] {
				continue
			}
			// The generic HTTP query answers for every web thing on the
			// subnet; keep only names that look like the target device.
			if svc == "_http._tcp" && !looksLikeGramofon(entry) {
				continue
			}
			seen[ip] = true

			name := strings.TrimSuffix(entry.Host, ".")
			if name == "" {
				name = entry.Name
			}
			candidates = append(candidates, models.DeviceSummary{
				Address:      ip,
				Name:         name,
				MAC:          models.UnknownField,
				Method:       models.DiscoveryMDNS,
				DiscoveredAt: time.Now().UTC(),
			})
			logger.Debug("mdns candidate",
				zap.String("addr", ip),
				zap.String("name", name),
				zap.String("service", svc),
			)
		}
	}
	return candidates
}

// queryService collects all responses to a single service query.
func queryService(service string, logger *zap.Logger) []*mdns.ServiceEntry {
	entries := make(chan *mdns.ServiceEntry, 16)

	var results []*mdns.ServiceEntry
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for entry := range entries {
			if entry != nil {
				results = append(results, entry)
			}
		}
	}()

	params := mdns.DefaultParams(service)
	params.Timeout = mdnsQueryTimeout
	params.Entries = entries
	params.DisableIPv6 = true // the device only speaks IPv4

	if err := mdns.Query(params); err != nil {
		logger.Debug("mdns query failed",
			zap.String("service", service),
			zap.Error(err),
		)
	}
	close(entries)
	wg.Wait()

	return results
}

func entryIP(entry *mdns.ServiceEntry) string {
	if entry.AddrV4 != nil && !entry.AddrV4.IsUnspecified() {
		return entry.AddrV4.String()
	}
	if entry.Addr != nil && !entry.Addr.IsUnspecified() {
		return entry.Addr.String()
	}
	return ""
}

func looksLikeGramofon(entry *mdns.ServiceEntry) bool {
	for _, s := range []string{entry.Name, entry.Host, entry.Info} {
		s = strings.ToLower(s)
		if strings.Contains(s, "gramofon") || strings.Contains(s, "fonera") {
			return true
		}
	}
	return false
}
