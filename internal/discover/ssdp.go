package discover

import (
	"strings"
	"time"

	"github.com/huin/goupnp"
	"github.com/huin/goupnp/ssdp"
	"go.uber.org/zap"

	"gramofonctl/pkg/models"
)

// SSDPCandidates searches for UPnP root devices and returns the ones whose
// description mentions the Fon family. Like mDNS hits these are candidates
// only; the API probe remains the arbiter of what is actually a Gramofon.
func SSDPCandidates(logger *zap.Logger) []models.DeviceSummary {
	if logger == nil {
		logger = zap.NewNop()
	}

	maybes, err := goupnp.DiscoverDevices(ssdp.UPNPRootDevice)
	if err != nil {
		logger.Debug("ssdp search failed", zap.Error(err))
		return nil
	}

	seen := make(map[string]bool)
	var candidates []models.DeviceSummary
	for _, maybe := range maybes {
		if maybe.Err != nil || maybe.Root == nil || maybe.Location == nil {
			continue
		}
		dev := maybe.Root.Device
		if !mentionsFon(dev.FriendlyName, dev.Manufacturer, dev.ModelName) {
			continue
		}

		addr := maybe.Location.Hostname()
		if addr == "" || seen[addr] {
			continue
		}
		seen[addr] = true

		name := dev.FriendlyName
		if name == "" {
			name = models.UnknownField
		}
		candidates = append(candidates, models.DeviceSummary{
			Address:      addr,
			Name:         name,
			MAC:          models.UnknownField,
			Method:       models.DiscoverySSDP,
			DiscoveredAt: time.Now().UTC(),
		})
		logger.Debug("ssdp candidate",
			zap.String("addr", addr),
			zap.String("name", name),
			zap.String("manufacturer", dev.Manufacturer),
		)
	}
	return candidates
}

func mentionsFon(fields ...string) bool {
	for _, f := range fields {
		f = strings.ToLower(f)
		if strings.Contains(f, "gramofon") || strings.Contains(f, "fon ") ||
			strings.HasPrefix(f, "fon") || strings.Contains(f, "fonera") {
			return true
		}
	}
	return false
}
