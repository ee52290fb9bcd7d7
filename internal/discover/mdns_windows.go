//go:build windows

package discover

import (
	"context"

	"go.uber.org/zap"

	"gramofonctl/pkg/models"
)

// MDNSCandidates is unavailable on Windows; the sweep still covers the
// subnet, so only the passive shortcut is lost.
func MDNSCandidates(_ context.Context, logger *zap.Logger) []models.DeviceSummary {
	if logger != nil {
		logger.Debug("mdns discovery not supported on this platform")
	}
	return nil
}
