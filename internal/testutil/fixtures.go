package testutil

import (
	"time"

	"gramofonctl/pkg/models"
)

// NewDeviceSummary returns a discovered-device fixture with sensible
// defaults. Override individual fields through the options.
func NewDeviceSummary(opts ...func(*models.DeviceSummary)) models.DeviceSummary {
	d := models.DeviceSummary{
		Address:      "192.168.10.1",
		Name:         "Gramofon",
		MAC:          "00:18:84:aa:bb:cc",
		Vendor:       "Fon Technology",
		Method:       models.DiscoveryAPI,
		DiscoveredAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// WithAddress sets the device address.
func WithAddress(addr string) func(*models.DeviceSummary) {
	return func(d *models.DeviceSummary) { d.Address = addr }
}

// WithName sets the device name.
func WithName(name string) func(*models.DeviceSummary) {
	return func(d *models.DeviceSummary) { d.Name = name }
}

// WithMethod sets the discovery method.
func WithMethod(m models.DiscoveryMethod) func(*models.DeviceSummary) {
	return func(d *models.DeviceSummary) { d.Method = m }
}
