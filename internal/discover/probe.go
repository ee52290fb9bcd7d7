package discover

import (
	"context"
	"time"

	"go.uber.org/zap"

	"gramofonctl/internal/device"
	"gramofonctl/pkg/models"
)

// DefaultProbeTimeout bounds a single address probe. Most of a sweep is
// addresses that never answer, so this is much shorter than the timeout used
// for management calls against a known device.
const DefaultProbeTimeout = 2 * time.Second

// deviceClient is the slice of the device client a probe needs. The scanner
// tests substitute a scripted implementation.
type deviceClient interface {
	Login(ctx context.Context) error
	Session() string
	DeviceName(ctx context.Context) (string, error)
	MACAddress(ctx context.Context) (string, error)
}

// ClientFactory builds a device client for one candidate address.
type ClientFactory func(addr string) deviceClient

// Prober decides whether one address hosts a Gramofon. A successful login is
// the sole criterion; any failure, whatever its cause, means not found.
type Prober struct {
	logger  *zap.Logger
	oui     *OUITable
	timeout time.Duration
	factory ClientFactory
}

// ProberOption customizes a Prober.
type ProberOption func(*Prober)

// WithProbeTimeout overrides the per-address timeout.
func WithProbeTimeout(d time.Duration) ProberOption {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithProberLogger sets the logger.
func WithProberLogger(logger *zap.Logger) ProberOption {
	return func(p *Prober) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClientFactory replaces how device clients are built.
func WithClientFactory(f ClientFactory) ProberOption {
	return func(p *Prober) {
		if f != nil {
			p.factory = f
		}
	}
}

// NewProber creates a prober that logs in with the given credentials.
func NewProber(username, password string, opts ...ProberOption) *Prober {
	p := &Prober{
		logger:  zap.NewNop(),
		oui:     NewOUITable(),
		timeout: DefaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.factory == nil {
		p.factory = func(addr string) deviceClient {
			return device.NewClient(addr,
				device.WithCredentials(username, password),
				device.WithTimeout(p.timeout),
				device.WithLogger(p.logger),
			)
		}
	}
	return p
}

// Probe checks one address. The second return is true only when a login
// succeeded. Name and MAC are best effort: a device that logs in but fails
// the follow-up info calls is still reported, with Unknown placeholders, so
// a half-responsive device is not silently dropped from the results.
func (p *Prober) Probe(ctx context.Context, addr string) (models.DeviceSummary, bool) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	client := p.factory(addr)
	if err := client.Login(ctx); err != nil {
		p.logger.Debug("probe miss", zap.String("addr", addr), zap.Error(err))
		return models.DeviceSummary{}, false
	}

	summary := models.DeviceSummary{
		Address:      addr,
		Name:         models.UnknownField,
		MAC:          models.UnknownField,
		Method:       models.DiscoveryAPI,
		DiscoveredAt: time.Now().UTC(),
		Session:      client.Session(),
	}

	if name, err := client.DeviceName(ctx); err == nil && name != "" {
		summary.Name = name
	}
	if mac, err := client.MACAddress(ctx); err == nil && mac != "" {
		summary.MAC = mac
		summary.Vendor = p.oui.Lookup(mac)
	}

	p.logger.Debug("probe hit",
		zap.String("addr", addr),
		zap.String("name", summary.Name),
		zap.String("mac", summary.MAC),
	)
	return summary, true
}
