package discover

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"gramofonctl/internal/event"
	"gramofonctl/pkg/models"
)

// DefaultConcurrency is the number of addresses probed in parallel. A /24
// sweep at the default probe timeout finishes in a few seconds at this width
// without flooding a home router's connection table.
const DefaultConcurrency = 50

// Event topics published during a sweep.
const (
	TopicScanStarted      = "scan.started"
	TopicDeviceDiscovered = "scan.device.discovered"
	TopicScanCompleted    = "scan.completed"
)

// ScanStarted is the payload on TopicScanStarted.
type ScanStarted struct {
	ScanID  string
	Network string
	Hosts   int
}

// Report summarizes one completed sweep. Devices appear in the order their
// probes completed, which is how they were reported live on the bus.
type Report struct {
	ScanID   string                 `json:"scan_id" yaml:"scan_id"`
	Network  string                 `json:"network" yaml:"network"`
	Probed   int                    `json:"probed" yaml:"probed"`
	Devices  []models.DeviceSummary `json:"devices" yaml:"devices"`
	Duration time.Duration          `json:"duration" yaml:"duration"`
}

// Scanner fans a subnet's addresses out over a bounded worker pool and
// collects the probes that found a device.
type Scanner struct {
	prober      *Prober
	logger      *zap.Logger
	bus         *event.Bus
	pinger      *Pinger
	limiter     *rate.Limiter
	concurrency int
}

// ScannerOption customizes a Scanner.
type ScannerOption func(*Scanner)

// WithConcurrency bounds the worker pool. Values below 1 keep the default.
func WithConcurrency(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithBus attaches an event bus for live progress reporting.
func WithBus(bus *event.Bus) ScannerOption {
	return func(s *Scanner) { s.bus = bus }
}

// WithScannerLogger sets the logger.
func WithScannerLogger(logger *zap.Logger) ScannerOption {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRateLimit caps probe dispatch at n probes per second. Zero or negative
// leaves dispatch unpaced.
func WithRateLimit(n float64) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(n), 1)
		}
	}
}

// WithPingFilter skips the RPC probe for addresses that do not answer an
// ICMP echo first. Cuts sweep time on sparse subnets at the cost of missing
// devices that drop ICMP.
func WithPingFilter(p *Pinger) ScannerOption {
	return func(s *Scanner) { s.pinger = p }
}

// NewScanner creates a scanner around the given prober.
func NewScanner(prober *Prober, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		prober:      prober,
		logger:      zap.NewNop(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan probes every host in the CIDR and returns the devices found. The
// worker pool never exceeds the configured concurrency; results stream to
// the bus as probes complete and the report preserves that order. An invalid
// network returns a ConfigError before any probe runs.
func (s *Scanner) Scan(ctx context.Context, network string) (*Report, error) {
	hosts, err := Hosts(network)
	if err != nil {
		return nil, err
	}

	scanID := uuid.NewString()
	start := time.Now()
	s.logger.Info("scan started",
		zap.String("scan_id", scanID),
		zap.String("network", network),
		zap.Int("hosts", len(hosts)),
		zap.Int("concurrency", s.concurrency),
	)
	s.publish(ctx, TopicScanStarted, ScanStarted{
		ScanID:  scanID,
		Network: network,
		Hosts:   len(hosts),
	})

	jobs := make(chan string)
	found := make(chan models.DeviceSummary)

	var workers sync.WaitGroup
	for i := 0; i < s.concurrency; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for addr := range jobs {
				if summary, ok := s.probe(ctx, addr); ok {
					found <- summary
				}
			}
		}()
	}

	// Single collector preserves completion order and keeps bus publishing
	// off the worker goroutines.
	report := &Report{ScanID: scanID, Network: network, Probed: len(hosts)}
	var collector sync.WaitGroup
	collector.Add(1)
	go func() {
		defer collector.Done()
		for summary := range found {
			report.Devices = append(report.Devices, summary)
			s.publish(ctx, TopicDeviceDiscovered, summary)
			s.logger.Info("device discovered",
				zap.String("scan_id", scanID),
				zap.String("addr", summary.Address),
				zap.String("name", summary.Name),
			)
		}
	}()

feed:
	for _, addr := range hosts {
		select {
		case jobs <- addr:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	workers.Wait()
	close(found)
	collector.Wait()

	report.Duration = time.Since(start)
	s.publish(ctx, TopicScanCompleted, report)
	s.logger.Info("scan completed",
		zap.String("scan_id", scanID),
		zap.Int("found", len(report.Devices)),
		zap.Duration("duration", report.Duration),
	)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (s *Scanner) probe(ctx context.Context, addr string) (models.DeviceSummary, bool) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return models.DeviceSummary{}, false
		}
	}
	if s.pinger != nil && !s.pinger.Alive(ctx, addr) {
		return models.DeviceSummary{}, false
	}
	return s.prober.Probe(ctx, addr)
}

func (s *Scanner) publish(ctx context.Context, topic string, payload any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, event.Event{
		Topic:     topic,
		Source:    "discover",
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
