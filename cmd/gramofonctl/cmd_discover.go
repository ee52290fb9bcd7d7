package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"gramofonctl/internal/discover"
	"gramofonctl/internal/event"
	"gramofonctl/pkg/models"
)

func runDiscover(args []string) {
	fs := flag.NewFlagSet("discover", flag.ExitOnError)
	network := fs.String("network", "", "CIDR to sweep (default: autodetect from local interfaces)")
	output := fs.String("o", formatTable, "output format: table, json, yaml, csv")
	configPath := fs.String("config", "", "path to configuration file")
	username := fs.String("username", "", "login username for probes")
	password := fs.String("password", "", "login password for probes")
	timeout := fs.Duration("timeout", 0, "per-address probe timeout")
	concurrency := fs.Int("concurrency", 0, "parallel probes")
	rateLimit := fs.Float64("rate", 0, "max probes per second (0 = unlimited)")
	pingFirst := fs.Bool("ping-first", false, "skip addresses that do not answer ICMP echo")
	useMDNS := fs.Bool("mdns", false, "also list mDNS candidates")
	useSSDP := fs.Bool("ssdp", false, "also list UPnP/SSDP candidates")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	logger := newLogger(*verbose)
	defer logger.Sync()
	cfg := mustConfig(*configPath)

	if *username == "" {
		*username = cfg.GetString("device.username")
	}
	if *password == "" {
		*password = cfg.GetString("device.password")
	}
	if *timeout <= 0 {
		*timeout = cfg.GetDuration("scan.timeout")
	}
	if *concurrency <= 0 {
		*concurrency = cfg.GetInt("scan.concurrency")
	}
	if *rateLimit <= 0 {
		*rateLimit = float64(cfg.GetInt("scan.rate_limit"))
	}

	if *network == "" {
		detected, err := discover.DetectNetwork()
		if err != nil {
			die("no -network given and autodetection failed: %v", err)
		}
		*network = detected
		fmt.Fprintf(os.Stderr, "sweeping %s (autodetected)\n", *network)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := event.NewBus(logger)
	incremental := *output == formatTable
	if incremental {
		// Stream hits as their probes complete; the table re-renders at the
		// end with aligned columns.
		bus.Subscribe(discover.TopicDeviceDiscovered, func(_ context.Context, e event.Event) {
			if d, ok := e.Payload.(models.DeviceSummary); ok {
				fmt.Fprintf(os.Stderr, "found %s (%s)\n", d.Address, d.Name)
			}
		})
	}

	prober := discover.NewProber(*username, *password,
		discover.WithProbeTimeout(*timeout),
		discover.WithProberLogger(logger),
	)
	opts := []discover.ScannerOption{
		discover.WithBus(bus),
		discover.WithConcurrency(*concurrency),
		discover.WithScannerLogger(logger),
	}
	if *rateLimit > 0 {
		opts = append(opts, discover.WithRateLimit(*rateLimit))
	}
	if *pingFirst {
		opts = append(opts, discover.WithPingFilter(discover.NewPinger(*timeout, 1)))
	}

	report, err := discover.NewScanner(prober, opts...).Scan(ctx, *network)
	if err != nil {
		if report == nil {
			die("%v", err)
		}
		// Interrupted sweep: render what we have, then report the cut.
		fmt.Fprintf(os.Stderr, "sweep interrupted: %v\n", err)
	}

	devices := report.Devices
	seen := make(map[string]bool, len(devices))
	for _, d := range devices {
		seen[d.Address] = true
	}
	if *useMDNS {
		for _, d := range discover.MDNSCandidates(ctx, logger) {
			if !seen[d.Address] {
				seen[d.Address] = true
				devices = append(devices, d)
			}
		}
	}
	if *useSSDP {
		for _, d := range discover.SSDPCandidates(logger) {
			if !seen[d.Address] {
				seen[d.Address] = true
				devices = append(devices, d)
			}
		}
	}

	if err := renderDevices(os.Stdout, *output, devices); err != nil {
		die("render: %v", err)
	}
	fmt.Fprintf(os.Stderr, "probed %d hosts in %s, found %d device(s)\n",
		report.Probed, report.Duration.Round(time.Millisecond), len(devices))

	logger.Debug("discover finished",
		zap.String("network", *network),
		zap.Int("devices", len(devices)),
	)
}
