// Command gramofonctl manages Gramofon WiFi audio bridges: sweeping the
// local subnet for them and driving a single device's management API.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gramofonctl/internal/config"
	"gramofonctl/internal/device"
	"gramofonctl/internal/version"
)

const usageText = `Usage: gramofonctl <command> [flags]

Commands:
  discover   sweep a subnet for Gramofon devices
  status     show the device's network status
  info       show the device's name, MAC and vendor
  name       get or set the device's friendly name
  wifi       scan for networks or manage the WiFi configuration
  setup      join the device to a WiFi network
  led        show or switch the front LED
  upgrade    list or install firmware upgrades
  system     reboot or factory-reset the device
  check      test connectivity to a device
  version    print version information

Run 'gramofonctl <command> -h' for command flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "discover":
		runDiscover(args)
	case "status":
		runStatus(args)
	case "info":
		runInfo(args)
	case "name":
		runName(args)
	case "wifi":
		runWiFi(args)
	case "setup":
		runSetup(args)
	case "led":
		runLED(args)
	case "upgrade":
		runUpgrade(args)
	case "system":
		runSystem(args)
	case "check":
		runCheck(args)
	case "version":
		fmt.Println(version.Info())
	case "help", "-h", "--help":
		fmt.Print(usageText)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usageText)
		os.Exit(2)
	}
}

// die prints an error to stderr and exits. Command output goes to stdout;
// everything else stays on stderr so pipelines see only results.
func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// newLogger builds the CLI logger. Quiet by default so rendered output is
// the only thing on a clean run; -verbose turns on human-readable debug.
func newLogger(verbose bool) *zap.Logger {
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		logger, err := cfg.Build()
		if err != nil {
			die("build logger: %v", err)
		}
		return logger
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	logger, err := cfg.Build()
	if err != nil {
		die("build logger: %v", err)
	}
	return logger
}

func mustConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		die("%v", err)
	}
	return cfg
}

// deviceFlags bundles the flags every single-device command shares. Flag
// values override the config file, which overrides the built-in defaults.
type deviceFlags struct {
	configPath string
	addr       string
	username   string
	password   string
	timeout    time.Duration
	verbose    bool
}

func (df *deviceFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&df.configPath, "config", "", "path to configuration file")
	fs.StringVar(&df.addr, "addr", "", "device address (default from config, "+config.DefaultDeviceAddr+")")
	fs.StringVar(&df.username, "username", "", "login username")
	fs.StringVar(&df.password, "password", "", "login password")
	fs.DurationVar(&df.timeout, "timeout", 0, "per-call timeout")
	fs.BoolVar(&df.verbose, "verbose", false, "enable debug logging")
}

// build resolves the final settings and constructs the device client.
func (df *deviceFlags) build() (*device.Client, *zap.Logger) {
	logger := newLogger(df.verbose)
	cfg := mustConfig(df.configPath)

	addr := df.addr
	if addr == "" {
		addr = cfg.GetString("device.addr")
	}
	username := df.username
	if username == "" {
		username = cfg.GetString("device.username")
	}
	password := df.password
	if password == "" {
		password = cfg.GetString("device.password")
	}
	timeout := df.timeout
	if timeout <= 0 {
		timeout = cfg.GetDuration("device.timeout")
	}

	client := device.NewClient(addr,
		device.WithCredentials(username, password),
		device.WithTimeout(timeout),
		device.WithLogger(logger),
	)
	return client, logger
}
