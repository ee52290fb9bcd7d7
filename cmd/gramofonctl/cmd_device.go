package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"gramofonctl/pkg/models"
)

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	var df deviceFlags
	df.register(fs)
	output := fs.String("o", formatJSON, "output format: json, yaml")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	client, logger := df.build()
	defer logger.Sync()
	ctx := context.Background()

	if err := client.Login(ctx); err != nil {
		die("login to %s: %v", client.Addr(), err)
	}
	status, err := client.Status(ctx)
	if err != nil {
		die("status: %v", err)
	}
	if err := renderRaw(os.Stdout, *output, status); err != nil {
		die("render: %v", err)
	}
}

func runInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	var df deviceFlags
	df.register(fs)
	output := fs.String("o", formatTable, "output format: table, json, yaml, csv")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	client, logger := df.build()
	defer logger.Sync()
	ctx := context.Background()

	if err := client.Login(ctx); err != nil {
		die("login to %s: %v", client.Addr(), err)
	}

	// Best effort on the individual fields, same as a discovery probe: a
	// device that logged in is worth showing even half-described.
	summary := models.DeviceSummary{
		Address: client.Addr(),
		Name:    models.UnknownField,
		MAC:     models.UnknownField,
		Method:  models.DiscoveryAPI,
	}
	if name, err := client.DeviceName(ctx); err == nil && name != "" {
		summary.Name = name
	}
	if mac, err := client.MACAddress(ctx); err == nil && mac != "" {
		summary.MAC = mac
	}

	if err := renderDevices(os.Stdout, *output, []models.DeviceSummary{summary}); err != nil {
		die("render: %v", err)
	}
}

func runName(args []string) {
	fs := flag.NewFlagSet("name", flag.ExitOnError)
	var df deviceFlags
	df.register(fs)
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	client, logger := df.build()
	defer logger.Sync()
	ctx := context.Background()

	if err := client.Login(ctx); err != nil {
		die("login to %s: %v", client.Addr(), err)
	}

	switch rest := fs.Args(); len(rest) {
	case 0:
		name, err := client.DeviceName(ctx)
		if err != nil {
			die("get name: %v", err)
		}
		fmt.Println(name)
	default:
		newName := strings.Join(rest, " ")
		if err := client.SetDeviceName(ctx, newName); err != nil {
			die("set name: %v", err)
		}
		fmt.Printf("name set to %q\n", newName)
	}
}

func runWiFi(args []string) {
	fs := flag.NewFlagSet("wifi", flag.ExitOnError)
	var df deviceFlags
	df.register(fs)
	output := fs.String("o", formatTable, "output format: table, json, yaml, csv")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	action := "scan"
	if rest := fs.Args(); len(rest) > 0 {
		action = rest[0]
	}

	client, logger := df.build()
	defer logger.Sync()
	ctx := context.Background()

	if err := client.Login(ctx); err != nil {
		die("login to %s: %v", client.Addr(), err)
	}

	switch action {
	case "scan":
		networks, err := client.ScanNetworks(ctx)
		if err != nil {
			die("scan: %v", err)
		}
		sort.SliceStable(networks, func(i, j int) bool {
			return networks[i].Strength() > networks[j].Strength()
		})
		if err := renderNetworks(os.Stdout, *output, networks); err != nil {
			die("render: %v", err)
		}
	case "config":
		cfg, err := client.WiFiConfig(ctx)
		if err != nil {
			die("wifi config: %v", err)
		}
		if err := renderRaw(os.Stdout, *output, cfg); err != nil {
			die("render: %v", err)
		}
	case "reload":
		if err := client.ReloadWiFi(ctx); err != nil {
			die("wifi reload: %v", err)
		}
		fmt.Println("wifi reloaded")
	default:
		die("unknown wifi action %q (want scan, config or reload)", action)
	}
}

func runLED(args []string) {
	fs := flag.NewFlagSet("led", flag.ExitOnError)
	var df deviceFlags
	df.register(fs)
	output := fs.String("o", formatJSON, "output format: json, yaml")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	client, logger := df.build()
	defer logger.Sync()
	ctx := context.Background()

	if err := client.Login(ctx); err != nil {
		die("login to %s: %v", client.Addr(), err)
	}

	action := "show"
	if rest := fs.Args(); len(rest) > 0 {
		action = rest[0]
	}
	switch action {
	case "show":
		status, err := client.LEDStatus(ctx)
		if err != nil {
			die("led status: %v", err)
		}
		if err := renderRaw(os.Stdout, *output, status); err != nil {
			die("render: %v", err)
		}
	case "on", "off":
		if err := client.SetLED(ctx, action == "on"); err != nil {
			die("led %s: %v", action, err)
		}
		fmt.Printf("led %s\n", action)
	default:
		die("unknown led action %q (want show, on or off)", action)
	}
}
