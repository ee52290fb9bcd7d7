package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"gramofonctl/internal/device"
)

func runSetup(args []string) {
	fs := flag.NewFlagSet("setup", flag.ExitOnError)
	var df deviceFlags
	df.register(fs)
	ssid := fs.String("ssid", "", "network to join (required)")
	key := fs.String("key", "", "network passphrase")
	encryption := fs.String("encryption", "", "encryption mode (default psk2)")
	name := fs.String("name", "", "friendly name to set during setup")
	disableAP := fs.Bool("disable-ap", false, "disable the device's own access point")
	skipReload := fs.Bool("skip-reload", false, "configure only, do not apply")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}
	if *ssid == "" {
		die("setup: -ssid is required")
	}

	client, logger := df.build()
	defer logger.Sync()
	ctx := context.Background()

	if err := client.Login(ctx); err != nil {
		die("login to %s: %v", client.Addr(), err)
	}

	err := client.EasySetup(ctx, device.SetupParams{
		SSID:       *ssid,
		Password:   *key,
		Encryption: *encryption,
		DeviceName: *name,
		DisableAP:  *disableAP,
	})
	if err != nil {
		die("setup: %v", err)
	}

	if *skipReload {
		fmt.Println("configured; run 'gramofonctl wifi reload' to apply")
		return
	}
	if err := client.ReloadWiFi(ctx); err != nil {
		die("setup applied but reload failed: %v", err)
	}
	fmt.Printf("joining %q; the device drops off its setup network while it reconnects\n", *ssid)
}
