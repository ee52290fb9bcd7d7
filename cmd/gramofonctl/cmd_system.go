package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

func runSystem(args []string) {
	fs := flag.NewFlagSet("system", flag.ExitOnError)
	var df deviceFlags
	df.register(fs)
	yes := fs.Bool("yes", false, "skip confirmation")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	rest := fs.Args()
	if len(rest) != 1 {
		die("usage: gramofonctl system [flags] reboot|reset")
	}
	action := rest[0]

	client, logger := df.build()
	defer logger.Sync()
	ctx := context.Background()

	if err := client.Login(ctx); err != nil {
		die("login to %s: %v", client.Addr(), err)
	}

	switch action {
	case "reboot":
		if !confirm(fmt.Sprintf("reboot %s?", client.Addr()), *yes) {
			fmt.Fprintln(os.Stderr, "aborted")
			os.Exit(1)
		}
		if err := client.Reboot(ctx); err != nil {
			die("reboot: %v", err)
		}
		fmt.Println("rebooting")
	case "reset":
		if !confirm(fmt.Sprintf("factory-reset %s? All settings are lost", client.Addr()), *yes) {
			fmt.Fprintln(os.Stderr, "aborted")
			os.Exit(1)
		}
		if err := client.FactoryReset(ctx); err != nil {
			die("reset: %v", err)
		}
		fmt.Println("resetting to factory defaults")
	default:
		die("unknown system action %q (want reboot or reset)", action)
	}
}
