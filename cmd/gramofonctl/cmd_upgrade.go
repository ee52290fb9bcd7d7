package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// confirm asks for interactive confirmation unless -yes was given.
func confirm(prompt string, assumeYes bool) bool {
	if assumeYes {
		return true
	}
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func runUpgrade(args []string) {
	fs := flag.NewFlagSet("upgrade", flag.ExitOnError)
	var df deviceFlags
	df.register(fs)
	install := fs.String("install", "", "firmware id to install (default: list available)")
	yes := fs.Bool("yes", false, "skip confirmation")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	client, logger := df.build()
	defer logger.Sync()
	ctx := context.Background()

	if err := client.Login(ctx); err != nil {
		die("login to %s: %v", client.Addr(), err)
	}

	if *install == "" {
		images, err := client.CheckUpgrades(ctx)
		if err != nil {
			die("check upgrades: %v", err)
		}
		if len(images) == 0 {
			fmt.Println("firmware is up to date")
			return
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "FIRMWARE\tNOTES")
		for _, img := range images {
			fmt.Fprintf(tw, "%s\t%s\n", img.ID, img.Message)
		}
		tw.Flush()
		return
	}

	if !confirm(fmt.Sprintf("install firmware %q on %s? The device reboots when done", *install, client.Addr()), *yes) {
		fmt.Fprintln(os.Stderr, "aborted")
		os.Exit(1)
	}
	if err := client.Upgrade(ctx, *install); err != nil {
		die("upgrade: %v", err)
	}
	fmt.Printf("installing %s; the device reboots itself when the upgrade completes\n", *install)
}
