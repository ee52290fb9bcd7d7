package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"gramofonctl/internal/diag"
	"gramofonctl/internal/rpc"
)

func runCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	var df deviceFlags
	df.register(fs)
	trace := fs.Bool("trace", false, "always run a traceroute, even on success")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	client, logger := df.build()
	defer logger.Sync()
	ctx := context.Background()

	loginErr := client.Login(ctx)
	if loginErr == nil {
		fmt.Printf("OK: %s answered login", client.Addr())
		if name, err := client.DeviceName(ctx); err == nil && name != "" {
			fmt.Printf(" (%s)", name)
		}
		fmt.Println()
		if *trace {
			printTrace(ctx, client.Addr(), logger)
		}
		return
	}

	fmt.Printf("FAIL: %s\n", explain(client.Addr(), loginErr))
	printTrace(ctx, client.Addr(), logger)
	os.Exit(1)
}

// explain turns the error taxonomy into a hint about what to fix.
func explain(addr string, err error) string {
	var netErr *rpc.NetworkError
	var protoErr *rpc.ProtocolError
	var remoteErr *rpc.RemoteError
	var authErr *rpc.AuthError
	switch {
	case errors.As(err, &netErr):
		return fmt.Sprintf("%s did not answer (%v); check the address and that you are on the device's network", addr, netErr.Err)
	case errors.As(err, &protoErr):
		return fmt.Sprintf("%s answered but not with the expected API (%v); probably not a Gramofon", addr, protoErr.Err)
	case errors.As(err, &remoteErr):
		return fmt.Sprintf("%s rejected the call (code %d %s); check the credentials", addr, remoteErr.Code, remoteErr.Message)
	case errors.As(err, &authErr):
		return fmt.Sprintf("%s accepted the login but returned no session token", addr)
	default:
		return err.Error()
	}
}

func printTrace(ctx context.Context, addr string, logger *zap.Logger) {
	trace, err := diag.Traceroute(ctx, addr, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "traceroute unavailable: %v\n", err)
		return
	}
	for _, hop := range trace.Hops {
		if hop.Timeout {
			fmt.Printf("%3d  *\n", hop.Hop)
			continue
		}
		host := hop.Hostname
		if host == "" {
			host = hop.IP
		}
		fmt.Printf("%3d  %s (%s)  %.2f ms\n", hop.Hop, host, hop.IP, hop.RTTMs)
	}
	if !trace.Reached {
		fmt.Printf("target %s not reached within %d hops\n", trace.Target, len(trace.Hops))
	}
}
