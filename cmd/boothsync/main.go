// Command boothsync records booth survey responses on a device and merges
// snapshot files exported on other devices.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/boothsync/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
