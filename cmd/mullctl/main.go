package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/egorlepa/mullctl/internal/cli"
)

var version = "dev"

func main() {
	cli.SetVersion(version)

	// An interrupt kills a running wg-quick and aborts verification.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
