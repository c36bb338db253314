package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/biola/nagios-plugins/pkg/check_netscaler_health"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	rc := check_netscaler_health.Check(ctx, os.Stdout, os.Args[1:])
	cancel()
	os.Exit(rc)
}
