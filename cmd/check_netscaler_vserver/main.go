package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/biola/nagios-plugins/pkg/check_netscaler_vserver"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	rc := check_netscaler_vserver.Check(ctx, os.Stdout, os.Args[1:])
	cancel()
	os.Exit(rc)
}
