package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/biola/nagios-plugins/pkg/cmd"
)

// Build contains the current git commit id
// compile passing -ldflags "-X main.Build=<build sha1>" to set the id.
var Build string

// Revision contains the minor version number (number of commits)
// compile passing -ldflags "-X main.Revision=<commits>" to set the revsion number.
var Revision string

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	rc := cmd.Execute(ctx, Build, Revision, os.Args, os.Stdout)
	cancel()
	os.Exit(rc)
}
