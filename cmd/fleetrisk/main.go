// Command fleetrisk scores fleet vehicles for maintenance compliance and
// risk, and writes fleet-wide reports.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		log.WithError(err).Error("fleetrisk failed")
		os.Exit(1)
	}
}
