package app

import (
	"context"
	"os/signal"
	"syscall"

	"multiroot/pkg/logging"
)

// runServe starts the host API, performs the initial load and blocks until
// ctx ends, a termination signal arrives, or the transport closes.
func runServe(ctx context.Context, services *Services, settingsPath string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := services.Start(ctx, settingsPath); err != nil {
		logging.Error("Serve", err, "Activation failed")
		services.Close()
		return err
	}
	defer services.Close()

	snap := services.Reload(ctx)
	logging.Info("Serve", "Loaded %d configurations across %d folders, active: %s",
		len(snap.Names), len(snap.Folders), snap.StatusText())

	select {
	case <-ctx.Done():
		logging.Info("Serve", "Shutting down")
	case <-services.Server.Done():
		logging.Info("Serve", "Host API transport closed, shutting down")
	}
	return nil
}
