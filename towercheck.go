// Package towercheck implements the towercheck daemon: it loads the
// configuration, connects to a chain backend and serves the verifier over
// HTTP until it is asked to shut down.
package towercheck

import (
	"context"
	"fmt"
	"time"

	"github.com/lightningnetwork/lnd/healthcheck"
	"github.com/lightningnetwork/towercheck/build"
	"github.com/lightningnetwork/towercheck/chainreg"
	"github.com/lightningnetwork/towercheck/checkrpc"
	"github.com/lightningnetwork/towercheck/monitoring"
	"github.com/lightningnetwork/towercheck/signal"
	"github.com/lightningnetwork/towercheck/txsource"
	"github.com/lightningnetwork/towercheck/verifier"
)

// shutdownTimeout bounds the time in-flight HTTP requests get to finish
// once a shutdown was requested.
const shutdownTimeout = 10 * time.Second

// Main is the true entry point of the daemon. It returns once the
// interceptor signals a shutdown.
func Main(cfg *Config, interceptor signal.Interceptor) error {
	defer func() {
		tchkLog.Info("Shutdown complete")
		if cfg.logFile != nil {
			if err := cfg.logFile.Close(); err != nil {
				tchkLog.Errorf("Could not close log file: %v",
					err)
			}
		}
	}()

	tchkLog.Infof("Version: %s commit=%s, build=%s, logging=%s",
		build.Version(), build.Commit, build.Deployment,
		build.LoggingType)
	tchkLog.Infof("Active chain: bitcoin (network=%v), backend=%s",
		cfg.NetParams().Name, cfg.ChainBackend)

	source, cleanUp, err := chainreg.NewSource(&chainreg.Config{
		Backend:   cfg.ChainBackend,
		Bitcoind:  cfg.Bitcoind,
		Esplora:   cfg.Esplora,
		NetParams: cfg.NetParams(),
	})
	if err != nil {
		return fmt.Errorf("unable to create chain source: %w", err)
	}
	defer cleanUp()

	metrics := monitoring.NewMetrics()

	v, err := verifier.New(&verifier.Config{
		Source:         source,
		FetchTimeout:   cfg.Verify.FetchTimeout,
		MaxConcurrency: cfg.Verify.MaxConcurrency,
		Observer:       metrics,
	})
	if err != nil {
		return err
	}

	pinger, _ := source.(txsource.Pinger)

	// Shut the daemon down once the chain backend is unreachable for the
	// configured number of attempts, nothing can be verified without it.
	var checks []*healthcheck.Observation
	chainCheck := cfg.HealthChecks.ChainCheck
	if chainCheck.Attempts != 0 && pinger != nil {
		checks = append(checks, healthcheck.NewObservation(
			"chain backend",
			func() error {
				ctx, cancel := context.WithTimeout(
					context.Background(), chainCheck.Timeout,
				)
				defer cancel()

				return pinger.Ping(ctx)
			},
			chainCheck.Interval, chainCheck.Timeout,
			chainCheck.Backoff, chainCheck.Attempts,
		))
	}

	monitor := healthcheck.NewMonitor(&healthcheck.Config{
		Checks:   checks,
		Shutdown: tchkLog.Criticalf,
	})
	if err := monitor.Start(); err != nil {
		return fmt.Errorf("unable to start health monitor: %w", err)
	}
	defer func() {
		if err := monitor.Stop(); err != nil {
			tchkLog.Errorf("Unable to stop health monitor: %v", err)
		}
	}()

	server, err := checkrpc.New(&checkrpc.Config{
		Verifier:     v,
		Pinger:       pinger,
		Metrics:      metrics.Handler(),
		MaxBatchSize: cfg.RPC.MaxBatchSize,
		AllowOrigins: cfg.RPC.AllowOrigins,
	})
	if err != nil {
		return err
	}
	server.Start(cfg.RPC.Listen, func(err error) {
		tchkLog.Criticalf("HTTP server stopped: %v", err)
	})

	tchkLog.Infof("Verifying bundles with %s", source.Name())

	<-interceptor.ShutdownChannel()

	ctx, cancel := context.WithTimeout(
		context.Background(), shutdownTimeout,
	)
	defer cancel()

	return server.Stop(ctx)
}
