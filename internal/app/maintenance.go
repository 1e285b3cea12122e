package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/llehouerou/wavecore/internal/errmsg"
)

// sweepLoop removes expired cache entries every interval until ctx is done.
func (a *App) sweepLoop(ctx context.Context, interval time.Duration) {
	logger := a.logger("sweepLoop")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.Cache.SweepExpired(ctx); err != nil && ctx.Err() == nil {
				logger.Warn(errmsg.Format(errmsg.OpCacheSweep, err))
			}
		}
	}
}

// serveMetrics exposes the registry on addr under /metrics. The listener is
// bound before returning so address errors surface to the caller.
func (a *App) serveMetrics(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{Registry: a.Registry}))
	a.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	a.metricsAddr = ln.Addr().String()

	logger := a.logger("serveMetrics")
	logger.Infof("serving metrics at %s", ln.Addr())
	a.workers.Go(func() {
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("metrics server stopped")
		}
	})
	return nil
}

// MetricsAddr returns the bound metrics address, or "" when not serving.
func (a *App) MetricsAddr() string {
	return a.metricsAddr
}
