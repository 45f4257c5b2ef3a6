package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/thermo/internal/metrics"
	"github.com/san-kum/thermo/internal/thermo"
)

// serveMetrics exposes the session's exporter until stop is called or ctx
// ends.
func serveMetrics(ctx context.Context, sess *session, addr string, logger thermo.Logger) (stop func(), err error) {
	exporter := metrics.NewExporter(driftColumn)
	sess.thermo.AddObserver(exporter)
	sess.loop.AddObserver(exporter)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		exporter,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logf("WARNING: metrics server: %v", err)
		}
	}()
	logger.Logf("serving metrics on http://%s/metrics", ln.Addr())

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}, nil
}
