// Package health reports whether the server can reach its database.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mjpitz/go-gracefully/check"
	"github.com/mjpitz/go-gracefully/health"
	"github.com/mjpitz/go-gracefully/state"
)

// Pinger is the part of the store the checks need.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checks returns the periodic checks run by the monitor.
func Checks(db Pinger, interval time.Duration) []check.Check {
	return []check.Check{
		&check.Periodic{
			Metadata: check.Metadata{
				Name:   "database",
				Weight: 10,
			},
			Interval: interval,
			Timeout:  interval * 3,
			RunFunc:  pingFunc(db),
		},
	}
}

func pingFunc(db Pinger) func(ctx context.Context) (state.State, error) {
	return func(ctx context.Context) (state.State, error) {
		if err := db.Ping(ctx); err != nil {
			return state.Outage, err
		}
		return state.OK, nil
	}
}

// Register starts a monitor over checks and serves its report on /healthz.
// Overall state changes are logged until ctx is done.
func Register(ctx context.Context, mux *http.ServeMux, checks []check.Check) error {
	monitor := health.NewMonitor(checks...)
	reports, unsubscribe := monitor.Subscribe()

	go func() {
		defer unsubscribe()

		var last state.State
		seen := false
		for {
			select {
			case <-ctx.Done():
				return
			case report := <-reports:
				if report.Check != nil || (seen && report.Result.State == last) {
					continue
				}
				last, seen = report.Result.State, true
				if last == state.Outage {
					slog.Error("Health check failing", "state", last)
				} else {
					slog.Info("Health state changed", "state", last)
				}
			}
		}
	}()

	mux.HandleFunc("/healthz", health.HandlerFunc(monitor))
	return monitor.Start(ctx)
}
