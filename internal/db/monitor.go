package db

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Pinger is the part of *sql.DB the monitor needs.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Monitor tracks database reachability for the health endpoint.
type Monitor struct {
	healthy atomic.Bool
}

// Healthy reports the result of the latest ping.
func (m *Monitor) Healthy() bool {
	return m.healthy.Load()
}

// StartMonitor pings db every interval until ctx is done and logs changes in reachability.
// The returned monitor starts healthy, since InitPostgres has just pinged successfully.
func StartMonitor(ctx context.Context, db Pinger, interval time.Duration, log *zap.Logger) *Monitor {
	m := &Monitor{}
	m.healthy.Store(true)

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.check(ctx, db, interval, log)
			}
		}
	}()
	return m
}

func (m *Monitor) check(ctx context.Context, db Pinger, timeout time.Duration, log *zap.Logger) {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := db.PingContext(pingCtx)
	was := m.healthy.Swap(err == nil)
	switch {
	case err != nil && was:
		log.Error("database unreachable", zap.Error(err))
	case err == nil && !was:
		log.Info("database reachable again")
	}
}
