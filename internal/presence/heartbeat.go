// Package presence tracks which learners are currently online.
//
// It only shares the user id with the progress store, nothing else.
package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/pot-code/course-gate/internal/infrastructure/driver"
	"github.com/pot-code/course-gate/internal/infrastructure/logging"
	"go.uber.org/zap"
)

// default timings
const (
	DefaultInterval = time.Minute
	DefaultTTL      = 2 * time.Minute
)

// Heartbeat liveness keys heartbeat:<userID> that expire unless refreshed
type Heartbeat struct {
	KV       driver.KeyValueDB
	Interval time.Duration
	TTL      time.Duration
	Now      func() time.Time
}

// NewHeartbeat zero durations fall back to the defaults
func NewHeartbeat(KV driver.KeyValueDB, interval, ttl time.Duration) *Heartbeat {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Heartbeat{KV: KV, Interval: interval, TTL: ttl, Now: time.Now}
}

func heartbeatKey(userID string) string {
	return fmt.Sprintf("heartbeat:%s", userID)
}

// Beat mark userID online for TTL
func (hb *Heartbeat) Beat(ctx context.Context, userID string) error {
	return hb.KV.SetEX(ctx, heartbeatKey(userID), hb.Now().UTC().Format(time.RFC3339), hb.TTL)
}

// Online whether userID sent a beat within TTL
func (hb *Heartbeat) Online(ctx context.Context, userID string) (bool, error) {
	return hb.KV.Exists(ctx, heartbeatKey(userID))
}

// LastSeen time of the last beat, zero time when offline
func (hb *Heartbeat) LastSeen(ctx context.Context, userID string) (time.Time, error) {
	value, err := hb.KV.Get(ctx, heartbeatKey(userID))
	if err == driver.ErrKeyNotFound {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, value)
}

// Run beat immediately, then every Interval until ctx is done.
// Failed beats are logged and retried on the next tick.
func (hb *Heartbeat) Run(ctx context.Context, userID string) {
	logger := logging.ExtractLoggerFromContext(ctx)
	beat := func() {
		if err := hb.Beat(ctx, userID); err != nil && ctx.Err() == nil {
			logger.Warn("Heartbeat failed", zap.String("user.id", userID), zap.Error(err))
		}
	}

	beat()
	ticker := time.NewTicker(hb.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			beat()
		}
	}
}
