package presence

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pot-code/course-gate/internal/infrastructure/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func TestHeartbeat_BeatAndExpire(t *testing.T) {
	ctx := context.Background()
	clk := &clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	kv := driver.NewMemoryKV().WithClock(clk.Now)
	hb := NewHeartbeat(kv, 0, time.Minute)
	hb.Now = clk.Now

	online, err := hb.Online(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, online)

	require.NoError(t, hb.Beat(ctx, "u1"))
	online, err = hb.Online(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, online)

	seen, err := hb.LastSeen(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, seen.Equal(clk.now))

	clk.now = clk.now.Add(61 * time.Second)
	online, err = hb.Online(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, online)

	seen, err = hb.LastSeen(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, seen.IsZero())
}

func TestNewHeartbeat_Defaults(t *testing.T) {
	hb := NewHeartbeat(driver.NewMemoryKV(), 0, -1)
	assert.Equal(t, DefaultInterval, hb.Interval)
	assert.Equal(t, DefaultTTL, hb.TTL)
}

type countingKV struct {
	*driver.MemoryKV
	beats int32
}

func (c *countingKV) SetEX(ctx context.Context, key string, value string, expiration time.Duration) error {
	atomic.AddInt32(&c.beats, 1)
	return c.MemoryKV.SetEX(ctx, key, value, expiration)
}

func TestHeartbeat_Run(t *testing.T) {
	kv := &countingKV{MemoryKV: driver.NewMemoryKV()}
	hb := NewHeartbeat(kv, 10*time.Millisecond, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hb.Run(ctx, "u1")
		close(done)
	}()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&kv.beats) >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	online, err := hb.Online(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, online)
}
