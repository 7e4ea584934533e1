package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// testLogger implements Logger for testing
type testLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *testLogger) Debug(msg string, keysAndValues ...any) { l.add("DEBUG", msg, keysAndValues) }
func (l *testLogger) Info(msg string, keysAndValues ...any)  { l.add("INFO", msg, keysAndValues) }
func (l *testLogger) Error(msg string, keysAndValues ...any) { l.add("ERROR", msg, keysAndValues) }

func (l *testLogger) add(level, msg string, kv []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("%s: %s %v", level, msg, kv))
}

func (l *testLogger) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *testLogger) {
	logger := &testLogger{}
	d, err := New(logger)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d, logger
}

func TestDispatcher_SyncHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var got Job
	d.Register("beatmap", func(ctx context.Context, j Job) error {
		got = j
		return nil
	})

	require.NoError(t, d.Dispatch(context.Background(), Job{Kind: "beatmap", Path: "a.osu"}))
	assert.Equal(t, "a.osu", got.Path)
	assert.False(t, got.Timestamp.IsZero(), "timestamp is filled in")
}

func TestDispatcher_SyncHandlerError(t *testing.T) {
	d, _ := newTestDispatcher(t)
	d.Register("beatmap", func(ctx context.Context, j Job) error { return errors.New("bad file") })

	assert.EqualError(t, d.Dispatch(context.Background(), Job{Kind: "beatmap"}), "bad file")
}

func TestDispatcher_UnknownKind(t *testing.T) {
	d, _ := newTestDispatcher(t)
	assert.EqualError(t, d.Dispatch(context.Background(), Job{Kind: "skin"}), "unknown kind: skin")
}

func TestDispatcher_BufferedWorkers(t *testing.T) {
	tests := []struct {
		name    string
		workers int
	}{
		{"single worker", 1},
		{"pool", 4},
		{"non-positive means one", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newTestDispatcher(t)

			var processed atomic.Int32
			d.Register("score", func(ctx context.Context, j Job) error {
				processed.Add(1)
				return nil
			}, Buffered(100), Workers(tt.workers))

			for i := 0; i < 20; i++ {
				require.NoError(t, d.Dispatch(context.Background(), Job{Kind: "score"}))
			}
			require.NoError(t, d.Close())
			assert.Equal(t, int32(20), processed.Load())
		})
	}
}

func TestDispatcher_WorkersRunConcurrently(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var running, peak atomic.Int32
	release := make(chan struct{})
	d.Register("beatmap", func(ctx context.Context, j Job) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-release
		running.Add(-1)
		return nil
	}, Buffered(10), Workers(3))

	for i := 0; i < 3; i++ {
		require.NoError(t, d.Dispatch(context.Background(), Job{Kind: "beatmap"}))
	}
	assert.Eventually(t, func() bool { return peak.Load() == 3 }, time.Second, 5*time.Millisecond)
	close(release)
	require.NoError(t, d.Close())
}

func TestDispatcher_BufferedDropsWhenFull(t *testing.T) {
	d, _ := newTestDispatcher(t)

	started := make(chan struct{}, 10)
	block := make(chan struct{})
	d.Register("beatmap", func(ctx context.Context, j Job) error {
		started <- struct{}{}
		<-block
		return nil
	}, Buffered(2))

	ctx := context.Background()
	require.NoError(t, d.Dispatch(ctx, Job{Kind: "beatmap"}))
	<-started
	require.NoError(t, d.Dispatch(ctx, Job{Kind: "beatmap"}))
	require.NoError(t, d.Dispatch(ctx, Job{Kind: "beatmap"}))

	err := d.Dispatch(ctx, Job{Kind: "beatmap"})
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.EqualError(t, err, "queue full: beatmap")

	close(block)
	require.NoError(t, d.Close())
}

func TestDispatcher_BufferedBlocking(t *testing.T) {
	d, _ := newTestDispatcher(t)

	started := make(chan struct{}, 10)
	block := make(chan struct{})
	d.Register("beatmap", func(ctx context.Context, j Job) error {
		started <- struct{}{}
		<-block
		return nil
	}, Buffered(1), Blocking())

	ctx := context.Background()
	require.NoError(t, d.Dispatch(ctx, Job{Kind: "beatmap"}))
	<-started
	require.NoError(t, d.Dispatch(ctx, Job{Kind: "beatmap"}))

	done := make(chan error, 1)
	go func() { done <- d.Dispatch(ctx, Job{Kind: "beatmap"}) }()

	select {
	case <-done:
		t.Fatal("dispatch should have blocked")
	case <-time.After(50 * time.Millisecond):
	}

	close(block)
	assert.NoError(t, <-done)
	require.NoError(t, d.Close())
}

func TestDispatcher_BlockingHonoursContext(t *testing.T) {
	d, _ := newTestDispatcher(t)

	started := make(chan struct{}, 10)
	block := make(chan struct{})
	d.Register("beatmap", func(ctx context.Context, j Job) error {
		started <- struct{}{}
		<-block
		return nil
	}, Buffered(1), Blocking())

	require.NoError(t, d.Dispatch(context.Background(), Job{Kind: "beatmap"}))
	<-started
	require.NoError(t, d.Dispatch(context.Background(), Job{Kind: "beatmap"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Dispatch(ctx, Job{Kind: "beatmap"}), context.DeadlineExceeded)

	close(block)
	require.NoError(t, d.Close())
}

func TestDispatcher_CancelledJobsAreSkipped(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var processed atomic.Int32
	d.Register("score", func(ctx context.Context, j Job) error {
		processed.Add(1)
		return nil
	}, Buffered(10))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, d.Dispatch(ctx, Job{Kind: "score"}))
	require.NoError(t, d.Close())
	assert.Zero(t, processed.Load())
}

func TestDispatcher_Close(t *testing.T) {
	d, _ := newTestDispatcher(t)
	d.Register("score", func(ctx context.Context, j Job) error { return nil }, Buffered(1))

	require.NoError(t, d.Close())
	require.NoError(t, d.Close(), "second close is a no-op")
	assert.ErrorIs(t, d.Dispatch(context.Background(), Job{Kind: "score"}), ErrClosed)
}

func TestDispatcher_Logged(t *testing.T) {
	tests := []struct {
		name    string
		handler HandlerFunc
		opts    []Option
		check   func(t *testing.T, messages []string)
	}{
		{"success", func(ctx context.Context, j Job) error { return nil }, nil, func(t *testing.T, messages []string) {
			require.Len(t, messages, 2)
			assert.True(t, strings.HasPrefix(messages[0], "DEBUG: handling job"))
			assert.True(t, strings.HasPrefix(messages[1], "DEBUG: job complete"))
		}},
		{"failure", func(ctx context.Context, j Job) error { return errors.New("boom") }, nil, func(t *testing.T, messages []string) {
			require.Len(t, messages, 2)
			assert.True(t, strings.HasPrefix(messages[1], "ERROR: job failed"))
			assert.Contains(t, messages[1], "boom")
		}},
		{"buffered logs processing", func(ctx context.Context, j Job) error { return nil }, []Option{Buffered(5)}, func(t *testing.T, messages []string) {
			require.Len(t, messages, 2)
			assert.Contains(t, messages[0], "x.osr")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, logger := newTestDispatcher(t)
			d.Register("score", tt.handler, append(tt.opts, Logged())...)
			_ = d.Dispatch(context.Background(), Job{Kind: "score", Path: "x.osr"})
			require.NoError(t, d.Close())
			tt.check(t, logger.snapshot())
		})
	}
}

func TestDispatcher_HasHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)
	d.Register("beatmap", func(ctx context.Context, j Job) error { return nil })

	assert.True(t, d.HasHandler("beatmap"))
	assert.False(t, d.HasHandler("storyboard"))
}

func TestDispatcher_Metrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { provider = nil })

	d, _ := newTestDispatcher(t)
	d.Register("beatmap", func(ctx context.Context, j Job) error {
		if j.Path == "bad.osu" {
			return errors.New("bad")
		}
		return nil
	}, Buffered(10), Workers(2))

	for _, p := range []string{"a.osu", "bad.osu", "b.osu"} {
		require.NoError(t, d.Dispatch(context.Background(), Job{Kind: "beatmap", Path: p}))
	}
	require.NoError(t, d.Close())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if s, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range s.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(3), sums["dispatcher.jobs.processed"])
	assert.Equal(t, int64(1), sums["dispatcher.jobs.failed"])
}
