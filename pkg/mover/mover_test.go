package mover

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mozilla-services/antenna/pkg/crashreport"
	"github.com/mozilla-services/antenna/pkg/publish"
	"github.com/mozilla-services/antenna/pkg/storage"
	"github.com/mozilla-services/antenna/pkg/throttler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	outcomes []storage.Outcome
	calls    atomic.Int32
	saved    atomic.Bool
}

func (f *fakeStore) Name() string { return "fake" }
func (f *fakeStore) Save(context.Context, *crashreport.Report) storage.Outcome {
	i := int(f.calls.Add(1)) - 1
	if i >= len(f.outcomes) {
		f.saved.Store(true)
		return storage.OK
	}
	o := f.outcomes[i]
	if o == storage.OK {
		f.saved.Store(true)
	}
	return o
}
func (f *fakeStore) Verify(context.Context) error { return nil }

type fakePublisher struct {
	outcomes []publish.Outcome
	calls    atomic.Int32
}

func (f *fakePublisher) Name() string { return "fake" }
func (f *fakePublisher) Publish(context.Context, string) publish.Outcome {
	i := int(f.calls.Add(1)) - 1
	if i >= len(f.outcomes) {
		return publish.OK
	}
	return f.outcomes[i]
}
func (f *fakePublisher) Verify(context.Context) error { return nil }

func noWaitBackOff() func() backoff.BackOff {
	return func() backoff.BackOff {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = 0
		eb.MaxElapsedTime = 0
		eb.RandomizationFactor = 0
		return eb
	}
}

func newTestReport(verdict throttler.Verdict) *crashreport.Report {
	r := crashreport.New(time.Now())
	r.ID = "test-id"
	r.Verdict = string(verdict)
	return r
}

func TestEnqueueAndProcessAcceptSavesAndPublishes(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	m := New(Config{Workers: 1, QueueCapacity: 1}, store, pub, nil)
	m.newBackOff = noWaitBackOff()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	assert.True(t, m.Enqueue(ctx, newTestReport(throttler.Accept)))

	require.Eventually(t, func() bool { return store.calls.Load() == 1 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return pub.calls.Load() == 1 }, time.Second, time.Millisecond)
}

func TestDeferVerdictSkipsPublish(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	m := New(Config{Workers: 1, QueueCapacity: 1}, store, pub, nil)
	m.newBackOff = noWaitBackOff()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	assert.True(t, m.Enqueue(ctx, newTestReport(throttler.Defer)))
	require.Eventually(t, func() bool { return store.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), pub.calls.Load())
}

func TestFakeAcceptIsDiscardedWithoutSaveOrPublish(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	m := New(Config{Workers: 1, QueueCapacity: 1}, store, pub, nil)
	m.newBackOff = noWaitBackOff()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	assert.True(t, m.Enqueue(ctx, newTestReport(throttler.FakeAccept)))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), store.calls.Load())
	assert.Equal(t, int32(0), pub.calls.Load())
}

func TestTransientSaveErrorRetriesThenSucceeds(t *testing.T) {
	store := &fakeStore{outcomes: []storage.Outcome{storage.TransientError, storage.TransientError, storage.OK}}
	pub := &fakePublisher{}
	m := New(Config{Workers: 1, QueueCapacity: 1, MaxRetries: 5}, store, pub, nil)
	m.newBackOff = noWaitBackOff()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	assert.True(t, m.Enqueue(ctx, newTestReport(throttler.Accept)))
	require.Eventually(t, func() bool { return store.saved.Load() }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return pub.calls.Load() == 1 }, time.Second, time.Millisecond)
}

func TestPermanentSaveErrorDropsWithoutPublish(t *testing.T) {
	store := &fakeStore{outcomes: []storage.Outcome{storage.PermanentError}}
	pub := &fakePublisher{}
	var dropped atomic.Int32
	metrics := &countingMetrics{saveCrashDropped: &dropped}
	m := New(Config{Workers: 1, QueueCapacity: 1}, store, pub, metrics)
	m.newBackOff = noWaitBackOff()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	assert.True(t, m.Enqueue(ctx, newTestReport(throttler.Accept)))
	require.Eventually(t, func() bool { return dropped.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), pub.calls.Load())
}

func TestRetriesExhaustedDropsSave(t *testing.T) {
	outcomes := make([]storage.Outcome, 10)
	for i := range outcomes {
		outcomes[i] = storage.TransientError
	}
	store := &fakeStore{outcomes: outcomes}
	pub := &fakePublisher{}
	var dropped atomic.Int32
	metrics := &countingMetrics{saveCrashDropped: &dropped}
	m := New(Config{Workers: 1, QueueCapacity: 1, MaxRetries: 2}, store, pub, metrics)
	m.newBackOff = noWaitBackOff()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	assert.True(t, m.Enqueue(ctx, newTestReport(throttler.Accept)))
	require.Eventually(t, func() bool { return dropped.Load() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, int32(3), store.calls.Load()) // 1 initial + 2 retries
}

func TestShutdownDrainsQueue(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	m := New(Config{Workers: 2, QueueCapacity: 4}, store, pub, nil)
	m.newBackOff = noWaitBackOff()

	ctx := context.Background()
	m.Start(ctx)

	for i := 0; i < 4; i++ {
		assert.True(t, m.Enqueue(ctx, newTestReport(throttler.Accept)))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.Shutdown(shutdownCtx))
	assert.Equal(t, int32(4), store.calls.Load())
}

type countingMetrics struct {
	saveCrashDropped    *atomic.Int32
	publishCrashDropped *atomic.Int32
}

func (c *countingMetrics) SaveCrashDropped() {
	if c.saveCrashDropped != nil {
		c.saveCrashDropped.Add(1)
	}
}
func (c *countingMetrics) PublishCrashDropped() {
	if c.publishCrashDropped != nil {
		c.publishCrashDropped.Add(1)
	}
}
func (c *countingMetrics) SaveDuration(time.Duration)    {}
func (c *countingMetrics) PublishDuration(time.Duration) {}
func (c *countingMetrics) TotalDuration(time.Duration)   {}
func (c *countingMetrics) QueueDepth(int)                {}
