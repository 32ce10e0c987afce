package dispatcher

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/petermattis/goid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDrainRunsInFIFOOrder(t *testing.T) {
	d := New(quietLogger())

	var got []int
	for i := range 10 {
		d.Enqueue(func() { got = append(got, i) })
	}

	n, err := d.Drain()
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
	assert.Zero(t, d.Pending())
}

func TestEnqueueDoesNotRunInline(t *testing.T) {
	d := New(quietLogger())

	ran := false
	d.Enqueue(func() { ran = true })
	assert.False(t, ran)
	assert.Equal(t, 1, d.Pending())

	_, err := d.Drain()
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestConcurrentEnqueueKeepsEveryAction(t *testing.T) {
	d := New(quietLogger())

	const producers = 16
	const perProducer = 200

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := range producers {
		go func() {
			defer wg.Done()
			for i := range perProducer {
				d.Enqueue(func() { _ = p * i })
			}
		}()
	}
	wg.Wait()

	n, err := d.Drain()
	require.NoError(t, err)
	assert.Equal(t, producers*perProducer, n)
}

func TestPerProducerOrderIsPreserved(t *testing.T) {
	d := New(quietLogger())

	const producers = 8
	const perProducer = 100

	seen := make(map[int][]int)
	var wg sync.WaitGroup
	wg.Add(producers)
	for p := range producers {
		go func() {
			defer wg.Done()
			for i := range perProducer {
				d.Enqueue(func() { seen[p] = append(seen[p], i) })
			}
		}()
	}
	wg.Wait()

	_, err := d.Drain()
	require.NoError(t, err)
	for p := range producers {
		require.Len(t, seen[p], perProducer)
		for i, v := range seen[p] {
			assert.Equal(t, i, v)
		}
	}
}

func TestActionsRunOnDrainingGoroutine(t *testing.T) {
	d := New(quietLogger())
	d.BindMainThread()
	mainID := goid.Get()

	var wg sync.WaitGroup
	ids := make(chan int64, 4)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Enqueue(func() { ids <- goid.Get() })
		}()
	}
	wg.Wait()

	_, err := d.Drain()
	require.NoError(t, err)
	close(ids)
	for id := range ids {
		assert.Equal(t, mainID, id)
	}
}

func TestDrainOffMainThreadIsRejected(t *testing.T) {
	d := New(quietLogger())
	d.BindMainThread()
	assert.True(t, d.IsMainThread())

	ran := false
	d.Enqueue(func() { ran = true })

	errc := make(chan error, 1)
	go func() {
		_, err := d.Drain()
		errc <- err
	}()
	assert.ErrorIs(t, <-errc, ErrNotMainThread)
	assert.False(t, ran)
	assert.Equal(t, 1, d.Pending())

	_, err := d.Drain()
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestPanickingActionDoesNotAbortDrain(t *testing.T) {
	d := New(quietLogger())

	var got []string
	d.Enqueue(func() { panic("boom") })
	d.Enqueue(func() { got = append(got, "second") })
	d.Enqueue(func() { got = append(got, "third") })

	n, err := d.Drain()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"second", "third"}, got)
}

func TestEnqueueDuringDrainRunsNextTick(t *testing.T) {
	d := New(quietLogger())

	var got []string
	d.Enqueue(func() {
		got = append(got, "outer")
		d.Enqueue(func() { got = append(got, "inner") })
	})

	_, err := d.Drain()
	require.NoError(t, err)
	assert.Equal(t, []string{"outer"}, got)
	assert.Equal(t, 1, d.Pending())

	_, err = d.Drain()
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, got)
}

func TestNilActionIsSkipped(t *testing.T) {
	d := New(quietLogger())
	d.Enqueue(nil)

	n, err := d.Drain()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRunPumpsUntilCancelled(t *testing.T) {
	d := New(quietLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	d.Enqueue(func() { close(done) })

	errc := make(chan error, 1)
	go func() { errc <- d.Run(ctx, time.Millisecond) }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("action was never drained")
	}
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
}

func TestDefaultIsSingleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}
