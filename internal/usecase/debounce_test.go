package usecase

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncerBurstFiresOnce(t *testing.T) {
	clock := &fakeClock{}
	d := NewDebouncer(2*time.Second, clock.AfterFunc)

	var calls int32
	fn := func() { atomic.AddInt32(&calls, 1) }

	d.Trigger(fn)
	clock.Advance(500 * time.Millisecond)
	d.Trigger(fn)
	clock.Advance(500 * time.Millisecond)
	d.Trigger(fn)

	clock.Advance(1999 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	assert.True(t, d.Pending())

	clock.Advance(time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.False(t, d.Pending())

	clock.Advance(10 * time.Second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDebouncerCancel(t *testing.T) {
	clock := &fakeClock{}
	d := NewDebouncer(time.Second, clock.AfterFunc)

	assert.False(t, d.Cancel())

	var calls int32
	d.Trigger(func() { atomic.AddInt32(&calls, 1) })
	assert.True(t, d.Cancel())
	assert.False(t, d.Pending())

	clock.Advance(5 * time.Second)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

// TestDebouncerStaleCallback - callback de um timer já substituído é ignorado
func TestDebouncerStaleCallback(t *testing.T) {
	clock := &fakeClock{}
	d := NewDebouncer(time.Second, clock.AfterFunc)

	var first, second int32
	d.Trigger(func() { atomic.AddInt32(&first, 1) })
	stale := clock.timers[0]
	d.Trigger(func() { atomic.AddInt32(&second, 1) })

	// simula o timer antigo disparando em paralelo ao Stop
	stale.fn()
	assert.Equal(t, int32(0), atomic.LoadInt32(&first))
	assert.True(t, d.Pending())

	clock.Advance(time.Second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&second))
}

func TestDebouncerRealTimer(t *testing.T) {
	d := NewDebouncer(10*time.Millisecond, nil)

	done := make(chan struct{})
	d.Trigger(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced function did not run")
	}
}
