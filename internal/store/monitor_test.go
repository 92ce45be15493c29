package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakePinger struct {
	err   error
	calls int
}

func (f *fakePinger) Ping(ctx context.Context) error {
	f.calls++
	return f.err
}

func TestMonitor_TracksPingResult(t *testing.T) {
	p := &fakePinger{err: errors.New("connection refused")}
	m := NewMonitor(p, time.Second, time.Second, nil)

	assert.False(t, m.Ready(), "not ready before the first check")
	assert.False(t, m.Check(context.Background()))
	assert.False(t, m.Ready())

	p.err = nil
	assert.True(t, m.Check(context.Background()))
	assert.True(t, m.Ready())

	p.err = errors.New("gone")
	m.Check(context.Background())
	assert.False(t, m.Ready())
}

func TestMonitor_OnReadyRunsOnceAndGatesReadiness(t *testing.T) {
	p := &fakePinger{}
	runs := 0
	fail := true
	m := NewMonitor(p, time.Second, time.Second, func(context.Context) error {
		runs++
		if fail {
			return errors.New("migration failed")
		}
		return nil
	})

	assert.False(t, m.Check(context.Background()))
	assert.False(t, m.Ready())

	fail = false
	assert.True(t, m.Check(context.Background()))
	assert.True(t, m.Check(context.Background()))
	assert.Equal(t, 2, runs)
}

func TestMonitor_NilDatabaseIsNeverReady(t *testing.T) {
	m := NewMonitor(nil, time.Second, time.Second, nil)
	assert.False(t, m.Check(context.Background()))
	assert.False(t, m.Ready())
}

func TestMonitor_RunStopsOnCancel(t *testing.T) {
	p := &fakePinger{}
	m := NewMonitor(p, 10*time.Millisecond, time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, m.Ready, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}
