package database

import (
	"errors"
	"testing"
	"time"
)

// flakyCloser fails a configured number of close attempts before
// succeeding. Failures are either synchronous (returned) or asynchronous
// (published on the manager's fault feed after Close returns nil).
type flakyCloser struct {
	mgr      *Manager
	failures int
	async    bool
	attempts int
}

func (c *flakyCloser) Close() error {
	c.attempts++
	if c.attempts <= c.failures {
		if c.async {
			// Surface the failure out-of-band, after Close has returned,
			// the way a pool's background teardown fails.
			go func() {
				time.Sleep(5 * time.Millisecond)
				c.mgr.ReportFault(errors.New("async teardown failed"))
			}()
			return nil
		}
		return errors.New("close failed")
	}
	return nil
}

// TestClose verifies the shutdown retry loop.
func TestClose(t *testing.T) {
	t.Run("never connected", func(t *testing.T) {
		m := newTestManager(t, nil)

		if err := m.Close(); err != nil {
			t.Errorf("Close() before Connect error = %v", err)
		}
	})

	t.Run("clean close", func(t *testing.T) {
		m := connectTestManager(t, nil)

		if err := m.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
		if m.Handle() != nil {
			t.Error("Handle() non-nil after Close()")
		}
	})

	t.Run("idempotent when already closed", func(t *testing.T) {
		m := connectTestManager(t, nil)

		if err := m.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if err := m.Close(); err != nil {
			t.Errorf("second Close() error = %v", err)
		}
	})

	t.Run("retries after synchronous failure", func(t *testing.T) {
		m := newTestManager(t, nil)
		c := &flakyCloser{mgr: m, failures: 1}
		m.closer = c

		if err := m.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if c.attempts != 2 {
			t.Errorf("close attempts = %d, want 2 (one failure, one success)", c.attempts)
		}
	})

	t.Run("retries after asynchronous failure", func(t *testing.T) {
		m := newTestManager(t, nil)
		m.settle = 50 * time.Millisecond
		c := &flakyCloser{mgr: m, failures: 1, async: true}
		m.closer = c

		if err := m.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if c.attempts != 2 {
			t.Errorf("close attempts = %d, want 2 (async failure then success)", c.attempts)
		}
	})

	t.Run("retries until success", func(t *testing.T) {
		m := newTestManager(t, nil)
		m.settle = 20 * time.Millisecond
		c := &flakyCloser{mgr: m, failures: 3, async: true}
		m.closer = c

		if err := m.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if c.attempts != 4 {
			t.Errorf("close attempts = %d, want 4", c.attempts)
		}
	})
}

// TestFaultFeed verifies the broadcast channel semantics.
func TestFaultFeed(t *testing.T) {
	t.Run("delivers to subscriber", func(t *testing.T) {
		feed := newFaultFeed()
		ch, cancel := feed.subscribe()
		defer cancel()

		feed.publish(errors.New("boom"))

		select {
		case err := <-ch:
			if err == nil {
				t.Error("received nil fault")
			}
		default:
			t.Error("fault not delivered")
		}
	})

	t.Run("unsubscribed channel receives nothing", func(t *testing.T) {
		feed := newFaultFeed()
		ch, cancel := feed.subscribe()
		cancel()

		feed.publish(errors.New("boom"))

		select {
		case <-ch:
			t.Error("received fault after unsubscribe")
		default:
		}
	})

	t.Run("publish never blocks", func(t *testing.T) {
		feed := newFaultFeed()
		_, cancel := feed.subscribe()
		defer cancel()

		// Flood well past the buffer size; publish must drop, not block.
		for i := 0; i < 100; i++ {
			feed.publish(errors.New("boom"))
		}
	})
}
