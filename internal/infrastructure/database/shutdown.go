package database

import (
	"sync"
	"time"
)

// closer is the pool's close primitive. Split into an interface so the
// shutdown tests can inject a double that fails asynchronously.
type closer interface {
	Close() error
}

// faultFeed broadcasts asynchronous pool failures to subscribers.
//
// Some pool implementations fail after Close has already returned, with
// no structured-error path back to the caller. Instead of a process-wide
// catch-all, the feed gives the shutdown loop an explicit out-of-band
// channel to watch for the duration of each close attempt.
type faultFeed struct {
	mu   sync.Mutex
	subs map[int]chan error
	next int
}

func newFaultFeed() *faultFeed {
	return &faultFeed{subs: make(map[int]chan error)}
}

// subscribe registers a listener. The returned cancel func must be called
// to unsubscribe; the channel is buffered so publishers never block.
func (f *faultFeed) subscribe() (<-chan error, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.next
	f.next++
	ch := make(chan error, 8)
	f.subs[id] = ch

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
	return ch, cancel
}

// publish delivers a fault to every subscriber without blocking.
// A subscriber with a full buffer misses the fault; the close loop only
// needs one fault per attempt to decide to retry, so this never loses
// a retry decision.
func (f *faultFeed) publish(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, ch := range f.subs {
		select {
		case ch <- err:
		default:
		}
	}
}

// ReportFault records an asynchronous pool failure. Driver-level error
// hooks call this; a fault arriving during a close attempt's settle
// window marks that attempt failed and triggers a retry.
func (m *Manager) ReportFault(err error) {
	m.log.Warn("asynchronous database fault reported", "error", err)
	m.faults.publish(err)
}

// Close drains and closes the connection pool, retrying until a clean
// close is confirmed. This is the terminal state of the process's
// database lifecycle; only the shutdown path may call it.
//
// The pool's close primitive can fail after returning, surfacing only on
// the fault feed. Each attempt therefore: discards faults left over from
// the previous attempt, invokes the close primitive, then waits the
// settle interval watching the feed. A quiet interval confirms the close;
// a fault (or a synchronous close error) logs and retries the whole
// attempt. The subscription is removed once closed.
//
// Idempotent when already closed: the pool's close primitive returns
// immediately and the settle window passes clean.
func (m *Manager) Close() error {
	if m.closer == nil {
		return nil // Never connected
	}

	faults, cancel := m.faults.subscribe()
	defer cancel()

	for attempt := 1; ; attempt++ {
		// Reset the attempt state: stale faults belong to earlier attempts.
		drain(faults)

		if err := m.closer.Close(); err != nil {
			m.log.Warn("pool close attempt failed, retrying",
				"attempt", attempt, "error", err)
			time.Sleep(m.settle)
			continue
		}

		// Wait for any asynchronous failure to surface. Empirically a
		// couple of seconds is enough for the pool implementations seen
		// in production.
		timer := time.NewTimer(m.settle)
		select {
		case err := <-faults:
			timer.Stop()
			m.log.Warn("pool close failed asynchronously, retrying",
				"attempt", attempt, "error", err)
			continue
		case <-timer.C:
		}

		m.log.Info("database pool closed", "attempts", attempt)
		m.pool = nil
		return nil
	}
}

// drain discards any buffered faults from previous attempts.
func drain(ch <-chan error) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
