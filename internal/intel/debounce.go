package intel

import (
	"sync"
	"time"
)

// debouncer coalesces bursts of triggers per key into one callback
// after a quiet period. Retriggering a key replaces its timer, so a
// steady keystroke stream fires once at the end of the burst.
type debouncer struct {
	delay time.Duration
	fn    func(key string)

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(delay time.Duration, fn func(key string)) *debouncer {
	return &debouncer{
		delay:  delay,
		fn:     fn,
		timers: make(map[string]*time.Timer),
	}
}

func (d *debouncer) trigger(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if prev, ok := d.timers[key]; ok && prev.Stop() {
		d.wg.Done()
	}

	d.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.mu.Lock()
		// A fired timer may have been superseded while this callback
		// waited for the lock; only the current one runs.
		if d.stopped || d.timers[key] != t {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		d.mu.Unlock()
		d.fn(key)
	})
	d.timers[key] = t
}

// cancel drops a pending trigger for one key.
func (d *debouncer) cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if timer, ok := d.timers[key]; ok {
		if timer.Stop() {
			d.wg.Done()
		}
		delete(d.timers, key)
	}
}

// stop cancels all pending triggers and waits for in-flight callbacks.
func (d *debouncer) stop() {
	d.mu.Lock()
	d.stopped = true
	for key, timer := range d.timers {
		if timer.Stop() {
			d.wg.Done()
		}
		delete(d.timers, key)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
