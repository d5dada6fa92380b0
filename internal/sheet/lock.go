package sheet

// fairMutex is a channel-based mutex. Goroutines blocked sending on a full
// channel are queued and woken in approximate arrival order by the runtime,
// which gives every waiter a bounded wait: a burst of writers cannot starve a
// blocked reader. sync.Mutex only degrades to a fair handoff under sustained
// contention; here fairness is the point, so the channel form is used
// unconditionally.
//
// The mutex is not reentrant. A single logical operation that needs several
// locked primitives acquires the lock once at its public entry point and calls
// unexported ...Locked helpers underneath.
type fairMutex struct {
	ch chan struct{}
}

func newFairMutex() *fairMutex {
	return &fairMutex{ch: make(chan struct{}, 1)}
}

func (m *fairMutex) Lock() {
	m.ch <- struct{}{}
}

// Unlock panics if the mutex is not held. A broken lock discipline here is an
// unrecoverable invariant violation, not a handled error.
func (m *fairMutex) Unlock() {
	select {
	case <-m.ch:
	default:
		panic("sheet: unlock of unlocked fairMutex")
	}
}
