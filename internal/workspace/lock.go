package workspace

import "sync/atomic"

// indexLock provides non-blocking lock semantics using atomic operations.
// It keeps two directory passes from running at once.
type indexLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire attempts to acquire the lock without blocking
func (l *indexLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release releases the lock.
// Must only be called by the goroutine that acquired it.
func (l *indexLock) Release() {
	l.state.Store(0)
}

// Held reports whether a pass is running
func (l *indexLock) Held() bool {
	return l.state.Load() == 1
}
