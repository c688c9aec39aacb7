// Package concurrency holds small synchronization primitives shared by
// packages that need to bound fan-out without pulling in a scheduler.
package concurrency

// A Gate limits concurrency. Every gate has a maximum number of
// goroutines to allow through at a time. Goroutines enter the gate by
// calling Enter(), and signal that they are done by calling Leave().
//
// reconcile uses a Gate to bound concurrent digest computations while
// scanning bound directories for untracked files (status, and link's
// auto-track), the same role
// util/gate.go played bounding concurrent bundle writes in the teacher.
type Gate chan struct{}

// NewGate returns a Gate which accepts at most n entries at a time.
func NewGate(n int) Gate {
	return Gate(make(chan struct{}, n))
}

// Enter blocks the calling goroutine until there are fewer than n
// goroutines inside. Safe to call from multiple goroutines.
func (g Gate) Enter() {
	g <- struct{}{}
}

// Leave marks a goroutine outside the critical section. Every Enter
// must be balanced by a Leave, though not necessarily from the same
// goroutine.
func (g Gate) Leave() {
	<-g
}
