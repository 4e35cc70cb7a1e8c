package sim

import (
	"container/heap"
	"sync"
)

// A timedWait is one pending timed wake-up.
type timedWait struct {
	at   VTimeInFs
	proc *Process
}

// A waitQueue is a thread-safe queue of timed wake-ups ordered by time.
type waitQueue struct {
	sync.Mutex
	waits waitHeap
}

func newWaitQueue() *waitQueue {
	q := &waitQueue{}
	heap.Init(&q.waits)
	return q
}

// Push adds a wait to the queue.
func (q *waitQueue) Push(w timedWait) {
	q.Lock()
	heap.Push(&q.waits, w)
	q.Unlock()
}

// Pop returns the earliest wait.
func (q *waitQueue) Pop() timedWait {
	q.Lock()
	w := heap.Pop(&q.waits).(timedWait)
	q.Unlock()
	return w
}

// Peek returns the earliest wait without removing it.
func (q *waitQueue) Peek() timedWait {
	q.Lock()
	w := q.waits[0]
	q.Unlock()
	return w
}

// Len returns the number of pending waits.
func (q *waitQueue) Len() int {
	q.Lock()
	l := q.waits.Len()
	q.Unlock()
	return l
}

type waitHeap []timedWait

func (h waitHeap) Len() int {
	return len(h)
}

func (h waitHeap) Less(i, j int) bool {
	return h[i].at < h[j].at
}

func (h waitHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *waitHeap) Push(x any) {
	*h = append(*h, x.(timedWait))
}

func (h *waitHeap) Pop() any {
	old := *h
	n := len(old)
	w := old[n-1]
	*h = old[:n-1]
	return w
}
