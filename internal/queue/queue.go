// Package queue provides the FIFOs used by the simulated Vinculum agent to
// model the controller's transmit and receive buffers.
package queue

// Queue is a FIFO of T.
type Queue[T any] interface {
	// Enqueue adds an item to the tail of the queue.
	Enqueue(T)
	// Dequeue removes and returns the head item. ok is false when empty.
	Dequeue() (item T, ok bool)
	// Peek returns the head item without removing it.
	Peek() (item T, ok bool)
	// Reset empties the queue.
	Reset()
	// IsEmpty returns true if the queue is empty.
	IsEmpty() bool
	// Length returns the number of items in the queue.
	Length() int
}
