package queue

type node[T any] struct {
	value T
	next  *node[T]
}

// Queue is an insertion-ordered FIFO backed by a singly linked list.
// It is not safe for concurrent use; the owner serialises access.
type Queue[T any] struct {
	head   *node[T]
	tail   *node[T]
	length int
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push appends v to the tail.
func (q *Queue[T]) Push(v T) {
	n := &node[T]{value: v}
	if q.tail == nil {
		q.head = n
	} else {
		q.tail.next = n
	}
	q.tail = n
	q.length++
}

// Shift removes and returns the head. The boolean is false when the queue is empty.
func (q *Queue[T]) Shift() (T, bool) {
	if q.head == nil {
		var zero T
		return zero, false
	}
	n := q.head
	q.head = n.next
	if q.head == nil {
		q.tail = nil
	}
	n.next = nil
	q.length--
	return n.value, true
}

// Peek returns the head without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	if q.head == nil {
		var zero T
		return zero, false
	}
	return q.head.value, true
}

// Len returns the number of buffered items.
func (q *Queue[T]) Len() int { return q.length }

// Clear drops every buffered item.
func (q *Queue[T]) Clear() {
	q.head = nil
	q.tail = nil
	q.length = 0
}
