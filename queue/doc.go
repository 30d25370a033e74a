// Package queue provides the FIFO buffer that holds items emitted by a
// producer until a consumer pulls them.
//
// Push and Shift are O(1). The queue has no capacity bound: when a producer
// outpaces its consumer it grows without limit.
//
//	q := queue.New[string]()
//	q.Push("a")
//	v, ok := q.Shift() // "a", true
//	_, ok = q.Shift()  // "", false
package queue
