// Package emitter defines the event source capability the sequence engine
// consumes, plus a concrete in-process implementation.
//
// Any producer that can register and remove listeners for named events
// satisfies [Source]. Producers that know when they have finished may also
// implement [ReadableEnder] or [WritableEnder]; the engine refuses to wrap a
// source that already ended.
//
// # Emitter
//
// [Emitter] dispatches synchronously on the goroutine that calls Emit.
// Listeners are snapshotted before dispatch, so a listener may remove itself
// or others while an event is being delivered.
//
//	em := emitter.New()
//	id := em.On("data", func(payload any) { fmt.Println(payload) })
//	em.Emit("data", "hello")
//	em.Off("data", id)
//
// # Flowing sources
//
// [Flowing] starts its pump the first time a listener is attached to its
// item event, so adapters never emit before anyone listens.
package emitter
