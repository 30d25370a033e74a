// Package timeout implements rolling deadlines measured from the most recent
// progress of a producer.
//
// A [Progress] records when the last item arrived. A [Wrapper] turns a
// duration plus a Progress into an awaitable deadline: it sleeps until
// Last()+d, re-checks, and sleeps again whenever progress moved the deadline
// forward in the meantime. Only a deadline that is still elapsed after the
// re-check resolves to [ErrTimedOut].
//
//	p := timeout.NewProgress(clock.Real())
//	w := timeout.New(100*time.Millisecond, p, clock.Real())
//	expired := w.Start(ctx) // closed once 100ms pass without p.Touch()
package timeout
