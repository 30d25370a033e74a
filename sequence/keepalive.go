package sequence

import "time"

// keepAlive ticks every interval until the producer stops being active. The
// pending timer also keeps the runtime from reporting a deadlock while the
// consumer waits on a producer driven from outside the process.
func (s *Sequence[T]) keepAlive(interval time.Duration) {
	defer close(s.keepAliveDone)
	start := s.clock.Now()
	cycles := 0
	for {
		t := s.clock.NewTimer(interval)
		select {
		case <-s.keepAliveStop:
			t.Stop()
			s.hooks.KeepAliveEnded(cycles, s.clock.Now().Sub(start))
			return
		case <-t.C():
			cycles++
			s.hooks.KeepAlive(cycles, s.clock.Now().Sub(start))
		}
	}
}

// stopKeepAlive ends the keep-alive loop and waits for it to exit.
func (s *Sequence[T]) stopKeepAlive() {
	if s.keepAliveStop == nil {
		return
	}
	s.stopOnce.Do(func() { close(s.keepAliveStop) })
	<-s.keepAliveDone
}
