package sequence

import (
	"context"
	stderrors "errors"
	"slices"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/foremit/clock"
	"github.com/kbukum/foremit/diagnostics"
	"github.com/kbukum/foremit/emitter"
	"github.com/kbukum/foremit/errors"
	"github.com/kbukum/foremit/logger"
)

type result[T any] struct {
	items []T
	err   error
}

func collectAsync[T any](seq *Sequence[T]) <-chan result[T] {
	ch := make(chan result[T], 1)
	go func() {
		items, err := Collect[T](context.Background(), seq)
		ch <- result[T]{items: items, err: err}
	}()
	return ch
}

func receive[T any](t *testing.T, ch <-chan result[T]) result[T] {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("sequence did not finish")
		return result[T]{}
	}
}

func waitForTimers(t *testing.T, m *clock.Manual, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for m.Pending() < n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d armed timers, got %d", n, m.Pending())
		}
		time.Sleep(time.Millisecond)
	}
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal(msg)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestWrap_ConfigurationErrors(t *testing.T) {
	var typedNil *emitter.Emitter
	ended := emitter.NewFlowing("data", func(*emitter.Flowing) {})
	ended.MarkEnded()

	tests := []struct {
		name string
		src  emitter.Source
		opts []Option
		code errors.ErrorCode
	}{
		{"nil source", nil, nil, errors.ErrCodeInvalidSource},
		{"typed nil source", typedNil, nil, errors.ErrCodeInvalidSource},
		{"ended source", ended, nil, errors.ErrCodeSourceEnded},
		{"empty end events", emitter.New(), []Option{WithEndEvents()}, errors.ErrCodeInvalidOption},
		{"blank end event", emitter.New(), []Option{WithEndEvents("close", "")}, errors.ErrCodeInvalidOption},
		{"negative limit", emitter.New(), []Option{WithLimit(-1)}, errors.ErrCodeInvalidOption},
		{"negative in-between timeout", emitter.New(), []Option{WithInBetweenTimeout(-time.Second)}, errors.ErrCodeInvalidOption},
		{"negative keep alive", emitter.New(), []Option{WithKeepAlive(-time.Second)}, errors.ErrCodeInvalidOption},
		{"event equals error event", emitter.New(), []Option{WithEvent("x"), WithErrorEvent("x")}, errors.ErrCodeInvalidOption},
		{"item event is terminal", emitter.New(), []Option{WithEndEvents("data")}, errors.ErrCodeInvalidOption},
		{"nil transform", emitter.New(), []Option{WithTransform[string](nil)}, errors.ErrCodeInvalidOption},
		{"transform type mismatch", emitter.New(), []Option{WithTransform(func(any) (int, error) { return 0, nil })}, errors.ErrCodeInvalidOption},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			seq, err := Wrap[string](tc.src, tc.opts...)
			if seq != nil {
				t.Error("expected no sequence on configuration error")
			}
			if !errors.Is(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
			if !errors.IsConfiguration(err) {
				t.Errorf("expected a configuration error, got %v", err)
			}
		})
	}
}

func TestWrap_DoesNotAttachOnError(t *testing.T) {
	src := emitter.New()
	if _, err := Wrap[string](src, WithLimit(-1)); err == nil {
		t.Fatal("expected error")
	}
	for _, event := range []string{"data", "error", "close", "end"} {
		if n := src.ListenerCount(event); n != 0 {
			t.Errorf("expected no %q listeners, got %d", event, n)
		}
	}
}

func TestWrap_AttachesListeners(t *testing.T) {
	src := emitter.New()
	seq, err := Wrap[string](src, WithEvent("line"), WithEndEvents("eof"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for event, want := range map[string]int{"line": 1, "error": 1, "eof": 1, "data": 0, "end": 0} {
		if n := src.ListenerCount(event); n != want {
			t.Errorf("%s: expected %d listeners, got %d", event, want, n)
		}
	}
	if seq.ID() == "" || seq.State() != Active {
		t.Errorf("unexpected initial id %q state %v", seq.ID(), seq.State())
	}
	seq.Close()
	for _, event := range []string{"line", "error", "eof"} {
		if n := src.ListenerCount(event); n != 0 {
			t.Errorf("expected %q detached after Close, got %d", event, n)
		}
	}
}

func TestSequence_PreservesOrder(t *testing.T) {
	src := emitter.New()
	seq, err := Wrap[int](src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range 5 {
		src.Emit("data", i)
	}
	src.Emit("end", nil)

	items, err := Collect[int](context.Background(), seq)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(items, []int{0, 1, 2, 3, 4}) {
		t.Errorf("expected [0 1 2 3 4], got %v", items)
	}
	if seq.State() != Completed {
		t.Errorf("expected Completed, got %v", seq.State())
	}
}

func TestSequence_FalsyValues(t *testing.T) {
	src := emitter.New()
	seq, _ := Wrap[any](src, WithNoSleep(true))
	want := []any{false, 0, "", nil}
	for _, v := range want {
		src.Emit("data", v)
	}
	src.Emit("close", nil)

	items, err := Collect[any](context.Background(), seq)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(items, want) {
		t.Errorf("expected %v, got %v", want, items)
	}
}

func TestSequence_NilPayloadBecomesZero(t *testing.T) {
	src := emitter.New()
	seq, _ := Wrap[string](src)
	src.Emit("data", nil)
	src.Emit("end", nil)

	items, err := Collect[string](context.Background(), seq)
	if err != nil || !slices.Equal(items, []string{""}) {
		t.Errorf("expected [\"\"], got %q (%v)", items, err)
	}
}

func TestSequence_ErrorPrecedence(t *testing.T) {
	src := emitter.New()
	seq, _ := Wrap[string](src)
	ctx := context.Background()

	src.Emit("data", "a")
	if v, ok, err := seq.Next(ctx); v != "a" || !ok || err != nil {
		t.Fatalf("expected a, got %q %v %v", v, ok, err)
	}

	cause := stderrors.New("boom")
	src.Emit("data", "b")
	src.Emit("data", "c")
	src.Emit("error", cause)

	_, ok, err := seq.Next(ctx)
	if ok || !errors.Is(err, errors.ErrCodeProducer) {
		t.Fatalf("expected producer error, got ok=%v err=%v", ok, err)
	}
	if !stderrors.Is(err, cause) {
		t.Errorf("expected cause to be preserved, got %v", err)
	}
	if seq.State() != Erroring {
		t.Errorf("expected Erroring, got %v", seq.State())
	}

	// The error is returned once; buffered items never surface.
	if v, ok, err := seq.Next(ctx); ok || err != nil || v != "" {
		t.Errorf("expected exhausted sequence, got %q %v %v", v, ok, err)
	}
	if !errors.Is(seq.Err(), errors.ErrCodeProducer) {
		t.Errorf("expected sticky Err, got %v", seq.Err())
	}
	if src.ListenerCount("data") != 0 {
		t.Error("expected listeners detached after error")
	}
}

func TestSequence_ErrorBeforeAnyPull(t *testing.T) {
	src := emitter.New()
	seq, _ := Wrap[string](src)
	src.Emit("data", "a")
	src.Emit("error", "bad input")

	items, err := Collect[string](context.Background(), seq)
	if len(items) != 0 {
		t.Errorf("expected no items, got %v", items)
	}
	if !errors.Is(err, errors.ErrCodeProducer) || err.(*errors.AppError).Unwrap().Error() != "bad input" {
		t.Errorf("expected producer error wrapping payload, got %v", err)
	}
}

func TestSequence_Limit(t *testing.T) {
	src := emitter.New()
	seq, _ := Wrap[int](src, WithLimit(10))
	for i := range 11 {
		src.Emit("data", i)
	}

	items, err := Collect[int](context.Background(), seq)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 10 || items[9] != 9 {
		t.Errorf("expected first 10 items, got %v", items)
	}
	if src.ListenerCount("data") != 0 {
		t.Error("expected listeners detached at limit")
	}
	if seq.Yielded() != 10 || seq.State() != Completed {
		t.Errorf("unexpected yielded=%d state=%v", seq.Yielded(), seq.State())
	}
}

func TestSequence_LimitEndsWithoutTerminalEvent(t *testing.T) {
	src := emitter.New()
	seq, _ := Wrap[int](src, WithLimit(2))
	src.Emit("data", 1)
	src.Emit("data", 2)

	// No terminal event follows; the limit alone ends the sequence.
	items, err := Collect[int](context.Background(), seq)
	if err != nil || !slices.Equal(items, []int{1, 2}) {
		t.Errorf("expected [1 2], got %v (%v)", items, err)
	}
}

func TestSequence_Unlimited(t *testing.T) {
	src := emitter.New()
	seq, _ := Wrap[int](src, WithLimit(0), WithNoSleep(true))
	for i := range 100 {
		src.Emit("data", i)
	}
	src.Emit("end", nil)

	items, err := Collect[int](context.Background(), seq)
	if err != nil || len(items) != 100 {
		t.Errorf("expected 100 items, got %d (%v)", len(items), err)
	}
}

func TestSequence_DrainsAfterEnd(t *testing.T) {
	src := emitter.New()
	seq, _ := Wrap[string](src)
	src.Emit("data", "a")
	src.Emit("close", nil)

	if seq.State() != Draining {
		t.Errorf("expected Draining, got %v", seq.State())
	}
	// Items after the terminal event are ignored.
	src.Emit("data", "late")

	items, err := Collect[string](context.Background(), seq)
	if err != nil || !slices.Equal(items, []string{"a"}) {
		t.Errorf("expected [a], got %v (%v)", items, err)
	}
}

func TestSequence_InBetweenTimeout(t *testing.T) {
	m := clock.NewManual(time.Unix(0, 0))
	src := emitter.New()
	seq, _ := Wrap[string](src, WithInBetweenTimeout(100*time.Millisecond), WithClock(m))

	src.Emit("data", "a")
	m.Advance(50 * time.Millisecond)
	src.Emit("data", "b")

	res := collectAsync(seq)
	waitForTimers(t, m, 1)
	m.Advance(100 * time.Millisecond)

	r := receive(t, res)
	if !slices.Equal(r.items, []string{"a", "b"}) {
		t.Errorf("expected items before the gap, got %v", r.items)
	}
	if !errors.IsTimeout(r.err) {
		t.Fatalf("expected timeout, got %v", r.err)
	}
	appErr, _ := errors.AsAppError(r.err)
	if appErr.Details["kind"] != "in_between" || appErr.Details["timeout_ms"] != int64(100) {
		t.Errorf("unexpected timeout details %v", appErr.Details)
	}
	if seq.State() != TimedOut {
		t.Errorf("expected TimedOut, got %v", seq.State())
	}
	if src.ListenerCount("data") != 0 {
		t.Error("expected listeners detached after timeout")
	}
}

func TestSequence_ItemBufferedAtDeadlineIsYielded(t *testing.T) {
	m := clock.NewManual(time.Unix(0, 0))
	src := emitter.New()
	seq, _ := Wrap[string](src, WithInBetweenTimeout(100*time.Millisecond), WithClock(m))

	res := make(chan result[string], 1)
	go func() {
		item, ok, err := seq.Next(context.Background())
		var items []string
		if ok {
			items = append(items, item)
		}
		res <- result[string]{items: items, err: err}
	}()
	waitForTimers(t, m, 1)

	// The item is buffered but progress is not touched yet when the
	// deadline fires.
	seq.mu.Lock()
	seq.queue.Push("a")
	seq.mu.Unlock()
	m.Advance(100 * time.Millisecond)

	r := receive(t, res)
	if r.err != nil {
		t.Fatalf("expected the buffered item, got %v", r.err)
	}
	if !slices.Equal(r.items, []string{"a"}) {
		t.Errorf("expected [a], got %v", r.items)
	}
	if seq.State().Terminal() {
		t.Errorf("expected sequence still running, got %v", seq.State())
	}
	seq.Close()
}

func TestSequence_InBetweenDeadlineRolls(t *testing.T) {
	m := clock.NewManual(time.Unix(0, 0))
	src := emitter.New()
	seq, _ := Wrap[int](src, WithInBetweenTimeout(100*time.Millisecond), WithClock(m), WithNoSleep(true))
	res := collectAsync(seq)

	// Every event lands 80ms after the previous one, so no window elapses.
	for i := range 5 {
		waitForTimers(t, m, 1)
		m.Advance(80 * time.Millisecond)
		src.Emit("data", i)
	}
	src.Emit("end", nil)

	r := receive(t, res)
	if r.err != nil || len(r.items) != 5 {
		t.Errorf("expected 5 items without timeout, got %v (%v)", r.items, r.err)
	}
}

func TestSequence_FirstEventTimeout(t *testing.T) {
	m := clock.NewManual(time.Unix(0, 0))
	src := emitter.New()
	seq, _ := Wrap[string](src, WithFirstEventTimeout(100*time.Millisecond), WithClock(m))

	res := collectAsync(seq)
	waitForTimers(t, m, 1)
	m.Advance(100 * time.Millisecond)

	r := receive(t, res)
	if !errors.IsTimeout(r.err) {
		t.Fatalf("expected timeout, got %v", r.err)
	}
	if appErr, _ := errors.AsAppError(r.err); appErr.Details["kind"] != "first_event" {
		t.Errorf("expected first_event kind, got %v", appErr.Details["kind"])
	}
}

func TestSequence_FirstEventOnlyAppliesOnce(t *testing.T) {
	m := clock.NewManual(time.Unix(0, 0))
	src := emitter.New()
	seq, _ := Wrap[string](src, WithFirstEventTimeout(100*time.Millisecond), WithClock(m))
	res := collectAsync(seq)

	waitForTimers(t, m, 1)
	m.Advance(50 * time.Millisecond)
	src.Emit("data", "a")

	// Long after the first-event window, no deadline applies any more.
	eventually(t, func() bool { return seq.Yielded() == 1 }, "first item not pulled")
	m.Advance(time.Hour)
	src.Emit("data", "b")
	src.Emit("end", nil)

	r := receive(t, res)
	if r.err != nil || !slices.Equal(r.items, []string{"a", "b"}) {
		t.Errorf("expected [a b], got %v (%v)", r.items, r.err)
	}
}

func TestSequence_FirstEventThenInBetween(t *testing.T) {
	m := clock.NewManual(time.Unix(0, 0))
	src := emitter.New()
	seq, _ := Wrap[string](src,
		WithFirstEventTimeout(time.Second),
		WithInBetweenTimeout(100*time.Millisecond),
		WithClock(m),
	)
	res := collectAsync(seq)

	// The first wait uses the longer first-event window.
	waitForTimers(t, m, 1)
	m.Advance(500 * time.Millisecond)
	src.Emit("data", "a")
	eventually(t, func() bool { return seq.Yielded() == 1 }, "first item not pulled")

	waitForTimers(t, m, 1)
	m.Advance(100 * time.Millisecond)

	r := receive(t, res)
	if appErr, ok := errors.AsAppError(r.err); !ok || appErr.Details["kind"] != "in_between" {
		t.Fatalf("expected in_between timeout, got %v", r.err)
	}
	if !slices.Equal(r.items, []string{"a"}) {
		t.Errorf("expected [a], got %v", r.items)
	}
}

func TestSequence_MessageScenario(t *testing.T) {
	type message struct{ Message string }
	src := emitter.New()
	seq, _ := Wrap[message](src, WithInBetweenTimeout(100*time.Millisecond))

	go func() {
		src.Emit("data", message{"test1"})
		src.Emit("data", message{"test2"})
		time.Sleep(200 * time.Millisecond)
		src.Emit("data", message{"test3"})
		src.Emit("end", nil)
	}()

	var got string
	var err error
	for m, e := range seq.All(context.Background()) {
		if e != nil {
			err = e
			break
		}
		got += m.Message
	}
	if got != "test1test2" {
		t.Errorf("expected test1test2, got %q", got)
	}
	if !errors.IsTimeout(err) {
		t.Errorf("expected timeout, got %v", err)
	}
}

func TestSequence_CloseDetaches(t *testing.T) {
	src := emitter.New()
	rec := &diagnostics.Recorder{}
	seq, _ := Wrap[string](src, WithDebug(true), WithHooks(rec), WithLogger(logger.Nop()))
	ctx := context.Background()

	src.Emit("data", "a")
	src.Emit("data", "b")
	if v, _, _ := seq.Next(ctx); v != "a" {
		t.Fatalf("expected a, got %q", v)
	}
	if err := seq.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	if src.ListenerCount("data") != 0 || src.ListenerCount("end") != 0 {
		t.Error("expected listeners detached synchronously by Close")
	}
	src.Emit("data", "c")
	if v, ok, err := seq.Next(ctx); ok || err != nil {
		t.Errorf("expected no further items, got %q %v %v", v, ok, err)
	}

	seq.Close()
	if rec.Count("returned") != 1 {
		t.Errorf("expected one returned hook, got %v", rec.Events())
	}
	if rec.Count("detached") != 1 {
		t.Errorf("expected one detached hook, got %v", rec.Events())
	}
}

func TestSequence_CloseAfterCompletionIsNotReturn(t *testing.T) {
	src := emitter.New()
	rec := &diagnostics.Recorder{}
	seq, _ := Wrap[string](src, WithDebug(true), WithHooks(rec), WithLogger(logger.Nop()))
	src.Emit("end", nil)

	if _, err := Collect[string](context.Background(), seq); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Count("returned") != 0 {
		t.Errorf("expected no returned hook after completion, got %v", rec.Events())
	}
}

func TestSequence_CloseWakesBlockedNext(t *testing.T) {
	src := emitter.New()
	seq, _ := Wrap[string](src)

	done := make(chan error, 1)
	go func() {
		_, ok, err := seq.Next(context.Background())
		if ok {
			err = stderrors.New("unexpected item")
		}
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	seq.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean completion, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not wake the blocked pull")
	}
}

func TestSequence_ContextCancelKeepsSequence(t *testing.T) {
	src := emitter.New()
	seq, _ := Wrap[string](src)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, _, err := seq.Next(ctx); !stderrors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if seq.State() != Active || seq.Err() != nil {
		t.Errorf("expected sequence to stay active, got %v (%v)", seq.State(), seq.Err())
	}

	src.Emit("data", "a")
	if v, ok, err := seq.Next(context.Background()); v != "a" || !ok || err != nil {
		t.Errorf("expected a after cancelled pull, got %q %v %v", v, ok, err)
	}
	seq.Close()
}

func TestSequence_AllBreakCloses(t *testing.T) {
	src := emitter.New()
	seq, _ := Wrap[int](src)
	for i := range 3 {
		src.Emit("data", i)
	}

	for v, err := range seq.All(context.Background()) {
		if err != nil || v != 0 {
			t.Fatalf("unexpected %v %v", v, err)
		}
		break
	}
	if src.ListenerCount("data") != 0 {
		t.Error("expected break to close the sequence")
	}
	if _, ok, _ := seq.Next(context.Background()); ok {
		t.Error("expected no items after break")
	}
}

func TestSequence_Transform(t *testing.T) {
	src := emitter.New()
	seq, err := Wrap[string](src, WithTransform(func(raw any) (string, error) {
		m, ok := raw.(map[string]string)
		if !ok {
			return "", stderrors.New("not a message")
		}
		return m["message"], nil
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	src.Emit("data", map[string]string{"message": "one"})
	src.Emit("data", map[string]string{"message": "two"})
	src.Emit("data", 3)

	items, err := Collect[string](context.Background(), seq)
	if !slices.Equal(items, []string{"one", "two"}) {
		t.Errorf("expected each item once, transformed, got %v", items)
	}
	if !errors.Is(err, errors.ErrCodeTransformFailed) {
		t.Errorf("expected TRANSFORM_FAILED, got %v", err)
	}
}

func TestSequence_InvalidItem(t *testing.T) {
	src := emitter.New()
	seq, _ := Wrap[int](src)
	src.Emit("data", "not an int")

	_, _, err := seq.Next(context.Background())
	if !errors.Is(err, errors.ErrCodeInvalidItem) {
		t.Fatalf("expected INVALID_ITEM, got %v", err)
	}
	if seq.State() != Erroring || src.ListenerCount("data") != 0 {
		t.Errorf("expected failed and detached sequence, got %v", seq.State())
	}
}

func TestSequence_FlowingSource(t *testing.T) {
	src := emitter.NewFlowing("data", func(f *emitter.Flowing) {
		f.Emit("data", 1)
		f.Emit("data", 2)
		f.Emit("end", nil)
		f.MarkEnded()
	})
	seq, err := Wrap[int](src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	items, err := Collect[int](context.Background(), seq)
	if err != nil || !slices.Equal(items, []int{1, 2}) {
		t.Errorf("expected [1 2], got %v (%v)", items, err)
	}
}

func TestSequence_HooksOnlyInDebug(t *testing.T) {
	src := emitter.New()
	rec := &diagnostics.Recorder{}
	seq, _ := Wrap[string](src, WithHooks(rec))
	src.Emit("data", "a")
	src.Emit("end", nil)
	Collect[string](context.Background(), seq)

	if len(rec.Events()) != 0 {
		t.Errorf("expected no hooks outside debug mode, got %v", rec.Events())
	}
}

func TestSequence_DebugHooks(t *testing.T) {
	src := emitter.New()
	rec := &diagnostics.Recorder{}
	seq, _ := Wrap[string](src, WithDebug(true), WithHooks(rec), WithLogger(logger.Nop()), WithLimit(2))

	src.Emit("data", "a")
	src.Emit("data", "b")
	src.Emit("data", "c")
	Collect[string](context.Background(), seq)

	want := []string{
		"attached",
		"draining:3",
		"yielded:1",
		"draining:2",
		"yielded:2",
		"limit_reached:2",
		"detached:completed",
	}
	if got := rec.Events(); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSequence_DebugRaceHooks(t *testing.T) {
	m := clock.NewManual(time.Unix(0, 0))
	src := emitter.New()
	rec := &diagnostics.Recorder{}
	seq, _ := Wrap[string](src, WithDebug(true), WithHooks(rec), WithLogger(logger.Nop()),
		WithInBetweenTimeout(time.Second), WithClock(m))

	res := collectAsync(seq)
	waitForTimers(t, m, 1)
	m.Advance(time.Second)
	receive(t, res)

	if rec.Count("race_started:in_between") != 1 || rec.Count("race_finished:in_between:timeout") != 1 {
		t.Errorf("expected one timed-out race, got %v", rec.Events())
	}
	if rec.Count("detached:timed_out") != 1 {
		t.Errorf("expected detached in timed_out state, got %v", rec.Events())
	}
}

func TestSequence_KeepAlive(t *testing.T) {
	m := clock.NewManual(time.Unix(0, 0))
	src := emitter.New()
	rec := &diagnostics.Recorder{}
	seq, _ := Wrap[string](src, WithDebug(true), WithHooks(rec), WithLogger(logger.Nop()),
		WithKeepAlive(time.Second), WithClock(m))

	for i := 1; i <= 2; i++ {
		waitForTimers(t, m, 1)
		m.Advance(time.Second)
		eventually(t, func() bool { return rec.Count("keep_alive") == i }, "keep-alive tick missing")
	}

	src.Emit("end", nil)
	if rec.Count("keep_alive_ended:2") != 1 {
		t.Errorf("expected keep-alive to end after the terminal event, got %v", rec.Events())
	}
	seq.Close()
}

func TestSequence_KeepAliveDisabledWithInBetween(t *testing.T) {
	seq, _ := Wrap[string](emitter.New(), WithKeepAlive(time.Second), WithInBetweenTimeout(time.Second))
	defer seq.Close()
	if seq.keepAliveStop != nil {
		t.Error("expected keep-alive loop not to start when an in-between timeout is set")
	}
}

func TestSequence_Span(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	src := emitter.New()
	seq, _ := Wrap[string](src, WithTracer(tp.Tracer("test")))
	src.Emit("data", "a")
	src.Emit("end", nil)
	Collect[string](context.Background(), seq)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected one span, got %d", len(spans))
	}
	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	if attrs["sequence.id"] != seq.ID() || attrs["sequence.state"] != "completed" || attrs["sequence.yielded"] != "1" {
		t.Errorf("unexpected span attributes %v", attrs)
	}
}

func TestSequence_Metrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	src := emitter.New()
	seq, _ := Wrap[string](src, WithDebug(true), WithLogger(logger.Nop()), WithMeter(mp.Meter("test")))
	src.Emit("data", "a")
	src.Emit("data", "b")
	src.Emit("end", nil)
	Collect[string](context.Background(), seq)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	var items int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "sequence.items" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				items += dp.Value
			}
		}
	}
	if items != 2 {
		t.Errorf("expected 2 items recorded, got %d", items)
	}
}

func TestForEach(t *testing.T) {
	src := emitter.New()
	seq, _ := Wrap[int](src)
	for i := range 5 {
		src.Emit("data", i)
	}

	stop := stderrors.New("stop")
	var seen []int
	err := ForEach[int](context.Background(), seq, func(_ context.Context, v int) error {
		seen = append(seen, v)
		if v == 2 {
			return stop
		}
		return nil
	})
	if !stderrors.Is(err, stop) || !slices.Equal(seen, []int{0, 1, 2}) {
		t.Errorf("expected stop after 2, got %v (%v)", seen, err)
	}
	if src.ListenerCount("data") != 0 {
		t.Error("expected ForEach to close the sequence")
	}
}
