// Package sequence turns a push-based event source into a pull-based
// sequence of items.
//
// Wrap attaches listeners to the source immediately, so every item emitted
// from then on is buffered in order until the consumer pulls it:
//
//	seq, err := sequence.Wrap[string](src,
//	    sequence.WithEvent("line"),
//	    sequence.WithInBetweenTimeout(5*time.Second),
//	)
//	if err != nil {
//	    return err
//	}
//	for line, err := range seq.All(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(line)
//	}
//
// A pull returns a buffered item when there is one. Otherwise it waits for
// the next notification from the source, raced against the configured
// deadline. An error emitted by the source discards whatever is still
// buffered and is returned by the next pull. A terminal event lets the buffer
// drain before the sequence completes.
//
// Every failure is terminal for the sequence. Wrap a fresh source to retry.
package sequence
