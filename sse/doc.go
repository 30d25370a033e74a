// Package sse streams pulled sequences to HTTP clients as Server-Sent Events.
//
// Serve drives a sequence from a gin handler. Each item is written as a
// "message" frame, idle periods are filled with keep-alive comments, a
// failure is reported as an "error" frame carrying the error code, and a
// clean completion ends with an "end" frame. When the client disconnects the
// sequence is closed, which detaches it from its source.
//
//	router.GET("/stream", sse.Handler(func(c *gin.Context) (*sequence.Sequence[string], error) {
//	    return sequence.Wrap[string](src, sequence.WithInBetweenTimeout(time.Minute))
//	}))
package sse
