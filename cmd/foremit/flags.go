package main

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/kbukum/foremit/sequence"
)

// sequenceFlags are the sequence options every subcommand accepts. A flag
// overrides the loaded configuration only when it was given.
type sequenceFlags struct {
	fs *pflag.FlagSet

	event             string
	errorEvent        string
	end               []string
	firstEventTimeout time.Duration
	inBetweenTimeout  time.Duration
	limit             int
	keepAlive         time.Duration
	debug             bool
	noSleep           bool
}

func addSequenceFlags(fs *pflag.FlagSet) *sequenceFlags {
	f := &sequenceFlags{fs: fs}
	fs.StringVar(&f.event, "event", sequence.DefaultEvent, "item event name")
	fs.StringVar(&f.errorEvent, "error-event", sequence.DefaultErrorEvent, "error event name")
	fs.StringSliceVar(&f.end, "end", sequence.DefaultEndEvents(), "terminal event names")
	fs.DurationVar(&f.firstEventTimeout, "first-event-timeout", 0, "deadline for the first event (0 disables)")
	fs.DurationVar(&f.inBetweenTimeout, "in-between-timeout", 0, "deadline between events (0 disables)")
	fs.IntVarP(&f.limit, "limit", "n", 0, "stop after this many items (0 is unlimited)")
	fs.DurationVar(&f.keepAlive, "keep-alive", 0, "keep-alive interval when no in-between timeout is set")
	fs.BoolVar(&f.debug, "debug", false, "log sequence diagnostics")
	fs.BoolVar(&f.noSleep, "no-sleep", false, "do not yield to other goroutines between items")
	return f
}

// apply overlays the flags that were set on cfg.
func (f *sequenceFlags) apply(cfg *sequence.Config) {
	if f.fs.Changed("event") {
		cfg.Event = f.event
	}
	if f.fs.Changed("error-event") {
		cfg.Error = f.errorEvent
	}
	if f.fs.Changed("end") {
		cfg.End = append([]string{}, f.end...)
	}
	if f.fs.Changed("first-event-timeout") {
		cfg.FirstEventTimeout = f.firstEventTimeout
	}
	if f.fs.Changed("in-between-timeout") {
		cfg.InBetweenTimeout = f.inBetweenTimeout
	}
	if f.fs.Changed("limit") {
		cfg.Limit = f.limit
	}
	if f.fs.Changed("keep-alive") {
		cfg.KeepAlive = f.keepAlive
	}
	if f.fs.Changed("debug") {
		cfg.Debug = f.debug
	}
	if f.fs.Changed("no-sleep") {
		cfg.NoSleep = f.noSleep
	}
}
