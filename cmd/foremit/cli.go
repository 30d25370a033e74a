package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/kbukum/foremit/config"
	"github.com/kbukum/foremit/errors"
	"github.com/kbukum/foremit/logger"
	"github.com/kbukum/foremit/observability"
	"github.com/kbukum/foremit/version"
)

// Exit codes.
const (
	exitOK      = 0
	exitError   = 1
	exitTimeout = 2
	exitUsage   = 64
)

const usageText = `Usage: foremit [--config file] [--env-file file] <command> [flags]

Commands:
  tail    print items read from stdin, a redis channel or a kafka topic
  serve   stream emitted items to HTTP clients as server-sent events

Run "foremit <command> --help" for the flags of a command.
`

type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string

	// ready receives the bound address once serve listens.
	ready chan<- string
}

func newCLI(stdin io.Reader, stdout, stderr io.Writer, getenv func(string) string) *cli {
	return &cli{stdin: stdin, stdout: stdout, stderr: stderr, getenv: getenv}
}

// command is a parsed subcommand ready to run with the loaded configuration.
type command func(ctx context.Context, cfg *AppConfig, log *logger.Logger) error

func (c *cli) run(ctx context.Context, args []string) int {
	global := pflag.NewFlagSet("foremit", pflag.ContinueOnError)
	global.SetOutput(c.stderr)
	global.SetInterspersed(false)
	global.Usage = func() {
		fmt.Fprint(c.stderr, usageText)
		global.PrintDefaults()
	}
	showVersion := global.Bool("version", false, "print version and exit")
	configFile := global.String("config", "", "config file path")
	envFile := global.String("env-file", "", "env file path")

	if err := global.Parse(args); err != nil {
		if stderrors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if *showVersion {
		fmt.Fprintln(c.stdout, version.GetVersionInfo().String())
		return exitOK
	}
	if global.NArg() == 0 {
		global.Usage()
		return exitUsage
	}

	name := global.Arg(0)
	fs := pflag.NewFlagSet("foremit "+name, pflag.ContinueOnError)
	fs.SetOutput(c.stderr)
	seqFlags := addSequenceFlags(fs)

	var cmd command
	switch name {
	case "tail":
		cmd = c.tailCommand(fs)
	case "serve":
		cmd = c.serveCommand(fs)
	default:
		fmt.Fprintf(c.stderr, "foremit: unknown command %q\n\n", name)
		global.Usage()
		return exitUsage
	}
	if err := fs.Parse(global.Args()[1:]); err != nil {
		if stderrors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	var loaderOpts []config.LoaderOption
	if *configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		loaderOpts = append(loaderOpts, config.WithEnvFile(*envFile))
	}
	cfg, err := loadConfig(c.getenv, loaderOpts...)
	if err != nil {
		fmt.Fprintf(c.stderr, "foremit: %v\n", err)
		return exitError
	}
	seqFlags.apply(&cfg.Sequence)
	if err := cfg.Sequence.Validate(); err != nil {
		fmt.Fprintf(c.stderr, "foremit: %v\n", err)
		return exitUsage
	}
	if cfg.Sequence.Debug {
		cfg.Logging.Level = "debug"
	}

	log := logger.NewWriter(c.stderr, &cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(log)

	shutdown, err := observability.Init(ctx, &cfg.Telemetry)
	if err != nil {
		fmt.Fprintf(c.stderr, "foremit: %v\n", err)
		return exitError
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warn("telemetry shutdown failed", logger.Fields("error", err.Error()))
		}
	}()

	return c.exitCode(cmd(ctx, cfg, log))
}

func (c *cli) exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case stderrors.Is(err, context.Canceled):
		return exitOK
	case errors.IsTimeout(err):
		fmt.Fprintf(c.stderr, "foremit: %v\n", err)
		return exitTimeout
	case errors.Is(err, errors.ErrCodeInvalidOption):
		fmt.Fprintf(c.stderr, "foremit: %v\n", err)
		return exitUsage
	default:
		fmt.Fprintf(c.stderr, "foremit: %v\n", err)
		return exitError
	}
}
