package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jmhodges/clock"

	"github.com/eastcoast-online/envcheck/cmd"
	"github.com/eastcoast-online/envcheck/core"
	"github.com/eastcoast-online/envcheck/environment"
	blog "github.com/eastcoast-online/envcheck/log"
	"github.com/eastcoast-online/envcheck/observer"
)

const usage = `Usage: %s [flags] <environment>

  Checks every endpoint of the given environment (%s) in order and
  prints its HTTP status and response time, or "<url> Failed.".

`

// shutdownTimeout bounds how long flushing traces and stopping the debug
// server may delay exit.
const shutdownTimeout = 5 * time.Second

func run(ctx context.Context, args []string, stdout, stderr io.Writer, clk clock.Clock) int {
	fs := flag.NewFlagSet(core.Command(), flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "Path to an optional YAML configuration file")
	period := fs.Duration("period", 0, "Repeat the sweep every period until interrupted; 0 runs it once (overrides config)")
	debugAddr := fs.String("debug-addr", "", "Address to serve /metrics on (overrides config)")
	version := fs.Bool("version", false, "Print the version and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, usage, core.Command(), environment.Names())
		fs.PrintDefaults()
	}

	err := fs.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}

	if *version {
		fmt.Fprintln(stdout, core.VersionString())
		return 0
	}

	if fs.NArg() == 0 {
		fmt.Fprintln(stdout, "No argument provided")
		return 0
	}

	env, err := environment.Parse(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	var conf observer.ObsConf
	if *configFile != "" {
		err = cmd.ReadConfigFile(*configFile, &conf)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "period":
			conf.Period.Duration = *period
		case "debug-addr":
			conf.DebugAddr = *debugAddr
		}
	})
	err = conf.Validate()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	tel, err := cmd.StatsAndLogging(conf.Log, conf.OpenTelemetry, conf.DebugAddr, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		tel.Shutdown(shutdownCtx)
	}()

	ctx = blog.NewContext(ctx, tel.Logger)
	ctx = blog.ContextWith(ctx, "env", env.String())

	obs := conf.MakeObserver(env, stdout, clk, tel.Registry)
	if conf.Period.Duration > 0 {
		obs.Watch(ctx, conf.Period.Duration)
	} else {
		obs.Run(ctx)
	}
	return 0
}

func main() {
	defer cmd.AuditPanic()

	ctx, stop := cmd.SignalContext(context.Background())
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, cmd.Clock())
	stop()
	os.Exit(code)
}
