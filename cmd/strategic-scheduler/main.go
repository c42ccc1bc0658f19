// Command strategic-scheduler runs the strategic agent (C8) standalone:
// it reads the work-order backlog and planning horizon from a single input
// file, then drives placement iterations on a ticker until terminated.
// Flag and entrypoint shape is trimmed from cmd/tempo/main.go down to this
// core's single-positional-argument contract (§6): no service config file,
// no tracer installation, no version/ballast flags.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/log/level"

	"github.com/mintmaint/strategic-scheduler/modules/strategic"
	"github.com/mintmaint/strategic-scheduler/modules/strategic/ingest"
	utillog "github.com/mintmaint/strategic-scheduler/pkg/util/log"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("strategic-scheduler", flag.ContinueOnError)
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error")
	var cfg strategic.Config
	cfg.RegisterFlagsAndApplyDefaults("", fs)

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: strategic-scheduler [flags] <input-data-path>")
		return 1
	}
	inputPath := fs.Arg(0)

	if err := utillog.InitLogger(*logLevel); err != nil {
		fmt.Fprintln(os.Stderr, "invalid log level:", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		level.Error(utillog.Logger).Log("msg", "invalid config", "err", err)
		return 1
	}

	catalog, backlog, err := ingest.Load(inputPath)
	if err != nil {
		level.Error(utillog.Logger).Log("msg", "failed to load input data", "path", inputPath, "err", err)
		return 1
	}

	env := strategic.NewSchedulingEnvironment(catalog, backlog)
	agent, err := strategic.New(cfg, env)
	if err != nil {
		level.Error(utillog.Logger).Log("msg", "failed to construct strategic agent", "err", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := agent.StartAsync(context.Background()); err != nil {
		level.Error(utillog.Logger).Log("msg", "failed to start strategic agent", "err", err)
		return 1
	}
	if err := agent.AwaitRunning(ctx); err != nil {
		level.Error(utillog.Logger).Log("msg", "strategic agent failed to reach running state", "err", err)
		return 1
	}

	<-ctx.Done()
	level.Info(utillog.Logger).Log("msg", "shutdown signal received, draining final iteration")
	agent.StopAsync()

	if err := agent.AwaitTerminated(context.Background()); err != nil {
		level.Error(utillog.Logger).Log("msg", "strategic agent terminated with error", "err", err)
		return 1
	}
	return 0
}
