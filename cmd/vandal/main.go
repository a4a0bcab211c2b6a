// Command vandal is the execution-trace vulnerability analyzer's CLI
// front-end: "file" runs a single already-recorded transaction once, "cli"
// polls a live node and analyzes every transaction as it's mined (spec.md
// §6). Grounded on run_file/run_cli (manager.py) for the two modes and
// geth's cmd/geth for the urfave/cli/v2 app-construction idiom.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/vandalgo/vandal/config"
	"github.com/vandalgo/vandal/driver"
	"github.com/vandalgo/vandal/heuristics"
	vlog "github.com/vandalgo/vandal/log"
	"github.com/vandalgo/vandal/output"
	"github.com/vandalgo/vandal/rpcclient"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	sharedFlags := []cli.Flag{
		config.ConfigFlag,
		config.IPCFlag,
		config.HeuristicsFlag,
		config.HeuristicDirFlag,
		config.OutputFlag,
		config.CPUProfileFlag,
	}

	return &cli.App{
		Name:  "vandal",
		Usage: "find reentrancy, timestamp dependency, unchecked call, and failed send vulnerabilities in EVM execution traces",
		Commands: []*cli.Command{
			{
				Name:   "file",
				Usage:  "analyze a single transaction's already-recorded trace",
				Flags:  append(append([]cli.Flag{}, sharedFlags...), config.TxFlag),
				Action: runFileCommand,
			},
			{
				Name:   "cli",
				Usage:  "poll a live node and analyze every mined transaction",
				Flags:  append(append([]cli.Flag{}, sharedFlags...), config.BlockFlag),
				Action: runStreamingCommand,
			},
		},
	}
}

// exitErr maps err to exit code 1 ("fatal": empty trace, unknown opcode,
// RPC unreachable) unless it is already a cli.ExitCoder, per spec.md §6's
// exit-code table.
func exitErr(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(cli.ExitCoder); ok {
		return err
	}
	return cli.Exit(err.Error(), 1)
}

func runFileCommand(c *cli.Context) error {
	cfg, err := config.FromContext(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	if cfg.Tx == "" {
		return cli.Exit("file mode requires --tx", 2)
	}

	hs, err := heuristics.Get(cfg.Heuristics)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	stop, err := driver.StartCPUProfile(cfg.CPUProfile)
	if err != nil {
		return exitErr(err)
	}
	defer stop()

	sink, err := sinkFor(cfg)
	if err != nil {
		return exitErr(err)
	}
	d := driver.New(hs, []output.Sink{sink}, vlog.Root())

	client, err := rpcclient.Dial(cfg.IPCPath)
	if err != nil {
		return exitErr(fmt.Errorf("connecting to %s: %w", cfg.IPCPath, err))
	}
	defer client.Close()

	fetcher, err := rpcclient.NewTraceFetcher(client, 0, slogLogger())
	if err != nil {
		return exitErr(err)
	}

	return exitErr(d.RunFile(c.Context, fetcher, cfg.Tx))
}

func runStreamingCommand(c *cli.Context) error {
	cfg, err := config.FromContext(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	hs, err := heuristics.Get(cfg.Heuristics)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	stop, err := driver.StartCPUProfile(cfg.CPUProfile)
	if err != nil {
		return exitErr(err)
	}
	defer stop()

	sink, err := sinkFor(cfg)
	if err != nil {
		return exitErr(err)
	}
	d := driver.New(hs, []output.Sink{sink}, vlog.Root())

	client, err := rpcclient.Dial(cfg.IPCPath)
	if err != nil {
		return exitErr(fmt.Errorf("connecting to %s: %w", cfg.IPCPath, err))
	}
	defer client.Close()

	fetcher, err := rpcclient.NewTraceFetcher(client, 0, slogLogger())
	if err != nil {
		return exitErr(err)
	}
	poller := rpcclient.NewPoller(client, slogLogger())

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	return exitErr(d.RunStreaming(ctx, poller, fetcher, cfg.Block, driver.DefaultWorkers))
}

// sinkFor resolves the output destination (spec.md §6: "if absent in file
// mode, output is stdout"), creating the output directory if needed since
// output.JSONSink.Write doesn't create one itself.
func sinkFor(cfg config.Config) (output.Sink, error) {
	if cfg.OutputDir == "" {
		return output.TableSink{Writer: os.Stdout}, nil
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", cfg.OutputDir, err)
	}
	return output.JSONSink{Dir: cfg.OutputDir}, nil
}

// slogLogger adapts the package-level vlog.Root() Logger to the
// *slog.Logger rpcclient's constructors expect.
func slogLogger() *slog.Logger {
	return slog.New(vlog.Root().Handler())
}
