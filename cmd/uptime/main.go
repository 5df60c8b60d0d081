package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"stationuptime/internal/input"
	"stationuptime/internal/logging"
	"stationuptime/internal/uptime"
)

const (
	exitUsage = 1
	exitParse = 2
)

func main() {
	workers := flag.Int("workers", 0, "station computation workers (0 = one per CPU)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <report file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "ERROR: missing report file path")
		flag.Usage()
		os.Exit(exitUsage)
	}

	logger, err := logging.NewCLILogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(exitUsage)
	}
	defer logger.Sync()

	file, err := input.ParseFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(exitParse)
	}

	engine := uptime.NewEngine(*workers, logger)
	results := engine.Compute(context.Background(), file.Ownership, file.Reports)

	if err := uptime.WriteResults(os.Stdout, results); err != nil {
		logger.Fatal("failed to write results", zap.Error(err))
	}
}
