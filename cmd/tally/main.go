package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"tally/internal/cli"
)

const usage = `Usage: tally <command> [flags] [args]

Commands:
  record ingest-file [--mapping name] <path>   ingest a CSV or XLSX statement
  record tag <record-id> <tag>                 tag a record
  record untag <record-id> <tag>               remove a tag from a record
  record tags                                  list tags with record counts
  record mappings                              list statement header mappings
  report [--output text|pdf|xlsx] [--out path] build the spending report
  db query <sql-file>                          run a query, print rows as JSON
  db execute <sql-file>                        run a SQL script
  config get|set|unset|show                    manage stored settings

Every command accepts --db <path>.
`

var errUsage = errors.New("invalid usage")

func main() {
	cli.LoadEnvFile()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	if err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			fmt.Fprint(os.Stderr, usage)
		}
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// run dispatches one command. Output goes to stdout, logs and diagnostics to
// stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: missing command", errUsage)
	}
	a := &app{stdout: stdout, stderr: stderr}

	switch args[0] {
	case "record":
		return a.record(ctx, args[1:])
	case "report":
		return a.report(ctx, args[1:])
	case "db":
		return a.db(ctx, args[1:])
	case "config":
		return a.config(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
}
