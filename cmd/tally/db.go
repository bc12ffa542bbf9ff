package main

import (
	"context"
	"encoding/json"
	"fmt"

	"tally/internal/log"
)

func (a *app) db(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: db needs query or execute", errUsage)
	}
	sub := args[0]
	if sub != "query" && sub != "execute" {
		return fmt.Errorf("%w: unknown db subcommand %q", errUsage, sub)
	}

	var common commonFlags
	fs := a.flagSet(sub, &common)
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	rest, err := requireArgs(fs, 1, "<sql-file>")
	if err != nil {
		return err
	}

	e, err := a.setup(common)
	if err != nil {
		return err
	}
	defer e.close()
	logger := e.logger.WithComponent(log.ComponentStorage)

	if sub == "execute" {
		if err := e.db.ExecuteFile(ctx, rest[0]); err != nil {
			return err
		}
		logger.Info("Script executed", log.FieldOperation, log.OpExecute, log.FieldPath, rest[0])
		fmt.Fprintf(a.stdout, "Executed %s\n", rest[0])
		return nil
	}

	rows, err := e.db.QueryFile(ctx, rest[0])
	if err != nil {
		return err
	}
	logger.Debug("Query returned", log.FieldOperation, log.OpQuery, "rows", len(rows))
	if len(rows) == 0 {
		fmt.Fprintln(a.stdout, "No results returned")
		return nil
	}
	out, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}
	fmt.Fprintln(a.stdout, string(out))
	return nil
}
