package main

import (
	"context"
	"fmt"

	"tally/internal/config"
	"tally/internal/log"
	"tally/internal/storage"
)

func (a *app) config(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: config needs get, set, unset or show", errUsage)
	}
	sub := args[0]

	var common commonFlags
	fs := a.flagSet(sub, &common)
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	var want int
	var names string
	switch sub {
	case "get", "unset":
		want, names = 1, "<key>"
	case "set":
		want, names = 2, "<key> <value>"
	case "show":
		want, names = 0, "no arguments"
	default:
		return fmt.Errorf("%w: unknown config subcommand %q", errUsage, sub)
	}
	rest, err := requireArgs(fs, want, names)
	if err != nil {
		return err
	}

	e, err := a.setup(common)
	if err != nil {
		return err
	}
	defer e.close()
	settings := storage.NewSettings(e.db)
	logger := e.logger.WithComponent(log.ComponentConfig)

	switch sub {
	case "get":
		v, ok, err := settings.Get(ctx, rest[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("config key %q is not set", rest[0])
		}
		fmt.Fprintln(a.stdout, v)
	case "set":
		if err := settings.Set(ctx, rest[0], rest[1]); err != nil {
			return err
		}
		logger.Debug("Setting stored", log.FieldOperation, log.OpConfig, "key", rest[0])
		fmt.Fprintf(a.stdout, "Set %s\n", rest[0])
	case "unset":
		if err := settings.Unset(ctx, rest[0]); err != nil {
			return err
		}
		logger.Debug("Setting removed", log.FieldOperation, log.OpConfig, "key", rest[0])
		fmt.Fprintf(a.stdout, "Unset %s\n", rest[0])
	case "show":
		all, err := settings.All(ctx)
		if err != nil {
			return err
		}
		if len(all) == 0 {
			fmt.Fprintln(a.stdout, "No configuration values set")
			return nil
		}
		for _, entry := range config.Masked(all) {
			fmt.Fprintf(a.stdout, "%s = %s\n", entry.Key, entry.Value)
		}
	}
	return nil
}
