package main

import (
	"context"
	"fmt"

	"tally/internal/cli"
	"tally/internal/config"
	"tally/internal/ingest"
	"tally/internal/log"
	"tally/internal/statement"
	"tally/internal/storage"
)

func (a *app) record(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: record needs a subcommand", errUsage)
	}
	switch args[0] {
	case "ingest-file":
		return a.ingestFile(ctx, args[1:])
	case "tag":
		return a.tag(ctx, args[1:], true)
	case "untag":
		return a.tag(ctx, args[1:], false)
	case "tags":
		return a.listTags(ctx, args[1:])
	case "mappings":
		return a.listMappings(args[1:])
	}
	return fmt.Errorf("%w: unknown record subcommand %q", errUsage, args[0])
}

func (a *app) ingestFile(ctx context.Context, args []string) error {
	var common commonFlags
	fs := a.flagSet("ingest-file", &common)
	mappingName := fs.String("mapping", statement.AutoDetect, "header mapping name, or auto")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest, err := requireArgs(fs, 1, "<path>")
	if err != nil {
		return err
	}

	e, err := a.setup(common)
	if err != nil {
		return err
	}
	defer e.close()
	ctx = log.NewContext(ctx, e.logger)

	registry, err := cli.LoadMappings(e.cfg.MappingsFile)
	if err != nil {
		return err
	}
	rules, err := cli.LoadTagRules(e.cfg.TagRulesFile)
	if err != nil {
		return err
	}

	ing := ingest.New(storage.NewSQLiteRepository(e.db), rules)
	res, err := ing.IngestFile(ctx, statement.NewNormalizer(registry), rest[0], *mappingName)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", rest[0], err)
	}

	fields := log.NewFields().
		WithIngest(res.Source, res.Mapping, res.Inserted, res.Skipped).
		WithOperation(log.OpIngest)
	e.logger.WithComponent(log.ComponentApp).Debug("Ingest finished", fields.ToSlice()...)

	fmt.Fprintf(a.stdout, "Ingested %d record(s) from %s (%d skipped)\n", res.Inserted, res.Source, res.Skipped)
	return nil
}

func (a *app) tag(ctx context.Context, args []string, add bool) error {
	var common commonFlags
	name := "untag"
	if add {
		name = "tag"
	}
	fs := a.flagSet(name, &common)
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest, err := requireArgs(fs, 2, "<record-id> <tag>")
	if err != nil {
		return err
	}

	e, err := a.setup(common)
	if err != nil {
		return err
	}
	defer e.close()

	repo := storage.NewSQLiteRepository(e.db)
	id, tagName := rest[0], rest[1]
	logger := e.logger.WithComponent(log.ComponentStorage)
	if add {
		if err := repo.AddTag(ctx, id, tagName); err != nil {
			return err
		}
		logger.Debug("Tag added", log.FieldOperation, log.OpTag, "record_id", id, "tag", tagName)
		fmt.Fprintf(a.stdout, "Tagged %s with %s\n", id, tagName)
		return nil
	}
	if err := repo.RemoveTag(ctx, id, tagName); err != nil {
		return err
	}
	logger.Debug("Tag removed", log.FieldOperation, log.OpUntag, "record_id", id, "tag", tagName)
	fmt.Fprintf(a.stdout, "Removed %s from %s\n", tagName, id)
	return nil
}

func (a *app) listTags(ctx context.Context, args []string) error {
	var common commonFlags
	fs := a.flagSet("tags", &common)
	if err := fs.Parse(args); err != nil {
		return err
	}
	e, err := a.setup(common)
	if err != nil {
		return err
	}
	defer e.close()

	tags, err := storage.NewSQLiteRepository(e.db).ListTags(ctx)
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		fmt.Fprintln(a.stdout, "No tags")
		return nil
	}
	for _, t := range tags {
		fmt.Fprintf(a.stdout, "%s\t%d\n", t.Name, t.Records)
	}
	return nil
}

func (a *app) listMappings(args []string) error {
	var common commonFlags
	fs := a.flagSet("mappings", &common)
	if err := fs.Parse(args); err != nil {
		return err
	}
	// Only configuration is needed; no store.
	cfg := config.Load()
	registry, err := cli.LoadMappings(cfg.MappingsFile)
	if err != nil {
		return err
	}
	for _, m := range registry.All() {
		fmt.Fprintf(a.stdout, "%s: date=%q description=%q amount=%q\n", m.Name, m.Date, m.Description, m.Amount)
	}
	return nil
}
