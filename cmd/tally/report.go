package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"tally/internal/config"
	"tally/internal/log"
	"tally/internal/render"
	"tally/internal/report"
	"tally/internal/storage"
)

var defaultOutPaths = map[string]string{
	config.OutputPDF:  "report.pdf",
	config.OutputXLSX: "report.xlsx",
}

func (a *app) report(ctx context.Context, args []string) error {
	var common commonFlags
	fs := a.flagSet("report", &common)
	output := fs.String("output", "", "output format: text, pdf or xlsx (default $TALLY_REPORT_OUTPUT)")
	out := fs.String("out", "", "output path; text goes to stdout when empty")
	logo := fs.String("logo", "", "logo image for the pdf (default $TALLY_LOGO_PATH)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return fmt.Errorf("%w: report takes no arguments", errUsage)
	}

	e, err := a.setup(common, func(c *config.Config) {
		if *output != "" {
			c.ReportOutput = *output
		}
		if *logo != "" {
			c.LogoPath = *logo
		}
	})
	if err != nil {
		return err
	}
	defer e.close()
	ctx = log.NewContext(ctx, e.logger)

	start := time.Now()
	rep, err := report.NewService(storage.NewSQLiteRepository(e.db)).Build(ctx)
	if err != nil {
		return err
	}

	renderer, err := render.New(e.cfg.ReportOutput, e.cfg.LogoPath)
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = defaultOutPaths[e.cfg.ReportOutput]
	}
	if path == "" {
		if err := renderer.Render(a.stdout, rep); err != nil {
			return fmt.Errorf("render report: %w", err)
		}
	} else {
		if err := writeReport(path, renderer, rep); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Report written to %s\n", path)
	}

	e.logger.WithComponent(log.ComponentReport).Info("Report generated",
		log.FieldOperation, log.OpReport,
		log.FieldLastDate, rep.LastDate,
		log.FieldFormat, e.cfg.ReportOutput,
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

func writeReport(path string, renderer render.Renderer, rep report.SpendingReport) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close report file: %w", cerr)
		}
	}()
	if err := renderer.Render(f, rep); err != nil {
		return fmt.Errorf("render report to %s: %w", path, err)
	}
	return nil
}
