package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"gradeaudit/internal/audit"
	"gradeaudit/internal/view"
)

var errNoCourses = errors.New("at least one course id is required")

type batchRunner interface {
	Run(ctx context.Context, courseIDs []string) audit.BatchResult
}

type commandLine struct {
	runner batchRunner
	webURL string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// run parses args (without the program name). Course ids come from the
// positional arguments, or from stdin when there are none.
func (cli *commandLine) run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("audit", flag.ContinueOnError)
	fs.SetOutput(cli.stderr)
	asJSON := fs.Bool("json", false, "print the batch result as JSON instead of tables")
	fs.Usage = func() {
		fmt.Fprintln(cli.stderr, "Usage:")
		fmt.Fprintln(cli.stderr, "  audit [-json] COURSE_ID [COURSE_ID ...]")
		fmt.Fprintln(cli.stderr, "  echo '123456, 234567' | audit [-json]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	raw := strings.Join(fs.Args(), " ")
	if raw == "" && cli.stdin != nil {
		data, err := io.ReadAll(cli.stdin)
		if err != nil {
			return fmt.Errorf("read course ids: %w", err)
		}
		raw = string(data)
	}
	ids := audit.ParseCourseIDs(raw)
	if len(ids) == 0 {
		fs.Usage()
		return errNoCourses
	}

	batch := cli.runner.Run(ctx, ids)

	if *asJSON {
		enc := json.NewEncoder(cli.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(batch)
	}
	view.New(cli.stdout, cli.webURL).Batch(batch)
	return nil
}
