// Command integrity_check records SHA256 digests of the files in a
// directory (or of a single file) and later reports which of them
// changed since the recorded baseline.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/byte4ever/integrity_check/checker"
	"github.com/byte4ever/integrity_check/config"
	"github.com/byte4ever/integrity_check/report"
	"github.com/byte4ever/integrity_check/snapshot"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	const errCtx = "running integrity_check"

	fs := flag.NewFlagSet("integrity_check", flag.ContinueOnError)

	reinitialize := fs.Bool(
		"reinitialize", false,
		"Overwrite the stored hashes instead of comparing",
	)
	configPath := fs.String(
		"config", "",
		"Optional YAML configuration file",
	)
	storePath := fs.String(
		"store", snapshot.DefaultPath,
		"Location of the stored hashes",
	)
	format := fs.String(
		"format", string(report.FormatText),
		"Report format: text, json, yaml or template",
	)
	tpl := fs.String(
		"template", "",
		"Line template for --format=template ({path}, {status})",
	)

	fs.Usage = func() {
		fmt.Fprint( //nolint:errcheck // usage is best effort
			fs.Output(),
			"usage: integrity_check [flags] <path>\n\n"+
				"Check file integrity using SHA-256 hashes.\n"+
				"<path> is a directory or a single log file.\n\n",
		)
		fs.PrintDefaults()
	}

	path, err := parseArgs(fs, args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "store":
			cfg.StorePath = *storePath
		case "format":
			cfg.Format = *format
		case "template":
			cfg.Template = *tpl
		}
	})

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	targets, err := checker.Targets(path)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	ch := checker.New(checker.Config{
		Store: snapshot.NewStore(cfg.StorePath),
	})

	res, err := ch.Check(targets, *reinitialize)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := report.Write(stdout, res, cfg.ReportOptions()); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// parseArgs parses flags placed before or after the single
// positional path argument. Everything after a "--"
// terminator is positional.
func parseArgs(fs *flag.FlagSet, args []string) (string, error) {
	var positional []string

	for {
		if err := fs.Parse(args); err != nil {
			return "", err
		}

		rest := fs.Args()

		if consumed := len(args) - len(rest); consumed > 0 &&
			args[consumed-1] == "--" {
			positional = append(positional, rest...)

			break
		}

		if len(rest) == 0 {
			break
		}

		positional = append(positional, rest[0])
		args = rest[1:]
	}

	switch len(positional) {
	case 1:
		return positional[0], nil
	case 0:
		return "", errors.New("missing path argument")
	default:
		return "", fmt.Errorf(
			"expected one path argument, got %d", len(positional),
		)
	}
}
