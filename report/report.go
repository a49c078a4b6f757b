package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/valyala/fasttemplate"

	"github.com/byte4ever/integrity_check/checker"
)

// Format selects how a result is rendered.
type Format string

// Supported formats.
const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatTemplate Format = "template"
)

// Status values exposed to line templates as {status}.
const (
	StatusModified  = "modified"
	StatusUntracked = "untracked"
)

// ErrUnknownFormat is returned for a format name that is not
// supported.
var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat validates a format name. Empty selects text.
func ParseFormat(name string) (Format, error) {
	switch fo := Format(strings.ToLower(strings.TrimSpace(name))); fo {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML, FormatTemplate:
		return fo, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Options controls rendering.
type Options struct {
	// Format selects the renderer. Empty means text.
	Format Format

	// Template is the line template used by FormatTemplate.
	// Known tags are {path} and {status}; unknown tags are
	// kept as-is.
	Template string
}

// document is the serialised form shared by the json and
// yaml renderers. Lists are never null.
type document struct {
	Reinitialized bool     `json:"reinitialized" yaml:"reinitialized"`
	Scanned       int      `json:"scanned"       yaml:"scanned"`
	Skipped       []string `json:"skipped"       yaml:"skipped"`
	Discrepancies []string `json:"discrepancies" yaml:"discrepancies"`
	Untracked     []string `json:"untracked"     yaml:"untracked"`
}

// Write renders res to w.
func Write(w io.Writer, res checker.Result, opts Options) error {
	const errCtx = "writing report"

	var err error

	switch opts.Format {
	case "", FormatText:
		err = writeText(w, res)
	case FormatJSON:
		err = writeJSON(w, res)
	case FormatYAML:
		err = writeYAML(w, res)
	case FormatTemplate:
		err = writeTemplate(w, res, opts.Template)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}

	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

func writeText(w io.Writer, res checker.Result) error {
	var sb strings.Builder

	for _, pa := range res.Skipped {
		sb.WriteString("Skipping non-file: ")
		sb.WriteString(pa)
		sb.WriteByte('\n')
	}

	switch {
	case res.Reinitialized:
		sb.WriteString("Hashes re-initialized.\n")
	case res.Clean():
		sb.WriteString("No discrepancies found.\n")
	default:
		sb.WriteString("Discrepancies found in the following files:\n")

		for _, pa := range res.Discrepancies {
			sb.WriteString(pa)
			sb.WriteByte('\n')
		}
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

func writeJSON(w io.Writer, res checker.Result) error {
	data, err := json.MarshalIndent(toDocument(res), "", "  ")
	if err != nil {
		return err
	}

	_, err = w.Write(append(data, '\n'))

	return err
}

func writeYAML(w io.Writer, res checker.Result) error {
	data, err := yaml.Marshal(toDocument(res))
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

func writeTemplate(w io.Writer, res checker.Result, tpl string) error {
	if tpl == "" {
		return errors.New("template format requires a template")
	}

	if !strings.HasSuffix(tpl, "\n") {
		tpl += "\n"
	}

	t, err := fasttemplate.NewTemplate(tpl, "{", "}")
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}

	render := func(status string, paths []string) error {
		for _, pa := range paths {
			if _, err := t.ExecuteFunc(w, lineTags(status, pa)); err != nil {
				return err
			}
		}

		return nil
	}

	if err := render(StatusModified, res.Discrepancies); err != nil {
		return err
	}

	return render(StatusUntracked, res.Untracked)
}

// lineTags resolves {path} and {status}, writing any other
// tag back unchanged.
func lineTags(status, path string) fasttemplate.TagFunc {
	return func(w io.Writer, tag string) (int, error) {
		switch tag {
		case "path":
			return io.WriteString(w, path)
		case "status":
			return io.WriteString(w, status)
		default:
			return io.WriteString(w, "{"+tag+"}")
		}
	}
}

func toDocument(res checker.Result) document {
	return document{
		Reinitialized: res.Reinitialized,
		Scanned:       res.Scanned,
		Skipped:       nonNil(res.Skipped),
		Discrepancies: nonNil(res.Discrepancies),
		Untracked:     nonNil(res.Untracked),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
