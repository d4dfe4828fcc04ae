// Package cli parses the invocation arguments of the dlp-inspect command.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// Options is the validated tuple of inputs for one inspection run.
type Options struct {
	Project      string
	Filename     string
	InfoTypes    []string
	IncludeQuote bool
}

// UsageError reports invalid or missing command line arguments. It is local
// and terminal; callers exit without retrying.
type UsageError struct {
	Msg string
}

// Error implements the error interface.
func (e *UsageError) Error() string {
	return e.Msg
}

// infoTypeList collects --info_types values. The flag may be repeated and each
// value may carry several comma separated labels; order and duplicates are
// preserved as given.
type infoTypeList []string

// String returns the string representation of the collected labels.
func (l *infoTypeList) String() string {
	return strings.Join(*l, ",")
}

// Set appends the comma separated labels of one flag occurrence.
func (l *infoTypeList) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

// Parse validates args into Options. All diagnostics, including the usage
// text, are written to stderr; the returned error is always a *UsageError so
// the caller only has to pick the exit code.
func Parse(args []string, stderr io.Writer) (*Options, error) {
	fs := flag.NewFlagSet("dlp-inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s --project <id> --info_types <TYPE[,TYPE...]> [--include_quote=<bool>] <filename>\n", fs.Name())
		fs.PrintDefaults()
	}

	var infoTypes infoTypeList
	project := fs.String("project", "", "Google Cloud project id to use as the parent resource")
	includeQuote := fs.Bool("include_quote", true, "include a snippet of the matched text with each finding")
	fs.Var(&infoTypes, "info_types", "info type labels to look for, repeatable or comma separated (e.g. EMAIL_ADDRESS,PHONE_NUMBER)")

	if err := fs.Parse(args); err != nil {
		// The flag package already printed the problem and the usage text.
		return nil, &UsageError{Msg: err.Error()}
	}

	if err := validate(*project, infoTypes, fs.NArg()); err != nil {
		fmt.Fprintln(stderr, err.Error())
		fs.Usage()
		return nil, err
	}

	return &Options{
		Project:      *project,
		Filename:     fs.Arg(0),
		InfoTypes:    infoTypes,
		IncludeQuote: *includeQuote,
	}, nil
}

func validate(project string, infoTypes []string, positionals int) *UsageError {
	switch {
	case positionals == 0:
		return &UsageError{Msg: "missing required argument: <filename>"}
	case positionals > 1:
		return &UsageError{Msg: fmt.Sprintf("expected exactly one filename, got %d arguments (flags must come before the filename)", positionals)}
	case project == "":
		return &UsageError{Msg: "missing required flag: --project"}
	case len(infoTypes) == 0:
		return &UsageError{Msg: "missing required flag: --info_types"}
	}
	return nil
}
