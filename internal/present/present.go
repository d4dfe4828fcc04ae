// Package present renders inspection results for the command line.
package present

import (
	"fmt"
	"io"

	"github.com/example/dlp-inspect/internal/inspector"
)

// Findings writes one block per finding in the order received. Quotes are
// printed only when they were requested and the service returned one. An
// empty result produces the single fixed no-findings line.
func Findings(w io.Writer, res *inspector.Result, includeQuote bool) {
	if res == nil || len(res.Findings) == 0 {
		fmt.Fprintln(w, "No findings.")
		return
	}

	for _, f := range res.Findings {
		fmt.Fprintf(w, "Info type: %s\n", f.InfoType)
		if includeQuote && f.Quote != "" {
			fmt.Fprintf(w, "Quote: %s\n", f.Quote)
		}
		fmt.Fprintf(w, "Likelihood: %s\n", f.Likelihood)
		fmt.Fprintln(w)
	}
}
