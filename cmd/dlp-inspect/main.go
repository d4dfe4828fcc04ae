package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/example/dlp-inspect/internal/cli"
	"github.com/example/dlp-inspect/internal/dlpclient"
	"github.com/example/dlp-inspect/internal/inspector"
	"github.com/example/dlp-inspect/internal/present"
)

// inspectClient is what run needs from the remote service: one inspection
// call and a way to release the connection afterwards.
type inspectClient interface {
	inspector.Client
	Close() error
}

// clientFactory defers dialing until the local inputs are known to be good.
type clientFactory func(ctx context.Context) (inspectClient, error)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, func(ctx context.Context) (inspectClient, error) {
		return dlpclient.New(ctx, zap.NewNop(), 0)
	}))
}

// run executes one inspection: parse arguments, read the image, call the
// service, print the findings. Usage problems exit 2; everything else that
// fails exits 1. Nothing is written to stdout unless the call succeeded.
func run(args []string, stdout, stderr io.Writer, newClient clientFactory) int {
	opts, err := cli.Parse(args, stderr)
	if err != nil {
		return 2
	}

	req, err := inspector.BuildRequest(opts.Project, opts.Filename, opts.InfoTypes, opts.IncludeQuote)
	if err != nil {
		fmt.Fprintf(stderr, "dlp-inspect: %v\n", err)
		return 1
	}

	ctx := context.Background()
	client, err := newClient(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "dlp-inspect: %v\n", err)
		return 1
	}
	defer client.Close()

	res, err := client.Inspect(ctx, req)
	if err != nil {
		fmt.Fprintf(stderr, "dlp-inspect: %v\n", err)
		return 1
	}

	present.Findings(stdout, res, opts.IncludeQuote)
	return 0
}
