package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/dlp-inspect/internal/inspector"
)

type fakeClient struct {
	lastReq *inspector.Request
	result  *inspector.Result
	err     error
	closed  bool
}

func (f *fakeClient) Inspect(ctx context.Context, req *inspector.Request) (*inspector.Result, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func factoryFor(client *fakeClient, dialed *bool) clientFactory {
	return func(ctx context.Context) (inspectClient, error) {
		if dialed != nil {
			*dialed = true
		}
		return client, nil
	}
}

func writeImage(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.png")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write image file: %v", err)
	}
	return path
}

func TestRunPrintsFindings(t *testing.T) {
	client := &fakeClient{result: &inspector.Result{Findings: []inspector.Finding{
		{InfoType: "EMAIL_ADDRESS", Quote: "a@b.com", Likelihood: inspector.LikelihoodLikely},
		{InfoType: "PHONE_NUMBER", Quote: "555-0100", Likelihood: inspector.LikelihoodVeryLikely},
	}}}

	path := writeImage(t, []byte("fake image bytes"))
	var stdout, stderr bytes.Buffer

	code := run([]string{"--project", "my-project", "--info_types", "EMAIL_ADDRESS,PHONE_NUMBER", path},
		&stdout, &stderr, factoryFor(client, nil))

	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr: %s)", code, stderr.String())
	}

	want := "Info type: EMAIL_ADDRESS\n" +
		"Quote: a@b.com\n" +
		"Likelihood: LIKELY\n" +
		"\n" +
		"Info type: PHONE_NUMBER\n" +
		"Quote: 555-0100\n" +
		"Likelihood: VERY_LIKELY\n" +
		"\n"
	if stdout.String() != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", stdout.String(), want)
	}

	if client.lastReq == nil {
		t.Fatal("expected the client to be called")
	}
	if client.lastReq.Project != "my-project" {
		t.Fatalf("unexpected project: %q", client.lastReq.Project)
	}
	if string(client.lastReq.ImageBytes) != "fake image bytes" {
		t.Fatalf("unexpected image bytes: %q", client.lastReq.ImageBytes)
	}
	if len(client.lastReq.InfoTypes) != 2 || client.lastReq.InfoTypes[0] != "EMAIL_ADDRESS" {
		t.Fatalf("unexpected info types: %v", client.lastReq.InfoTypes)
	}
	if !client.lastReq.IncludeQuote {
		t.Fatal("expected include_quote to default to true")
	}
	if !client.closed {
		t.Fatal("expected the client to be closed")
	}
}

func TestRunSuppressesQuotesWhenDisabled(t *testing.T) {
	client := &fakeClient{result: &inspector.Result{Findings: []inspector.Finding{
		{InfoType: "EMAIL_ADDRESS", Likelihood: inspector.LikelihoodPossible},
	}}}

	path := writeImage(t, []byte("img"))
	var stdout, stderr bytes.Buffer

	code := run([]string{"--project", "my-project", "--info_types", "EMAIL_ADDRESS", "--include_quote=false", path},
		&stdout, &stderr, factoryFor(client, nil))

	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr: %s)", code, stderr.String())
	}
	want := "Info type: EMAIL_ADDRESS\nLikelihood: POSSIBLE\n\n"
	if stdout.String() != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", stdout.String(), want)
	}
	if client.lastReq.IncludeQuote {
		t.Fatal("expected include_quote=false to reach the request")
	}
}

func TestRunPrintsNoFindings(t *testing.T) {
	client := &fakeClient{result: &inspector.Result{}}

	path := writeImage(t, []byte("img"))
	var stdout, stderr bytes.Buffer

	code := run([]string{"--project", "my-project", "--info_types", "EMAIL_ADDRESS", path},
		&stdout, &stderr, factoryFor(client, nil))

	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr: %s)", code, stderr.String())
	}
	if stdout.String() != "No findings.\n" {
		t.Fatalf("unexpected output: %q", stdout.String())
	}
}

func TestRunMissingFileNeverDials(t *testing.T) {
	var dialed bool
	path := filepath.Join(t.TempDir(), "does-not-exist.png")
	var stdout, stderr bytes.Buffer

	code := run([]string{"--project", "my-project", "--info_types", "EMAIL_ADDRESS", path},
		&stdout, &stderr, factoryFor(&fakeClient{}, &dialed))

	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if dialed {
		t.Fatal("expected no dial attempt for an unreadable file")
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected empty stdout, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), path) {
		t.Fatalf("expected stderr to name the file, got %q", stderr.String())
	}
}

func TestRunRemoteFailure(t *testing.T) {
	client := &fakeClient{err: &inspector.RemoteCallError{
		Kind: inspector.RemoteAuth,
		Err:  errors.New("missing credentials"),
	}}

	path := writeImage(t, []byte("img"))
	var stdout, stderr bytes.Buffer

	code := run([]string{"--project", "my-project", "--info_types", "EMAIL_ADDRESS", path},
		&stdout, &stderr, factoryFor(client, nil))

	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected no findings output on failure, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "authentication") {
		t.Fatalf("expected stderr to carry the failure kind, got %q", stderr.String())
	}
	if !client.closed {
		t.Fatal("expected the client to be closed even on failure")
	}
}

func TestRunUsageErrorNeverDials(t *testing.T) {
	var dialed bool
	var stdout, stderr bytes.Buffer

	code := run([]string{"--project", "my-project"}, &stdout, &stderr, factoryFor(&fakeClient{}, &dialed))

	if code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
	if dialed {
		t.Fatal("expected no dial attempt on a usage error")
	}
	if !strings.Contains(stderr.String(), "Usage:") {
		t.Fatalf("expected usage text on stderr, got %q", stderr.String())
	}
}
