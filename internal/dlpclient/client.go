package dlpclient

import (
	"context"
	"time"

	dlp "cloud.google.com/go/dlp/apiv2"
	"cloud.google.com/go/dlp/apiv2/dlppb"
	gax "github.com/googleapis/gax-go/v2"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/dlp-inspect/internal/inspector"
	"github.com/example/dlp-inspect/internal/logging"
)

// inspectService is the slice of the generated DLP client this adapter needs.
type inspectService interface {
	InspectContent(ctx context.Context, req *dlppb.InspectContentRequest, opts ...gax.CallOption) (*dlppb.InspectContentResponse, error)
	Close() error
}

// Client calls the Cloud DLP InspectContent RPC and maps the wire types onto
// the inspector domain types. It does no retrying, caching, or partial-result
// handling: one request, one response, or one classified error.
type Client struct {
	svc         inspectService
	logger      *zap.Logger
	callTimeout time.Duration
}

// New dials the DLP service. Credentials resolve through the Google client
// library (application default credentials) unless the caller passes explicit
// options such as option.WithCredentialsFile or option.WithEndpoint. A zero
// callTimeout leaves each call on the transport's own default.
func New(ctx context.Context, logger *zap.Logger, callTimeout time.Duration, opts ...option.ClientOption) (*Client, error) {
	svc, err := dlp.NewClient(ctx, opts...)
	if err != nil {
		wrapped := logging.NewOperationError("dlpclient.new", "", err)
		logger.Error("failed to create dlp client", zap.Error(wrapped))
		return nil, wrapped
	}
	return &Client{svc: svc, logger: logger, callTimeout: callTimeout}, nil
}

// Inspect sends one synchronous InspectContent request and returns the
// findings in the order the service reported them.
func (c *Client) Inspect(ctx context.Context, req *inspector.Request) (*inspector.Result, error) {
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}

	resp, err := c.svc.InspectContent(ctx, buildInspectContentRequest(req))
	if err != nil {
		remote := classify(err)
		c.logger.Error("inspect content call failed",
			zap.Error(remote),
			zap.String("parent", req.Parent()),
			zap.String("kind", string(remote.Kind)),
		)
		return nil, remote
	}
	return resultFromResponse(resp), nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.svc.Close()
}

func buildInspectContentRequest(req *inspector.Request) *dlppb.InspectContentRequest {
	infoTypes := make([]*dlppb.InfoType, 0, len(req.InfoTypes))
	for _, name := range req.InfoTypes {
		infoTypes = append(infoTypes, &dlppb.InfoType{Name: name})
	}

	return &dlppb.InspectContentRequest{
		Parent: req.Parent(),
		InspectConfig: &dlppb.InspectConfig{
			InfoTypes:    infoTypes,
			IncludeQuote: req.IncludeQuote,
		},
		Item: &dlppb.ContentItem{
			DataItem: &dlppb.ContentItem_ByteItem{
				ByteItem: &dlppb.ByteContentItem{
					Type: dlppb.ByteContentItem_IMAGE,
					Data: req.ImageBytes,
				},
			},
		},
	}
}

func resultFromResponse(resp *dlppb.InspectContentResponse) *inspector.Result {
	findings := resp.GetResult().GetFindings()
	result := &inspector.Result{Findings: make([]inspector.Finding, 0, len(findings))}
	for _, f := range findings {
		result.Findings = append(result.Findings, inspector.Finding{
			InfoType:   f.GetInfoType().GetName(),
			Quote:      f.GetQuote(),
			Likelihood: inspector.Likelihood(f.GetLikelihood().String()),
		})
	}
	return result
}

// classify maps a failed call onto the error taxonomy the rest of the program
// reports. Anything without a recognized gRPC status code counts as transport.
func classify(err error) *inspector.RemoteCallError {
	kind := inspector.RemoteTransport
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unauthenticated:
			kind = inspector.RemoteAuth
		case codes.PermissionDenied:
			kind = inspector.RemotePermission
		case codes.ResourceExhausted:
			kind = inspector.RemoteQuota
		case codes.InvalidArgument:
			kind = inspector.RemoteInvalid
		case codes.Unavailable:
			kind = inspector.RemoteUnavailable
		}
	}
	return &inspector.RemoteCallError{Kind: kind, Err: err}
}
