package inspector

import "fmt"

// FileReadError reports a failure to load the local content that was to be inspected.
type FileReadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *FileReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *FileReadError) Unwrap() error {
	return e.Err
}

// RemoteErrorKind classifies why a remote inspection call failed.
type RemoteErrorKind string

const (
	RemoteAuth        RemoteErrorKind = "authentication"
	RemotePermission  RemoteErrorKind = "permission"
	RemoteQuota       RemoteErrorKind = "quota"
	RemoteInvalid     RemoteErrorKind = "invalid request"
	RemoteUnavailable RemoteErrorKind = "unavailable"
	RemoteTransport   RemoteErrorKind = "transport"
)

// RemoteCallError wraps a failure of the remote inspection service with its cause.
// It is terminal: no caller retries it.
type RemoteCallError struct {
	Kind RemoteErrorKind
	Err  error
}

// Error implements the error interface.
func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("inspection service (%s): %v", e.Kind, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *RemoteCallError) Unwrap() error {
	return e.Err
}
