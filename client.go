package s3fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrNotFound reports that the requested blob does not exist in the backing
// store. Client implementations signal a 404-class probe failure by
// returning an error that unwraps to it.
var ErrNotFound = errors.New("blob not found")

// NotFoundError wraps a backing store's native not-found error so that
// callers can match errors.Is(err, ErrNotFound) while the original error
// stays reachable through errors.As.
type NotFoundError struct {
	Key string
	Err error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("blob %q not found: %v", e.Key, e.Err)
}

func (e *NotFoundError) Unwrap() []error {
	return []error{ErrNotFound, e.Err}
}

// BlobProperties carries the metadata the store keeps alongside a blob.
type BlobProperties struct {
	LastModified  time.Time
	ContentType   string
	ContentLength int64
}

// Blob is a fetched blob: its properties plus the un-drained content stream.
// The receiver owns Body and must close it.
type Blob struct {
	Properties BlobProperties
	Body       io.ReadCloser
}

// BlobItem is a single blob as returned by a listing call.
type BlobItem struct {
	Name       string
	Properties BlobProperties
}

// ListOptions narrows a listing call. Delimiter, when set, makes the store
// group keys server-side and report the groups as common prefixes.
type ListOptions struct {
	Prefix    string
	Delimiter string
}

// ListResult is the raw outcome of a listing call: the matching blobs plus
// any common prefixes (virtual subfolder markers) the store reported.
type ListResult struct {
	Blobs    []BlobItem
	Prefixes []string
}

// UploadOptions are the optional fields forwarded verbatim to the backing
// create call when set.
type UploadOptions struct {
	ContentType     string
	CacheControl    string
	ContentLanguage string
	ContentEncoding string
	Metadata        map[string]string
}

// BlobClient defines the capability set the adapter needs from a blob
// storage service. The transport, authentication, and retry behavior all
// live behind this interface.
type BlobClient interface {
	// CreateOrReplaceBlob uploads body to key, overwriting any existing
	// blob, and returns the stored blob's properties.
	CreateOrReplaceBlob(ctx context.Context, container, key string, body io.Reader, opts UploadOptions) (BlobProperties, error)

	// GetBlob fetches a blob's properties together with its content stream.
	GetBlob(ctx context.Context, container, key string) (*Blob, error)

	// GetBlobMetadata probes a blob's properties without fetching content.
	// A missing blob yields an error unwrapping to ErrNotFound; any other
	// failure is returned as the store's native error.
	GetBlobMetadata(ctx context.Context, container, key string) (BlobProperties, error)

	// DeleteBlob removes a blob. Deleting a blob that does not exist is not
	// required to be an error.
	DeleteBlob(ctx context.Context, container, key string) error

	// CopyBlob performs a server-side copy from the source blob to destKey.
	CopyBlob(ctx context.Context, container, destKey, srcContainer, srcKey string) error

	// ListBlobs returns every blob whose key matches opts.Prefix, plus any
	// common prefixes when a delimiter is set.
	ListBlobs(ctx context.Context, container string, opts ListOptions) (*ListResult, error)
}
