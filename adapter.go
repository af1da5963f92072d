package s3fs

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"
)

// Adapter maps filesystem-style operations onto a flat blob store. It holds
// only immutable configuration fixed at construction; every operation is a
// stateless request/response against the client.
type Adapter struct {
	client    BlobClient
	container string
	prefix    string
	listMode  ListMode
	log       *logrus.Logger
}

// Option configures an Adapter at construction.
type Option func(*Adapter)

// WithPrefix scopes all keys under a root prefix. The prefix is prepended
// before every client call and stripped from every returned record.
func WithPrefix(prefix string) Option {
	return func(a *Adapter) {
		a.prefix = normalizePrefix(prefix)
	}
}

// WithListMode selects how ListContents treats its recursive flag.
func WithListMode(mode ListMode) Option {
	return func(a *Adapter) {
		a.listMode = mode
	}
}

// WithLogger injects a logger. Without it the adapter logs nowhere.
func WithLogger(log *logrus.Logger) Option {
	return func(a *Adapter) {
		a.log = log
	}
}

// New creates an Adapter over client, scoped to one container.
func New(client BlobClient, container string, opts ...Option) *Adapter {
	log := logrus.New()
	log.SetOutput(io.Discard)
	a := &Adapter{
		client:    client,
		container: container,
		listMode:  ListModeFlat,
		log:       log,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) key(path string) string {
	return applyPrefix(a.prefix, path)
}

func (a *Adapter) upload(ctx context.Context, path string, body io.Reader, opts UploadOptions) (*FileMetadata, error) {
	props, err := a.client.CreateOrReplaceBlob(ctx, a.container, a.key(path), body, opts)
	if err != nil {
		return nil, err
	}
	return newFileMetadata(trimPath(path), props), nil
}

// Write uploads contents as a new blob at path, overwriting any existing
// blob. Option fields are passed through to the create call unmodified when
// set. The returned record includes Contents.
func (a *Adapter) Write(ctx context.Context, path string, contents []byte, opts UploadOptions) (*FileMetadata, error) {
	meta, err := a.upload(ctx, path, bytes.NewReader(contents), opts)
	if err != nil {
		return nil, err
	}
	meta.Contents = contents
	return meta, nil
}

// Update replaces the blob at path. The store has no distinct create vs
// replace semantics, so this is Write under another name.
func (a *Adapter) Update(ctx context.Context, path string, contents []byte, opts UploadOptions) (*FileMetadata, error) {
	return a.Write(ctx, path, contents, opts)
}

// WriteStream uploads from r without buffering it in memory. The returned
// record carries no Contents.
func (a *Adapter) WriteStream(ctx context.Context, path string, r io.Reader, opts UploadOptions) (*FileMetadata, error) {
	return a.upload(ctx, path, r, opts)
}

// UpdateStream replaces the blob at path from r. Same routine as
// WriteStream.
func (a *Adapter) UpdateStream(ctx context.Context, path string, r io.Reader, opts UploadOptions) (*FileMetadata, error) {
	return a.WriteStream(ctx, path, r, opts)
}

// Read fetches the blob at path and drains its content fully into the
// returned record's Contents.
func (a *Adapter) Read(ctx context.Context, path string) (*FileMetadata, error) {
	blob, err := a.client.GetBlob(ctx, a.container, a.key(path))
	if err != nil {
		return nil, err
	}
	defer blob.Body.Close()
	contents, err := io.ReadAll(blob.Body)
	if err != nil {
		return nil, err
	}
	meta := newFileMetadata(trimPath(path), blob.Properties)
	meta.Contents = contents
	return meta, nil
}

// ReadStream fetches the blob at path and hands back its content stream
// un-drained in the record's Stream field. Closing it is the caller's
// responsibility.
func (a *Adapter) ReadStream(ctx context.Context, path string) (*FileMetadata, error) {
	blob, err := a.client.GetBlob(ctx, a.container, a.key(path))
	if err != nil {
		return nil, err
	}
	meta := newFileMetadata(trimPath(path), blob.Properties)
	meta.Stream = blob.Body
	return meta, nil
}

// Has probes whether a blob exists at path. A not-found probe result maps
// to (false, nil); every other error is returned unchanged so that
// transient, auth, or server failures are never mistaken for an absent
// file.
func (a *Adapter) Has(ctx context.Context, path string) (bool, error) {
	_, err := a.client.GetBlobMetadata(ctx, a.container, a.key(path))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete removes the blob at path. It performs no existence check; whether
// deleting a missing blob fails is up to the client.
func (a *Adapter) Delete(ctx context.Context, path string) (bool, error) {
	if err := a.client.DeleteBlob(ctx, a.container, a.key(path)); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteDir removes every blob under dirname, one delete call per blob in
// listing order. There is no atomicity: a failure partway aborts and leaves
// the earlier deletions in place.
func (a *Adapter) DeleteDir(ctx context.Context, dirname string) (bool, error) {
	prefix := a.prefix + dirPrefix(trimPath(dirname))
	result, err := a.client.ListBlobs(ctx, a.container, ListOptions{Prefix: prefix})
	if err != nil {
		return false, err
	}
	a.log.WithFields(logrus.Fields{
		"dir":   dirname,
		"blobs": len(result.Blobs),
	}).Debug("deleting directory contents")
	for _, blob := range result.Blobs {
		if err := a.client.DeleteBlob(ctx, a.container, blob.Name); err != nil {
			return false, err
		}
	}
	return true, nil
}

// CreateDir returns a directory record without touching the store. Flat
// object stores have no directory primitive, so there is nothing to create;
// directories exist implicitly through the keys beneath them. ctx and opts
// are accepted for signature parity with the writing operations and
// ignored.
func (a *Adapter) CreateDir(ctx context.Context, dirname string, opts UploadOptions) *FileMetadata {
	meta := newDirMetadata(trimPath(dirname))
	return &meta
}

// Copy performs a server-side copy of the blob at path to newpath.
func (a *Adapter) Copy(ctx context.Context, path, newpath string) (bool, error) {
	if err := a.client.CopyBlob(ctx, a.container, a.key(newpath), a.container, a.key(path)); err != nil {
		return false, err
	}
	return true, nil
}

// Rename copies the blob at path to newpath, then deletes the source. The
// two steps are not atomic: if the delete fails after a successful copy,
// both blobs remain and the delete error is returned.
func (a *Adapter) Rename(ctx context.Context, path, newpath string) (bool, error) {
	if ok, err := a.Copy(ctx, path, newpath); !ok {
		return false, err
	}
	return a.Delete(ctx, path)
}

// ListContents lists the entries under directory: file records for stored
// blobs and synthetic directory entries derived from key prefixes. How the
// recursive flag is honored depends on the adapter's ListMode.
func (a *Adapter) ListContents(ctx context.Context, directory string, recursive bool) ([]FileMetadata, error) {
	dir := trimPath(directory)
	opts := ListOptions{Prefix: a.prefix + dirPrefix(dir)}
	if a.listMode == ListModeHierarchical && !recursive {
		opts.Delimiter = separator
	}
	result, err := a.client.ListBlobs(ctx, a.container, opts)
	if err != nil {
		return nil, err
	}
	stripped := &ListResult{
		Blobs:    make([]BlobItem, 0, len(result.Blobs)),
		Prefixes: make([]string, 0, len(result.Prefixes)),
	}
	for _, blob := range result.Blobs {
		stripped.Blobs = append(stripped.Blobs, BlobItem{
			Name:       stripPrefix(a.prefix, blob.Name),
			Properties: blob.Properties,
		})
	}
	for _, p := range result.Prefixes {
		stripped.Prefixes = append(stripped.Prefixes, stripPrefix(a.prefix, p))
	}
	if a.listMode == ListModeHierarchical && recursive {
		return expandedEntries(dir, stripped), nil
	}
	return flatEntries(dir, stripped), nil
}

// GetMetadata probes the blob at path and returns its full normalized
// record.
func (a *Adapter) GetMetadata(ctx context.Context, path string) (*FileMetadata, error) {
	props, err := a.client.GetBlobMetadata(ctx, a.container, a.key(path))
	if err != nil {
		return nil, err
	}
	return newFileMetadata(trimPath(path), props), nil
}

// GetSize returns the full record for path; callers read Size from it.
func (a *Adapter) GetSize(ctx context.Context, path string) (*FileMetadata, error) {
	return a.GetMetadata(ctx, path)
}

// GetMimetype returns the full record for path; callers read Mimetype from
// it.
func (a *Adapter) GetMimetype(ctx context.Context, path string) (*FileMetadata, error) {
	return a.GetMetadata(ctx, path)
}

// GetTimestamp returns the full record for path; callers read Timestamp
// from it.
func (a *Adapter) GetTimestamp(ctx context.Context, path string) (*FileMetadata, error) {
	return a.GetMetadata(ctx, path)
}
