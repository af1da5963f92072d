package s3fs

import "io"

// EntryType distinguishes file records from directory entries.
type EntryType string

const (
	// TypeFile marks a record backed by a stored blob.
	TypeFile EntryType = "file"
	// TypeDir marks a synthetic directory entry derived from key prefixes.
	TypeDir EntryType = "dir"
)

// FileMetadata is the normalized record every adapter operation returns.
// Timestamp is always the blob's Last-Modified header in unix seconds.
// Contents is set only when the operation handled raw bytes; Stream is set
// only by ReadStream and the caller must close it. Neither serializes.
type FileMetadata struct {
	Path      string        `json:"path"`
	Type      EntryType     `json:"type"`
	Dirname   string        `json:"dirname"`
	Timestamp int64         `json:"timestamp"`
	Mimetype  string        `json:"mimetype,omitempty"`
	Size      int64         `json:"size"`
	Contents  []byte        `json:"-"`
	Stream    io.ReadCloser `json:"-"`
}

// newFileMetadata builds a file record for an unprefixed public path from
// the blob properties the client returned.
func newFileMetadata(path string, props BlobProperties) *FileMetadata {
	return &FileMetadata{
		Path:      path,
		Type:      TypeFile,
		Dirname:   parentPath(path),
		Timestamp: props.LastModified.Unix(),
		Mimetype:  props.ContentType,
		Size:      props.ContentLength,
	}
}

// newDirMetadata builds a synthetic directory entry. No stored object backs
// it.
func newDirMetadata(path string) FileMetadata {
	return FileMetadata{
		Path:    path,
		Type:    TypeDir,
		Dirname: parentPath(path),
	}
}
