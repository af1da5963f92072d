package s3fs

import "strings"

// ListMode selects how ListContents treats its recursive flag. The backing
// listing call matches a flat key prefix regardless of depth, so the two
// modes are different reconciliations of that flat result with the
// hierarchical model callers expect.
type ListMode int

const (
	// ListModeFlat ignores the recursive flag: both values collapse deeper
	// keys into first-level synthetic directory entries of one flat listing.
	ListModeFlat ListMode = iota
	// ListModeHierarchical honors the flag: shallow listings delegate
	// grouping to the store via a delimiter, recursive listings expand every
	// key plus an entry for each intermediate directory.
	ListModeHierarchical
)

// flatEntries converts a listing of dir into the collapsed directory view:
// a file record per direct child key, a synthetic directory entry the first
// time a deeper key's first-level segment is seen, and the store's common
// prefixes appended as directory entries after the blob-derived ones. Names
// in result must already be unprefixed. Pure function, no client calls.
func flatEntries(dir string, result *ListResult) []FileMetadata {
	prefix := dirPrefix(dir)
	seen := make(map[string]bool)
	entries := []FileMetadata{}
	for _, blob := range result.Blobs {
		rest := strings.TrimPrefix(blob.Name, prefix)
		if rest == "" {
			// A key equal to the listed directory itself (console-created
			// "dir/" placeholder object).
			continue
		}
		if i := strings.Index(rest, separator); i >= 0 {
			path := joinPath(dir, rest[:i])
			if !seen[path] {
				seen[path] = true
				entries = append(entries, newDirMetadata(path))
			}
			continue
		}
		entries = append(entries, *newFileMetadata(joinPath(dir, rest), blob.Properties))
	}
	for _, p := range result.Prefixes {
		path := strings.TrimSuffix(p, separator)
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		entries = append(entries, newDirMetadata(path))
	}
	return entries
}

// expandedEntries converts a listing of dir into the fully hierarchical
// view: a file record per key at any depth, preceded by a directory entry
// for each of its not-yet-seen ancestors below dir, shallowest first.
// Common prefixes are appended like in flatEntries.
func expandedEntries(dir string, result *ListResult) []FileMetadata {
	prefix := dirPrefix(dir)
	seen := make(map[string]bool)
	entries := []FileMetadata{}
	for _, blob := range result.Blobs {
		rest := strings.TrimPrefix(blob.Name, prefix)
		if rest == "" {
			continue
		}
		segments := strings.Split(rest, separator)
		ancestor := dir
		for _, segment := range segments[:len(segments)-1] {
			ancestor = joinPath(ancestor, segment)
			if !seen[ancestor] {
				seen[ancestor] = true
				entries = append(entries, newDirMetadata(ancestor))
			}
		}
		entries = append(entries, *newFileMetadata(joinPath(dir, rest), blob.Properties))
	}
	for _, p := range result.Prefixes {
		path := strings.TrimSuffix(p, separator)
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		entries = append(entries, newDirMetadata(path))
	}
	return entries
}
