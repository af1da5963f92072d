package s3fs

import "strings"

const separator = "/"

// normalizePrefix reduces a configured root prefix to its canonical form:
// "" for no prefix, otherwise "segment/.../" with a trailing separator and
// no leading one. Keeping one canonical shape makes applying and stripping
// symmetric.
func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, separator)
	if prefix == "" {
		return ""
	}
	return prefix + separator
}

// trimPath canonicalizes a caller-supplied path: no leading or trailing
// separators.
func trimPath(path string) string {
	return strings.Trim(path, separator)
}

// applyPrefix turns a public path into the key submitted to the client.
// prefix must already be normalized.
func applyPrefix(prefix, path string) string {
	return prefix + trimPath(path)
}

// stripPrefix turns a client key back into a public path. It is the inverse
// of applyPrefix for every key the adapter itself produced.
func stripPrefix(prefix, key string) string {
	return strings.TrimPrefix(key, prefix)
}

// dirPrefix converts a directory path into the key prefix matching its
// contents: "" lists the whole container, otherwise "dir/". The trailing
// separator keeps "foo" from matching "foobar.txt".
func dirPrefix(dir string) string {
	dir = trimPath(dir)
	if dir == "" {
		return ""
	}
	return dir + separator
}

// parentPath returns the parent of path, "" for a root-level path.
func parentPath(path string) string {
	if i := strings.LastIndex(path, separator); i >= 0 {
		return path[:i]
	}
	return ""
}

// joinPath appends a segment to a directory path. An empty dir denotes the
// root.
func joinPath(dir, segment string) string {
	if dir == "" {
		return segment
	}
	return dir + separator + segment
}
