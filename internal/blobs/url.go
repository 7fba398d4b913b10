package blobs

import (
	"fmt"
	"path"
	"strings"
)

// ParseBucketURL splits gs://bucket/prefix into its bucket and object
// prefix. The prefix may be empty.
func ParseBucketURL(u string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(u, "gs://")
	if !ok {
		return "", "", fmt.Errorf("bucket URL %q must start with gs://", u)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("bucket URL %q has no bucket name", u)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}

// ObjectKey joins an object prefix and a file name.
func ObjectKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
