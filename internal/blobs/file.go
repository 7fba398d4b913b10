package blobs

import (
	"bytes"
	"context"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strings"

	"k8s.io/klog/v2"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// FileInfo describes the file at path as a blob stored under key.
func FileInfo(path string, key string) (BlobInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return BlobInfo{}, fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	h := crc32.New(castagnoli)
	if _, err := io.Copy(h, f); err != nil {
		return BlobInfo{}, fmt.Errorf("hashing %q: %w", path, err)
	}
	return BlobInfo{
		Key:         key,
		CRC32C:      h.Sum32(),
		ContentType: contentType(path),
	}, nil
}

func contentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// WriteFile writes data to destinationPath through a temp file in the same
// directory, so readers never observe a partial file.
func WriteFile(ctx context.Context, data []byte, destinationPath string) error {
	_, err := writeToFile(ctx, bytes.NewReader(data), destinationPath)
	return err
}

func writeToFile(ctx context.Context, src io.Reader, destinationPath string) (int64, error) {
	log := klog.FromContext(ctx)

	dir := filepath.Dir(destinationPath)
	tempFile, err := os.CreateTemp(dir, "."+filepath.Base(destinationPath)+".tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}

	shouldDeleteTempFile := true
	defer func() {
		if shouldDeleteTempFile {
			if err := os.Remove(tempFile.Name()); err != nil {
				log.Error(err, "removing temp file", "path", tempFile.Name())
			}
		}
	}()

	shouldCloseTempFile := true
	defer func() {
		if shouldCloseTempFile {
			if err := tempFile.Close(); err != nil {
				log.Error(err, "closing temp file", "path", tempFile.Name())
			}
		}
	}()

	n, err := io.Copy(tempFile, src)
	if err != nil {
		return n, fmt.Errorf("writing temp file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return n, fmt.Errorf("closing temp file: %w", err)
	}
	shouldCloseTempFile = false

	// CreateTemp uses 0600; published artifacts are world-readable.
	if err := os.Chmod(tempFile.Name(), 0o644); err != nil {
		return n, fmt.Errorf("setting permissions on temp file: %w", err)
	}

	if err := os.Rename(tempFile.Name(), destinationPath); err != nil {
		return n, fmt.Errorf("renaming temp file: %w", err)
	}
	shouldDeleteTempFile = false

	return n, nil
}
