// Package main uploads generated models to a GCS bucket, or restores them
// from one.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"k8s.io/klog/v2"

	"github.com/stylegen/stylegen/internal/blobs"
	"github.com/stylegen/stylegen/internal/generate"
	"github.com/stylegen/stylegen/internal/style"
)

func main() {
	code := realMain(context.Background(), os.Args[1:], os.Getenv, newGCSBlobstore)
	klog.Flush()
	os.Exit(code)
}

// realMain runs the command and returns its exit status.
func realMain(ctx context.Context, args []string, getenv func(string) string, newStore func(bucket string) blobs.Blobstore) int {
	if err := run(ctx, args, getenv, newStore); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	return 0
}

func newGCSBlobstore(bucket string) blobs.Blobstore {
	return &blobs.GCSBlobstore{Bucket: bucket}
}

type config struct {
	dir    string
	bucket string
	prefix string
	pull   bool
}

func parseFlags(args []string, getenv func(string) string) (config, error) {
	cfg := config{dir: generate.DefaultOptions().OutputDir}
	bucketURL := getenv("MODELS_BUCKET")

	fs := flag.NewFlagSet("publish-models", flag.ContinueOnError)
	fs.StringVar(&cfg.dir, "dir", cfg.dir, "directory holding the generated models")
	fs.StringVar(&bucketURL, "bucket", bucketURL, "destination bucket URL (gs://<bucket>/<prefix>)")
	fs.BoolVar(&cfg.pull, "pull", cfg.pull, "download the models listed in the bucket's manifest instead of uploading")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	if bucketURL == "" {
		return config{}, fmt.Errorf("must specify -bucket or MODELS_BUCKET")
	}
	var err error
	if cfg.bucket, cfg.prefix, err = blobs.ParseBucketURL(bucketURL); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, getenv func(string) string, newStore func(bucket string) blobs.Blobstore) error {
	log := klog.FromContext(ctx)

	cfg, err := parseFlags(args, getenv)
	if err != nil {
		return err
	}
	log.Info("using GCS bucket", "bucket", cfg.bucket, "prefix", cfg.prefix)

	blobstore := newStore(cfg.bucket)
	if cfg.pull {
		return pullModels(ctx, blobstore, cfg.prefix, cfg.dir)
	}
	return pushModels(ctx, blobstore, cfg.prefix, cfg.dir)
}

// pushModels uploads every model in dir, then the manifest, so the manifest
// never lists a model that is not yet in the bucket.
func pushModels(ctx context.Context, blobstore blobs.Blobstore, prefix, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %q: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".onnx") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return fmt.Errorf("no .onnx files in %q, run generate-models first", dir)
	}
	if _, err := os.Stat(filepath.Join(dir, generate.ManifestFile)); err == nil {
		names = append(names, generate.ManifestFile)
	}

	for _, name := range names {
		path := filepath.Join(dir, name)
		info, err := blobs.FileInfo(path, blobs.ObjectKey(prefix, name))
		if err != nil {
			return err
		}
		if err := blobstore.Upload(ctx, path, info); err != nil {
			return fmt.Errorf("uploading %q: %w", path, err)
		}
	}
	klog.Infof("published %d files from %q", len(names), dir)
	return nil
}

func pullModels(ctx context.Context, blobstore blobs.Blobstore, prefix, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %q: %w", dir, err)
	}

	manifestPath := filepath.Join(dir, generate.ManifestFile)
	if err := blobstore.Download(ctx, blobs.BlobInfo{Key: blobs.ObjectKey(prefix, generate.ManifestFile)}, manifestPath); err != nil {
		return fmt.Errorf("downloading manifest: %w", err)
	}
	manifest, err := generate.ReadManifest(manifestPath)
	if err != nil {
		return err
	}

	names := make([]string, len(manifest.Styles))
	for i, s := range manifest.Styles {
		if names[i], err = modelFileName(s); err != nil {
			return err
		}
	}

	for i, s := range manifest.Styles {
		name := names[i]
		if err := blobstore.Download(ctx, blobs.BlobInfo{Key: blobs.ObjectKey(prefix, name)}, filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("downloading model for %s: %w", s.Name, err)
		}
	}
	klog.Infof("restored %d models into %q", len(manifest.Styles), dir)
	return nil
}

// modelFileName returns the local file name for a manifest entry. The slug
// must be the one generate-models derives from the name, and must stay a
// single path element.
func modelFileName(s generate.ManifestEntry) (string, error) {
	if s.Slug == "" || s.Slug != style.Slug(s.Name) ||
		s.Slug != filepath.Base(s.Slug) || strings.ContainsAny(s.Slug, `/\`) || strings.Contains(s.Slug, "..") {
		return "", fmt.Errorf("manifest entry %q has invalid slug %q", s.Name, s.Slug)
	}
	return s.Slug + ".onnx", nil
}
