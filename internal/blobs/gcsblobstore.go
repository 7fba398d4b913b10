package blobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
	"k8s.io/klog/v2"
)

type GCSBlobstore struct {
	Bucket string

	// ClientOptions are passed to storage.NewClient, e.g. to target an emulator.
	ClientOptions []option.ClientOption
}

var _ Blobstore = (*GCSBlobstore)(nil)

func (j *GCSBlobstore) Upload(ctx context.Context, sourcePath string, info BlobInfo) error {
	log := klog.FromContext(ctx)

	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("opening source file: %w", err)
	}
	defer src.Close()

	gcsURL := "gs://" + j.Bucket + "/" + info.Key

	client, err := storage.NewClient(ctx, j.ClientOptions...)
	if err != nil {
		return fmt.Errorf("creating GCS storage client: %w", err)
	}
	defer client.Close()

	obj := client.Bucket(j.Bucket).Object(info.Key)
	objAttrs, err := obj.Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			objAttrs = nil
			log.Info("object not found in GCS", "url", gcsURL)
			// Fallthrough to upload object
		} else {
			return fmt.Errorf("getting object attributes for %q: %w", gcsURL, err)
		}
	}
	if objAttrs != nil && objAttrs.CRC32C == info.CRC32C {
		log.Info("object already exists in GCS", "url", gcsURL, "crc32c", info.CRC32C)
		return nil
	}

	log.Info("uploading blob to GCS", "source", sourcePath, "destination", gcsURL)

	// Cancelling the writer's context before Close aborts the upload.
	writeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	startedAt := time.Now()
	w := obj.NewWriter(writeCtx)
	w.ContentType = info.ContentType
	w.CRC32C = info.CRC32C
	w.SendCRC32C = true
	n, err := io.Copy(w, src)
	if err != nil {
		cancel()
		w.Close()
		return fmt.Errorf("uploading to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing GCS writer: %w", err)
	}

	log.Info("uploaded blob to GCS", "url", gcsURL, "bytes", n, "duration", time.Since(startedAt))

	return nil
}

func (j *GCSBlobstore) Download(ctx context.Context, info BlobInfo, destinationPath string) error {
	log := klog.FromContext(ctx)

	gcsURL := "gs://" + j.Bucket + "/" + info.Key

	client, err := storage.NewClient(ctx, j.ClientOptions...)
	if err != nil {
		return fmt.Errorf("creating GCS storage client: %w", err)
	}
	defer client.Close()

	log.Info("downloading blob from GCS", "source", gcsURL, "destination", destinationPath)

	startedAt := time.Now()
	r, err := client.Bucket(j.Bucket).Object(info.Key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("blob %q not found: %w", gcsURL, os.ErrNotExist)
		}
		return fmt.Errorf("opening object from GCS %q: %w", gcsURL, err)
	}
	defer r.Close()

	n, err := writeToFile(ctx, r, destinationPath)
	if err != nil {
		return fmt.Errorf("downloading from GCS: %w", err)
	}

	log.Info("downloaded blob from GCS", "source", gcsURL, "destination", destinationPath, "bytes", n, "duration", time.Since(startedAt))

	return nil
}
