package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/stylegen/stylegen/internal/blobs"
)

// ManifestFile is the manifest's file name inside the output directory.
const ManifestFile = "styles.json"

// ManifestEntry describes one generated model for the web front-end.
type ManifestEntry struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Kind        string `json:"kind"`
	ModelURL    string `json:"model_url"`
	SizeBytes   int64  `json:"size_bytes"`
	InputWidth  int    `json:"input_width"`
	InputHeight int    `json:"input_height"`
	Description string `json:"description"`
}

// Manifest lists the generated models in generation order.
type Manifest struct {
	Styles []ManifestEntry `json:"styles"`
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(ctx context.Context, path string, m Manifest) error {
	if len(m.Styles) == 0 {
		return ErrEmptyManifest
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	data = append(data, '\n')
	if err := blobs.WriteFile(ctx, data, path); err != nil {
		return fmt.Errorf("writing manifest %q: %w", path, err)
	}
	return nil
}

// ReadManifest reads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decoding manifest %q: %w", path, err)
	}
	return m, nil
}
