package generate

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"k8s.io/klog/v2"

	"github.com/stylegen/stylegen/internal/blobs"
	"github.com/stylegen/stylegen/internal/onnx"
	"github.com/stylegen/stylegen/internal/style"
)

// Options configures a Generator.
type Options struct {
	// OutputDir receives one <slug>.onnx per style plus the manifest.
	OutputDir string

	// SelfCheck evaluates every model after serialization.
	SelfCheck bool

	// Manifest writes ManifestFile after all styles are processed.
	Manifest bool

	// ModelURLPrefix is the URL path the front-end serves OutputDir under.
	ModelURLPrefix string
}

// DefaultOptions returns the options the generate-models command runs with.
func DefaultOptions() Options {
	return Options{
		OutputDir:      "public/models",
		SelfCheck:      true,
		Manifest:       true,
		ModelURLPrefix: "/models/",
	}
}

// Failure records a style whose model could not be created.
type Failure struct {
	Style string
	Err   error
}

// Report summarizes a Run.
type Report struct {
	Created  []string  // model paths, in style order
	Failures []Failure // per-style failures, in style order
	Manifest string    // manifest path; empty if not written
}

// OK reports whether every style produced a model.
func (r Report) OK() bool {
	return len(r.Failures) == 0
}

// Generator writes one model per style into a directory.
type Generator struct {
	opts Options
}

// New creates a Generator.
func New(opts Options) *Generator {
	return &Generator{opts: opts}
}

// ModelPath returns the file a descriptor's model is written to.
func (g *Generator) ModelPath(descriptor string) string {
	return filepath.Join(g.opts.OutputDir, style.Slug(descriptor)+".onnx")
}

// Run processes styles sequentially in order. A failing style is logged and
// recorded in the report; the remaining styles are still processed.
func (g *Generator) Run(ctx context.Context, styles []string) Report {
	log := klog.FromContext(ctx)

	var report Report
	if err := os.MkdirAll(g.opts.OutputDir, 0o755); err != nil {
		log.Error(err, "creating output directory", "dir", g.opts.OutputDir)
	}

	var manifest Manifest
	for _, descriptor := range styles {
		modelPath := g.ModelPath(descriptor)
		entry, err := g.writeModel(ctx, descriptor, modelPath)
		if err != nil {
			log.Error(err, fmt.Sprintf("Failed to create model for %s: %v", descriptor, err), "style", descriptor)
			report.Failures = append(report.Failures, Failure{Style: descriptor, Err: err})
			continue
		}
		log.Info("Created ONNX model: " + modelPath)
		report.Created = append(report.Created, modelPath)
		manifest.Styles = append(manifest.Styles, entry)
	}

	if g.opts.Manifest && len(manifest.Styles) > 0 {
		manifestPath := filepath.Join(g.opts.OutputDir, ManifestFile)
		if err := WriteManifest(ctx, manifestPath, manifest); err != nil {
			log.Error(err, "writing manifest", "path", manifestPath)
		} else {
			report.Manifest = manifestPath
		}
	}

	log.Info("Model generation complete!")
	return report
}

// WriteModel builds the model for descriptor with the default options and
// writes it to modelPath, replacing any existing file.
func WriteModel(ctx context.Context, descriptor, modelPath string) error {
	_, err := New(DefaultOptions()).writeModel(ctx, descriptor, modelPath)
	return err
}

func (g *Generator) writeModel(ctx context.Context, descriptor, modelPath string) (ManifestEntry, error) {
	model, err := BuildModel(descriptor)
	if err != nil {
		return ManifestEntry{}, err
	}
	data, err := onnx.Marshal(model)
	if err != nil {
		return ManifestEntry{}, fmt.Errorf("serializing model: %w", err)
	}
	if g.opts.SelfCheck {
		if err := SelfCheck(data, descriptor); err != nil {
			return ManifestEntry{}, err
		}
	}
	if err := blobs.WriteFile(ctx, data, modelPath); err != nil {
		return ManifestEntry{}, fmt.Errorf("writing %q: %w", modelPath, err)
	}

	kind := style.Resolve(descriptor)
	slug := style.Slug(descriptor)
	entry := ManifestEntry{
		Name:        descriptor,
		Slug:        slug,
		Kind:        kind.String(),
		ModelURL:    path.Join(g.opts.ModelURLPrefix, slug+".onnx"),
		SizeBytes:   int64(len(data)),
		InputWidth:  Width,
		InputHeight: Height,
		Description: model.Graph.DocString,
	}
	return entry, nil
}
