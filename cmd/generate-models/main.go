// Package main writes the placeholder style-transfer models for the web
// front-end into public/models. It takes no arguments.
package main

import (
	"context"

	"k8s.io/klog/v2"

	"github.com/stylegen/stylegen/internal/generate"
	"github.com/stylegen/stylegen/internal/style"
)

func main() {
	defer klog.Flush()

	// Failures are logged per style and never change the exit status.
	generate.New(generate.DefaultOptions()).Run(context.Background(), style.BuiltinStyles())
}
