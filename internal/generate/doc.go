// Package generate builds the placeholder style-transfer models served to
// the web front-end and writes them to disk.
//
// Every model maps a [1, 3, 256, 256] float image in [0, 255] to an image of
// the same shape and range through a single chain of elementwise nodes. The
// style descriptor picks the middle of the chain from the style table.
//
// Example usage:
//
//	report := generate.New(generate.DefaultOptions()).Run(ctx, style.BuiltinStyles())
//	for _, f := range report.Failures {
//	    fmt.Println(f.Style, f.Err)
//	}
package generate
