package generate

import (
	"fmt"
	"math"
	"slices"

	"github.com/stylegen/stylegen/internal/onnx"
	"github.com/stylegen/stylegen/internal/onnx/operators"
)

// ProbeInput returns an input image whose pixels sweep [0, 255] so every
// channel sees the full value range.
func ProbeInput() *operators.Tensor {
	t := operators.NewTensor(Shape())
	for i := range t.Data {
		t.Data[i] = float32(i % (PixelScale + 1))
	}
	return t
}

// SelfCheck parses serialized model bytes back, runs ProbeInput through the
// reference evaluator and checks the output shape, the pixel range and the
// style metadata.
func SelfCheck(data []byte, descriptor string) error {
	model, err := onnx.LoadFromBytes(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSelfCheck, err)
	}
	if got := model.Metadata()[MetaStyle]; got != descriptor {
		return fmt.Errorf("%w: style metadata %q, want %q", ErrSelfCheck, got, descriptor)
	}

	out, err := model.Forward(ProbeInput())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSelfCheck, err)
	}
	if !slices.Equal(out.Shape, Shape()) {
		return fmt.Errorf("%w: output shape %v, want %v", ErrSelfCheck, out.Shape, Shape())
	}
	for i, v := range out.Data {
		if math.IsNaN(float64(v)) || v < 0 || v > PixelScale {
			return fmt.Errorf("%w: output[%d] = %v outside [0, %d]", ErrSelfCheck, i, v, PixelScale)
		}
	}
	return nil
}
