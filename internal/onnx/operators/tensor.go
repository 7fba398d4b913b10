package operators

import (
	"fmt"
	"slices"

	"github.com/stylegen/stylegen/internal/parallel"
)

// Tensor is a dense row-major float32 tensor. A nil or empty Shape is a scalar.
type Tensor struct {
	Shape []int64
	Data  []float32
}

// NumElements returns the element count implied by shape.
func NumElements(shape []int64) int64 {
	n := int64(1)
	for _, d := range shape {
		n *= d
	}
	return n
}

// NewTensor allocates a zero tensor.
func NewTensor(shape []int64) *Tensor {
	return &Tensor{
		Shape: slices.Clone(shape),
		Data:  make([]float32, NumElements(shape)),
	}
}

// Full allocates a tensor with every element set to v.
func Full(shape []int64, v float32) *Tensor {
	t := NewTensor(shape)
	for i := range t.Data {
		t.Data[i] = v
	}
	return t
}

// FromSlice wraps data without copying.
func FromSlice(shape []int64, data []float32) (*Tensor, error) {
	if NumElements(shape) != int64(len(data)) {
		return nil, fmt.Errorf("shape %v needs %d elements, got %d", shape, NumElements(shape), len(data))
	}
	return &Tensor{Shape: slices.Clone(shape), Data: data}, nil
}

// NumElements returns the number of elements.
func (t *Tensor) NumElements() int64 {
	return NumElements(t.Shape)
}

// BroadcastShape returns the multidirectional broadcast of a and b.
func BroadcastShape(a, b []int64) ([]int64, error) {
	n := max(len(a), len(b))
	out := make([]int64, n)
	for i := 1; i <= n; i++ {
		da, db := dimFromRight(a, i), dimFromRight(b, i)
		switch {
		case da == db, db == 1:
			out[n-i] = da
		case da == 1:
			out[n-i] = db
		default:
			return nil, fmt.Errorf("%w: %v and %v", ErrNotBroadcastable, a, b)
		}
	}
	return out, nil
}

func dimFromRight(shape []int64, i int) int64 {
	if i > len(shape) {
		return 1
	}
	return shape[len(shape)-i]
}

// broadcastStrides returns strides for reading in as if it had shape out.
// Broadcast dimensions get stride 0.
func broadcastStrides(in, out []int64) []int64 {
	strides := make([]int64, len(out))
	stride := int64(1)
	for i := 1; i <= len(in); i++ {
		d := in[len(in)-i]
		if d != 1 {
			strides[len(out)-i] = stride
		}
		stride *= d
	}
	return strides
}

// binaryOp applies fn elementwise over the broadcast of a and b.
func binaryOp(a, b *Tensor, fn func(x, y float32) float32) (*Tensor, error) {
	shape, err := BroadcastShape(a.Shape, b.Shape)
	if err != nil {
		return nil, err
	}
	out := NewTensor(shape)

	sa := broadcastStrides(a.Shape, shape)
	sb := broadcastStrides(b.Shape, shape)
	parallel.ForRange(len(out.Data), func(start, end int) {
		idx := unravel(int64(start), shape)
		var ia, ib int64
		for d := range idx {
			ia += idx[d] * sa[d]
			ib += idx[d] * sb[d]
		}
		for i := start; i < end; i++ {
			out.Data[i] = fn(a.Data[ia], b.Data[ib])
			for d := len(shape) - 1; d >= 0; d-- {
				idx[d]++
				ia += sa[d]
				ib += sb[d]
				if idx[d] < shape[d] {
					break
				}
				ia -= sa[d] * shape[d]
				ib -= sb[d] * shape[d]
				idx[d] = 0
			}
		}
	}, parallel.DefaultConfig())
	return out, nil
}

// unravel converts a flat row-major offset into an index into shape.
func unravel(offset int64, shape []int64) []int64 {
	idx := make([]int64, len(shape))
	for d := len(shape) - 1; d >= 0; d-- {
		idx[d] = offset % shape[d]
		offset /= shape[d]
	}
	return idx
}

// unaryOp applies fn to every element.
func unaryOp(t *Tensor, fn func(x float32) float32) *Tensor {
	out := NewTensor(t.Shape)
	parallel.ForRange(len(t.Data), func(start, end int) {
		for i := start; i < end; i++ {
			out.Data[i] = fn(t.Data[i])
		}
	}, parallel.DefaultConfig())
	return out
}
