package operators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastShape(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []int64
		want    []int64
		wantErr bool
	}{
		{name: "equal", a: []int64{1, 3, 4, 4}, b: []int64{1, 3, 4, 4}, want: []int64{1, 3, 4, 4}},
		{name: "scalar", a: []int64{1, 3, 4, 4}, b: nil, want: []int64{1, 3, 4, 4}},
		{name: "per channel", a: []int64{1, 3, 4, 4}, b: []int64{1, 3, 1, 1}, want: []int64{1, 3, 4, 4}},
		{name: "rank extend", a: []int64{4}, b: []int64{2, 1}, want: []int64{2, 4}},
		{name: "mismatch", a: []int64{1, 3, 4, 4}, b: []int64{3}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BroadcastShape(tt.a, tt.b)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNotBroadcastable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMulPerChannel(t *testing.T) {
	r := NewRegistry()

	// 1x3x2x2, every element 1.
	x := Full([]int64{1, 3, 2, 2}, 1)
	scale, err := FromSlice([]int64{1, 3, 1, 1}, []float32{2, 3, 4})
	require.NoError(t, err)

	out, err := r.Execute(&Node{OpType: "Mul"}, []*Tensor{x, scale})
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, []int64{1, 3, 2, 2}, out[0].Shape)
	assert.Equal(t, []float32{2, 2, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4}, out[0].Data)
}

func TestDivScalar(t *testing.T) {
	r := NewRegistry()

	x, err := FromSlice([]int64{4}, []float32{0, 51, 127.5, 255})
	require.NoError(t, err)

	out, err := r.Execute(&Node{OpType: "Div"}, []*Tensor{x, Full(nil, 255)})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0, 0.2, 0.5, 1}, out[0].Data, 1e-6)
}

func TestBinaryRequiresTwoInputs(t *testing.T) {
	_, err := NewRegistry().Execute(&Node{OpType: "Add"}, []*Tensor{Full(nil, 1)})
	require.ErrorIs(t, err, ErrInputCount)
}

func TestClip(t *testing.T) {
	r := NewRegistry()
	x, err := FromSlice([]int64{4}, []float32{-1, 0.25, 0.75, 2})
	require.NoError(t, err)

	t.Run("inputs", func(t *testing.T) {
		out, err := r.Execute(&Node{OpType: "Clip"}, []*Tensor{x, Full(nil, 0), Full(nil, 1)})
		require.NoError(t, err)
		assert.Equal(t, []float32{0, 0.25, 0.75, 1}, out[0].Data)
	})

	t.Run("attributes", func(t *testing.T) {
		node := &Node{OpType: "Clip", Attributes: []Attribute{
			{Name: "min", F: 0.5},
			{Name: "max", F: 0.8},
		}}
		out, err := r.Execute(node, []*Tensor{x})
		require.NoError(t, err)
		assert.Equal(t, []float32{0.5, 0.5, 0.75, 0.8}, out[0].Data)
	})

	t.Run("unbounded", func(t *testing.T) {
		out, err := r.Execute(&Node{OpType: "Clip"}, []*Tensor{x})
		require.NoError(t, err)
		assert.Equal(t, x.Data, out[0].Data)
	})
}

func TestIdentityCopies(t *testing.T) {
	x := Full([]int64{2}, 7)
	out, err := NewRegistry().Execute(&Node{OpType: "Identity"}, []*Tensor{x})
	require.NoError(t, err)

	out[0].Data[0] = 0
	assert.Equal(t, float32(7), x.Data[0])
}

func TestInferShape(t *testing.T) {
	r := NewRegistry()

	shapes, err := r.InferShape(&Node{OpType: "Mul"}, [][]int64{{1, 3, 8, 8}, {1, 3, 1, 1}})
	require.NoError(t, err)
	assert.Equal(t, [][]int64{{1, 3, 8, 8}}, shapes)

	shapes, err = r.InferShape(&Node{OpType: "Clip"}, [][]int64{{1, 3, 8, 8}, {}, {}})
	require.NoError(t, err)
	assert.Equal(t, [][]int64{{1, 3, 8, 8}}, shapes)
}

func TestBinaryOpLargeBroadcast(t *testing.T) {
	// Large enough to be split into chunks; each chunk must start at the
	// right broadcast offsets.
	shape := []int64{1, 3, 128, 96}
	x := NewTensor(shape)
	for i := range x.Data {
		x.Data[i] = float32(i)
	}
	bias, err := FromSlice([]int64{1, 1, 1, 96}, make([]float32, 96))
	require.NoError(t, err)
	for i := range bias.Data {
		bias.Data[i] = float32(-i)
	}

	out, err := binaryOp(x, bias, func(a, b float32) float32 { return a + b })
	require.NoError(t, err)
	require.Equal(t, shape, out.Shape)
	for i, v := range out.Data {
		if want := float32(i - i%96); v != want {
			t.Fatalf("out[%d] = %v, want %v", i, v, want)
		}
	}
}

func TestUnravel(t *testing.T) {
	assert.Equal(t, []int64{0, 2, 1, 3}, unravel(2*20+1*4+3, []int64{1, 3, 5, 4}))
	assert.Empty(t, unravel(0, nil))
}
