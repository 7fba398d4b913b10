package onnx_test

import (
	"path/filepath"
	"testing"

	"k8s.io/klog/v2/ktesting"

	"github.com/stylegen/stylegen/internal/generate"
	"github.com/stylegen/stylegen/onnx"
)

// mockModel implements the onnx.Model interface for testing.
type mockModel struct {
	inputNames   []string
	outputNames  []string
	opsetVersion int64
	metadata     map[string]string
	forwardFunc  func(*onnx.Tensor) (*onnx.Tensor, error)
}

func (m *mockModel) Forward(input *onnx.Tensor) (*onnx.Tensor, error) {
	if m.forwardFunc != nil {
		return m.forwardFunc(input)
	}
	// Default: return input as-is.
	return input, nil
}

func (m *mockModel) ForwardNamed(inputs map[string]*onnx.Tensor) (map[string]*onnx.Tensor, error) {
	outputs := make(map[string]*onnx.Tensor)
	for name, t := range inputs {
		outputs[name+"_out"] = t
		break
	}
	return outputs, nil
}

func (m *mockModel) InputNames() []string {
	return m.inputNames
}

func (m *mockModel) OutputNames() []string {
	return m.outputNames
}

func (m *mockModel) OpsetVersion() int64 {
	return m.opsetVersion
}

func (m *mockModel) Metadata() map[string]string {
	return m.metadata
}

// TestModelInterface verifies that mockModel implements onnx.Model.
func TestModelInterface(_ *testing.T) {
	var _ onnx.Model = &mockModel{}
}

// TestMockModelCustomForward demonstrates custom forward logic.
func TestMockModelCustomForward(t *testing.T) {
	customTensor := onnx.NewTensor([]int64{2, 2})

	mock := &mockModel{
		forwardFunc: func(_ *onnx.Tensor) (*onnx.Tensor, error) {
			return customTensor, nil
		},
	}

	result, err := mock.Forward(onnx.NewTensor([]int64{1, 1}))
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	if result != customTensor {
		t.Error("Forward() should return customTensor")
	}
}

// writeModel generates a style model into a temp dir and returns its path.
func writeModel(t *testing.T, descriptor string) string {
	t.Helper()
	_, ctx := ktesting.NewTestContext(t)
	path := filepath.Join(t.TempDir(), "model.onnx")
	if err := generate.WriteModel(ctx, descriptor, path); err != nil {
		t.Fatalf("WriteModel failed: %v", err)
	}
	return path
}

// TestLoadGeneratedModel runs a generated model through the public API.
func TestLoadGeneratedModel(t *testing.T) {
	model, err := onnx.Load(writeModel(t, "Cyberpunk Neon"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if names := model.InputNames(); len(names) != 1 || names[0] != "input" {
		t.Errorf("InputNames() = %v, want [input]", names)
	}
	if names := model.OutputNames(); len(names) != 1 || names[0] != "output" {
		t.Errorf("OutputNames() = %v, want [output]", names)
	}
	if v := model.OpsetVersion(); v != 13 {
		t.Errorf("OpsetVersion() = %d, want 13", v)
	}
	meta := model.Metadata()
	if meta["producer_name"] != "stylegen" || meta["style_kind"] != "cyberpunk" {
		t.Errorf("unexpected metadata %v", meta)
	}

	// A black image picks up only the offset: 0.2 * 255 = 51.
	output, err := model.Forward(onnx.NewTensor([]int64{1, 3, 256, 256}))
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if got := output.Data[0]; got < 50.99 || got > 51.01 {
		t.Errorf("output[0] = %v, want 51", got)
	}
}

// TestGetModelInfo inspects a generated model without loading it.
func TestGetModelInfo(t *testing.T) {
	info, err := onnx.GetModelInfo(writeModel(t, "Unknown Style"))
	if err != nil {
		t.Fatalf("GetModelInfo failed: %v", err)
	}
	if info.NodeCount != 4 {
		t.Errorf("NodeCount = %d, want 4", info.NodeCount)
	}
	if info.Metadata["style"] != "Unknown Style" {
		t.Errorf("style metadata = %q", info.Metadata["style"])
	}
	if shape := info.InputShapes["input"]; len(shape) != 4 || shape[3] != 256 {
		t.Errorf("input shape = %v", shape)
	}
}

// TestListSupportedOps checks that every op a generated model uses is listed.
func TestListSupportedOps(t *testing.T) {
	ops := onnx.ListSupportedOps()
	for _, want := range []string{"Add", "Clip", "Div", "Identity", "Mul"} {
		found := false
		for _, op := range ops {
			if op == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("ListSupportedOps() missing %s: %v", want, ops)
		}
	}
}

// TestLoadCustomOp overrides a kernel using only facade types.
func TestLoadCustomOp(t *testing.T) {
	brighten := func(_ *onnx.Node, in []*onnx.Tensor) ([]*onnx.Tensor, error) {
		out := onnx.NewTensor(in[0].Shape)
		for i := range out.Data {
			out.Data[i] = 2
		}
		return []*onnx.Tensor{out}, nil
	}
	opts := onnx.DefaultLoadOptions()
	opts.CustomOps = map[string]onnx.OpHandler{"Identity": brighten}

	model, err := onnx.Load(writeModel(t, "Unknown Style"), opts)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// 2 clamps to 1, which denormalizes to 255.
	output, err := model.Forward(onnx.NewTensor([]int64{1, 3, 256, 256}))
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if got := output.Data[0]; got != 255 {
		t.Errorf("output[0] = %v, want 255", got)
	}
}
