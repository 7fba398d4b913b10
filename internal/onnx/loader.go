package onnx

import (
	"fmt"
	"slices"

	"github.com/stylegen/stylegen/internal/onnx/operators"
)

// LoadOptions configures model loading behavior.
type LoadOptions struct {
	// CustomOps adds or overrides operator kernels.
	CustomOps map[string]operators.OpHandler
}

// DefaultLoadOptions returns default loading options.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{}
}

// Load parses an ONNX file and prepares it for evaluation.
func Load(path string, opts ...LoadOptions) (*Model, error) {
	opt := DefaultLoadOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	proto, err := ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ONNX file: %w", err)
	}
	return LoadFromProto(proto, opt)
}

// LoadFromBytes parses ONNX bytes and prepares them for evaluation.
func LoadFromBytes(data []byte, opts ...LoadOptions) (*Model, error) {
	opt := DefaultLoadOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	proto, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ONNX data: %w", err)
	}
	return LoadFromProto(proto, opt)
}

// LoadFromProto prepares a parsed model for evaluation.
func LoadFromProto(proto *ModelProto, opt LoadOptions) (*Model, error) {
	registry := operators.NewRegistry()
	for opType, handler := range opt.CustomOps {
		registry.Register(opType, handler, nil)
	}

	model := &Model{
		proto:    proto,
		registry: registry,
	}
	if err := model.compile(); err != nil {
		return nil, fmt.Errorf("failed to compile model: %w", err)
	}
	return model, nil
}

// ModelInfo summarizes a model without preparing it for evaluation.
type ModelInfo struct {
	ProducerName    string
	ProducerVersion string
	IRVersion       int64
	OpsetVersion    int64
	GraphName       string
	InputNames      []string
	OutputNames     []string
	InputShapes     map[string][]int64
	OutputShapes    map[string][]int64
	Operators       []string // distinct op types, sorted
	NodeCount       int
	Metadata        map[string]string
}

// GetModelInfo reads summary information from an ONNX file.
func GetModelInfo(path string) (*ModelInfo, error) {
	proto, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return InfoFromProto(proto)
}

// InfoFromProto summarizes a parsed model.
func InfoFromProto(proto *ModelProto) (*ModelInfo, error) {
	if proto.Graph == nil {
		return nil, ErrNoGraph
	}
	g := proto.Graph

	info := &ModelInfo{
		ProducerName:    proto.ProducerName,
		ProducerVersion: proto.ProducerVersion,
		IRVersion:       proto.IRVersion,
		OpsetVersion:    defaultOpset(proto),
		GraphName:       g.Name,
		InputShapes:     make(map[string][]int64),
		OutputShapes:    make(map[string][]int64),
		NodeCount:       len(g.Nodes),
		Metadata:        make(map[string]string),
	}
	for i := range g.Inputs {
		info.InputNames = append(info.InputNames, g.Inputs[i].Name)
		info.InputShapes[g.Inputs[i].Name] = g.Inputs[i].Shape()
	}
	for i := range g.Outputs {
		info.OutputNames = append(info.OutputNames, g.Outputs[i].Name)
		info.OutputShapes[g.Outputs[i].Name] = g.Outputs[i].Shape()
	}
	for _, node := range g.Nodes {
		if !slices.Contains(info.Operators, node.OpType) {
			info.Operators = append(info.Operators, node.OpType)
		}
	}
	slices.Sort(info.Operators)
	for _, prop := range proto.MetadataProps {
		info.Metadata[prop.Key] = prop.Value
	}
	return info, nil
}

// ListSupportedOps returns the operator types the evaluator can run.
func ListSupportedOps() []string {
	return operators.NewRegistry().SupportedOps()
}
