package style

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Channels is the number of image channels a per-channel operand covers.
const Channels = 3

//go:embed styles.hcl
var builtinTable []byte

// ErrInvalidTable is returned for a style table that parses but is unusable.
var ErrInvalidTable = errors.New("invalid style table")

// Operand is a constant operand: a scalar, or one value per channel.
type Operand struct {
	Scalar     float32
	PerChannel []float32 // len Channels when set
}

// Dims returns the tensor dims of the operand: a 0-d scalar, or [1, C, 1, 1]
// so that it broadcasts over an NCHW image.
func (o Operand) Dims() []int64 {
	if o.PerChannel == nil {
		return nil
	}
	return []int64{1, int64(len(o.PerChannel)), 1, 1}
}

// Values returns the operand's elements in tensor order.
func (o Operand) Values() []float32 {
	if o.PerChannel == nil {
		return []float32{o.Scalar}
	}
	return o.PerChannel
}

// At returns the operand value applied to channel c.
func (o Operand) At(c int) float32 {
	if o.PerChannel == nil {
		return o.Scalar
	}
	return o.PerChannel[c]
}

// Step is one table-driven node.
type Step struct {
	Node    string // node name
	Output  string // output value name; empty means the builder picks it
	Operand Operand
}

// Entry describes how one kind transforms the normalized image.
type Entry struct {
	Kind        Kind
	Match       string // descriptor substring; empty for Identity
	Description string
	Scale       *Step // Mul; nil for Identity
	Offset      *Step // Add; nil for Identity
}

// StyleTable maps every kind to its entry. It is immutable once built.
type StyleTable struct {
	entries map[Kind]Entry
}

// Lookup returns the entry for k.
func (t *StyleTable) Lookup(k Kind) (Entry, bool) {
	e, ok := t.entries[k]
	return e, ok
}

var (
	tableOnce sync.Once
	table     *StyleTable
)

// Table returns the built-in style table, decoding it on first use. The table
// is embedded at build time, so a decode failure panics.
func Table() *StyleTable {
	tableOnce.Do(func() {
		t, err := ParseTable(builtinTable, "styles.hcl")
		if err != nil {
			panic(fmt.Sprintf("style: built-in table: %v", err))
		}
		table = t
	})
	return table
}

type hclTableFile struct {
	Styles []*hclStyle `hcl:"style,block"`
}

type hclStyle struct {
	Kind        string    `hcl:"kind,label"`
	Match       string    `hcl:"match,optional"`
	Description string    `hcl:"description,optional"`
	Scale       *hclStep  `hcl:"scale,block"`
	Offset      *hclStep  `hcl:"offset,block"`
	DeclRange   hcl.Range `hcl:",def_range"`
}

type hclStep struct {
	Node       string    `hcl:"node"`
	Output     string    `hcl:"output,optional"`
	Value      *float64  `hcl:"value,optional"`
	PerChannel []float64 `hcl:"per_channel,optional"`
}

// ParseTable decodes and validates an HCL style table. Every kind must be
// declared exactly once.
func ParseTable(src []byte, filename string) (*StyleTable, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, diags)
	}

	var parsed hclTableFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, diags)
	}

	t := &StyleTable{entries: make(map[Kind]Entry, len(kindNames))}
	for _, block := range parsed.Styles {
		entry, err := block.entry()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", block.DeclRange, err)
		}
		if _, dup := t.entries[entry.Kind]; dup {
			return nil, fmt.Errorf("%s: %w: style %q declared twice", block.DeclRange, ErrInvalidTable, block.Kind)
		}
		t.entries[entry.Kind] = entry
	}

	for k, name := range kindNames {
		if _, ok := t.entries[k]; !ok {
			return nil, fmt.Errorf("%s: %w: style %q missing", filename, ErrInvalidTable, name)
		}
	}
	return t, nil
}

func (b *hclStyle) entry() (Entry, error) {
	kind, ok := parseKind(b.Kind)
	if !ok {
		return Entry{}, fmt.Errorf("%w: unknown style %q", ErrInvalidTable, b.Kind)
	}

	entry := Entry{Kind: kind, Match: b.Match, Description: b.Description}
	if kind == Identity {
		if b.Match != "" || b.Scale != nil || b.Offset != nil {
			return Entry{}, fmt.Errorf("%w: identity style takes no match, scale or offset", ErrInvalidTable)
		}
		return entry, nil
	}

	if b.Match == "" || b.Scale == nil || b.Offset == nil {
		return Entry{}, fmt.Errorf("%w: style %q needs match, scale and offset", ErrInvalidTable, b.Kind)
	}
	var err error
	if entry.Scale, err = b.Scale.step(); err != nil {
		return Entry{}, fmt.Errorf("style %q scale: %w", b.Kind, err)
	}
	if entry.Offset, err = b.Offset.step(); err != nil {
		return Entry{}, fmt.Errorf("style %q offset: %w", b.Kind, err)
	}
	return entry, nil
}

func (s *hclStep) step() (*Step, error) {
	hasValue, hasChannels := s.Value != nil, len(s.PerChannel) > 0
	if hasValue == hasChannels {
		return nil, fmt.Errorf("%w: node %q needs exactly one of value or per_channel", ErrInvalidTable, s.Node)
	}

	step := &Step{Node: s.Node, Output: s.Output}
	if hasValue {
		step.Operand.Scalar = float32(*s.Value)
		return step, nil
	}
	if len(s.PerChannel) != Channels {
		return nil, fmt.Errorf("%w: node %q has %d per_channel values, want %d", ErrInvalidTable, s.Node, len(s.PerChannel), Channels)
	}
	step.Operand.PerChannel = make([]float32, Channels)
	for i, v := range s.PerChannel {
		step.Operand.PerChannel[i] = float32(v)
	}
	return step, nil
}
