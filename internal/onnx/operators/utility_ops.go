package operators

import (
	"fmt"
	"slices"
)

func (r *Registry) registerUtilityOps() {
	r.Register("Identity", handleIdentity, sameShape)
}

func handleIdentity(_ *Node, inputs []*Tensor) ([]*Tensor, error) {
	if len(inputs) != 1 || inputs[0] == nil {
		return nil, fmt.Errorf("identity: %w: requires 1 input, got %d", ErrInputCount, len(inputs))
	}
	in := inputs[0]
	return []*Tensor{{Shape: slices.Clone(in.Shape), Data: slices.Clone(in.Data)}}, nil
}
