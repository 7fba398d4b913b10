package operators

import "errors"

// Common errors.
var (
	ErrUnsupportedOp    = errors.New("unsupported operator")
	ErrNotBroadcastable = errors.New("shapes are not broadcastable")
	ErrInputCount       = errors.New("wrong number of inputs")
)
