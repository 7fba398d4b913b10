package operators

// Node is the subset of onnx.NodeProto the kernels need. It is a separate
// type so that this package does not import onnx.
type Node struct {
	Name       string      // Node name (optional)
	OpType     string      // Operation type (e.g., "Mul", "Clip")
	Inputs     []string    // Input value names
	Outputs    []string    // Output value names
	Attributes []Attribute // Operation attributes
}

// Attribute is a node attribute reduced to the scalar arms.
type Attribute struct {
	Name string  // Attribute name
	Type int32   // Attribute type
	F    float32 // FLOAT value
	I    int64   // INT value
}

// GetAttrFloat returns a float attribute or default value.
func GetAttrFloat(node *Node, name string, defaultVal float32) float32 {
	for i := range node.Attributes {
		if node.Attributes[i].Name == name {
			return node.Attributes[i].F
		}
	}
	return defaultVal
}

// GetAttrInt returns an integer attribute or default value.
func GetAttrInt(node *Node, name string, defaultVal int64) int64 {
	for i := range node.Attributes {
		if node.Attributes[i].Name == name {
			return node.Attributes[i].I
		}
	}
	return defaultVal
}
