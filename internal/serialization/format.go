package serialization

import (
	"time"
)

// Format constants.
const (
	MagicBytes      = "TGRD"
	FormatVersion   = 1
	HeaderAlignment = 64 // Align tensor data to 64 bytes
	prefixSize      = 4 + 4 + 4 + 8
)

// Flags for the .tgrd format.
const (
	FlagHasOptimizer uint32 = 1 << 0 // bit 0: optimizer state included
	FlagHasMetadata  uint32 = 1 << 1 // bit 1: custom metadata included
)

// OptimizerPrefix marks entries holding optimizer state rather than
// parameters.
const OptimizerPrefix = "optim."

// Header represents the JSON header in a .tgrd file.
type Header struct {
	FormatVersion int               `json:"format_version"`
	CreatedAt     time.Time         `json:"created_at"`
	Tensors       []TensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Checkpoint    *CheckpointMeta   `json:"checkpoint,omitempty"`
	Checksum      string            `json:"checksum"` // Hex SHA-256 of the data section
}

// CheckpointMeta contains training state information for checkpoints.
type CheckpointMeta struct {
	Step      int64   `json:"step"`      // Training step number
	Loss      float64 `json:"loss"`      // Loss value at checkpoint
	Optimizer string  `json:"optimizer"` // Optimizer name ("sgd", "adam")
	LR        float32 `json:"lr"`        // Learning rate at checkpoint
}

// TensorMeta describes a tensor in the .tgrd file.
type TensorMeta struct {
	Name   string `json:"name"`   // Tensor name (e.g., "w", "optim.velocity.0")
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Bytes from start of the data section
	Size   int64  `json:"size"`   // Size in bytes
}

// alignedDataOffset returns where the data section starts for a JSON header
// of the given length.
func alignedDataOffset(headerSize int64) int64 {
	pos := int64(prefixSize) + headerSize
	padding := (HeaderAlignment - (pos % HeaderAlignment)) % HeaderAlignment
	return pos + padding
}
