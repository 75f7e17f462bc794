package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/born-ml/tapegrad/internal/tensor"
)

// Entry is one named float32 buffer in a checkpoint.
type Entry struct {
	Name  string
	Shape tensor.Shape
	Data  []float32
}

// EntryOf snapshots t under name.
func EntryOf(name string, t tensor.ShapeContract) Entry {
	data := make([]float32, t.NumElements())
	copy(data, t.Data())
	return Entry{Name: name, Shape: t.Shape().Clone(), Data: data}
}

// Into copies the entry's data into t. The shapes must match exactly.
func (e Entry) Into(t tensor.ShapeContract) error {
	if !e.Shape.Equal(t.Shape()) {
		return fmt.Errorf("%w: %q is %v, target is %v", ErrShapeMismatch, e.Name, e.Shape, t.Shape())
	}
	copy(t.MutData(), e.Data)
	return nil
}

// OptimizerEntries turns an optimizer state dict into entries under
// OptimizerPrefix, sorted by key.
func OptimizerEntries(state map[string][]float32) []Entry {
	entries := make([]Entry, 0, len(state))
	for key, buf := range state {
		data := make([]float32, len(buf))
		copy(data, buf)
		entries = append(entries, Entry{Name: OptimizerPrefix + key, Shape: tensor.Shape{len(buf)}, Data: data})
	}
	sortEntries(entries)
	return entries
}

// writeConfig holds optional settings for Write.
type writeConfig struct {
	checkpoint *CheckpointMeta
	createdAt  time.Time
}

// WriteOption configures Write.
type WriteOption func(*writeConfig)

// WithCheckpoint records training state in the header.
func WithCheckpoint(meta CheckpointMeta) WriteOption {
	return func(c *writeConfig) {
		c.checkpoint = &meta
	}
}

// WithCreatedAt overrides the creation timestamp (defaults to now).
func WithCreatedAt(t time.Time) WriteOption {
	return func(c *writeConfig) {
		c.createdAt = t
	}
}

// Write encodes entries in .tgrd format to w.
//
// Entries are stored in the given order. Names must be unique and valid (see
// ValidateTensorName) and each entry's data must match its shape.
func Write(w io.Writer, entries []Entry, metadata map[string]string, opts ...WriteOption) error {
	cfg := writeConfig{createdAt: time.Now().UTC()}
	for _, opt := range opts {
		opt(&cfg)
	}

	header := Header{
		FormatVersion: FormatVersion,
		CreatedAt:     cfg.createdAt,
		Tensors:       make([]TensorMeta, 0, len(entries)),
		Metadata:      metadata,
		Checkpoint:    cfg.checkpoint,
	}

	var flags uint32
	if len(metadata) > 0 {
		flags |= FlagHasMetadata
	}

	var data bytes.Buffer
	var offset int64
	for _, e := range entries {
		if err := ValidateTensorName(e.Name); err != nil {
			return err
		}
		if e.Shape.NumElements() != len(e.Data) {
			return fmt.Errorf("%w: %q has shape %v but %d values", ErrShapeMismatch, e.Name, e.Shape, len(e.Data))
		}
		if strings.HasPrefix(e.Name, OptimizerPrefix) {
			flags |= FlagHasOptimizer
		}

		size := int64(len(e.Data)) * 4
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   e.Name,
			Shape:  []int(e.Shape.Clone()),
			Offset: offset,
			Size:   size,
		})
		offset += size

		var buf [4]byte
		for _, v := range e.Data {
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
			data.Write(buf[:])
		}
	}
	header.Checksum = ComputeChecksum(data.Bytes())

	// Offsets are contiguous by construction; this catches duplicate names.
	if err := ValidateHeader(&header, int64(data.Len())); err != nil {
		return err
	}

	headerBytes, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	// Write magic bytes, version, flags, header size
	if _, err := io.WriteString(w, MagicBytes); err != nil {
		return fmt.Errorf("failed to write magic bytes: %w", err)
	}
	for _, v := range []any{uint32(FormatVersion), flags, uint64(len(headerBytes))} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("failed to write prefix: %w", err)
		}
	}
	if _, err := w.Write(headerBytes); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	padding := alignedDataOffset(int64(len(headerBytes))) - int64(prefixSize+len(headerBytes))
	if _, err := w.Write(make([]byte, padding)); err != nil {
		return fmt.Errorf("failed to write padding: %w", err)
	}

	if _, err := w.Write(data.Bytes()); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}
	return nil
}

// WriteFile writes entries to path, replacing any existing file only once the
// new one is complete.
func WriteFile(path string, entries []Entry, metadata map[string]string, opts ...WriteOption) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }() // No-op after a successful rename

	if err := Write(tmp, entries, metadata, opts...); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move checkpoint into place: %w", err)
	}
	return nil
}
