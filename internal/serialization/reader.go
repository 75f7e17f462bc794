package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
)

// File is a decoded .tgrd file.
type File struct {
	Header  Header
	Flags   uint32
	Entries []Entry // In header order
}

// Lookup returns the entry with the given name.
func (f *File) Lookup(name string) (Entry, bool) {
	for _, e := range f.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Params returns every entry that is not optimizer state.
func (f *File) Params() []Entry {
	var out []Entry
	for _, e := range f.Entries {
		if !strings.HasPrefix(e.Name, OptimizerPrefix) {
			out = append(out, e)
		}
	}
	return out
}

// OptimizerState returns the optimizer state dict stored in the file, keyed
// without OptimizerPrefix. Empty if FlagHasOptimizer is unset.
func (f *File) OptimizerState() map[string][]float32 {
	state := make(map[string][]float32)
	for _, e := range f.Entries {
		if key, ok := strings.CutPrefix(e.Name, OptimizerPrefix); ok {
			state[key] = e.Data
		}
	}
	return state
}

// Read decodes a .tgrd stream, validating magic bytes, version, tensor
// bounds and the data checksum.
func Read(r io.Reader) (*File, error) {
	magic := make([]byte, len(MagicBytes))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if string(magic) != MagicBytes {
		return nil, ErrInvalidMagic
	}

	var version, flags uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("failed to read version: %w", err)
	}
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}
	if err := binary.Read(r, binary.LittleEndian, &flags); err != nil {
		return nil, fmt.Errorf("failed to read flags: %w", err)
	}

	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, ErrHeaderTooLarge
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	padding := alignedDataOffset(int64(headerSize)) - int64(prefixSize) - int64(headerSize)
	if _, err := io.CopyN(io.Discard, r, padding); err != nil {
		return nil, fmt.Errorf("failed to skip padding: %w", err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read tensor data: %w", err)
	}
	if err := ValidateHeader(&header, int64(len(data))); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := ValidateChecksum(data, header.Checksum); err != nil {
		return nil, err
	}

	f := &File{Header: header, Flags: flags, Entries: make([]Entry, 0, len(header.Tensors))}
	for _, meta := range header.Tensors {
		raw := data[meta.Offset : meta.Offset+meta.Size]
		values := make([]float32, meta.Size/4)
		for i := range values {
			values[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		f.Entries = append(f.Entries, Entry{Name: meta.Name, Shape: meta.Shape, Data: values})
	}
	return f, nil
}

// ReadFile opens and decodes the .tgrd file at path.
func ReadFile(path string) (*File, error) {
	//nolint:gosec // G304: checkpoint path comes from the user
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return Read(file)
}

// sortEntries orders entries by name.
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
}
