// Package serialization implements the .tgrd checkpoint format for named
// float32 buffers (parameters and optimizer state).
//
//	Format Structure:
//	  [4 bytes: Magic "TGRD"]
//	  [4 bytes: Version (uint32 LE)]
//	  [4 bytes: Flags (uint32 LE)]
//	  [8 bytes: Header Size (uint64 LE)]
//	  [Header: JSON metadata, including SHA-256 of the data section]
//	  [Padding to a 64-byte boundary]
//	  [Tensor data: little-endian float32, in header order]
//
// Example usage:
//
//	entries := []serialization.Entry{serialization.EntryOf("w", w)}
//	err := serialization.WriteFile("model.tgrd", entries, map[string]string{"run": id})
//
//	f, err := serialization.ReadFile("model.tgrd")
//	entry, ok := f.Lookup("w")
//	err = entry.Into(w)
package serialization
