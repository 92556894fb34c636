// Package mmap maps index snapshot files read-only into memory.
//
// Snapshots are decoded in a single sequential pass, so a mapping is opened,
// advised sequential and drained through [Mapping.Reader]:
//
//	m, err := mmap.Open("regions.gcx")
//	if err != nil { ... }
//	defer m.Close()
//	_ = m.Advise(mmap.AccessSequential)
//	idx, err := cellindex.ReadSnapshot(m.Reader())
//
// Unix systems use mmap(2) and madvise(2). Windows uses
// CreateFileMapping/MapViewOfFile, where Advise is a no-op.
package mmap
