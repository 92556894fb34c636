// Package hash provides the CRC32-Castagnoli checksums that guard index
// snapshots.
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(data)
//
// For streaming checksums, such as a snapshot body written in pieces:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum := h.Sum32()
package hash
