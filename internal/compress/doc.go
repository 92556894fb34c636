// Package compress frames a byte stream into independently compressed
// blocks.
//
// Each block is [uncompressed uint32][compressed uint32][payload], little
// endian. A compressed size of 0 marks a block stored raw because the codec
// did not help; a header with both sizes 0 ends the stream. The framing is
// self-delimiting, so a Reader never consumes bytes past the end marker.
//
// Codecs:
//
//   - None: blocks are stored raw.
//   - LZ4: fast block compression, suited to snapshots read often.
//   - Zstd: better ratio at higher CPU cost.
package compress
