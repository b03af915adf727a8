// Package outchain builds output chains: it opens a Target, optionally
// wraps the stream with base64 encoding and compression, and hands back a
// ready-to-use writer.
//
// # Quick Start
//
//	// Compressed, base64 encoded log lines written to an absfs filesystem.
//	// The ".gz" extension selects gzip; unknown names fall back to zlib.
//	fsys := outchain.NewMemFS()
//	err := outchain.New(outchain.FilerTarget(fsys, "events.gz")).
//	    Compress().
//	    EncodeBase64().
//	    WriteLines("started", "stopped")
//
// # Chain Layout
//
// Layers are always applied in the same order, innermost first:
//
//	target stream <- base64 <- compressor <- adapter (text, gob, JSON, ...)
//
// so compression sees the original payload and base64 is the last
// encoding before the bytes reach the target. With neither option set the
// target's own stream is returned unchanged.
//
// # Compressor Selection
//
// When compression is requested and the target reports a name, the
// builder's Compressors pick a wrapper by the name's extension. They are
// the WithRegistry argument, else a registry built from the config's levels
// and extensions, else DefaultRegistry:
//
//   - .gz .gzip: gzip
//   - .zst .zstd: zstd
//   - .lz4: lz4
//   - .br: brotli
//   - .sz .snappy: snappy (framed)
//   - .s2: s2
//   - .xz: xz
//   - .zz .zlib: zlib
//   - .deflate: raw deflate
//
// Otherwise the configured fallback is used (zlib framed deflate).
// More extensions can be registered with Registry.Register. The default
// registry freezes on its first lookup, so registrations belong in program
// initialisation.
//
// # Adapters
//
// Each terminal call opens the target again and builds a fresh chain:
// Stream, Writer, Print, Objects (gob), JSON, YAML, Data (big-endian binary)
// and Zip. The one-shot helpers Write, WriteLines, WriteSlice and WriteSeq
// open a Writer, write and always close it.
package outchain
