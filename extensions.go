package outchain

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Canonical extension per algorithm
var extensionMap = map[Algorithm]string{
	AlgorithmGzip:    ".gz",
	AlgorithmZstd:    ".zst",
	AlgorithmLZ4:     ".lz4",
	AlgorithmBrotli:  ".br",
	AlgorithmSnappy:  ".sz",
	AlgorithmS2:      ".s2",
	AlgorithmXZ:      ".xz",
	AlgorithmZlib:    ".zz",
	AlgorithmDeflate: ".deflate",
}

// Every extension the built-in registry recognises
var reverseExtensionMap = map[string]Algorithm{
	".gz":      AlgorithmGzip,
	".gzip":    AlgorithmGzip,
	".zst":     AlgorithmZstd,
	".zstd":    AlgorithmZstd,
	".lz4":     AlgorithmLZ4,
	".br":      AlgorithmBrotli,
	".sz":      AlgorithmSnappy,
	".snappy":  AlgorithmSnappy,
	".s2":      AlgorithmS2,
	".xz":      AlgorithmXZ,
	".zz":      AlgorithmZlib,
	".zlib":    AlgorithmZlib,
	".deflate": AlgorithmDeflate,
}

// Magic bytes for format detection. Brotli and raw deflate have none.
var magicBytes = map[Algorithm][]byte{
	AlgorithmGzip:   {0x1f, 0x8b},
	AlgorithmZstd:   {0x28, 0xb5, 0x2f, 0xfd},
	AlgorithmLZ4:    {0x04, 0x22, 0x4d, 0x18},
	AlgorithmSnappy: {0xff, 0x06, 0x00, 0x00, 0x73, 0x4e, 0x61, 0x50},
	AlgorithmS2:     {0xff, 0x06, 0x00, 0x00, 0x53, 0x32, 0x73, 0x54},
	AlgorithmXZ:     {0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
}

// GetExtension returns the canonical extension for an algorithm
func GetExtension(algo Algorithm) string {
	return extensionMap[algo]
}

// normalizeExtension lower-cases ext and makes sure it starts with a dot
func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// extensionOf returns the normalised extension of a logical name
func extensionOf(name string) string {
	return normalizeExtension(filepath.Ext(name))
}

// DetectAlgorithmFromExtension detects the built-in algorithm from a name's extension
func DetectAlgorithmFromExtension(name string) (Algorithm, bool) {
	algo, ok := reverseExtensionMap[extensionOf(name)]
	return algo, ok
}

// HasCompressionExtension checks if name carries a built-in compression extension
func HasCompressionExtension(name string) bool {
	_, ok := DetectAlgorithmFromExtension(name)
	return ok
}

// IsCompressed checks if data starts with a known compression header.
// zlib is recognised by its CMF/FLG checksum rather than a fixed prefix.
func IsCompressed(data []byte) (Algorithm, bool) {
	for algo, magic := range magicBytes {
		if len(data) >= len(magic) && bytes.Equal(data[:len(magic)], magic) {
			return algo, true
		}
	}
	if len(data) >= 2 && data[0]&0x0f == 8 && (uint16(data[0])<<8|uint16(data[1]))%31 == 0 {
		return AlgorithmZlib, true
	}
	return "", false
}
