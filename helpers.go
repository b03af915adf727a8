package outchain

import (
	"bytes"
	"io"
)

// CompressBytes compresses data with the given algorithm and level
func CompressBytes(data []byte, algo Algorithm, level int) ([]byte, error) {
	var buf bytes.Buffer
	compressor, err := NewWriter(algo, &buf, level)
	if err != nil {
		return nil, err
	}

	if _, err := compressor.Write(data); err != nil {
		compressor.Close()
		return nil, err
	}
	if err := compressor.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecompressBytes decompresses data produced by algo
func DecompressBytes(data []byte, algo Algorithm) ([]byte, error) {
	decompressor, err := NewReader(algo, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer decompressor.Close()

	return io.ReadAll(decompressor)
}

// DetectCompressionAlgorithm detects the compression algorithm from data
func DetectCompressionAlgorithm(data []byte) (Algorithm, bool) {
	return IsCompressed(data)
}

// GetCompressionRatio returns compressedSize/originalSize; lower is better
func GetCompressionRatio(originalSize, compressedSize int64) float64 {
	if originalSize == 0 {
		return 0
	}
	return float64(compressedSize) / float64(originalSize)
}
