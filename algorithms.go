package outchain

import (
	"io"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Algorithm names a compression format
type Algorithm string

const (
	AlgorithmGzip    Algorithm = "gzip"
	AlgorithmZstd    Algorithm = "zstd"
	AlgorithmLZ4     Algorithm = "lz4"
	AlgorithmBrotli  Algorithm = "brotli"
	AlgorithmSnappy  Algorithm = "snappy"
	AlgorithmS2      Algorithm = "s2"
	AlgorithmXZ      Algorithm = "xz"
	AlgorithmZlib    Algorithm = "zlib"
	AlgorithmDeflate Algorithm = "deflate"
)

// Algorithms lists every built-in algorithm.
var Algorithms = []Algorithm{
	AlgorithmGzip,
	AlgorithmZstd,
	AlgorithmLZ4,
	AlgorithmBrotli,
	AlgorithmSnappy,
	AlgorithmS2,
	AlgorithmXZ,
	AlgorithmZlib,
	AlgorithmDeflate,
}

// Supported reports whether algo is a built-in algorithm
func Supported(algo Algorithm) bool {
	for _, a := range Algorithms {
		if a == algo {
			return true
		}
	}
	return false
}

// LevelRange returns the accepted level range for algo. 0 always selects
// the algorithm's default; snappy, s2 and xz accept nothing else.
func LevelRange(algo Algorithm) (lo, hi int) {
	switch algo {
	case AlgorithmGzip, AlgorithmZlib, AlgorithmDeflate:
		return gzip.HuffmanOnly, gzip.BestCompression
	case AlgorithmZstd:
		return 0, 22
	case AlgorithmLZ4:
		return 0, len(lz4Levels) - 1
	case AlgorithmBrotli:
		return 0, brotli.BestCompression
	default:
		return 0, 0
	}
}

// NewWriter wraps w with a compressor for algo. Level 0 selects the
// algorithm's default level. Closing the returned writer flushes the
// compressed trailer but does not close w.
func NewWriter(algo Algorithm, w io.Writer, level int) (io.WriteCloser, error) {
	switch algo {
	case AlgorithmGzip:
		return createGzipCompressor(w, level)
	case AlgorithmZstd:
		return createZstdCompressor(w, level)
	case AlgorithmLZ4:
		return createLZ4Compressor(w, level)
	case AlgorithmBrotli:
		return createBrotliCompressor(w, level)
	case AlgorithmSnappy:
		return snappy.NewBufferedWriter(w), nil
	case AlgorithmS2:
		return s2.NewWriter(w), nil
	case AlgorithmXZ:
		return xz.NewWriter(w)
	case AlgorithmZlib:
		return createZlibCompressor(w, level)
	case AlgorithmDeflate:
		return createDeflateCompressor(w, level)
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}

// NewReader wraps r with the decompressor for algo
func NewReader(algo Algorithm, r io.Reader) (io.ReadCloser, error) {
	switch algo {
	case AlgorithmGzip:
		return gzip.NewReader(r)
	case AlgorithmZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case AlgorithmLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case AlgorithmBrotli:
		return io.NopCloser(brotli.NewReader(r)), nil
	case AlgorithmSnappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	case AlgorithmS2:
		return io.NopCloser(s2.NewReader(r)), nil
	case AlgorithmXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(xr), nil
	case AlgorithmZlib:
		return zlib.NewReader(r)
	case AlgorithmDeflate:
		return flate.NewReader(r), nil
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}

func createGzipCompressor(w io.Writer, level int) (io.WriteCloser, error) {
	if level == 0 {
		level = gzip.DefaultCompression
	}
	return gzip.NewWriterLevel(w, level)
}

// zstd levels follow the reference implementation (1-22)
func createZstdCompressor(w io.Writer, level int) (io.WriteCloser, error) {
	encLevel := zstd.SpeedDefault
	if level != 0 {
		encLevel = zstd.EncoderLevelFromZstd(level)
	}
	return zstd.NewWriter(w, zstd.WithEncoderLevel(encLevel))
}

var lz4Levels = []lz4.CompressionLevel{
	lz4.Fast,
	lz4.Level1, lz4.Level2, lz4.Level3,
	lz4.Level4, lz4.Level5, lz4.Level6,
	lz4.Level7, lz4.Level8, lz4.Level9,
}

func createLZ4Compressor(w io.Writer, level int) (io.WriteCloser, error) {
	if level < 0 || level >= len(lz4Levels) {
		return nil, ErrInvalidLevel
	}
	zw := lz4.NewWriter(w)
	if err := zw.Apply(lz4.CompressionLevelOption(lz4Levels[level])); err != nil {
		return nil, err
	}
	return zw, nil
}

func createBrotliCompressor(w io.Writer, level int) (io.WriteCloser, error) {
	if level == 0 {
		level = brotli.DefaultCompression
	}
	if level < brotli.BestSpeed || level > brotli.BestCompression {
		return nil, ErrInvalidLevel
	}
	return brotli.NewWriterLevel(w, level), nil
}

func createZlibCompressor(w io.Writer, level int) (io.WriteCloser, error) {
	if level == 0 {
		level = zlib.DefaultCompression
	}
	return zlib.NewWriterLevel(w, level)
}

func createDeflateCompressor(w io.Writer, level int) (io.WriteCloser, error) {
	if level == 0 {
		level = flate.DefaultCompression
	}
	return flate.NewWriter(w, level)
}
