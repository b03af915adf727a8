package outchain_test

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/absfs/outchain"
)

// unixLines keeps example output identical on every platform
func unixLines() outchain.Option {
	cfg := outchain.DefaultConfig()
	cfg.LineSeparator = "\n"
	return outchain.WithConfig(cfg)
}

func Example_basic() {
	var buf bytes.Buffer

	err := outchain.New(outchain.WriterTarget(&buf), unixLines()).
		WriteLines("alpha", 2, true)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%q\n", buf.String())
	// Output: "alpha\n2\ntrue"
}

func Example_compressByExtension() {
	fsys := outchain.NewMemFS()

	err := outchain.New(outchain.FilerTarget(fsys, "events.gz"), unixLines()).
		Compress().
		WriteLines("started", "stopped")
	if err != nil {
		log.Fatal(err)
	}

	data, _ := fsys.ReadFile("events.gz")
	algo, _ := outchain.DetectCompressionAlgorithm(data)
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		log.Fatal(err)
	}
	plain, _ := io.ReadAll(zr)

	fmt.Println(algo)
	fmt.Println(string(plain))
	// Output:
	// gzip
	// started
	// stopped
}

func Example_layers() {
	var buf bytes.Buffer

	s, err := outchain.New(outchain.NamedWriterTarget("blob.zst", &buf)).
		Compress().
		EncodeBase64().
		Stream()
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	fmt.Println(s.(*outchain.Chain).Layers())
	// Output: [target base64 zstd]
}

func Example_base64() {
	var buf bytes.Buffer

	if err := outchain.New(outchain.WriterTarget(&buf)).EncodeBase64().Write("hello"); err != nil {
		log.Fatal(err)
	}

	decoded, _ := base64.StdEncoding.DecodeString(buf.String())
	fmt.Println(buf.String(), string(decoded))
	// Output: aGVsbG8= hello
}

func Example_fallback() {
	var buf bytes.Buffer

	// An unnamed target has no extension, so the fallback compressor is used.
	s, err := outchain.New(outchain.WriterTarget(&buf)).Compress().Stream()
	if err != nil {
		log.Fatal(err)
	}
	io.WriteString(s, strings.Repeat("z", 100))
	s.Close()

	algo, _ := outchain.DetectCompressionAlgorithm(buf.Bytes())
	fmt.Println(algo)
	// Output: zlib
}

func Example_registry() {
	reg := outchain.NewRegistry()
	if err := reg.RegisterAlgorithm(".tgz", outchain.AlgorithmGzip, 9); err != nil {
		log.Fatal(err)
	}

	var buf bytes.Buffer
	s, err := outchain.New(outchain.NamedWriterTarget("backup.tgz", &buf), outchain.WithRegistry(reg)).
		Compress().
		Stream()
	if err != nil {
		log.Fatal(err)
	}
	s.Close()

	fmt.Println(reg.Extensions(), s.(*outchain.Chain).Layers())
	// Output: [.tgz] [target gzip]
}
