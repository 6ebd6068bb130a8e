// Package textenc detects the character encoding of raw report bytes and
// decodes them to UTF-8. Detection looks at a leading sample only; the
// statistics there are enough to pick a decoder for the whole file.
package textenc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// SampleSize is how many leading bytes detection inspects.
const SampleSize = 10 * 1024

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

var errEmptyInput = errors.New("empty input")

// Detect returns the best-guess encoding for the given byte sample along
// with its canonical name. A byte-order mark wins outright; otherwise the
// sample is checked for UTF-8 validity before falling back to statistical
// detection.
func Detect(sample []byte) (encoding.Encoding, string, error) {
	if len(sample) == 0 {
		return nil, "", errEmptyInput
	}
	if len(sample) > SampleSize {
		sample = sample[:SampleSize]
	}

	switch {
	case bytes.HasPrefix(sample, bomUTF8):
		return unicode.UTF8BOM, "utf-8", nil
	case bytes.HasPrefix(sample, bomUTF16LE):
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), "utf-16le", nil
	case bytes.HasPrefix(sample, bomUTF16BE):
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), "utf-16be", nil
	}

	if utf8.Valid(sample) {
		return unicode.UTF8, "utf-8", nil
	}

	enc, name, certain := charset.DetermineEncoding(sample, "")
	if enc == nil {
		return nil, "", fmt.Errorf("no usable encoding detected (certain=%v)", certain)
	}
	return enc, name, nil
}

// Decode converts raw bytes to UTF-8 using the encoding detected from
// their leading sample. The detected encoding name is returned for
// logging.
func Decode(data []byte) ([]byte, string, error) {
	enc, name, err := Detect(data)
	if err != nil {
		return nil, "", err
	}

	decoded, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, "", fmt.Errorf("decode as %s: %w", name, err)
	}
	return decoded, name, nil
}

// ReadFile reads a file from disk and decodes it to UTF-8.
func ReadFile(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(data)
}
