package object

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// DefaultCompression selects the codec's default zlib level.
const DefaultCompression = zlib.DefaultCompression

// Compress deflates data into a zlib stream, the format Git uses for loose
// objects.
func Compress(data []byte) ([]byte, error) {
	return CompressLevel(data, DefaultCompression)
}

// CompressLevel is Compress with an explicit zlib level (-1..9).
func CompressLevel(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		_ = zw.Close()
		return nil, fmt.Errorf("compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress inflates a zlib stream produced by Compress. The stream must be
// complete and its checksum must match; any failure is ErrCorruptObject.
// Bytes following the end of the stream are also rejected.
func Decompress(data []byte) ([]byte, error) {
	src := bytes.NewReader(data)
	zr, err := zlib.NewReader(src)
	if err != nil {
		return nil, &CorruptObjectError{Reason: "zlib header", Err: err}
	}
	out, err := io.ReadAll(zr)
	if err != nil {
		_ = zr.Close()
		return nil, &CorruptObjectError{Reason: "inflate", Err: err}
	}
	if err := zr.Close(); err != nil {
		return nil, &CorruptObjectError{Reason: "inflate", Err: err}
	}
	if src.Len() != 0 {
		return nil, corruptf("%d trailing bytes after zlib stream", src.Len())
	}
	return out, nil
}
