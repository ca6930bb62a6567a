package ws

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
)

var ErrFrameTooLarge = errors.New("decompressed frame exceeds size limit")

// CompressMessage gzips data
func CompressMessage(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)

	if _, err := gzipWriter.Write(data); err != nil {
		return nil, err
	}
	if err := gzipWriter.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecompressMessage reverses CompressMessage. Output longer than
// maxFrameSize fails with ErrFrameTooLarge.
func DecompressMessage(data []byte) ([]byte, error) {
	return decompressLimited(data, maxFrameSize)
}

func decompressLimited(data []byte, limit int64) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	plain, err := io.ReadAll(io.LimitReader(reader, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(plain)) > limit {
		return nil, ErrFrameTooLarge
	}
	return plain, nil
}
