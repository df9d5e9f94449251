package serialize

import (
	"fmt"
	"os"
)

// binWriter is the append-only binary sink for constant payloads. Every
// append records the offset at which the bytes start; bytes are never
// rewritten. No header, no alignment padding, no compression.
type binWriter struct {
	file   *os.File
	offset int64
	closed bool
}

func newBinWriter(path string) (*binWriter, error) {
	//nolint:gosec // G304: the bin path comes from caller configuration.
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create bin file: %w", err)
	}
	return &binWriter{file: file}, nil
}

// Append writes the bytes at the end of the stream and returns the
// offset at which they start.
func (w *binWriter) Append(data []byte) (int64, error) {
	offset := w.offset
	n, err := w.file.Write(data)
	w.offset += int64(n)
	if err != nil {
		return 0, fmt.Errorf("failed to write bin data: %w", err)
	}
	return offset, nil
}

// Close flushes and closes the underlying file. Safe to call twice.
func (w *binWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}
