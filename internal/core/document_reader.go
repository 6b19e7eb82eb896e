package core

// document_reader.go reads an uploaded document into memory.
//
// Documents hold a single user's program and are parsed as a whole, so the
// reader buffers them up to a size limit. It also repairs what Windows
// spreadsheet programs tend to add:
//
//   - A UTF-8 byte order mark (0xEF 0xBB 0xBF) is removed
//   - Invalid UTF-8 sequences are replaced with U+FFFD

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// DefaultMaxDocumentSize bounds documents accepted by ReadDocument.
const DefaultMaxDocumentSize = 8 << 20

// ErrDocumentTooLarge is returned when a document exceeds the size limit.
var ErrDocumentTooLarge = errors.New("document too large")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadDocument reads r completely, failing with ErrDocumentTooLarge when it
// holds more than maxSize bytes. A maxSize of zero or less uses
// DefaultMaxDocumentSize.
func ReadDocument(r io.Reader, maxSize int64) (string, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxDocumentSize
	}

	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	if int64(len(data)) > maxSize {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrDocumentTooLarge, maxSize)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		data = bytes.ToValidUTF8(data, []byte(string(utf8.RuneError)))
	}
	return string(data), nil
}
