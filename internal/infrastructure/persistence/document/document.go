// Package document encodes and decodes the persisted record document: a JSON
// array of objects with keys xh, xm, xb, nl, zy, indented with four spaces.
// The file, redis and badger gateways share this format.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/alem-hub/student-records/internal/domain/shared"
	"github.com/alem-hub/student-records/internal/domain/student"
)

// Indent is the indentation used for the pretty-printed document.
const Indent = "    "

// Encode renders records as the persisted document. An empty set encodes as [].
// Non-ASCII text and <, >, & are written literally.
func Encode(records []student.Record) ([]byte, error) {
	if records == nil {
		records = []student.Record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", Indent)
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}

	// Encoder always appends a newline; the document ends at the closing bracket.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Decode parses a persisted document. Whitespace-only input decodes as no records.
func Decode(data []byte) ([]student.Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []student.Record{}, nil
	}

	var records []student.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidFormat, err)
	}
	if records == nil {
		records = []student.Record{}
	}
	return records, nil
}

// EncodeRecord renders a single record compactly. Used by per-record backends.
func EncodeRecord(r student.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encode record %s: %w", r.ID, err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// DecodeRecord parses a single record.
func DecodeRecord(data []byte) (student.Record, error) {
	var r student.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return student.Record{}, fmt.Errorf("%w: %v", shared.ErrInvalidFormat, err)
	}
	return r, nil
}
