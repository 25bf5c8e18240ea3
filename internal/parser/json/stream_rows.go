package json

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"sparkify/internal/etlerr"
)

// Row is one decoded JSON object together with its 1-based line number.
type Row struct {
	Line   int
	Fields Object
}

// StreamJSONRows reads newline-delimited JSON from r and calls emit once per
// object, in input order.
//
// Input handling:
//   - Blank (whitespace-only) lines are skipped but still counted.
//   - A leading byte-order mark is removed; UTF-16 input with a BOM is
//     transcoded to UTF-8.
//   - Lines may be arbitrarily long.
//
// Errors:
//   - A line that is not exactly one JSON object returns a parse error carrying
//     the line number (path is filled in by the caller).
//   - Read failures return an I/O error.
//   - The first error returned by emit stops the stream and is returned as-is.
func StreamJSONRows(ctx context.Context, r io.Reader, emit func(*Row) error) error {
	br := bufio.NewReaderSize(transform.NewReader(r, unicode.BOMOverride(transform.Nop)), 64*1024)

	line := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, readErr := br.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return etlerr.IO("read", "", readErr)
		}
		if len(raw) > 0 {
			line++
			trimmed := bytes.TrimSpace(raw)
			if len(trimmed) > 0 {
				obj, err := decodeObject(trimmed)
				if err != nil {
					return etlerr.Parse("", line, "", err)
				}
				if err := emit(&Row{Line: line, Fields: obj}); err != nil {
					return err
				}
			}
		}
		if errors.Is(readErr, io.EOF) {
			return nil
		}
	}
}

// decodeObject decodes exactly one JSON object, keeping field values raw so
// typed accessors can report precise errors per field.
func decodeObject(b []byte) (Object, error) {
	if b[0] != '{' {
		return nil, fmt.Errorf("line is not a JSON object")
	}
	var obj Object
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}
