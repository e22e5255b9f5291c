// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

// Package csv reads column and field value records from CSV streams.
package csv

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	pilosa "github.com/pilosa/go-pilosa"
)

// Format is the layout of a CSV line.
type Format uint

const (
	// RowIDColumnID formatted data is ROW_ID,COLUMN_ID.
	RowIDColumnID Format = iota
	// RowIDColumnKey formatted data is ROW_ID,COLUMN_KEY.
	RowIDColumnKey
	// RowKeyColumnID formatted data is ROW_KEY,COLUMN_ID.
	RowKeyColumnID
	// RowKeyColumnKey formatted data is ROW_KEY,COLUMN_KEY.
	RowKeyColumnKey
	// ColumnID formatted data is COLUMN_ID,VALUE. Valid only for value import.
	ColumnID
	// ColumnKey formatted data is COLUMN_KEY,VALUE. Valid only for value import.
	ColumnKey
)

// ParseError describes a malformed CSV line together with its 1-based line
// number.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v at line: %d", e.Err, e.Line)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RecordUnmarshaller is a function which creates a Record from a CSV line.
type RecordUnmarshaller func(text string) (pilosa.Record, error)

// ColumnUnmarshaller creates a RecordUnmarshaller for importing columns with
// the given format. Timestamps are read as integer seconds since the Unix
// epoch.
func ColumnUnmarshaller(format Format) RecordUnmarshaller {
	return ColumnUnmarshallerWithTimestamp(format, "")
}

// ColumnUnmarshallerWithTimestamp creates a RecordUnmarshaller for importing
// columns with the given format. Timestamps are parsed with the given layout;
// an empty layout means integer seconds since the Unix epoch.
func ColumnUnmarshallerWithTimestamp(format Format, timestampFormat string) RecordUnmarshaller {
	return func(text string) (pilosa.Record, error) {
		var err error
		column := pilosa.Column{}
		parts := splitLine(text)
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("invalid CSV line")
		}

		hasRowKey := format == RowKeyColumnID || format == RowKeyColumnKey
		hasColumnKey := format == RowIDColumnKey || format == RowKeyColumnKey

		if hasRowKey {
			column.RowKey = parts[0]
		} else {
			column.RowID, err = strconv.ParseUint(parts[0], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid row ID")
			}
		}

		if hasColumnKey {
			column.ColumnKey = parts[1]
		} else {
			column.ColumnID, err = strconv.ParseUint(parts[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid column ID")
			}
		}

		if len(parts) == 3 {
			if timestampFormat == "" {
				column.Timestamp, err = strconv.ParseInt(parts[2], 10, 64)
				if err != nil {
					return nil, fmt.Errorf("invalid timestamp")
				}
			} else {
				t, err := time.Parse(timestampFormat, parts[2])
				if err != nil {
					return nil, fmt.Errorf("invalid timestamp")
				}
				column.Timestamp = t.Unix()
			}
		}

		return column, nil
	}
}

// FieldValueUnmarshaller creates a RecordUnmarshaller for importing values
// into int fields.
func FieldValueUnmarshaller(format Format) RecordUnmarshaller {
	return func(text string) (pilosa.Record, error) {
		parts := splitLine(text)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid CSV line")
		}
		value, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value")
		}
		switch format {
		case ColumnID:
			columnID, err := strconv.ParseUint(parts[0], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid column ID")
			}
			return pilosa.FieldValue{
				ColumnID: columnID,
				Value:    value,
			}, nil
		case ColumnKey:
			return pilosa.FieldValue{
				ColumnKey: parts[0],
				Value:     value,
			}, nil
		default:
			return nil, fmt.Errorf("invalid format: %d", format)
		}
	}
}

func splitLine(text string) []string {
	parts := strings.Split(text, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}

// IteratorOption is a functional option for iterators.
type IteratorOption func(*Iterator)

// OptIteratorSkipHeader makes the iterator discard the first non-blank line.
func OptIteratorSkipHeader(skip bool) IteratorOption {
	return func(i *Iterator) {
		i.skipHeader = skip
	}
}

// Iterator reads records from a Reader, one record per line. Blank lines are
// skipped; malformed lines stop the iteration with a *ParseError carrying the
// line number.
type Iterator struct {
	reader       io.Reader
	line         int
	scanner      *bufio.Scanner
	unmarshaller RecordUnmarshaller
	skipHeader   bool
}

// NewIterator creates an Iterator from a Reader.
func NewIterator(reader io.Reader, unmarshaller RecordUnmarshaller, options ...IteratorOption) *Iterator {
	iterator := &Iterator{
		reader:       reader,
		line:         0,
		scanner:      bufio.NewScanner(reader),
		unmarshaller: unmarshaller,
	}
	for _, opt := range options {
		opt(iterator)
	}
	return iterator
}

// NewColumnIterator creates an iterator for column data.
func NewColumnIterator(format Format, reader io.Reader, options ...IteratorOption) *Iterator {
	return NewIterator(reader, ColumnUnmarshaller(format), options...)
}

// NewColumnIteratorWithTimestampFormat creates an iterator for column data
// with a timestamp layout.
func NewColumnIteratorWithTimestampFormat(format Format, reader io.Reader, timestampFormat string, options ...IteratorOption) *Iterator {
	return NewIterator(reader, ColumnUnmarshallerWithTimestamp(format, timestampFormat), options...)
}

// NewValueIterator creates an iterator for int field value data.
func NewValueIterator(format Format, reader io.Reader, options ...IteratorOption) *Iterator {
	return NewIterator(reader, FieldValueUnmarshaller(format), options...)
}

// NextRecord returns the next record in the stream. Returns io.EOF at the end
// of iteration.
func (c *Iterator) NextRecord() (pilosa.Record, error) {
	for c.scanner.Scan() {
		c.line++
		text := strings.TrimSpace(c.scanner.Text())
		if text == "" {
			continue
		}
		if c.skipHeader {
			c.skipHeader = false
			continue
		}
		record, err := c.unmarshaller(text)
		if err != nil {
			return nil, &ParseError{Line: c.line, Err: err}
		}
		return record, nil
	}
	if err := c.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
