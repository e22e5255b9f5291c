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

package pilosa

// DefaultShardWidth is the number of columns per shard when the server does
// not advertise another width in its schema.
const DefaultShardWidth = 1048576

// Record is a Column or a FieldValue.
type Record interface {
	// Shard returns the shard this record belongs to.
	Shard(shardWidth uint64) uint64
	// Less returns true if this record sorts before the given record.
	Less(other Record) bool
}

// RecordIterator iterates over a stream of records. NextRecord returns io.EOF
// when the stream is exhausted.
type RecordIterator interface {
	NextRecord() (Record, error)
}

// Column defines a single Pilosa column with its row. Exactly one of
// RowID/RowKey and exactly one of ColumnID/ColumnKey is set, depending on the
// key mode of the target field and index.
type Column struct {
	RowID     uint64
	ColumnID  uint64
	RowKey    string
	ColumnKey string
	Timestamp int64
}

// Shard returns the shard of this column.
func (c Column) Shard(shardWidth uint64) uint64 {
	return c.ColumnID / shardWidth
}

// Less returns true if this column sorts before the given record, by
// (RowID, ColumnID).
func (c Column) Less(other Record) bool {
	if oc, ok := other.(Column); ok {
		if c.RowID == oc.RowID {
			return c.ColumnID < oc.ColumnID
		}
		return c.RowID < oc.RowID
	}
	return false
}

// FieldValue represents the value of a column in an int field.
type FieldValue struct {
	ColumnID  uint64
	ColumnKey string
	Value     int64
}

// Shard returns the shard of this field value.
func (v FieldValue) Shard(shardWidth uint64) uint64 {
	return v.ColumnID / shardWidth
}

// Less returns true if this field value sorts before the given record, by
// ColumnID.
func (v FieldValue) Less(other Record) bool {
	if ov, ok := other.(FieldValue); ok {
		return v.ColumnID < ov.ColumnID
	}
	return false
}

// importFormat is the closed set of wire layouts an import can use. It is
// resolved once per import call from the field metadata; encoders switch on
// it exhaustively.
type importFormat int

const (
	rowIDColumnID importFormat = iota
	rowIDColumnKey
	rowKeyColumnID
	rowKeyColumnKey
	columnIDValue
	columnKeyValue
)

// importFormatFor resolves the wire layout for the given field.
func importFormatFor(field *Field) importFormat {
	indexKeys := field.index.options.keys
	fieldKeys := field.options.keys
	if field.options.fieldType == FieldTypeInt {
		if indexKeys {
			return columnKeyValue
		}
		return columnIDValue
	}
	switch {
	case indexKeys && fieldKeys:
		return rowKeyColumnKey
	case indexKeys:
		return rowIDColumnKey
	case fieldKeys:
		return rowKeyColumnID
	default:
		return rowIDColumnID
	}
}

// isValue returns true for formats carrying int field values.
func (f importFormat) isValue() bool {
	return f == columnIDValue || f == columnKeyValue
}
