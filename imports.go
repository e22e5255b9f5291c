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

import (
	"bytes"
	"io"
	"sort"
	"time"

	"github.com/RoaringBitmap/roaring/roaring64"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"

	pbuf "github.com/pilosa/go-pilosa/gopilosa_pbuf"
)

// timeViewLayouts maps time quantum granularity characters to view name
// layouts. A quantum like "YMD" produces one view per character.
var timeViewLayouts = map[byte]string{
	'Y': "2006",
	'M': "200601",
	'D': "20060102",
	'H': "2006010215",
}

// readBatch pulls up to batchSize records from the iterator. The second
// return value reports whether the iterator is exhausted. Only one batch is
// ever materialized at a time; the rest of the stream stays in the iterator.
func readBatch(iterator RecordIterator, batchSize int) ([]Record, bool, error) {
	records := make([]Record, 0, batchSize)
	for len(records) < batchSize {
		record, err := iterator.NextRecord()
		if err == io.EOF {
			return records, true, nil
		}
		if err != nil {
			return nil, true, err
		}
		records = append(records, record)
	}
	return records, false, nil
}

// groupByShard groups the records of a single batch by their shard. Every
// record lands in exactly one group.
func groupByShard(records []Record, shardWidth uint64) map[uint64][]Record {
	groups := make(map[uint64][]Record)
	for _, record := range records {
		shard := record.Shard(shardWidth)
		groups[shard] = append(groups[shard], record)
	}
	return groups
}

// sortRecords sorts records in place by (RowID, ColumnID). The server relies
// on row-major order within a shard for efficient fragment merges.
func sortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Less(records[j])
	})
}

// encodeImportRequest builds the row-oriented protobuf payload for a shard
// group. The format must be one of the four column layouts.
func encodeImportRequest(field *Field, format importFormat, shard uint64, records []Record) ([]byte, error) {
	request := &pbuf.ImportRequest{
		Index: field.index.name,
		Field: field.name,
		Shard: shard,
	}
	columns, err := asColumns(records)
	if err != nil {
		return nil, err
	}
	switch format {
	case rowIDColumnID:
		for _, c := range columns {
			request.RowIDs = append(request.RowIDs, c.RowID)
			request.ColumnIDs = append(request.ColumnIDs, c.ColumnID)
			request.Timestamps = append(request.Timestamps, c.Timestamp)
		}
	case rowIDColumnKey:
		for _, c := range columns {
			request.RowIDs = append(request.RowIDs, c.RowID)
			request.ColumnKeys = append(request.ColumnKeys, c.ColumnKey)
			request.Timestamps = append(request.Timestamps, c.Timestamp)
		}
	case rowKeyColumnID:
		for _, c := range columns {
			request.RowKeys = append(request.RowKeys, c.RowKey)
			request.ColumnIDs = append(request.ColumnIDs, c.ColumnID)
			request.Timestamps = append(request.Timestamps, c.Timestamp)
		}
	case rowKeyColumnKey:
		for _, c := range columns {
			request.RowKeys = append(request.RowKeys, c.RowKey)
			request.ColumnKeys = append(request.ColumnKeys, c.ColumnKey)
			request.Timestamps = append(request.Timestamps, c.Timestamp)
		}
	default:
		return nil, ErrInvalidImportFormat
	}
	return proto.Marshal(request)
}

// encodeImportValueRequest builds the protobuf payload for an int field
// shard group.
func encodeImportValueRequest(field *Field, format importFormat, shard uint64, records []Record) ([]byte, error) {
	request := &pbuf.ImportValueRequest{
		Index: field.index.name,
		Field: field.name,
		Shard: shard,
	}
	switch format {
	case columnIDValue:
		for i, record := range records {
			v, ok := record.(FieldValue)
			if !ok {
				return nil, errors.Errorf("record %d is a %T, int fields require FieldValue records", i, record)
			}
			request.ColumnIDs = append(request.ColumnIDs, v.ColumnID)
			request.Values = append(request.Values, v.Value)
		}
	case columnKeyValue:
		for i, record := range records {
			v, ok := record.(FieldValue)
			if !ok {
				return nil, errors.Errorf("record %d is a %T, int fields require FieldValue records", i, record)
			}
			request.ColumnKeys = append(request.ColumnKeys, v.ColumnKey)
			request.Values = append(request.Values, v.Value)
		}
	default:
		return nil, ErrInvalidImportFormat
	}
	return proto.Marshal(request)
}

// encodeImportRoaringRequest builds the fast-path compressed bitmap payload
// for a shard group. Only valid for non-keyed set, bool and time fields with
// row ID/column ID records. Each record contributes the bit
// rowID*shardWidth + columnID%shardWidth to the standard view and, when the
// field has a time quantum, to one view per quantum granularity.
func encodeImportRoaringRequest(field *Field, shard uint64, shardWidth uint64, records []Record, clear bool) ([]byte, error) {
	columns, err := asColumns(records)
	if err != nil {
		return nil, err
	}
	standard := roaring64.New()
	views := map[string]*roaring64.Bitmap{"": standard}
	quantum := ""
	if field.options.fieldType == FieldTypeTime {
		quantum = string(field.options.timeQuantum)
	}
	for _, c := range columns {
		bit := c.RowID*shardWidth + c.ColumnID%shardWidth
		standard.Add(bit)
		for i := 0; i < len(quantum); i++ {
			layout, ok := timeViewLayouts[quantum[i]]
			if !ok {
				return nil, errors.Errorf("invalid time quantum character: %c", quantum[i])
			}
			name := time.Unix(c.Timestamp, 0).UTC().Format(layout)
			bmp := views[name]
			if bmp == nil {
				bmp = roaring64.New()
				views[name] = bmp
			}
			bmp.Add(bit)
		}
	}
	request := &pbuf.ImportRoaringRequest{Clear: clear}
	names := make([]string, 0, len(views))
	for name := range views {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		buf := &bytes.Buffer{}
		if _, err := views[name].WriteTo(buf); err != nil {
			return nil, errors.Wrapf(err, "serializing view '%s'", name)
		}
		request.Views = append(request.Views, &pbuf.ImportRoaringRequestView{
			Name: name,
			Data: buf.Bytes(),
		})
	}
	return proto.Marshal(request)
}

func asColumns(records []Record) ([]Column, error) {
	columns := make([]Column, len(records))
	for i, record := range records {
		c, ok := record.(Column)
		if !ok {
			return nil, errors.Errorf("record %d is a %T, non-int fields require Column records", i, record)
		}
		columns[i] = c
	}
	return columns, nil
}
