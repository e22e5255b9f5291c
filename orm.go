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
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const timeFormat = "2006-01-02T15:04"

// TimeQuantum is the time resolution for time fields.
type TimeQuantum string

// TimeQuantum values.
const (
	TimeQuantumNone             TimeQuantum = ""
	TimeQuantumYear             TimeQuantum = "Y"
	TimeQuantumMonth            TimeQuantum = "M"
	TimeQuantumDay              TimeQuantum = "D"
	TimeQuantumHour             TimeQuantum = "H"
	TimeQuantumYearMonth        TimeQuantum = "YM"
	TimeQuantumMonthDay         TimeQuantum = "MD"
	TimeQuantumDayHour          TimeQuantum = "DH"
	TimeQuantumYearMonthDay     TimeQuantum = "YMD"
	TimeQuantumMonthDayHour     TimeQuantum = "MDH"
	TimeQuantumYearMonthDayHour TimeQuantum = "YMDH"
)

// CacheType is the cache strategy for set and mutex fields.
type CacheType string

// CacheType values.
const (
	CacheTypeDefault CacheType = ""
	CacheTypeLRU     CacheType = "lru"
	CacheTypeRanked  CacheType = "ranked"
)

// FieldType denotes the type of a field.
type FieldType string

// FieldType values.
const (
	FieldTypeSet   FieldType = "set"
	FieldTypeInt   FieldType = "int"
	FieldTypeTime  FieldType = "time"
	FieldTypeMutex FieldType = "mutex"
	FieldTypeBool  FieldType = "bool"
)

// Schema contains the index definitions known to the client.
type Schema struct {
	indexes map[string]*Index
}

// NewSchema creates a new, empty Schema.
func NewSchema() *Schema {
	return &Schema{
		indexes: make(map[string]*Index),
	}
}

// Index returns the index with the given name and options, creating it in the
// schema if it doesn't already exist.
func (s *Schema) Index(name string, options ...IndexOption) *Index {
	if index, ok := s.indexes[name]; ok {
		return index
	}
	indexOptions := &IndexOptions{}
	for _, opt := range options {
		opt(indexOptions)
	}
	index := &Index{
		name:    name,
		options: *indexOptions,
		fields:  make(map[string]*Field),
	}
	s.indexes[name] = index
	return index
}

// Indexes returns a copy of the indexes in this schema.
func (s *Schema) Indexes() map[string]*Index {
	result := make(map[string]*Index, len(s.indexes))
	for k, v := range s.indexes {
		result[k] = v
	}
	return result
}

// HasIndex returns true if the schema contains an index with the given name.
func (s *Schema) HasIndex(name string) bool {
	_, ok := s.indexes[name]
	return ok
}

// diff returns the indexes and fields of this schema which are missing from
// the other schema.
func (s *Schema) diff(other *Schema) *Schema {
	result := NewSchema()
	for indexName, index := range s.indexes {
		otherIndex, ok := other.indexes[indexName]
		if !ok {
			resultIndex := index.copy()
			result.indexes[indexName] = resultIndex
			continue
		}
		resultIndex := index.copy()
		resultIndex.fields = make(map[string]*Field)
		for fieldName, field := range index.fields {
			if _, ok := otherIndex.fields[fieldName]; !ok {
				resultIndex.fields[fieldName] = field.copy(resultIndex)
			}
		}
		if len(resultIndex.fields) > 0 {
			result.indexes[indexName] = resultIndex
		}
	}
	return result
}

// IndexOptions contains the options for an index.
type IndexOptions struct {
	keys           bool
	trackExistence bool
	shardWidth     uint64
}

// Keys returns true if the index uses string keys.
func (io IndexOptions) Keys() bool { return io.keys }

// ShardWidth returns the number of columns in a shard of the index, or 0 when
// the server default applies.
func (io IndexOptions) ShardWidth() uint64 { return io.shardWidth }

// IndexOption is a functional option for indexes.
type IndexOption func(*IndexOptions)

// OptIndexKeys sets whether the index uses string keys.
func OptIndexKeys(keys bool) IndexOption {
	return func(io *IndexOptions) {
		io.keys = keys
	}
}

// OptIndexTrackExistence sets whether the server keeps track of column
// existence for the index.
func OptIndexTrackExistence(trackExistence bool) IndexOption {
	return func(io *IndexOptions) {
		io.trackExistence = trackExistence
	}
}

// OptIndexShardWidth overrides the shard width reported by the server. Used
// mainly in tests; servers advertise their shard width in the schema.
func OptIndexShardWidth(shardWidth uint64) IndexOption {
	return func(io *IndexOptions) {
		io.shardWidth = shardWidth
	}
}

// Index is a Pilosa data namespace. Cross-index queries are not possible.
type Index struct {
	name    string
	options IndexOptions
	fields  map[string]*Field
}

// Name returns the name of this index.
func (idx *Index) Name() string { return idx.name }

// Opts returns the options of this index.
func (idx *Index) Opts() IndexOptions { return idx.options }

// Field returns the field with the given name and options, creating it in the
// index if it doesn't already exist.
func (idx *Index) Field(name string, options ...FieldOption) *Field {
	if field, ok := idx.fields[name]; ok {
		return field
	}
	fieldOptions := &FieldOptions{fieldType: FieldTypeSet}
	for _, opt := range options {
		opt(fieldOptions)
	}
	field := &Field{
		name:    name,
		index:   idx,
		options: *fieldOptions,
	}
	idx.fields[name] = field
	return field
}

// Fields returns a copy of the fields in this index.
func (idx *Index) Fields() map[string]*Field {
	result := make(map[string]*Field, len(idx.fields))
	for k, v := range idx.fields {
		result[k] = v
	}
	return result
}

// HasField returns true if the index has a field with the given name.
func (idx *Index) HasField(name string) bool {
	_, ok := idx.fields[name]
	return ok
}

func (idx *Index) copy() *Index {
	result := &Index{
		name:    idx.name,
		options: idx.options,
		fields:  make(map[string]*Field, len(idx.fields)),
	}
	for name, field := range idx.fields {
		result.fields[name] = field.copy(result)
	}
	return result
}

// shardWidth returns the effective shard width for imports into this index.
func (idx *Index) shardWidth() uint64 {
	if idx.options.shardWidth > 0 {
		return idx.options.shardWidth
	}
	return DefaultShardWidth
}

func (idx *Index) optionsString() string {
	if !idx.options.keys && !idx.options.trackExistence {
		return ""
	}
	options := map[string]interface{}{}
	if idx.options.keys {
		options["keys"] = true
	}
	if idx.options.trackExistence {
		options["trackExistence"] = true
	}
	return marshalOptions(options)
}

// RawQuery creates a query with the given string. The query is not validated
// before sending to the server.
func (idx *Index) RawQuery(query string) *PQLBaseQuery {
	return NewPQLBaseQuery(query, idx, nil)
}

// BatchQuery creates a batch query with the given queries.
func (idx *Index) BatchQuery(queries ...PQLQuery) *PQLBatchQuery {
	q := &PQLBatchQuery{index: idx}
	for _, query := range queries {
		q.Add(query)
	}
	return q
}

// Union creates a Union query.
func (idx *Index) Union(rows ...*PQLBaseQuery) *PQLBaseQuery {
	return idx.rowOperation("Union", 0, rows...)
}

// Intersect creates an Intersect query.
func (idx *Index) Intersect(rows ...*PQLBaseQuery) *PQLBaseQuery {
	return idx.rowOperation("Intersect", 1, rows...)
}

// Difference creates a Difference query.
func (idx *Index) Difference(rows ...*PQLBaseQuery) *PQLBaseQuery {
	return idx.rowOperation("Difference", 1, rows...)
}

// Xor creates a Xor query.
func (idx *Index) Xor(rows ...*PQLBaseQuery) *PQLBaseQuery {
	return idx.rowOperation("Xor", 2, rows...)
}

// Count creates a Count query which returns the number of columns in the
// given row.
func (idx *Index) Count(row *PQLBaseQuery) *PQLBaseQuery {
	return NewPQLBaseQuery(fmt.Sprintf("Count(%s)", row.Serialize()), idx, row.Error())
}

// SetColumnAttrs creates a SetColumnAttrs query.
func (idx *Index) SetColumnAttrs(colIDOrKey interface{}, attrs map[string]interface{}) *PQLBaseQuery {
	colStr, keys, err := idKeyToString(colIDOrKey)
	if err != nil {
		return NewPQLBaseQuery("", idx, err)
	}
	attrsStr, err := createAttributesString(attrs)
	if err != nil {
		return NewPQLBaseQuery("", idx, err)
	}
	q := NewPQLBaseQuery(fmt.Sprintf("SetColumnAttrs(%s,%s)", colStr, attrsStr), idx, nil)
	q.keys = keys
	return q
}

func (idx *Index) rowOperation(name string, minRows int, rows ...*PQLBaseQuery) *PQLBaseQuery {
	if len(rows) < minRows {
		err := errors.Errorf("%s requires at least %d row queries", name, minRows)
		return NewPQLBaseQuery("", idx, err)
	}
	serialized := make([]string, len(rows))
	keys := false
	for i, row := range rows {
		if err := row.Error(); err != nil {
			return NewPQLBaseQuery("", idx, err)
		}
		serialized[i] = row.Serialize()
		keys = keys || row.keys
	}
	q := NewPQLBaseQuery(fmt.Sprintf("%s(%s)", name, strings.Join(serialized, ", ")), idx, nil)
	q.keys = keys
	return q
}

// FieldOptions contains the options for a field.
type FieldOptions struct {
	fieldType   FieldType
	timeQuantum TimeQuantum
	cacheType   CacheType
	cacheSize   int
	min         int64
	max         int64
	keys        bool
}

// Type returns the type of the field.
func (fo FieldOptions) Type() FieldType { return fo.fieldType }

// TimeQuantum returns the time quantum of a time field.
func (fo FieldOptions) TimeQuantum() TimeQuantum { return fo.timeQuantum }

// CacheType returns the cache type of the field.
func (fo FieldOptions) CacheType() CacheType { return fo.cacheType }

// CacheSize returns the cache size of the field.
func (fo FieldOptions) CacheSize() int { return fo.cacheSize }

// Min returns the minimum of an int field.
func (fo FieldOptions) Min() int64 { return fo.min }

// Max returns the maximum of an int field.
func (fo FieldOptions) Max() int64 { return fo.max }

// Keys returns true if the field uses string keys.
func (fo FieldOptions) Keys() bool { return fo.keys }

// FieldOption is a functional option for fields.
type FieldOption func(*FieldOptions)

// OptFieldTypeSet makes the field a set field with the given cache options.
func OptFieldTypeSet(cacheType CacheType, cacheSize int) FieldOption {
	return func(fo *FieldOptions) {
		fo.fieldType = FieldTypeSet
		fo.cacheType = cacheType
		fo.cacheSize = cacheSize
	}
}

// OptFieldTypeInt makes the field an integer field with the given range.
func OptFieldTypeInt(min int64, max int64) FieldOption {
	return func(fo *FieldOptions) {
		fo.fieldType = FieldTypeInt
		fo.min = min
		fo.max = max
	}
}

// OptFieldTypeTime makes the field a time field with the given quantum.
func OptFieldTypeTime(quantum TimeQuantum) FieldOption {
	return func(fo *FieldOptions) {
		fo.fieldType = FieldTypeTime
		fo.timeQuantum = quantum
	}
}

// OptFieldTypeMutex makes the field a mutex field with the given cache options.
func OptFieldTypeMutex(cacheType CacheType, cacheSize int) FieldOption {
	return func(fo *FieldOptions) {
		fo.fieldType = FieldTypeMutex
		fo.cacheType = cacheType
		fo.cacheSize = cacheSize
	}
}

// OptFieldTypeBool makes the field a bool field.
func OptFieldTypeBool() FieldOption {
	return func(fo *FieldOptions) {
		fo.fieldType = FieldTypeBool
	}
}

// OptFieldKeys sets whether the field uses string keys.
func OptFieldKeys(keys bool) FieldOption {
	return func(fo *FieldOptions) {
		fo.keys = keys
	}
}

// Field is a row namespace within an index.
type Field struct {
	name    string
	index   *Index
	options FieldOptions
}

// Name returns the name of the field.
func (f *Field) Name() string { return f.name }

// Index returns the index this field belongs to.
func (f *Field) Index() *Index { return f.index }

// Opts returns the options of the field.
func (f *Field) Opts() FieldOptions { return f.options }

func (f *Field) copy(index *Index) *Field {
	return &Field{
		name:    f.name,
		index:   index,
		options: f.options,
	}
}

func (f *Field) optionsString() string {
	options := map[string]interface{}{"type": string(f.options.fieldType)}
	if f.options.keys {
		options["keys"] = true
	}
	switch f.options.fieldType {
	case FieldTypeTime:
		options["timeQuantum"] = string(f.options.timeQuantum)
	case FieldTypeInt:
		options["min"] = f.options.min
		options["max"] = f.options.max
	case FieldTypeSet, FieldTypeMutex:
		if f.options.cacheType != CacheTypeDefault {
			options["cacheType"] = string(f.options.cacheType)
		}
		if f.options.cacheSize > 0 {
			options["cacheSize"] = f.options.cacheSize
		}
	}
	return marshalOptions(options)
}

// Row creates a Row query which retrieves the columns of the given row.
func (f *Field) Row(rowIDOrKey interface{}) *PQLBaseQuery {
	rowStr, keys, err := idKeyToString(rowIDOrKey)
	if err != nil {
		return NewPQLBaseQuery("", f.index, err)
	}
	q := NewPQLBaseQuery(fmt.Sprintf("Row(%s=%s)", f.name, rowStr), f.index, nil)
	q.keys = keys
	return q
}

// Set creates a Set query which associates the given row with the given
// column.
func (f *Field) Set(rowIDOrKey, colIDOrKey interface{}) *PQLBaseQuery {
	return f.set(rowIDOrKey, colIDOrKey, "")
}

// SetTimestamp creates a Set query with a timestamp.
func (f *Field) SetTimestamp(rowIDOrKey, colIDOrKey interface{}, ts time.Time) *PQLBaseQuery {
	return f.set(rowIDOrKey, colIDOrKey, fmt.Sprintf(", %s", ts.Format(timeFormat)))
}

func (f *Field) set(rowIDOrKey, colIDOrKey interface{}, tsStr string) *PQLBaseQuery {
	rowStr, rowKeys, err := idKeyToString(rowIDOrKey)
	if err != nil {
		return NewPQLBaseQuery("", f.index, err)
	}
	colStr, colKeys, err := idKeyToString(colIDOrKey)
	if err != nil {
		return NewPQLBaseQuery("", f.index, err)
	}
	q := NewPQLBaseQuery(fmt.Sprintf("Set(%s,%s=%s%s)", colStr, f.name, rowStr, tsStr), f.index, nil)
	q.keys = rowKeys || colKeys
	return q
}

// Clear creates a Clear query which disassociates the given row from the
// given column.
func (f *Field) Clear(rowIDOrKey, colIDOrKey interface{}) *PQLBaseQuery {
	rowStr, rowKeys, err := idKeyToString(rowIDOrKey)
	if err != nil {
		return NewPQLBaseQuery("", f.index, err)
	}
	colStr, colKeys, err := idKeyToString(colIDOrKey)
	if err != nil {
		return NewPQLBaseQuery("", f.index, err)
	}
	q := NewPQLBaseQuery(fmt.Sprintf("Clear(%s,%s=%s)", colStr, f.name, rowStr), f.index, nil)
	q.keys = rowKeys || colKeys
	return q
}

// TopN creates a TopN query which returns the id and count of the top n rows
// by column count.
func (f *Field) TopN(n uint64) *PQLBaseQuery {
	return NewPQLBaseQuery(fmt.Sprintf("TopN(%s,n=%d)", f.name, n), f.index, nil)
}

// Range creates a Range query which returns the columns of the given row set
// with timestamps between start and end.
func (f *Field) Range(rowIDOrKey interface{}, start time.Time, end time.Time) *PQLBaseQuery {
	rowStr, keys, err := idKeyToString(rowIDOrKey)
	if err != nil {
		return NewPQLBaseQuery("", f.index, err)
	}
	q := NewPQLBaseQuery(fmt.Sprintf("Range(%s=%s,%s,%s)",
		f.name, rowStr, start.Format(timeFormat), end.Format(timeFormat)), f.index, nil)
	q.keys = keys
	return q
}

// SetIntValue creates a Set query which assigns the given value to the column
// in an int field.
func (f *Field) SetIntValue(colIDOrKey interface{}, value int64) *PQLBaseQuery {
	colStr, keys, err := idKeyToString(colIDOrKey)
	if err != nil {
		return NewPQLBaseQuery("", f.index, err)
	}
	q := NewPQLBaseQuery(fmt.Sprintf("Set(%s,%s=%d)", colStr, f.name, value), f.index, nil)
	q.keys = keys
	return q
}

// Sum creates a Sum query. Pass a nil row to sum over the whole field.
func (f *Field) Sum(row *PQLBaseQuery) *PQLBaseQuery {
	return f.valueQuery("Sum", row)
}

// Min creates a Min query. Pass a nil row to consider the whole field.
func (f *Field) Min(row *PQLBaseQuery) *PQLBaseQuery {
	return f.valueQuery("Min", row)
}

// Max creates a Max query. Pass a nil row to consider the whole field.
func (f *Field) Max(row *PQLBaseQuery) *PQLBaseQuery {
	return f.valueQuery("Max", row)
}

// LT creates a Range query with a less than condition.
func (f *Field) LT(n int64) *PQLBaseQuery { return f.binaryOperation("<", n) }

// LTE creates a Range query with a less than or equal condition.
func (f *Field) LTE(n int64) *PQLBaseQuery { return f.binaryOperation("<=", n) }

// GT creates a Range query with a greater than condition.
func (f *Field) GT(n int64) *PQLBaseQuery { return f.binaryOperation(">", n) }

// GTE creates a Range query with a greater than or equal condition.
func (f *Field) GTE(n int64) *PQLBaseQuery { return f.binaryOperation(">=", n) }

// Equals creates a Range query with an equality condition.
func (f *Field) Equals(n int64) *PQLBaseQuery { return f.binaryOperation("==", n) }

// NotNull creates a Range query matching columns with any value set.
func (f *Field) NotNull() *PQLBaseQuery {
	return NewPQLBaseQuery(fmt.Sprintf("Range(%s != null)", f.name), f.index, nil)
}

// Between creates a Range query matching values in the closed range [a, b].
func (f *Field) Between(a int64, b int64) *PQLBaseQuery {
	return NewPQLBaseQuery(fmt.Sprintf("Range(%s >< [%d,%d])", f.name, a, b), f.index, nil)
}

func (f *Field) binaryOperation(op string, n int64) *PQLBaseQuery {
	return NewPQLBaseQuery(fmt.Sprintf("Range(%s %s %d)", f.name, op, n), f.index, nil)
}

func (f *Field) valueQuery(op string, row *PQLBaseQuery) *PQLBaseQuery {
	rowStr := ""
	if row != nil {
		if err := row.Error(); err != nil {
			return NewPQLBaseQuery("", f.index, err)
		}
		rowStr = fmt.Sprintf("%s, ", row.Serialize())
	}
	return NewPQLBaseQuery(fmt.Sprintf("%s(%sfield='%s')", op, rowStr, f.name), f.index, nil)
}

// PQLQuery is an interface for PQL queries.
type PQLQuery interface {
	Index() *Index
	Serialize() string
	Error() error
	hasKeys() bool
}

// PQLBaseQuery is the base implementation for PQLQuery.
type PQLBaseQuery struct {
	index *Index
	pql   string
	err   error
	keys  bool
}

// NewPQLBaseQuery creates a new PQLBaseQuery with the given PQL and index.
func NewPQLBaseQuery(pql string, index *Index, err error) *PQLBaseQuery {
	return &PQLBaseQuery{
		index: index,
		pql:   pql,
		err:   err,
	}
}

// Index returns the index this query belongs to.
func (q *PQLBaseQuery) Index() *Index { return q.index }

// Serialize converts this query to its PQL representation.
func (q *PQLBaseQuery) Serialize() string { return q.pql }

// Error returns the error of the query, if any.
func (q *PQLBaseQuery) Error() error { return q.err }

func (q *PQLBaseQuery) hasKeys() bool {
	return q.keys || (q.index != nil && q.index.options.keys)
}

// PQLBatchQuery contains a batch of PQL queries which are sent to the server
// in a single request.
type PQLBatchQuery struct {
	index   *Index
	queries []string
	keys    bool
	err     error
}

// Add adds a query to the batch.
func (q *PQLBatchQuery) Add(query PQLQuery) {
	if err := query.Error(); err != nil {
		q.err = err
	}
	q.queries = append(q.queries, query.Serialize())
	q.keys = q.keys || query.hasKeys()
}

// Index returns the index this batch belongs to.
func (q *PQLBatchQuery) Index() *Index { return q.index }

// Serialize converts the batch to its PQL representation.
func (q *PQLBatchQuery) Serialize() string { return strings.Join(q.queries, "") }

// Error returns the error of the batch, if any.
func (q *PQLBatchQuery) Error() error { return q.err }

func (q *PQLBatchQuery) hasKeys() bool {
	return q.keys || (q.index != nil && q.index.options.keys)
}

func idKeyToString(idKey interface{}) (s string, keys bool, err error) {
	switch v := idKey.(type) {
	case uint64:
		return fmt.Sprintf("%d", v), false, nil
	case uint:
		return fmt.Sprintf("%d", v), false, nil
	case int64:
		return fmt.Sprintf("%d", v), false, nil
	case int:
		return fmt.Sprintf("%d", v), false, nil
	case string:
		if err := validateKey(v); err != nil {
			return "", false, err
		}
		return fmt.Sprintf("'%s'", v), true, nil
	default:
		return "", false, errors.Errorf("rows/columns must be integers or strings, got %T", idKey)
	}
}

func createAttributesString(attrs map[string]interface{}) (string, error) {
	kvs := make([]string, 0, len(attrs))
	for k, v := range attrs {
		if err := validateLabel(k); err != nil {
			return "", err
		}
		value, err := json.Marshal(v)
		if err != nil {
			return "", errors.Wrap(err, "marshaling attribute value")
		}
		kvs = append(kvs, fmt.Sprintf("%s=%s", k, value))
	}
	sort.Strings(kvs)
	return strings.Join(kvs, ","), nil
}

// marshalOptions produces the JSON body for index/field creation.
// encoding/json sorts map keys, matching the server's canonical option order.
func marshalOptions(options map[string]interface{}) string {
	data, err := json.Marshal(map[string]interface{}{"options": options})
	if err != nil {
		// options maps contain only strings, bools and integers
		panic(err)
	}
	return string(data)
}
