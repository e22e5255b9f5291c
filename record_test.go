package pilosa

import (
	"testing"
)

func TestColumnShard(t *testing.T) {
	tests := []struct {
		columnID uint64
		shard    uint64
	}{
		{0, 0},
		{DefaultShardWidth - 1, 0},
		{DefaultShardWidth, 1},
		{5*DefaultShardWidth + 7, 5},
	}
	for _, tst := range tests {
		c := Column{RowID: 1, ColumnID: tst.columnID}
		if shard := c.Shard(DefaultShardWidth); shard != tst.shard {
			t.Fatalf("column %d: expected shard %d, got %d", tst.columnID, tst.shard, shard)
		}
	}
}

func TestColumnLess(t *testing.T) {
	a := Column{RowID: 10, ColumnID: 200}
	b := Column{RowID: 10, ColumnID: 300}
	c := Column{RowID: 20, ColumnID: 100}
	if !a.Less(b) || b.Less(a) {
		t.Fatal("columns with equal rows should order by column ID")
	}
	if !b.Less(c) || c.Less(b) {
		t.Fatal("columns should order by row ID first")
	}
	if a.Less(FieldValue{ColumnID: 1000}) {
		t.Fatal("a column should not sort before a record of another type")
	}
}

func TestFieldValueShardLess(t *testing.T) {
	v := FieldValue{ColumnID: DefaultShardWidth + 1, Value: 42}
	if shard := v.Shard(DefaultShardWidth); shard != 1 {
		t.Fatalf("expected shard 1, got %d", shard)
	}
	w := FieldValue{ColumnID: 2 * DefaultShardWidth, Value: 7}
	if !v.Less(w) || w.Less(v) {
		t.Fatal("field values should order by column ID")
	}
}

func TestImportFormatFor(t *testing.T) {
	schema := NewSchema()
	plain := schema.Index("plain")
	keyed := schema.Index("keyed", OptIndexKeys(true))
	tests := []struct {
		field  *Field
		format importFormat
	}{
		{plain.Field("f1"), rowIDColumnID},
		{keyed.Field("f2"), rowIDColumnKey},
		{plain.Field("f3", OptFieldKeys(true)), rowKeyColumnID},
		{keyed.Field("f4", OptFieldKeys(true)), rowKeyColumnKey},
		{plain.Field("f5", OptFieldTypeInt(0, 100)), columnIDValue},
		{keyed.Field("f6", OptFieldTypeInt(0, 100)), columnKeyValue},
	}
	for _, tst := range tests {
		if format := importFormatFor(tst.field); format != tst.format {
			t.Fatalf("%s: expected format %d, got %d", tst.field.Name(), tst.format, format)
		}
	}
}

func TestImportFormatIsValue(t *testing.T) {
	for _, format := range []importFormat{rowIDColumnID, rowIDColumnKey, rowKeyColumnID, rowKeyColumnKey} {
		if format.isValue() {
			t.Fatalf("format %d should not be a value format", format)
		}
	}
	for _, format := range []importFormat{columnIDValue, columnKeyValue} {
		if !format.isValue() {
			t.Fatalf("format %d should be a value format", format)
		}
	}
}
