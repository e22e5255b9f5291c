package pilosa

import (
	"strings"
	"testing"
)

func TestValidIndexName(t *testing.T) {
	valid := []string{"a", "valid-index", "valid_index", "i42"}
	invalid := []string{"", "Uppercase", "4badstart", "-badstart", "bad space", strings.Repeat("a", 65)}
	for _, name := range valid {
		if !ValidIndexName(name) {
			t.Fatalf("%s should be a valid index name", name)
		}
	}
	for _, name := range invalid {
		if ValidIndexName(name) {
			t.Fatalf("%s should not be a valid index name", name)
		}
	}
}

func TestValidFieldName(t *testing.T) {
	if !ValidFieldName("some-field") {
		t.Fatal("some-field should be a valid field name")
	}
	if ValidFieldName("UPPER") {
		t.Fatal("UPPER should not be a valid field name")
	}
	if ValidFieldName(strings.Repeat("b", 65)) {
		t.Fatal("names longer than 64 characters should not be valid")
	}
}

func TestValidLabel(t *testing.T) {
	valid := []string{"a", "Mixed_Case", "label-42"}
	invalid := []string{"", "4badstart", "bad space"}
	for _, label := range valid {
		if !ValidLabel(label) {
			t.Fatalf("%s should be a valid label", label)
		}
	}
	for _, label := range invalid {
		if ValidLabel(label) {
			t.Fatalf("%s should not be a valid label", label)
		}
	}
}

func TestValidKey(t *testing.T) {
	valid := []string{"", "key1", "user:42", "b7412a/c3+d=", "%7Ekey"}
	invalid := []string{"bad key", "käy", strings.Repeat("k", 65)}
	for _, key := range valid {
		if !ValidKey(key) {
			t.Fatalf("%s should be a valid key", key)
		}
	}
	for _, key := range invalid {
		if ValidKey(key) {
			t.Fatalf("%s should not be a valid key", key)
		}
	}
}
