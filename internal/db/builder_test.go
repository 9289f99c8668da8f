package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_OrgIndex(t *testing.T) {
	def, err := NewIndex("orgrank:idx:orgs").
		Prefix("orgrank:org:").
		Tag("id", "").
		Tag("causes", "|").
		VectorHNSW("vector", 1536, DistanceCosine, 16, 200).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if def.StorageType != StorageHash {
		t.Errorf("StorageType = %q", def.StorageType)
	}
	if len(def.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(def.Fields))
	}
	v := def.VectorField()
	if v == nil || v.Name != "vector" {
		t.Fatalf("vector field not found: %+v", def.Fields)
	}
	if v.Vector.Dim != 1536 || v.Vector.M != 16 || v.Vector.EFConstruct != 200 || v.Vector.Algo != VectorHNSW {
		t.Errorf("vector spec = %+v", v.Vector)
	}
	if def.Fields[1].TagSeparator != "|" {
		t.Errorf("tag separator = %q", def.Fields[1].TagSeparator)
	}
}

func TestIndexBuilder_Validation(t *testing.T) {
	tests := []struct {
		name string
		b    *IndexBuilder
	}{
		{"empty name", NewIndex("").Tag("id", "")},
		{"bad name", NewIndex("orgs idx").Tag("id", "")},
		{"no fields", NewIndex("orgs")},
		{"duplicate field", NewIndex("orgs").Tag("id", "").Tag("id", "|")},
		{"zero dim", NewIndex("orgs").VectorFlat("vector", 0, DistanceCosine)},
		{"negative hnsw m", NewIndex("orgs").VectorHNSW("vector", 8, DistanceCosine, -1, 0)},
		{"two vectors", NewIndex("orgs").VectorFlat("a", 8, DistanceCosine).VectorFlat("b", 8, DistanceCosine)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.b.Build(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestIndexDefinition_String(t *testing.T) {
	def, err := NewIndex("orgs").Prefix("org:").Tag("id", "").VectorFlat("vector", 8, DistanceCosine).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := def.String()
	for _, want := range []string{"FT.CREATE orgs ON HASH", "PREFIX 1 org:", "id TAG", "vector VECTOR FLAT DIM 8"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, missing %q", got, want)
		}
	}
}

func TestIsValidIdentifier(t *testing.T) {
	valid := []string{"orgs", "orgrank:idx:orgs", "a-b_c"}
	for _, s := range valid {
		if !IsValidIdentifier(s) {
			t.Errorf("IsValidIdentifier(%q) = false", s)
		}
	}
	invalid := []string{"", "has space", "semi;colon"}
	for _, s := range invalid {
		if IsValidIdentifier(s) {
			t.Errorf("IsValidIdentifier(%q) = true", s)
		}
	}
}

func TestIndexDefinition_VectorFieldAbsent(t *testing.T) {
	def, err := NewIndex("orgs").Tag("id", "").Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.VectorField() != nil {
		t.Error("expected no vector field")
	}
}

func TestError_WithKey(t *testing.T) {
	e := &Error{Op: OpGet, Key: "orgrank:emb:abc", Err: ErrKeyNotFound}
	if e.Error() != "GET orgrank:emb:abc: db: key not found" {
		t.Errorf("Error() = %q", e.Error())
	}
}

func TestError_Unwrap(t *testing.T) {
	e := &Error{Op: OpSearch, Err: ErrIndexNotFound}
	if e.Error() != "FT.SEARCH: db: index not found" {
		t.Errorf("Error() = %q", e.Error())
	}
	if e.Unwrap() != ErrIndexNotFound {
		t.Error("Unwrap() must return the cause")
	}
}
