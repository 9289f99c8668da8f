package db

import (
	"errors"
	"fmt"
)

// StorageHash is the only storage type orgrank indexes use: one hash per record.
const StorageHash = "HASH"

// DistanceMetric used by FT.SEARCH vector similarity queries.
type DistanceMetric string

// DistanceCosine is cosine distance. Scores are mapped back to similarity.
const DistanceCosine DistanceMetric = "COSINE"

// VectorAlgorithm selects the indexing algorithm for the vector field.
type VectorAlgorithm string

const (
	// VectorFlat is an exact brute-force scan, fine for catalogs of a few thousand records.
	VectorFlat VectorAlgorithm = "FLAT"
	// VectorHNSW is an approximate graph index for larger catalogs.
	VectorHNSW VectorAlgorithm = "HNSW"
)

// IndexFieldType enumerates the FT field types written for a record.
type IndexFieldType int

const (
	// IndexFieldTag is a tag field.
	IndexFieldTag IndexFieldType = iota
	// IndexFieldVector is a FLOAT32 vector field.
	IndexFieldVector
)

// VectorSpec holds the VECTOR attributes of a field.
type VectorSpec struct {
	Algo     VectorAlgorithm
	Dim      int
	Distance DistanceMetric
	// HNSW graph tuning; zero keeps the server default.
	M           int
	EFConstruct int
}

// IndexField describes a single field in an FT index schema.
type IndexField struct {
	Name         string
	Type         IndexFieldType
	TagSeparator string
	Vector       *VectorSpec
}

// IndexDefinition is a complete FT index definition used by FT.CREATE.
type IndexDefinition struct {
	Name        string
	StorageType string
	Prefixes    []string
	Fields      []IndexField
}

// VectorField returns the single vector field of the definition, nil when absent.
func (idx *IndexDefinition) VectorField() *IndexField {
	for i := range idx.Fields {
		if idx.Fields[i].Type == IndexFieldVector {
			return &idx.Fields[i]
		}
	}
	return nil
}

// Validate checks that the definition names a KNN-searchable index.
func (idx *IndexDefinition) Validate() error {
	if !IsValidIdentifier(idx.Name) {
		return fmt.Errorf("invalid index name %q", idx.Name)
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool, len(idx.Fields))
	vectors := 0
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("field %d: name is required", i)
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field name %q", f.Name)
		}
		seen[f.Name] = true

		if f.Type != IndexFieldVector {
			continue
		}
		vectors++
		if f.Vector == nil || f.Vector.Dim <= 0 {
			return fmt.Errorf("vector field %q requires positive DIM", f.Name)
		}
		if f.Vector.M < 0 || f.Vector.EFConstruct < 0 {
			return fmt.Errorf("vector field %q: HNSW parameters must be non-negative", f.Name)
		}
	}
	if vectors > 1 {
		return fmt.Errorf("expected one vector field, got %d", vectors)
	}
	return nil
}

// IsValidIdentifier reports whether s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == ':' || r == '-':
		default:
			return false
		}
	}
	return true
}
