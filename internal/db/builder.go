package db

import (
	"strconv"
	"strings"
)

// IndexBuilder is a fluent builder for hash-backed FT index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building an FT index definition.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name, StorageType: StorageHash}}
}

// Prefix adds key prefixes to the index.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Tag adds a TAG field with the given separator ("" keeps the server default).
func (b *IndexBuilder) Tag(name, separator string) *IndexBuilder {
	return b.field(IndexField{Name: name, Type: IndexFieldTag, TagSeparator: separator})
}

// VectorHNSW adds an HNSW vector field. Zero m or efConstruct keep server defaults.
func (b *IndexBuilder) VectorHNSW(name string, dim int, distance DistanceMetric, m, efConstruct int) *IndexBuilder {
	return b.field(IndexField{
		Name: name,
		Type: IndexFieldVector,
		Vector: &VectorSpec{
			Algo:        VectorHNSW,
			Dim:         dim,
			Distance:    distance,
			M:           m,
			EFConstruct: efConstruct,
		},
	})
}

// VectorFlat adds a brute-force vector field.
func (b *IndexBuilder) VectorFlat(name string, dim int, distance DistanceMetric) *IndexBuilder {
	return b.field(IndexField{
		Name:   name,
		Type:   IndexFieldVector,
		Vector: &VectorSpec{Algo: VectorFlat, Dim: dim, Distance: distance},
	})
}

func (b *IndexBuilder) field(f IndexField) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, f)
	return b
}

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	return &b.def, nil
}

// String renders the definition like an FT.CREATE command, for logs.
func (idx *IndexDefinition) String() string {
	parts := []string{"FT.CREATE", idx.Name, "ON", idx.StorageType}
	if len(idx.Prefixes) > 0 {
		parts = append(parts, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		parts = append(parts, idx.Prefixes...)
	}
	parts = append(parts, "SCHEMA")
	for i := range idx.Fields {
		f := &idx.Fields[i]
		parts = append(parts, f.Name)
		switch f.Type {
		case IndexFieldTag:
			parts = append(parts, "TAG")
		case IndexFieldVector:
			if f.Vector != nil {
				parts = append(parts, "VECTOR", string(f.Vector.Algo), "DIM", strconv.Itoa(f.Vector.Dim))
			}
		}
	}
	return strings.Join(parts, " ")
}
