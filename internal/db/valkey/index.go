package valkey

import (
	"context"
	"errors"
	"strconv"

	"github.com/kailas-cloud/orgrank/internal/db"
)

// CreateIndex runs FT.CREATE. An existing index yields db.ErrIndexExists.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}

	if err := s.do(ctx, s.b().Arbitrary("FT.CREATE").Args(args...).Build()).Error(); err != nil {
		if isServerErr(err, "already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// DropIndex runs FT.DROPINDEX. A missing index yields db.ErrIndexNotFound.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	if err := s.do(ctx, s.b().Arbitrary("FT.DROPINDEX").Args(name).Build()).Error(); err != nil {
		if isServerErr(err, "unknown index name") || isServerErr(err, "not found") {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
	return nil
}

func buildCreateArgs(idx *db.IndexDefinition) ([]string, error) {
	if err := idx.Validate(); err != nil {
		return nil, err //nolint:wrapcheck // validation message is self-describing
	}

	storage := idx.StorageType
	if storage == "" {
		storage = db.StorageHash
	}
	args := []string{idx.Name, "ON", storage}
	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}
	args = append(args, "SCHEMA")

	for i := range idx.Fields {
		fieldArgs, err := buildFieldArgs(&idx.Fields[i])
		if err != nil {
			return nil, err
		}
		args = append(args, fieldArgs...)
	}
	return args, nil
}

func buildFieldArgs(f *db.IndexField) ([]string, error) {
	if f.Name == "" {
		return nil, errors.New("field name is required")
	}

	args := []string{f.Name}
	switch f.Type {
	case db.IndexFieldTag:
		args = append(args, "TAG")
		if f.TagSeparator != "" {
			args = append(args, "SEPARATOR", f.TagSeparator)
		}
	case db.IndexFieldVector:
		vec, err := buildVectorFieldArgs(f.Vector)
		if err != nil {
			return nil, err
		}
		args = append(args, vec...)
	default:
		return nil, errors.New("unknown field type")
	}
	return args, nil
}

func buildVectorFieldArgs(v *db.VectorSpec) ([]string, error) {
	if v == nil || v.Dim <= 0 {
		return nil, errors.New("vector DIM must be positive")
	}
	algo := v.Algo
	if algo == "" {
		algo = db.VectorFlat
	}
	distance := v.Distance
	if distance == "" {
		distance = db.DistanceCosine
	}

	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(v.Dim),
		"DISTANCE_METRIC", string(distance),
	}
	if algo == db.VectorHNSW {
		if v.M > 0 {
			attrs = append(attrs, "M", strconv.Itoa(v.M))
		}
		if v.EFConstruct > 0 {
			attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(v.EFConstruct))
		}
	}

	out := make([]string, 0, 3+len(attrs))
	out = append(out, "VECTOR", string(algo), strconv.Itoa(len(attrs)))
	return append(out, attrs...), nil
}
