package valkey

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/orgrank/internal/db"
)

const vectorScoreField = "__vector_score"

// SearchKNN runs a KNN query via FT.SEARCH. Scores are cosine similarities clamped to [0,1].
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}
	field := q.VectorField
	if field == "" {
		field = "vector"
	}

	args := []string{q.IndexName, fmt.Sprintf("*=>[KNN %d @%s $BLOB]", q.K, field)}
	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)+1), vectorScoreField)
		args = append(args, q.ReturnFields...)
	}
	args = append(args,
		"SORTBY", vectorScoreField,
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", vectorToBytes(q.Vector),
		"DIALECT", "2",
	)

	raw, err := s.do(ctx, s.b().Arbitrary("FT.SEARCH").Args(args...).Build()).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	return parseKNNResult(raw)
}

// parseKNNResult reads [total, key1, fields1, key2, fields2, ...].
func parseKNNResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/2)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entry := db.SearchEntry{Key: key, Fields: parseFieldPairs(fields)}
		if v, ok := entry.Fields[vectorScoreField]; ok {
			if d, err := strconv.ParseFloat(v, 64); err == nil {
				entry.Score = min(1, max(0, 1-d))
			}
			delete(entry.Fields, vectorScoreField)
		}
		entries = append(entries, entry)
	}
	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// vectorToBytes encodes a vector as little-endian FLOAT32, the layout FT indexes expect.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// VectorToBytes exposes the FLOAT32 encoding for hash writers.
func VectorToBytes(v []float32) string { return vectorToBytes(v) }
