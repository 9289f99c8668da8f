package valkey

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/orgrank/internal/db"
)

// HSetMulti writes several hashes in one DoMulti round-trip.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if len(items) == 0 {
		return nil
	}

	cmds := make(rueidis.Commands, len(items))
	for i, item := range items {
		cmd := s.b().Hset().Key(item.Key).FieldValue()
		for k, v := range item.Fields {
			cmd = cmd.FieldValue(k, v)
		}
		cmds[i] = cmd.Build()
	}

	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpHSet, Key: items[i].Key, Err: err}
		}
	}
	return nil
}
