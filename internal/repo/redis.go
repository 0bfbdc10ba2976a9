package repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/pkordes/journeylog/internal/domain"
)

// redisStore is the Redis implementation of Store.
//
// Layout per collection:
//
//	<prefix>:<collection>:records  hash   id -> JSON body
//	<prefix>:<collection>:order    list   ids in insertion order
//	<prefix>:<collection>:next_id  string counter for NextID
//
// Writes run inside WATCH/MULTI on the records hash and are retried when a
// concurrent writer touches it first.
type redisStore[T domain.Identifiable] struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore constructs a Store for the named collection under keyPrefix.
func NewRedisStore[T domain.Identifiable](rdb *redis.Client, keyPrefix, collection string) Store[T] {
	return &redisStore[T]{rdb: rdb, prefix: keyPrefix + ":" + collection}
}

func (s *redisStore[T]) recordsKey() string { return s.prefix + ":records" }
func (s *redisStore[T]) orderKey() string   { return s.prefix + ":order" }
func (s *redisStore[T]) nextIDKey() string  { return s.prefix + ":next_id" }

func (s *redisStore[T]) GetAll(ctx context.Context) ([]T, error) {
	ids, err := s.rdb.LRange(ctx, s.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("repo.RedisStore.GetAll: %w", err)
	}
	out := make([]T, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	vals, err := s.rdb.HMGet(ctx, s.recordsKey(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("repo.RedisStore.GetAll: %w", err)
	}
	for _, v := range vals {
		body, ok := v.(string)
		if !ok {
			// Deleted between LRANGE and HMGET.
			continue
		}
		rec, err := decode[T]([]byte(body))
		if err != nil {
			return nil, fmt.Errorf("repo.RedisStore.GetAll: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *redisStore[T]) Get(ctx context.Context, match func(T) bool) (T, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	rec, err := first(all, match)
	if err != nil {
		return rec, fmt.Errorf("repo.RedisStore.Get: %w", err)
	}
	return rec, nil
}

func (s *redisStore[T]) GetByID(ctx context.Context, id int64) (T, error) {
	rec, err := s.load(ctx, s.rdb, id)
	if err != nil {
		return rec, fmt.Errorf("repo.RedisStore.GetByID: %w", err)
	}
	return rec, nil
}

func (s *redisStore[T]) Insert(ctx context.Context, rec T) error {
	if err := s.InsertAll(ctx, []T{rec}); err != nil {
		return fmt.Errorf("repo.RedisStore.Insert: %w", err)
	}
	return nil
}

func (s *redisStore[T]) InsertAll(ctx context.Context, recs []T) error {
	if len(recs) == 0 {
		return nil
	}
	if err := checkUnique(recs); err != nil {
		return fmt.Errorf("repo.RedisStore.InsertAll: %w", err)
	}

	ids := make([]string, len(recs))
	fields := make([]any, 0, 2*len(recs))
	order := make([]any, len(recs))
	for i, r := range recs {
		body, err := encode(r)
		if err != nil {
			return fmt.Errorf("repo.RedisStore.InsertAll: %w", err)
		}
		ids[i] = idField(r.Identifier())
		fields = append(fields, ids[i], body)
		order[i] = ids[i]
	}

	err := s.watch(ctx, func(tx *redis.Tx) error {
		existing, err := tx.HMGet(ctx, s.recordsKey(), ids...).Result()
		if err != nil {
			return err
		}
		for i, v := range existing {
			if v != nil {
				return fmt.Errorf("%w: id %s already exists", domain.ErrConflict, ids[i])
			}
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, s.recordsKey(), fields...)
			p.RPush(ctx, s.orderKey(), order...)
			return nil
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("repo.RedisStore.InsertAll: %w", err)
	}
	return nil
}

func (s *redisStore[T]) Edit(ctx context.Context, id int64, rec T) error {
	if err := checkID(id, rec); err != nil {
		return fmt.Errorf("repo.RedisStore.Edit: %w", err)
	}
	body, err := encode(rec)
	if err != nil {
		return fmt.Errorf("repo.RedisStore.Edit: %w", err)
	}

	err = s.watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.HExists(ctx, s.recordsKey(), idField(id)).Result()
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, s.recordsKey(), idField(id), body)
			return nil
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("repo.RedisStore.Edit: %w", err)
	}
	return nil
}

func (s *redisStore[T]) Delete(ctx context.Context, id int64) error {
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HDel(ctx, s.recordsKey(), idField(id))
		p.LRem(ctx, s.orderKey(), 0, idField(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("repo.RedisStore.Delete: %w", err)
	}
	return nil
}

func (s *redisStore[T]) Update(ctx context.Context, id int64, fn func(T) (T, error)) (T, error) {
	var (
		zero  T
		next  T
		fnErr error
	)
	err := s.watch(ctx, func(tx *redis.Tx) error {
		cur, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		n, err := fn(cur)
		if err != nil {
			fnErr = err
			return err
		}
		if err := checkID(id, n); err != nil {
			return err
		}
		body, err := encode(n)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, s.recordsKey(), idField(id), body)
			return nil
		})
		if err == nil {
			next = n
		}
		return err
	})
	if fnErr != nil {
		return zero, fnErr
	}
	if err != nil {
		return zero, fmt.Errorf("repo.RedisStore.Update: %w", err)
	}
	return next, nil
}

func (s *redisStore[T]) NextID(ctx context.Context) (int64, error) {
	id, err := s.rdb.Incr(ctx, s.nextIDKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("repo.RedisStore.NextID: %w", err)
	}
	return id, nil
}

// watch runs fn under WATCH on the records hash, retrying when EXEC aborts
// because another client wrote the hash first.
func (s *redisStore[T]) watch(ctx context.Context, fn func(tx *redis.Tx) error) error {
	for range maxUpdateAttempts {
		err := s.rdb.Watch(ctx, fn, s.recordsKey())
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("%w: too many concurrent writers", domain.ErrConflict)
}

func (s *redisStore[T]) load(ctx context.Context, c hashGetter, id int64) (T, error) {
	var zero T
	body, err := c.HGet(ctx, s.recordsKey(), idField(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, domain.ErrNotFound
		}
		return zero, err
	}
	return decode[T](body)
}

// hashGetter is satisfied by *redis.Client and *redis.Tx.
type hashGetter interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
}

func idField(id int64) string {
	return strconv.FormatInt(id, 10)
}
