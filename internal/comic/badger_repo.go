package comic

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const badgerKeyPrefix = "comic:"

// BadgerRepo stores each comic under its own key so every mutation is a single transaction.
type BadgerRepo struct {
	db *badger.DB
}

func NewBadgerRepo(db *badger.DB) *BadgerRepo {
	return &BadgerRepo{db: db}
}

func badgerKey(id string) []byte {
	return []byte(badgerKeyPrefix + id)
}

func (r *BadgerRepo) List(ctx context.Context) ([]Comic, error) {
	comics := []Comic{}
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var c Comic
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &c)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			comics = append(comics, c)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return comics, nil
}

func (r *BadgerRepo) Create(ctx context.Context, c Comic) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrPersistence, err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(badgerKey(c.ID)); err == nil {
			return fmt.Errorf("duplicate id %s", c.ID)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(badgerKey(c.ID), data)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

func (r *BadgerRepo) Update(ctx context.Context, c Comic) (Comic, error) {
	if err := ctx.Err(); err != nil {
		return Comic{}, err
	}
	var updated Comic
	err := r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(c.ID))
		if err != nil {
			return err
		}
		var existing Comic
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &existing)
		}); err != nil {
			return err
		}

		c.Date = existing.Date
		data, err := json.Marshal(c)
		if err != nil {
			return err
		}
		updated = c
		return txn.Set(badgerKey(c.ID), data)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Comic{}, ErrNotFound
	}
	if err != nil {
		return Comic{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return updated, nil
}

func (r *BadgerRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(badgerKey(id)); err != nil {
			return err
		}
		return txn.Delete(badgerKey(id))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}
