package comic

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// DocumentName is the file holding the comic array inside the data directory.
const DocumentName = "comics.json"

// JSONRepo keeps every comic in one JSON document and rewrites it on each mutation.
// Access is serialized inside the process only; waiting for the lock honours ctx.
type JSONRepo struct {
	path string
	sem  chan struct{}
}

func NewJSONRepo(dataDir string) *JSONRepo {
	return &JSONRepo{
		path: filepath.Join(dataDir, DocumentName),
		sem:  make(chan struct{}, 1),
	}
}

func (r *JSONRepo) lock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case r.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *JSONRepo) unlock() {
	<-r.sem
}

// Path returns the location of the backing document.
func (r *JSONRepo) Path() string {
	return r.path
}

func (r *JSONRepo) List(ctx context.Context) ([]Comic, error) {
	if err := r.lock(ctx); err != nil {
		return nil, err
	}
	defer r.unlock()
	return r.load()
}

func (r *JSONRepo) Create(ctx context.Context, c Comic) error {
	return r.mutate(ctx, func(comics []Comic) ([]Comic, error) {
		for _, existing := range comics {
			if existing.ID == c.ID {
				return nil, fmt.Errorf("%w: duplicate id %s", ErrPersistence, c.ID)
			}
		}
		return append(comics, c), nil
	})
}

func (r *JSONRepo) Update(ctx context.Context, c Comic) (Comic, error) {
	var updated Comic
	err := r.mutate(ctx, func(comics []Comic) ([]Comic, error) {
		for i := range comics {
			if comics[i].ID == c.ID {
				c.Date = comics[i].Date
				comics[i] = c
				updated = c
				return comics, nil
			}
		}
		return nil, ErrNotFound
	})
	return updated, err
}

func (r *JSONRepo) Delete(ctx context.Context, id string) error {
	return r.mutate(ctx, func(comics []Comic) ([]Comic, error) {
		kept := comics[:0]
		for _, c := range comics {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		if len(kept) == len(comics) {
			return nil, ErrNotFound
		}
		return kept, nil
	})
}

func (r *JSONRepo) mutate(ctx context.Context, fn func([]Comic) ([]Comic, error)) error {
	if err := r.lock(ctx); err != nil {
		return err
	}
	defer r.unlock()

	comics, err := r.load()
	if err != nil {
		return err
	}
	next, err := fn(comics)
	if err != nil {
		return err
	}
	return r.save(next)
}

func (r *JSONRepo) load() ([]Comic, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Comic{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrPersistence, r.path, err)
	}

	var comics []Comic
	if err := json.Unmarshal(data, &comics); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrPersistence, r.path, err)
	}
	return comics, nil
}

func (r *JSONRepo) save(comics []Comic) error {
	if comics == nil {
		comics = []Comic{}
	}
	data, err := json.MarshalIndent(comics, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrPersistence, err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrPersistence, dir, err)
	}

	tmp, err := os.CreateTemp(dir, DocumentName+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %w", ErrPersistence, tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync %s: %w", ErrPersistence, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("%w: replace %s: %w", ErrPersistence, r.path, err)
	}
	return nil
}
