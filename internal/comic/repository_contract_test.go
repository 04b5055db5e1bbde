package comic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleComic(id, title string, date time.Time) Comic {
	return Comic{
		ID:          id,
		Title:       title,
		Description: "desc " + title,
		Date:        date.UTC().Truncate(time.Millisecond),
		Thumbnail:   "http://x/" + id + ".png",
	}
}

func findComic(comics []Comic, id string) (Comic, int) {
	var found Comic
	count := 0
	for _, c := range comics {
		if c.ID == id {
			found = c
			count++
		}
	}
	return found, count
}

// runRepositoryContract checks the behaviour every Repository back-end shares.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	ctx := context.Background()
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	t.Run("empty store lists nothing", func(t *testing.T) {
		repo := newRepo(t)
		comics, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, comics)
	})

	t.Run("create then list", func(t *testing.T) {
		repo := newRepo(t)
		c := sampleComic("a1", "Space Cats", base)
		require.NoError(t, repo.Create(ctx, c))

		comics, err := repo.List(ctx)
		require.NoError(t, err)
		got, count := findComic(comics, "a1")
		assert.Equal(t, 1, count)
		assert.Equal(t, c.Title, got.Title)
		assert.True(t, c.Date.Equal(got.Date))
	})

	t.Run("update keeps date", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, sampleComic("a1", "Old", base)))

		updated, err := repo.Update(ctx, Comic{ID: "a1", Title: "New", Thumbnail: "http://x/new.png", Featured: true})
		require.NoError(t, err)
		assert.Equal(t, "New", updated.Title)
		assert.Empty(t, updated.Description)
		assert.True(t, updated.Featured)
		assert.True(t, base.Equal(updated.Date))

		comics, err := repo.List(ctx)
		require.NoError(t, err)
		got, _ := findComic(comics, "a1")
		assert.Equal(t, "New", got.Title)
		assert.True(t, base.Equal(got.Date))
	})

	t.Run("update missing id", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, sampleComic("a1", "Keep", base)))

		_, err := repo.Update(ctx, Comic{ID: "missing", Title: "x", Thumbnail: "y"})
		assert.True(t, errors.Is(err, ErrNotFound))

		comics, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, comics, 1)
		assert.Equal(t, "Keep", comics[0].Title)
	})

	t.Run("delete", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, sampleComic("a1", "One", base)))
		require.NoError(t, repo.Create(ctx, sampleComic("a2", "Two", base.Add(time.Hour))))

		assert.True(t, errors.Is(repo.Delete(ctx, "missing"), ErrNotFound))
		require.NoError(t, repo.Delete(ctx, "a1"))

		comics, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, comics, 1)
		assert.Equal(t, "a2", comics[0].ID)

		assert.True(t, errors.Is(repo.Delete(ctx, "a1"), ErrNotFound))
	})

	t.Run("duplicate id", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, sampleComic("a1", "One", base)))
		err := repo.Create(ctx, sampleComic("a1", "Again", base))
		assert.True(t, errors.Is(err, ErrPersistence))
	})
}
