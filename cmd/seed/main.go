package main

import (
	"context"
	"time"

	"github.com/google/uuid"

	"comicgallery/internal/comic"
	"comicgallery/internal/config"
	"comicgallery/internal/platform/logging"
	"comicgallery/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		logging.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("cannot open store")
	}
	defer st.Close()

	added, err := seed(ctx, st.Comics, placeholderComics())
	if err != nil {
		logging.Fatal().Err(err).Msg("seed failed")
	}
	logging.Info().Int("added", added).Str("driver", st.Driver).Msg("seed finished")
}

// seed creates every comic whose id is not stored yet and reports how many were added.
func seed(ctx context.Context, repo comic.Repository, comics []comic.Comic) (int, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, err
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[c.ID] = true
	}

	added := 0
	for _, c := range comics {
		if have[c.ID] {
			continue
		}
		if err := repo.Create(ctx, c); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// seedID is stable per title so reruns skip comics already seeded.
func seedID(title string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("comicgallery:seed:"+title)).String()
}

func placeholderComics() []comic.Comic {
	day := func(s string) time.Time {
		t, _ := time.Parse(time.DateOnly, s)
		return t
	}
	comics := []comic.Comic{
		{
			Title:       "The Amazing Adventure",
			Description: "Join our heroes on an epic journey through magical lands!",
			Date:        day("2024-01-15"),
			Thumbnail:   "/static/placeholders/placeholder-1.svg",
			Featured:    true,
		},
		{
			Title:       "Space Explorers",
			Description: "Blast off into the cosmos with the bravest crew in the galaxy.",
			Date:        day("2024-01-20"),
			Thumbnail:   "/static/placeholders/placeholder-2.svg",
		},
		{
			Title:       "The Secret Garden",
			Description: "Discover the mysteries hidden in a magical garden.",
			Date:        day("2024-02-01"),
			Thumbnail:   "/static/placeholders/placeholder-3.svg",
		},
		{
			Title:       "Robot Friends",
			Description: "When robots learn about friendship, anything is possible!",
			Date:        day("2024-02-10"),
			Thumbnail:   "/static/placeholders/placeholder-4.svg",
		},
	}
	for i := range comics {
		comics[i].ID = seedID(comics[i].Title)
	}
	return comics
}
