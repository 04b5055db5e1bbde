package comic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

const comicColumns = "id, title, description, date, thumbnail, featured"

func scanComic(row pgx.Row) (Comic, error) {
	var c Comic
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Date, &c.Thumbnail, &c.Featured); err != nil {
		return Comic{}, err
	}
	c.Date = c.Date.UTC()
	return c, nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]Comic, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, "SELECT "+comicColumns+" FROM comics ORDER BY date DESC")
	if err != nil {
		return nil, fmt.Errorf("%w: query comics: %w", ErrPersistence, err)
	}
	defer rows.Close()

	comics := []Comic{}
	for rows.Next() {
		c, err := scanComic(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan comic: %w", ErrPersistence, err)
		}
		comics = append(comics, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return comics, nil
}

func (r *PostgresRepo) Create(ctx context.Context, c Comic) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO comics (id, title, description, date, thumbnail, featured)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Title, c.Description, c.Date, c.Thumbnail, c.Featured)
	if err != nil {
		return fmt.Errorf("%w: insert comic: %w", ErrPersistence, err)
	}
	return nil
}

func (r *PostgresRepo) Update(ctx context.Context, c Comic) (Comic, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRow(ctx, `
		UPDATE comics
		SET title = $2, description = $3, thumbnail = $4, featured = $5
		WHERE id = $1
		RETURNING `+comicColumns,
		c.ID, c.Title, c.Description, c.Thumbnail, c.Featured)
	updated, err := scanComic(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Comic{}, ErrNotFound
	}
	if err != nil {
		return Comic{}, fmt.Errorf("%w: update comic: %w", ErrPersistence, err)
	}
	return updated, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, "DELETE FROM comics WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("%w: delete comic: %w", ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
