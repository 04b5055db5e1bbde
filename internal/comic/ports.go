package comic

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=comic

// Repository defines the contract for comic storage.
type Repository interface {
	// List returns every stored comic in no particular order.
	List(ctx context.Context) ([]Comic, error)
	Create(ctx context.Context, c Comic) error
	// Update replaces the mutable fields of the comic with c.ID and returns the stored record.
	Update(ctx context.Context, c Comic) (Comic, error)
	Delete(ctx context.Context, id string) error
}

// Notifier is told about every successful mutation.
type Notifier interface {
	Notify(ctx context.Context, change Change) error
}
