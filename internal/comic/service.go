package comic

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"comicgallery/internal/platform/logging"
	"comicgallery/internal/platform/metrics"
)

var validate = validator.New()

// Service provides comic-related business logic.
type Service struct {
	repo     Repository
	notifier Notifier
	now      func() time.Time
	newID    func() string
	timeout  time.Duration
}

type Option func(*Service)

// WithNotifier publishes a Change after every successful mutation.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithClock overrides the time source used for comic dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTimeout bounds every repository call. Zero leaves the caller's context alone.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// NewService creates a new comic service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns all comics, newest first. A store failure is logged and yields an empty list.
func (s *Service) List(ctx context.Context) []Comic {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	comics, err := s.repo.List(callCtx)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("list comics")
		return []Comic{}
	}
	if comics == nil {
		comics = []Comic{}
	}
	sort.SliceStable(comics, func(i, j int) bool {
		return comics[i].Date.After(comics[j].Date)
	})
	return comics
}

// stamp is the current time in UTC rounded up to the next millisecond, so every back-end
// stores it exactly and it is never earlier than the clock reading.
func (s *Service) stamp() time.Time {
	now := s.now().UTC()
	ms := now.Truncate(time.Millisecond)
	if ms.Before(now) {
		ms = ms.Add(time.Millisecond)
	}
	return ms
}

// Create stores a new comic with a generated id and the current time.
func (s *Service) Create(ctx context.Context, in Input) (Comic, error) {
	in = in.normalized()
	if err := validateInput(in); err != nil {
		return Comic{}, err
	}

	c := in.apply(Comic{
		ID:   s.newID(),
		Date: s.stamp(),
	})
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	if err := s.repo.Create(callCtx, c); err != nil {
		return Comic{}, fmt.Errorf("create comic: %w", err)
	}

	s.changed(ctx, OpCreate, c.ID)
	return c, nil
}

// Update replaces the mutable fields of comic id. The id and date are preserved.
func (s *Service) Update(ctx context.Context, id string, in Input) (Comic, error) {
	id = strings.TrimSpace(id)
	in = in.normalized()

	verr := validateInput(in)
	if id == "" {
		verr = appendField(verr, FieldError{Field: "id", Message: "id is required"})
	}
	if verr != nil {
		return Comic{}, verr
	}

	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	updated, err := s.repo.Update(callCtx, in.apply(Comic{ID: id}))
	if err != nil {
		return Comic{}, fmt.Errorf("update comic %s: %w", id, err)
	}

	s.changed(ctx, OpUpdate, id)
	return updated, nil
}

// Delete removes comic id.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return &ValidationError{Fields: []FieldError{{Field: "id", Message: "id is required"}}}
	}

	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	if err := s.repo.Delete(callCtx, id); err != nil {
		return fmt.Errorf("delete comic %s: %w", id, err)
	}

	s.changed(ctx, OpDelete, id)
	return nil
}

func (s *Service) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Service) changed(ctx context.Context, op, id string) {
	metrics.ComicMutations.WithLabelValues(op).Inc()
	if s.notifier == nil {
		return
	}
	change := Change{Op: op, ID: id, Time: s.now().UTC()}
	if err := s.notifier.Notify(ctx, change); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("op", op).Str("comic_id", id).Msg("notify comic change")
	}
}

func validateInput(in Input) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		msg := field + " is invalid"
		switch fe.Tag() {
		case "required":
			msg = field + " is required"
		case "max":
			msg = fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		out.Fields = append(out.Fields, FieldError{Field: field, Message: msg})
	}
	return out
}

func appendField(err error, f FieldError) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		verr.Fields = append(verr.Fields, f)
		return verr
	}
	return &ValidationError{Fields: []FieldError{f}}
}
