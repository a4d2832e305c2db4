// Package journal is grove's write path and read-model layer: it gathers
// inputs from storage, applies the posting guard and scoring rules, and maps
// storage failures onto the error taxonomy.
package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/julianstephens/grove/internal/cache"
	"github.com/julianstephens/grove/internal/clock"
	"github.com/julianstephens/grove/internal/constants"
	grerrors "github.com/julianstephens/grove/internal/errors"
	"github.com/julianstephens/grove/internal/lock"
	"github.com/julianstephens/grove/internal/metrics"
	"github.com/julianstephens/grove/internal/models"
	"github.com/julianstephens/grove/internal/storage"
)

// Options wires the collaborators a Service needs. Zero values get defaults.
type Options struct {
	Clock          clock.Clock
	Policy         clock.Policy
	Locker         lock.Locker
	Cache          *cache.ReadModels
	Metrics        *metrics.Metrics
	StreakLookback int
}

type Service struct {
	store    storage.Provider
	clock    clock.Clock
	policy   clock.Policy
	locker   lock.Locker
	cache    *cache.ReadModels
	metrics  *metrics.Metrics
	lookback int
}

func NewService(store storage.Provider, opts Options) *Service {
	s := &Service{
		store:    store,
		clock:    opts.Clock,
		policy:   opts.Policy,
		locker:   opts.Locker,
		cache:    opts.Cache,
		metrics:  opts.Metrics,
		lookback: opts.StreakLookback,
	}
	if s.clock == nil {
		s.clock = clock.System{}
	}
	if s.policy.Morning == (clock.Window{}) && s.policy.Evening == (clock.Window{}) {
		loc := s.policy.Location
		s.policy = clock.DefaultPolicy()
		if loc != nil {
			s.policy.Location = loc
		}
	}
	if s.locker == nil {
		s.locker = lock.NewLocal()
	}
	if s.lookback <= 0 {
		s.lookback = constants.DefaultStreakLookback
	}
	return s
}

// Policy returns the clock policy in force.
func (s *Service) Policy() clock.Policy {
	return s.policy
}

// Clock returns the injected clock.
func (s *Service) Clock() clock.Clock {
	return s.clock
}

// Store exposes the underlying provider for lifecycle commands.
func (s *Service) Store() storage.Provider {
	return s.store
}

func (s *Service) requireUser(ctx context.Context, id string) (models.User, error) {
	if strings.TrimSpace(id) == "" {
		return models.User{}, grerrors.Invalid("user", "user id is required")
	}
	u, err := s.store.GetUser(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return models.User{}, grerrors.NotFound("user", id)
	}
	if err != nil {
		return models.User{}, grerrors.Upstream("get user", err)
	}
	return u, nil
}

// optional turns ErrNotFound into (nil, nil) and other failures into Upstream.
func optional[T any](op string, v T, err error) (*T, error) {
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, grerrors.Upstream(op, err)
	}
	return &v, nil
}

func checkText(field, value string, max int, required bool) error {
	if required && strings.TrimSpace(value) == "" {
		return grerrors.Invalid(field, "is required")
	}
	if n := utf8.RuneCountInString(value); n > max {
		return grerrors.Invalid(field, fmt.Sprintf("must be at most %d characters", max))
	}
	return nil
}

func checkScore(score *int) error {
	if score == nil {
		return nil
	}
	if *score < constants.MinScore || *score > constants.MaxScore {
		return grerrors.Invalid("score", fmt.Sprintf("must be between %d and %d", constants.MinScore, constants.MaxScore))
	}
	return nil
}
