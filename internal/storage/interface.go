package storage

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/grove/internal/constants"
	"github.com/julianstephens/grove/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write violates a unique key.
	ErrConflict = errors.New("unique constraint violated")
)

// Provider is the read and write port the journal service runs against.
// Time-range predicates are inclusive of since and compare stored UTC instants.
type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error
	// Describe names the backend and its location without credentials.
	Describe() string

	// Users
	AddUser(ctx context.Context, u models.User) error
	GetUser(ctx context.Context, id string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, u models.User) error

	// Entries. UpsertEntry keys on (UserID, Day, Kind); an existing row keeps
	// its ID and CreatedAt.
	UpsertEntry(ctx context.Context, e models.JournalEntry) error
	GetEntry(ctx context.Context, userID, day string, kind constants.EntryKind) (models.JournalEntry, error)
	GetEntryByID(ctx context.Context, id string) (models.JournalEntry, error)
	CountEntries(ctx context.Context, userID string, kind constants.EntryKind, since time.Time) (int, error)
	// LatestEntry returns the most recently created entry of a kind, or ErrNotFound.
	LatestEntry(ctx context.Context, userID string, kind constants.EntryKind) (models.JournalEntry, error)
	// EntryDays lists the day keys >= sinceDay on which the user has an entry of kind.
	EntryDays(ctx context.Context, userID string, kind constants.EntryKind, sinceDay string) ([]string, error)

	// Waterings. AddWatering returns ErrConflict on a duplicate (from, target, day).
	AddWatering(ctx context.Context, w models.Watering) error
	FindWatering(ctx context.Context, fromUser, targetUser, day string) (models.Watering, error)
	WateringsReceived(ctx context.Context, targetUser string, since time.Time) ([]models.Watering, error)
	WateringsGiven(ctx context.Context, fromUser string, since time.Time) ([]models.Watering, error)

	// Cheers
	AddCheer(ctx context.Context, c models.Cheer) error
	ListCheers(ctx context.Context, postID string) ([]models.Cheer, error)

	// Coaching annotations, upserted on (UserID, Day).
	UpsertAnnotation(ctx context.Context, a models.CoachingAnnotation) error
	GetAnnotation(ctx context.Context, userID, day string) (models.CoachingAnnotation, error)

	// Goals, upserted on (UserID, Period, PeriodKey).
	UpsertGoal(ctx context.Context, g models.Goal) error
	GetGoal(ctx context.Context, userID string, period constants.GoalPeriod, periodKey string) (models.Goal, error)
	GetGoalByID(ctx context.Context, id string) (models.Goal, error)
}
