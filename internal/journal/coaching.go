package journal

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/grove/internal/constants"
	grerrors "github.com/julianstephens/grove/internal/errors"
	"github.com/julianstephens/grove/internal/models"
	"github.com/julianstephens/grove/internal/storage"
)

// AnnotateInput is a coach's note on one user's day.
type AnnotateInput struct {
	CoachID    string
	UserID     string
	Day        string
	Correction string
	Prompt     string
}

// Annotate upserts the note for (UserID, Day). The last write wins.
func (s *Service) Annotate(ctx context.Context, in AnnotateInput) (models.CoachingAnnotation, error) {
	correction := strings.TrimSpace(in.Correction)
	prompt := strings.TrimSpace(in.Prompt)
	if correction == "" && prompt == "" {
		return models.CoachingAnnotation{}, grerrors.Invalid("annotation", "correction or prompt is required")
	}
	if err := checkText("correction", correction, constants.MaxAnnotationRunes, false); err != nil {
		return models.CoachingAnnotation{}, err
	}
	if err := checkText("prompt", prompt, constants.MaxAnnotationRunes, false); err != nil {
		return models.CoachingAnnotation{}, err
	}
	if _, err := s.policy.ParseDayKey(in.Day); err != nil {
		return models.CoachingAnnotation{}, grerrors.Invalid("day", "must be YYYY-MM-DD")
	}
	if _, err := s.requireUser(ctx, in.CoachID); err != nil {
		return models.CoachingAnnotation{}, err
	}
	if _, err := s.requireUser(ctx, in.UserID); err != nil {
		return models.CoachingAnnotation{}, err
	}

	existing, err := s.store.GetAnnotation(ctx, in.UserID, in.Day)
	prev, err := optional("get annotation", existing, err)
	if err != nil {
		return models.CoachingAnnotation{}, err
	}

	now := s.clock.Now().UTC()
	a := models.CoachingAnnotation{
		ID:         uuid.New().String(),
		UserID:     in.UserID,
		CoachID:    in.CoachID,
		Day:        in.Day,
		Correction: correction,
		Prompt:     prompt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if prev != nil {
		a.ID = prev.ID
		a.CreatedAt = prev.CreatedAt
	}
	if err := s.store.UpsertAnnotation(ctx, a); err != nil {
		return models.CoachingAnnotation{}, grerrors.Upstream("upsert annotation", err)
	}
	return a, nil
}

func (s *Service) GetAnnotation(ctx context.Context, userID, day string) (models.CoachingAnnotation, error) {
	if _, err := s.policy.ParseDayKey(day); err != nil {
		return models.CoachingAnnotation{}, grerrors.Invalid("day", "must be YYYY-MM-DD")
	}
	a, err := s.store.GetAnnotation(ctx, userID, day)
	if errors.Is(err, storage.ErrNotFound) {
		return models.CoachingAnnotation{}, grerrors.NotFound("annotation", userID+"/"+day)
	}
	if err != nil {
		return models.CoachingAnnotation{}, grerrors.Upstream("get annotation", err)
	}
	return a, nil
}

// GoalInput sets the acting user's goal for the current week or month.
type GoalInput struct {
	UserID string
	Period constants.GoalPeriod
	Text   string
	Shared bool
}

func (s *Service) periodKey(period constants.GoalPeriod) string {
	now := s.clock.Now()
	if period == constants.GoalWeekly {
		return s.policy.WeeklyPeriodKey(now)
	}
	return s.policy.MonthlyPeriodKey(now)
}

// SetGoal upserts the goal for the current period key.
func (s *Service) SetGoal(ctx context.Context, in GoalInput) (models.Goal, error) {
	if !in.Period.Valid() {
		return models.Goal{}, grerrors.Invalid("period", "must be weekly or monthly")
	}
	text := strings.TrimSpace(in.Text)
	if err := checkText("text", text, constants.MaxGoalRunes, true); err != nil {
		return models.Goal{}, err
	}
	if _, err := s.requireUser(ctx, in.UserID); err != nil {
		return models.Goal{}, err
	}

	key := s.periodKey(in.Period)
	found, err := s.store.GetGoal(ctx, in.UserID, in.Period, key)
	prev, err := optional("get goal", found, err)
	if err != nil {
		return models.Goal{}, err
	}

	now := s.clock.Now().UTC()
	g := models.Goal{
		ID:        uuid.New().String(),
		UserID:    in.UserID,
		Period:    in.Period,
		PeriodKey: key,
		Text:      text,
		Shared:    in.Shared,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if prev != nil {
		g.ID = prev.ID
		g.CreatedAt = prev.CreatedAt
	}
	if err := s.store.UpsertGoal(ctx, g); err != nil {
		return models.Goal{}, grerrors.Upstream("upsert goal", err)
	}
	return g, nil
}

// GetGoal returns the user's goal for the current period.
func (s *Service) GetGoal(ctx context.Context, userID string, period constants.GoalPeriod) (models.Goal, error) {
	if !period.Valid() {
		return models.Goal{}, grerrors.Invalid("period", "must be weekly or monthly")
	}
	key := s.periodKey(period)
	g, err := s.store.GetGoal(ctx, userID, period, key)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Goal{}, grerrors.NotFound("goal", userID+"/"+key)
	}
	if err != nil {
		return models.Goal{}, grerrors.Upstream("get goal", err)
	}
	return g, nil
}
