package postgres

import (
	"context"
	"fmt"

	"github.com/julianstephens/grove/internal/constants"
	"github.com/julianstephens/grove/internal/models"
)

func (s *Store) UpsertAnnotation(ctx context.Context, a models.CoachingAnnotation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO annotations (id, user_id, coach_id, day, correction, prompt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, day) DO UPDATE SET
			coach_id = EXCLUDED.coach_id,
			correction = EXCLUDED.correction,
			prompt = EXCLUDED.prompt,
			updated_at = EXCLUDED.updated_at`,
		a.ID, a.UserID, a.CoachID, a.Day, a.Correction, a.Prompt, a.CreatedAt.UTC(), a.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert annotation: %w", err)
	}
	return nil
}

func (s *Store) GetAnnotation(ctx context.Context, userID, day string) (models.CoachingAnnotation, error) {
	var a models.CoachingAnnotation
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, coach_id, day, correction, prompt, created_at, updated_at
		FROM annotations WHERE user_id = $1 AND day = $2`, userID, day).
		Scan(&a.ID, &a.UserID, &a.CoachID, &a.Day, &a.Correction, &a.Prompt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return models.CoachingAnnotation{}, notFound(err)
	}
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}

const goalColumns = `id, user_id, period, period_key, text, shared, created_at, updated_at`

func (s *Store) UpsertGoal(ctx context.Context, g models.Goal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO goals (`+goalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, period, period_key) DO UPDATE SET
			text = EXCLUDED.text,
			shared = EXCLUDED.shared,
			updated_at = EXCLUDED.updated_at`,
		g.ID, g.UserID, string(g.Period), g.PeriodKey, g.Text, g.Shared, g.CreatedAt.UTC(), g.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert goal: %w", err)
	}
	return nil
}

func (s *Store) GetGoal(ctx context.Context, userID string, period constants.GoalPeriod, periodKey string) (models.Goal, error) {
	g, err := scanGoal(s.db.QueryRowContext(ctx, `
		SELECT `+goalColumns+` FROM goals
		WHERE user_id = $1 AND period = $2 AND period_key = $3`, userID, string(period), periodKey))
	if err != nil {
		return models.Goal{}, notFound(err)
	}
	return g, nil
}

func (s *Store) GetGoalByID(ctx context.Context, id string) (models.Goal, error) {
	g, err := scanGoal(s.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1`, id))
	if err != nil {
		return models.Goal{}, notFound(err)
	}
	return g, nil
}

func scanGoal(row scanner) (models.Goal, error) {
	var g models.Goal
	var period string
	if err := row.Scan(&g.ID, &g.UserID, &period, &g.PeriodKey, &g.Text, &g.Shared, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return models.Goal{}, err
	}
	g.Period = constants.GoalPeriod(period)
	g.CreatedAt = g.CreatedAt.UTC()
	g.UpdatedAt = g.UpdatedAt.UTC()
	return g, nil
}
