package sqlite

import (
	"context"
	"fmt"

	"github.com/julianstephens/grove/internal/constants"
	"github.com/julianstephens/grove/internal/models"
)

func (s *Store) UpsertAnnotation(ctx context.Context, a models.CoachingAnnotation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO annotations (id, user_id, coach_id, day, correction, prompt, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, day) DO UPDATE SET
			coach_id = excluded.coach_id,
			correction = excluded.correction,
			prompt = excluded.prompt,
			updated_at = excluded.updated_at`,
		a.ID, a.UserID, a.CoachID, a.Day, a.Correction, a.Prompt,
		formatTime(a.CreatedAt), formatTime(a.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert annotation: %w", err)
	}
	return nil
}

func (s *Store) GetAnnotation(ctx context.Context, userID, day string) (models.CoachingAnnotation, error) {
	var a models.CoachingAnnotation
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, coach_id, day, correction, prompt, created_at, updated_at
		FROM annotations WHERE user_id = ? AND day = ?`, userID, day).
		Scan(&a.ID, &a.UserID, &a.CoachID, &a.Day, &a.Correction, &a.Prompt, &createdAt, &updatedAt)
	if err != nil {
		return models.CoachingAnnotation{}, notFound(err)
	}
	if a.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.CoachingAnnotation{}, err
	}
	if a.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.CoachingAnnotation{}, err
	}
	return a, nil
}

const goalColumns = `id, user_id, period, period_key, text, shared, created_at, updated_at`

func (s *Store) UpsertGoal(ctx context.Context, g models.Goal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO goals (`+goalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, period, period_key) DO UPDATE SET
			text = excluded.text,
			shared = excluded.shared,
			updated_at = excluded.updated_at`,
		g.ID, g.UserID, string(g.Period), g.PeriodKey, g.Text, boolToInt(g.Shared),
		formatTime(g.CreatedAt), formatTime(g.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert goal: %w", err)
	}
	return nil
}

func (s *Store) GetGoal(ctx context.Context, userID string, period constants.GoalPeriod, periodKey string) (models.Goal, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+goalColumns+` FROM goals
		WHERE user_id = ? AND period = ? AND period_key = ?`, userID, string(period), periodKey)
	g, err := scanGoal(row)
	if err != nil {
		return models.Goal{}, notFound(err)
	}
	return g, nil
}

func (s *Store) GetGoalByID(ctx context.Context, id string) (models.Goal, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id)
	g, err := scanGoal(row)
	if err != nil {
		return models.Goal{}, notFound(err)
	}
	return g, nil
}

func scanGoal(row scanner) (models.Goal, error) {
	var g models.Goal
	var period, createdAt, updatedAt string
	var shared int
	if err := row.Scan(&g.ID, &g.UserID, &period, &g.PeriodKey, &g.Text, &shared, &createdAt, &updatedAt); err != nil {
		return models.Goal{}, err
	}
	g.Period = constants.GoalPeriod(period)
	g.Shared = shared != 0
	var err error
	if g.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Goal{}, err
	}
	if g.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.Goal{}, err
	}
	return g, nil
}
