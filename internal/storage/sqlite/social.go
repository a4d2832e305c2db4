package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/grove/internal/constants"
	"github.com/julianstephens/grove/internal/models"
	"github.com/julianstephens/grove/internal/storage"
)

const wateringColumns = `id, from_user, target_user, from_name, day, created_at`

func (s *Store) AddWatering(ctx context.Context, w models.Watering) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO waterings (`+wateringColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		w.ID, w.FromUser, w.TargetUser, w.FromName, w.Day, formatTime(w.CreatedAt))
	if isUniqueViolation(err) {
		return storage.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to insert watering: %w", err)
	}
	return nil
}

func (s *Store) FindWatering(ctx context.Context, fromUser, targetUser, day string) (models.Watering, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+wateringColumns+` FROM waterings
		WHERE from_user = ? AND target_user = ? AND day = ?`, fromUser, targetUser, day)
	w, err := scanWatering(row)
	if err != nil {
		return models.Watering{}, notFound(err)
	}
	return w, nil
}

func (s *Store) WateringsReceived(ctx context.Context, targetUser string, since time.Time) ([]models.Watering, error) {
	return s.listWaterings(ctx, "target_user", targetUser, since)
}

func (s *Store) WateringsGiven(ctx context.Context, fromUser string, since time.Time) ([]models.Watering, error) {
	return s.listWaterings(ctx, "from_user", fromUser, since)
}

// column is one of two fixed identifiers, never caller input.
func (s *Store) listWaterings(ctx context.Context, column, userID string, since time.Time) ([]models.Watering, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+wateringColumns+` FROM waterings
		WHERE `+column+` = ? AND created_at >= ?
		ORDER BY created_at`, userID, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("failed to list waterings: %w", err)
	}
	defer rows.Close()

	var out []models.Watering
	for rows.Next() {
		w, err := scanWatering(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func scanWatering(row scanner) (models.Watering, error) {
	var w models.Watering
	var createdAt string
	if err := row.Scan(&w.ID, &w.FromUser, &w.TargetUser, &w.FromName, &w.Day, &createdAt); err != nil {
		return models.Watering{}, err
	}
	var err error
	if w.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Watering{}, err
	}
	return w, nil
}

func (s *Store) AddCheer(ctx context.Context, c models.Cheer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cheers (id, post_id, post_kind, actor_id, actor_name, actor_avatar, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.PostID, string(c.PostKind), c.ActorID, c.ActorName, c.ActorAvatar, formatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert cheer: %w", err)
	}
	return nil
}

func (s *Store) ListCheers(ctx context.Context, postID string) ([]models.Cheer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, post_id, post_kind, actor_id, actor_name, actor_avatar, created_at
		FROM cheers WHERE post_id = ?
		ORDER BY created_at, id`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cheers: %w", err)
	}
	defer rows.Close()

	var out []models.Cheer
	for rows.Next() {
		var c models.Cheer
		var kind, createdAt string
		if err := rows.Scan(&c.ID, &c.PostID, &kind, &c.ActorID, &c.ActorName, &c.ActorAvatar, &createdAt); err != nil {
			return nil, err
		}
		c.PostKind = constants.PostKind(kind)
		if c.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
