package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/grove/internal/constants"
	"github.com/julianstephens/grove/internal/models"
)

const entryColumns = `id, user_id, kind, day, content, score, shared, created_at, updated_at`

func (s *Store) UpsertEntry(ctx context.Context, e models.JournalEntry) error {
	var score sql.NullInt64
	if e.Score != nil {
		score = sql.NullInt64{Int64: int64(*e.Score), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, day, kind) DO UPDATE SET
			content = EXCLUDED.content,
			score = EXCLUDED.score,
			shared = EXCLUDED.shared,
			updated_at = EXCLUDED.updated_at`,
		e.ID, e.UserID, string(e.Kind), e.Day, e.Content, score, e.Shared,
		e.CreatedAt.UTC(), e.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert entry: %w", err)
	}
	return nil
}

func (s *Store) GetEntry(ctx context.Context, userID, day string, kind constants.EntryKind) (models.JournalEntry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE user_id = $1 AND day = $2 AND kind = $3`, userID, day, string(kind)))
	if err != nil {
		return models.JournalEntry{}, notFound(err)
	}
	return e, nil
}

func (s *Store) GetEntryByID(ctx context.Context, id string) (models.JournalEntry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = $1`, id))
	if err != nil {
		return models.JournalEntry{}, notFound(err)
	}
	return e, nil
}

func (s *Store) CountEntries(ctx context.Context, userID string, kind constants.EntryKind, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM entries
		WHERE user_id = $1 AND kind = $2 AND created_at >= $3`,
		userID, string(kind), since.UTC()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

func (s *Store) LatestEntry(ctx context.Context, userID string, kind constants.EntryKind) (models.JournalEntry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE user_id = $1 AND kind = $2
		ORDER BY created_at DESC LIMIT 1`, userID, string(kind)))
	if err != nil {
		return models.JournalEntry{}, notFound(err)
	}
	return e, nil
}

func (s *Store) EntryDays(ctx context.Context, userID string, kind constants.EntryKind, sinceDay string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day FROM entries
		WHERE user_id = $1 AND kind = $2 AND day >= $3
		ORDER BY day DESC`, userID, string(kind), sinceDay)
	if err != nil {
		return nil, fmt.Errorf("failed to list entry days: %w", err)
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

func scanEntry(row scanner) (models.JournalEntry, error) {
	var e models.JournalEntry
	var kind string
	var score sql.NullInt64
	if err := row.Scan(&e.ID, &e.UserID, &kind, &e.Day, &e.Content, &score, &e.Shared, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return models.JournalEntry{}, err
	}
	e.Kind = constants.EntryKind(kind)
	if score.Valid {
		v := int(score.Int64)
		e.Score = &v
	}
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return e, nil
}
