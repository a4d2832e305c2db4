package sqlite

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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, day, kind) DO UPDATE SET
			content = excluded.content,
			score = excluded.score,
			shared = excluded.shared,
			updated_at = excluded.updated_at`,
		e.ID, e.UserID, string(e.Kind), e.Day, e.Content, score, boolToInt(e.Shared),
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert entry: %w", err)
	}
	return nil
}

func (s *Store) GetEntry(ctx context.Context, userID, day string, kind constants.EntryKind) (models.JournalEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE user_id = ? AND day = ? AND kind = ?`, userID, day, string(kind))
	e, err := scanEntry(row)
	if err != nil {
		return models.JournalEntry{}, notFound(err)
	}
	return e, nil
}

func (s *Store) GetEntryByID(ctx context.Context, id string) (models.JournalEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err != nil {
		return models.JournalEntry{}, notFound(err)
	}
	return e, nil
}

func (s *Store) CountEntries(ctx context.Context, userID string, kind constants.EntryKind, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM entries
		WHERE user_id = ? AND kind = ? AND created_at >= ?`,
		userID, string(kind), formatTime(since)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

func (s *Store) LatestEntry(ctx context.Context, userID string, kind constants.EntryKind) (models.JournalEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE user_id = ? AND kind = ?
		ORDER BY created_at DESC LIMIT 1`, userID, string(kind))
	e, err := scanEntry(row)
	if err != nil {
		return models.JournalEntry{}, notFound(err)
	}
	return e, nil
}

func (s *Store) EntryDays(ctx context.Context, userID string, kind constants.EntryKind, sinceDay string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day FROM entries
		WHERE user_id = ? AND kind = ? AND day >= ?
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
	var kind, createdAt, updatedAt string
	var score sql.NullInt64
	var shared int
	if err := row.Scan(&e.ID, &e.UserID, &kind, &e.Day, &e.Content, &score, &shared, &createdAt, &updatedAt); err != nil {
		return models.JournalEntry{}, err
	}
	e.Kind = constants.EntryKind(kind)
	e.Shared = shared != 0
	if score.Valid {
		v := int(score.Int64)
		e.Score = &v
	}
	var err error
	if e.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.JournalEntry{}, err
	}
	if e.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.JournalEntry{}, err
	}
	return e, nil
}
