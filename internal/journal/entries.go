package journal

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/grove/internal/clock"
	"github.com/julianstephens/grove/internal/constants"
	grerrors "github.com/julianstephens/grove/internal/errors"
	"github.com/julianstephens/grove/internal/logger"
	"github.com/julianstephens/grove/internal/models"
	"github.com/julianstephens/grove/internal/storage"
)

// PostInput is a create-or-update of today's entry of one kind.
type PostInput struct {
	UserID  string
	Kind    constants.EntryKind
	Content string
	Score   *int
	Shared  bool
}

// PostResult reports what PostEntry wrote.
type PostResult struct {
	Entry    models.JournalEntry `json:"entry"`
	Created  bool                `json:"created"`
	Decision Decision            `json:"decision"`
}

// PostEntry writes today's entry. Creating one requires an open window;
// replacing today's existing entry does not.
func (s *Service) PostEntry(ctx context.Context, in PostInput) (PostResult, error) {
	if !in.Kind.Valid() {
		return PostResult{}, grerrors.Invalid("kind", "must be morning or evening")
	}
	content := strings.TrimSpace(in.Content)
	if err := checkText("content", content, constants.MaxContentRunes, true); err != nil {
		return PostResult{}, err
	}
	if err := checkScore(in.Score); err != nil {
		return PostResult{}, err
	}
	if _, err := s.requireUser(ctx, in.UserID); err != nil {
		return PostResult{}, err
	}

	now := s.clock.Now().UTC()
	day := s.policy.DayKey(now)

	found, err := s.store.GetEntry(ctx, in.UserID, day, in.Kind)
	existing, err := optional("get entry", found, err)
	if err != nil {
		return PostResult{}, err
	}

	decision := AuthorizePost(in.Kind, existing, s.policy.WindowStatus(in.Kind, now), s.policy.Window(in.Kind))
	if !decision.Allowed {
		logger.Debug("Entry rejected", "user", in.UserID, "kind", in.Kind, "status", decision.Status)
		return PostResult{Decision: decision}, decision.Err()
	}

	entry := models.JournalEntry{
		ID:        uuid.New().String(),
		UserID:    in.UserID,
		Kind:      in.Kind,
		Day:       day,
		Content:   content,
		Score:     in.Score,
		Shared:    in.Shared,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing != nil {
		entry.ID = existing.ID
		entry.CreatedAt = existing.CreatedAt
	}

	if err := s.store.UpsertEntry(ctx, entry); err != nil {
		return PostResult{}, grerrors.Upstream("upsert entry", err)
	}

	action := "edited"
	if existing == nil {
		action = "created"
		s.cache.Flush()
	}
	s.metrics.EntryWritten(string(in.Kind), action)
	logger.Info("Entry saved", "user", in.UserID, "kind", in.Kind, "day", day, "action", action)

	return PostResult{Entry: entry, Created: existing == nil, Decision: decision}, nil
}

// EditInput changes an existing entry. Nil fields are left alone.
type EditInput struct {
	EntryID    string
	UserID     string
	Content    *string
	Score      *int
	ClearScore bool
	Shared     *bool
}

// EditEntry updates any past entry owned by the acting user. Edits are never
// window-gated. Entries owned by someone else report as not found.
func (s *Service) EditEntry(ctx context.Context, in EditInput) (models.JournalEntry, error) {
	if in.Content != nil {
		trimmed := strings.TrimSpace(*in.Content)
		if err := checkText("content", trimmed, constants.MaxContentRunes, true); err != nil {
			return models.JournalEntry{}, err
		}
		in.Content = &trimmed
	}
	if err := checkScore(in.Score); err != nil {
		return models.JournalEntry{}, err
	}
	if _, err := s.requireUser(ctx, in.UserID); err != nil {
		return models.JournalEntry{}, err
	}

	entry, err := s.store.GetEntryByID(ctx, in.EntryID)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && entry.UserID != in.UserID) {
		return models.JournalEntry{}, grerrors.NotFound("entry", in.EntryID)
	}
	if err != nil {
		return models.JournalEntry{}, grerrors.Upstream("get entry", err)
	}

	if in.Content != nil {
		entry.Content = *in.Content
	}
	switch {
	case in.ClearScore:
		entry.Score = nil
	case in.Score != nil:
		entry.Score = in.Score
	}
	if in.Shared != nil {
		entry.Shared = *in.Shared
	}
	entry.UpdatedAt = s.clock.Now().UTC()

	if err := s.store.UpsertEntry(ctx, entry); err != nil {
		return models.JournalEntry{}, grerrors.Upstream("upsert entry", err)
	}
	s.metrics.EntryWritten(string(entry.Kind), "edited")
	return entry, nil
}

// WindowView describes a posting window at the current instant.
type WindowView struct {
	Kind   constants.EntryKind `json:"kind"`
	Day    string              `json:"day"`
	Status clock.WindowStatus  `json:"status"`
	Opens  string              `json:"opens"`
	Closes string              `json:"closes"`
	// Until is the time left before the window next opens (before/after) or
	// closes (open).
	Until time.Duration `json:"until_ns"`
	Local time.Time     `json:"local_time"`
}

func (s *Service) Window(kind constants.EntryKind) (WindowView, error) {
	if !kind.Valid() {
		return WindowView{}, grerrors.Invalid("kind", "must be morning or evening")
	}
	now := s.clock.Now()
	w := s.policy.Window(kind)
	status := s.policy.WindowStatus(kind, now)
	minute := s.policy.MinuteOfDay(now)

	var minutes int
	switch status {
	case clock.StatusBefore:
		minutes = w.Open - minute
	case clock.StatusOpen:
		minutes = w.Close - minute
	default:
		minutes = clock.MinutesPerDay - minute + w.Open
	}
	local := s.policy.Local(now)
	until := time.Duration(minutes)*time.Minute - time.Duration(local.Second())*time.Second

	return WindowView{
		Kind:   kind,
		Day:    s.policy.DayKey(now),
		Status: status,
		Opens:  w.OpensAt(),
		Closes: w.ClosesAt(),
		Until:  until,
		Local:  local,
	}, nil
}
