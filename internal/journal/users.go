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

// AddUser registers a journal author. An empty id gets a generated UUID.
func (s *Service) AddUser(ctx context.Context, id, displayName, avatarURL string) (models.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.New().String()
	}
	if strings.ContainsAny(id, " \t\n/") {
		return models.User{}, grerrors.Invalid("id", "must not contain whitespace or '/'")
	}
	displayName = strings.TrimSpace(displayName)
	if err := checkText("display_name", displayName, constants.MaxNameRunes, true); err != nil {
		return models.User{}, err
	}

	now := s.clock.Now().UTC()
	u := models.User{
		ID:          id,
		DisplayName: displayName,
		AvatarURL:   strings.TrimSpace(avatarURL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.store.AddUser(ctx, u)
	if errors.Is(err, storage.ErrConflict) {
		return models.User{}, grerrors.Conflict("user", "id "+id+" is taken")
	}
	if err != nil {
		return models.User{}, grerrors.Upstream("add user", err)
	}
	s.cache.Flush()
	return u, nil
}

// RenameUser changes a display name. Snapshots already copied onto
// waterings and cheers are left as written.
func (s *Service) RenameUser(ctx context.Context, id, displayName string) (models.User, error) {
	u, err := s.requireUser(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	displayName = strings.TrimSpace(displayName)
	if err := checkText("display_name", displayName, constants.MaxNameRunes, true); err != nil {
		return models.User{}, err
	}

	u.DisplayName = displayName
	u.UpdatedAt = s.clock.Now().UTC()
	if err := s.store.UpdateUser(ctx, u); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, grerrors.NotFound("user", id)
		}
		return models.User{}, grerrors.Upstream("update user", err)
	}
	s.cache.Flush()
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (models.User, error) {
	return s.requireUser(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, grerrors.Upstream("list users", err)
	}
	return users, nil
}
