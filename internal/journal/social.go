package journal

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/grove/internal/constants"
	grerrors "github.com/julianstephens/grove/internal/errors"
	"github.com/julianstephens/grove/internal/logger"
	"github.com/julianstephens/grove/internal/models"
	"github.com/julianstephens/grove/internal/storage"
)

// Watering outcomes recorded in metrics.
const (
	waterCreated   = "created"
	waterDuplicate = "duplicate"
	waterSelf      = "self"
	waterFailed    = "error"
)

// Water records one encouragement from one user toward another's tree.
// A pair may water at most once per reference day.
func (s *Service) Water(ctx context.Context, fromID, targetID string) (models.Watering, error) {
	fromID = strings.TrimSpace(fromID)
	targetID = strings.TrimSpace(targetID)
	if fromID != "" && fromID == targetID {
		s.metrics.WateringResult(waterSelf)
		return models.Watering{}, grerrors.Invalid("target", "cannot water your own tree")
	}
	from, err := s.requireUser(ctx, fromID)
	if err != nil {
		return models.Watering{}, err
	}
	if _, err := s.requireUser(ctx, targetID); err != nil {
		return models.Watering{}, err
	}

	now := s.clock.Now().UTC()
	day := s.policy.DayKey(now)

	unlock, err := s.locker.Lock(ctx, "water:"+fromID+":"+targetID+":"+day)
	if err != nil {
		s.metrics.WateringResult(waterFailed)
		return models.Watering{}, grerrors.Upstream("acquire watering lock", err)
	}
	defer unlock()

	_, err = s.store.FindWatering(ctx, fromID, targetID, day)
	switch {
	case err == nil:
		s.metrics.WateringResult(waterDuplicate)
		return models.Watering{}, grerrors.Conflict("watering", "already watered "+targetID+" today")
	case !errors.Is(err, storage.ErrNotFound):
		s.metrics.WateringResult(waterFailed)
		return models.Watering{}, grerrors.Upstream("find watering", err)
	}

	w := models.Watering{
		ID:         uuid.New().String(),
		FromUser:   fromID,
		TargetUser: targetID,
		FromName:   from.DisplayName,
		Day:        day,
		CreatedAt:  now,
	}
	if err := s.store.AddWatering(ctx, w); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			s.metrics.WateringResult(waterDuplicate)
			return models.Watering{}, grerrors.Conflict("watering", "already watered "+targetID+" today")
		}
		s.metrics.WateringResult(waterFailed)
		return models.Watering{}, grerrors.Upstream("add watering", err)
	}

	s.metrics.WateringResult(waterCreated)
	s.cache.Flush()
	logger.Info("Tree watered", "from", fromID, "target", targetID, "day", day)
	return w, nil
}

// Cheer marks support for a post. Cheers repeat freely. A post is cheerable
// when it is shared or belongs to the actor; anything else reports as not found.
func (s *Service) Cheer(ctx context.Context, actorID, postID string, kind constants.PostKind) (models.Cheer, error) {
	if !kind.Valid() {
		return models.Cheer{}, grerrors.Invalid("kind", "must be morning, evening or goal")
	}
	actor, err := s.requireUser(ctx, actorID)
	if err != nil {
		return models.Cheer{}, err
	}
	if err := s.requirePost(ctx, actorID, postID, kind); err != nil {
		return models.Cheer{}, err
	}

	c := models.Cheer{
		ID:          uuid.New().String(),
		PostID:      postID,
		PostKind:    kind,
		ActorID:     actor.ID,
		ActorName:   actor.DisplayName,
		ActorAvatar: actor.AvatarURL,
		CreatedAt:   s.clock.Now().UTC(),
	}
	if err := s.store.AddCheer(ctx, c); err != nil {
		return models.Cheer{}, grerrors.Upstream("add cheer", err)
	}
	s.metrics.CheerRecorded(string(kind))
	return c, nil
}

func (s *Service) requirePost(ctx context.Context, actorID, postID string, kind constants.PostKind) error {
	var owner string
	var shared bool
	var err error

	if kind == constants.PostGoal {
		var g models.Goal
		g, err = s.store.GetGoalByID(ctx, postID)
		owner, shared = g.UserID, g.Shared
	} else {
		var e models.JournalEntry
		e, err = s.store.GetEntryByID(ctx, postID)
		owner, shared = e.UserID, e.Shared
		if err == nil && string(e.Kind) != string(kind) {
			return grerrors.NotFound(string(kind)+" post", postID)
		}
	}

	if errors.Is(err, storage.ErrNotFound) {
		return grerrors.NotFound(string(kind)+" post", postID)
	}
	if err != nil {
		return grerrors.Upstream("get post", err)
	}
	if !shared && owner != actorID {
		return grerrors.NotFound(string(kind)+" post", postID)
	}
	return nil
}

// CheerView is a cheer with the actor's name as it should be displayed now.
type CheerView struct {
	models.Cheer
	DisplayName string `json:"display_name"`
}

// ListCheers returns a post's cheers oldest first. The post must be visible
// to the viewer under the same rule as Cheer. DisplayName is the actor's
// current name when they still resolve, else the name captured at write time.
func (s *Service) ListCheers(ctx context.Context, viewerID, postID string, kind constants.PostKind) ([]CheerView, error) {
	if !kind.Valid() {
		return nil, grerrors.Invalid("kind", "must be morning, evening or goal")
	}
	if err := s.requirePost(ctx, strings.TrimSpace(viewerID), postID, kind); err != nil {
		return nil, err
	}

	cheers, err := s.store.ListCheers(ctx, postID)
	if err != nil {
		return nil, grerrors.Upstream("list cheers", err)
	}

	names := make(map[string]string)
	views := make([]CheerView, 0, len(cheers))
	for _, c := range cheers {
		name, ok := names[c.ActorID]
		if !ok {
			u, err := s.store.GetUser(ctx, c.ActorID)
			switch {
			case err == nil:
				name = u.DisplayName
			case errors.Is(err, storage.ErrNotFound):
				name = ""
			default:
				return nil, grerrors.Upstream("get user", err)
			}
			names[c.ActorID] = name
		}
		if name == "" {
			name = c.ActorName
		}
		views = append(views, CheerView{Cheer: c, DisplayName: name})
	}
	return views, nil
}
