package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/julianstephens/grove/internal/constants"
	"github.com/julianstephens/grove/internal/models"
	"github.com/julianstephens/grove/internal/storage"
)

// Users

func (s *Store) AddUser(ctx context.Context, u models.User) error {
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	_, err := s.collection(CollectionUsers).InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return storage.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	var u models.User
	if err := s.collection(CollectionUsers).FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return models.User{}, notFound(err)
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := s.collection(CollectionUsers).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, u models.User) error {
	res, err := s.collection(CollectionUsers).UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{
		"$set": bson.M{
			"displayName": u.DisplayName,
			"avatarUrl":   u.AvatarURL,
			"updatedAt":   u.UpdatedAt.UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Entries

func (s *Store) UpsertEntry(ctx context.Context, e models.JournalEntry) error {
	filter := bson.M{"userId": e.UserID, "day": e.Day, "kind": e.Kind}
	set := bson.M{
		"content":   e.Content,
		"shared":    e.Shared,
		"updatedAt": e.UpdatedAt.UTC(),
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"_id":       e.ID,
			"createdAt": e.CreatedAt.UTC(),
		},
	}
	if e.Score != nil {
		set["score"] = *e.Score
	} else {
		update["$unset"] = bson.M{"score": ""}
	}

	_, err := s.collection(CollectionEntries).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert entry: %w", err)
	}
	return nil
}

func (s *Store) GetEntry(ctx context.Context, userID, day string, kind constants.EntryKind) (models.JournalEntry, error) {
	return s.findEntry(ctx, bson.M{"userId": userID, "day": day, "kind": kind})
}

func (s *Store) GetEntryByID(ctx context.Context, id string) (models.JournalEntry, error) {
	return s.findEntry(ctx, bson.M{"_id": id})
}

func (s *Store) findEntry(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (models.JournalEntry, error) {
	var e models.JournalEntry
	if err := s.collection(CollectionEntries).FindOne(ctx, filter, opts...).Decode(&e); err != nil {
		return models.JournalEntry{}, notFound(err)
	}
	return e, nil
}

func (s *Store) CountEntries(ctx context.Context, userID string, kind constants.EntryKind, since time.Time) (int, error) {
	n, err := s.collection(CollectionEntries).CountDocuments(ctx, bson.M{
		"userId":    userID,
		"kind":      kind,
		"createdAt": bson.M{"$gte": since.UTC()},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return int(n), nil
}

func (s *Store) LatestEntry(ctx context.Context, userID string, kind constants.EntryKind) (models.JournalEntry, error) {
	return s.findEntry(ctx,
		bson.M{"userId": userID, "kind": kind},
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (s *Store) EntryDays(ctx context.Context, userID string, kind constants.EntryKind, sinceDay string) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"day": 1}).
		SetSort(bson.D{{Key: "day", Value: -1}})
	cursor, err := s.collection(CollectionEntries).Find(ctx, bson.M{
		"userId": userID,
		"kind":   kind,
		"day":    bson.M{"$gte": sinceDay},
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list entry days: %w", err)
	}

	var docs []struct {
		Day string `bson:"day"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode entry days: %w", err)
	}
	days := make([]string, 0, len(docs))
	for _, d := range docs {
		days = append(days, d.Day)
	}
	return days, nil
}

// Waterings

func (s *Store) AddWatering(ctx context.Context, w models.Watering) error {
	w.CreatedAt = w.CreatedAt.UTC()
	_, err := s.collection(CollectionWaterings).InsertOne(ctx, w)
	if mongo.IsDuplicateKeyError(err) {
		return storage.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to insert watering: %w", err)
	}
	return nil
}

func (s *Store) FindWatering(ctx context.Context, fromUser, targetUser, day string) (models.Watering, error) {
	var w models.Watering
	err := s.collection(CollectionWaterings).
		FindOne(ctx, bson.M{"fromUser": fromUser, "targetUser": targetUser, "day": day}).
		Decode(&w)
	if err != nil {
		return models.Watering{}, notFound(err)
	}
	return w, nil
}

func (s *Store) WateringsReceived(ctx context.Context, targetUser string, since time.Time) ([]models.Watering, error) {
	return s.listWaterings(ctx, bson.M{"targetUser": targetUser, "createdAt": bson.M{"$gte": since.UTC()}})
}

func (s *Store) WateringsGiven(ctx context.Context, fromUser string, since time.Time) ([]models.Watering, error) {
	return s.listWaterings(ctx, bson.M{"fromUser": fromUser, "createdAt": bson.M{"$gte": since.UTC()}})
}

func (s *Store) listWaterings(ctx context.Context, filter bson.M) ([]models.Watering, error) {
	cursor, err := s.collection(CollectionWaterings).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list waterings: %w", err)
	}
	var out []models.Watering
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode waterings: %w", err)
	}
	return out, nil
}

// Cheers

func (s *Store) AddCheer(ctx context.Context, c models.Cheer) error {
	c.CreatedAt = c.CreatedAt.UTC()
	if _, err := s.collection(CollectionCheers).InsertOne(ctx, c); err != nil {
		return fmt.Errorf("failed to insert cheer: %w", err)
	}
	return nil
}

func (s *Store) ListCheers(ctx context.Context, postID string) ([]models.Cheer, error) {
	cursor, err := s.collection(CollectionCheers).Find(ctx, bson.M{"postId": postID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list cheers: %w", err)
	}
	var out []models.Cheer
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode cheers: %w", err)
	}
	return out, nil
}

// Coaching annotations

func (s *Store) UpsertAnnotation(ctx context.Context, a models.CoachingAnnotation) error {
	_, err := s.collection(CollectionAnnotations).UpdateOne(ctx,
		bson.M{"userId": a.UserID, "day": a.Day},
		bson.M{
			"$set": bson.M{
				"coachId":    a.CoachID,
				"correction": a.Correction,
				"prompt":     a.Prompt,
				"updatedAt":  a.UpdatedAt.UTC(),
			},
			"$setOnInsert": bson.M{
				"_id":       a.ID,
				"createdAt": a.CreatedAt.UTC(),
			},
		},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert annotation: %w", err)
	}
	return nil
}

func (s *Store) GetAnnotation(ctx context.Context, userID, day string) (models.CoachingAnnotation, error) {
	var a models.CoachingAnnotation
	if err := s.collection(CollectionAnnotations).FindOne(ctx, bson.M{"userId": userID, "day": day}).Decode(&a); err != nil {
		return models.CoachingAnnotation{}, notFound(err)
	}
	return a, nil
}

// Goals

func (s *Store) UpsertGoal(ctx context.Context, g models.Goal) error {
	_, err := s.collection(CollectionGoals).UpdateOne(ctx,
		bson.M{"userId": g.UserID, "period": g.Period, "periodKey": g.PeriodKey},
		bson.M{
			"$set": bson.M{
				"text":      g.Text,
				"shared":    g.Shared,
				"updatedAt": g.UpdatedAt.UTC(),
			},
			"$setOnInsert": bson.M{
				"_id":       g.ID,
				"createdAt": g.CreatedAt.UTC(),
			},
		},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert goal: %w", err)
	}
	return nil
}

func (s *Store) GetGoal(ctx context.Context, userID string, period constants.GoalPeriod, periodKey string) (models.Goal, error) {
	return s.findGoal(ctx, bson.M{"userId": userID, "period": period, "periodKey": periodKey})
}

func (s *Store) GetGoalByID(ctx context.Context, id string) (models.Goal, error) {
	return s.findGoal(ctx, bson.M{"_id": id})
}

func (s *Store) findGoal(ctx context.Context, filter bson.M) (models.Goal, error) {
	var g models.Goal
	if err := s.collection(CollectionGoals).FindOne(ctx, filter).Decode(&g); err != nil {
		return models.Goal{}, notFound(err)
	}
	return g, nil
}
