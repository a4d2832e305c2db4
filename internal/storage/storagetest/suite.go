// Package storagetest holds the behaviour every storage.Provider must share.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/grove/internal/constants"
	"github.com/julianstephens/grove/internal/models"
	"github.com/julianstephens/grove/internal/storage"
)

// Base is a millisecond-aligned instant every backend round-trips exactly.
var Base = time.Date(2026, 5, 11, 0, 30, 0, 0, time.UTC)

// Run exercises a freshly initialised, empty store.
func Run(t *testing.T, store storage.Provider) {
	ctx := context.Background()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if store.Describe() == "" {
		t.Error("Describe returned empty string")
	}

	t.Run("Users", func(t *testing.T) { testUsers(t, ctx, store) })
	t.Run("Entries", func(t *testing.T) { testEntries(t, ctx, store) })
	t.Run("Waterings", func(t *testing.T) { testWaterings(t, ctx, store) })
	t.Run("Cheers", func(t *testing.T) { testCheers(t, ctx, store) })
	t.Run("Annotations", func(t *testing.T) { testAnnotations(t, ctx, store) })
	t.Run("Goals", func(t *testing.T) { testGoals(t, ctx, store) })
}

func mustAddUser(t *testing.T, ctx context.Context, store storage.Provider, id, name string) models.User {
	t.Helper()
	u := models.User{ID: id, DisplayName: name, CreatedAt: Base, UpdatedAt: Base}
	if err := store.AddUser(ctx, u); err != nil {
		t.Fatalf("AddUser(%s) failed: %v", id, err)
	}
	return u
}

func testUsers(t *testing.T, ctx context.Context, store storage.Provider) {
	mustAddUser(t, ctx, store, "u-bravo", "Bravo")
	mustAddUser(t, ctx, store, "u-alpha", "Alpha")

	if err := store.AddUser(ctx, models.User{ID: "u-alpha", DisplayName: "Dup", CreatedAt: Base, UpdatedAt: Base}); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate AddUser: expected ErrConflict, got %v", err)
	}

	got, err := store.GetUser(ctx, "u-alpha")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.DisplayName != "Alpha" || !got.CreatedAt.Equal(Base) {
		t.Errorf("unexpected user: %+v", got)
	}

	if _, err := store.GetUser(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetUser(missing): expected ErrNotFound, got %v", err)
	}

	got.DisplayName = "Alpha Prime"
	got.UpdatedAt = Base.Add(time.Hour)
	if err := store.UpdateUser(ctx, got); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	got, _ = store.GetUser(ctx, "u-alpha")
	if got.DisplayName != "Alpha Prime" {
		t.Errorf("expected renamed user, got %q", got.DisplayName)
	}

	if err := store.UpdateUser(ctx, models.User{ID: "missing", UpdatedAt: Base}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateUser(missing): expected ErrNotFound, got %v", err)
	}

	users, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) < 2 || users[0].ID != "u-alpha" || users[1].ID != "u-bravo" {
		t.Errorf("expected users ordered by id, got %+v", users)
	}
}

func testEntries(t *testing.T, ctx context.Context, store storage.Provider) {
	mustAddUser(t, ctx, store, "u-entries", "Writer")

	score := 7
	first := models.JournalEntry{
		ID: uuid.New().String(), UserID: "u-entries", Kind: constants.EntryMorning,
		Day: "2026-05-11", Content: "first", Score: &score,
		CreatedAt: Base, UpdatedAt: Base,
	}
	if err := store.UpsertEntry(ctx, first); err != nil {
		t.Fatalf("UpsertEntry failed: %v", err)
	}

	// Same key with a new ID updates in place.
	second := first
	second.ID = uuid.New().String()
	second.Content = "edited"
	second.Score = nil
	second.Shared = true
	second.CreatedAt = Base.Add(time.Hour)
	second.UpdatedAt = Base.Add(time.Hour)
	if err := store.UpsertEntry(ctx, second); err != nil {
		t.Fatalf("UpsertEntry (update) failed: %v", err)
	}

	got, err := store.GetEntry(ctx, "u-entries", "2026-05-11", constants.EntryMorning)
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if got.ID != first.ID || !got.CreatedAt.Equal(Base) {
		t.Errorf("upsert must keep ID and created_at: %+v", got)
	}
	if got.Content != "edited" || got.Score != nil || !got.Shared || !got.UpdatedAt.Equal(Base.Add(time.Hour)) {
		t.Errorf("upsert did not apply new fields: %+v", got)
	}

	byID, err := store.GetEntryByID(ctx, first.ID)
	if err != nil || byID.Day != "2026-05-11" {
		t.Errorf("GetEntryByID = %+v, %v", byID, err)
	}

	if _, err := store.GetEntry(ctx, "u-entries", "2026-05-11", constants.EntryEvening); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetEntry(evening): expected ErrNotFound, got %v", err)
	}
	if _, err := store.LatestEntry(ctx, "u-entries", constants.EntryEvening); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("LatestEntry(evening): expected ErrNotFound, got %v", err)
	}

	for i, day := range []string{"2026-05-10", "2026-05-09", "2026-04-30"} {
		e := models.JournalEntry{
			ID: uuid.New().String(), UserID: "u-entries", Kind: constants.EntryMorning,
			Day: day, Content: day,
			CreatedAt: Base.Add(-time.Duration(i+1) * 24 * time.Hour),
			UpdatedAt: Base.Add(-time.Duration(i+1) * 24 * time.Hour),
		}
		if i == 2 {
			e.CreatedAt = Base.Add(-11 * 24 * time.Hour)
		}
		if err := store.UpsertEntry(ctx, e); err != nil {
			t.Fatalf("UpsertEntry(%s) failed: %v", day, err)
		}
	}

	n, err := store.CountEntries(ctx, "u-entries", constants.EntryMorning, Base.Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("CountEntries failed: %v", err)
	}
	if n != 3 {
		t.Errorf("CountEntries = %d, want 3", n)
	}
	n, _ = store.CountEntries(ctx, "u-entries", constants.EntryMorning, Base)
	if n != 1 {
		t.Errorf("CountEntries(since base) = %d, want 1 (inclusive bound)", n)
	}

	latest, err := store.LatestEntry(ctx, "u-entries", constants.EntryMorning)
	if err != nil || latest.Day != "2026-05-11" {
		t.Errorf("LatestEntry = %+v, %v", latest, err)
	}

	days, err := store.EntryDays(ctx, "u-entries", constants.EntryMorning, "2026-05-01")
	if err != nil {
		t.Fatalf("EntryDays failed: %v", err)
	}
	if len(days) != 3 {
		t.Errorf("EntryDays = %v, want 3 days from 2026-05-01", days)
	}
}

func testWaterings(t *testing.T, ctx context.Context, store storage.Provider) {
	mustAddUser(t, ctx, store, "u-giver", "Giver")
	mustAddUser(t, ctx, store, "u-tree", "Tree")

	w := models.Watering{
		ID: uuid.New().String(), FromUser: "u-giver", TargetUser: "u-tree",
		FromName: "Giver", Day: "2026-05-11", CreatedAt: Base,
	}
	if err := store.AddWatering(ctx, w); err != nil {
		t.Fatalf("AddWatering failed: %v", err)
	}

	dup := w
	dup.ID = uuid.New().String()
	if err := store.AddWatering(ctx, dup); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("same-day AddWatering: expected ErrConflict, got %v", err)
	}

	next := w
	next.ID = uuid.New().String()
	next.Day = "2026-05-12"
	next.CreatedAt = Base.Add(24 * time.Hour)
	if err := store.AddWatering(ctx, next); err != nil {
		t.Fatalf("next-day AddWatering failed: %v", err)
	}

	found, err := store.FindWatering(ctx, "u-giver", "u-tree", "2026-05-11")
	if err != nil || found.ID != w.ID || found.FromName != "Giver" {
		t.Errorf("FindWatering = %+v, %v", found, err)
	}
	if _, err := store.FindWatering(ctx, "u-tree", "u-giver", "2026-05-11"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("FindWatering(reverse): expected ErrNotFound, got %v", err)
	}

	received, err := store.WateringsReceived(ctx, "u-tree", Base.Add(time.Hour))
	if err != nil || len(received) != 1 || received[0].Day != "2026-05-12" {
		t.Errorf("WateringsReceived = %+v, %v", received, err)
	}
	given, err := store.WateringsGiven(ctx, "u-giver", Base)
	if err != nil || len(given) != 2 {
		t.Errorf("WateringsGiven = %+v, %v", given, err)
	}
	none, err := store.WateringsGiven(ctx, "u-tree", Base)
	if err != nil || len(none) != 0 {
		t.Errorf("WateringsGiven(tree) = %+v, %v", none, err)
	}
}

func testCheers(t *testing.T, ctx context.Context, store storage.Provider) {
	for i := 0; i < 2; i++ {
		c := models.Cheer{
			ID: uuid.New().String(), PostID: "post-1", PostKind: constants.PostMorning,
			ActorID: "u-fan", ActorName: "Fan", CreatedAt: Base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.AddCheer(ctx, c); err != nil {
			t.Fatalf("AddCheer #%d failed: %v", i, err)
		}
	}

	cheers, err := store.ListCheers(ctx, "post-1")
	if err != nil {
		t.Fatalf("ListCheers failed: %v", err)
	}
	if len(cheers) != 2 {
		t.Fatalf("expected repeat cheers to be kept, got %d", len(cheers))
	}
	if !cheers[0].CreatedAt.Before(cheers[1].CreatedAt) {
		t.Error("cheers should be ordered oldest first")
	}

	empty, err := store.ListCheers(ctx, "post-none")
	if err != nil || len(empty) != 0 {
		t.Errorf("ListCheers(empty) = %+v, %v", empty, err)
	}
}

func testAnnotations(t *testing.T, ctx context.Context, store storage.Provider) {
	mustAddUser(t, ctx, store, "u-coached", "Coached")

	a := models.CoachingAnnotation{
		ID: uuid.New().String(), UserID: "u-coached", CoachID: "coach-1", Day: "2026-05-11",
		Correction: "first", CreatedAt: Base, UpdatedAt: Base,
	}
	if err := store.UpsertAnnotation(ctx, a); err != nil {
		t.Fatalf("UpsertAnnotation failed: %v", err)
	}

	b := a
	b.ID = uuid.New().String()
	b.CoachID = "coach-2"
	b.Correction = ""
	b.Prompt = "why?"
	b.UpdatedAt = Base.Add(time.Minute)
	if err := store.UpsertAnnotation(ctx, b); err != nil {
		t.Fatalf("UpsertAnnotation (overwrite) failed: %v", err)
	}

	got, err := store.GetAnnotation(ctx, "u-coached", "2026-05-11")
	if err != nil {
		t.Fatalf("GetAnnotation failed: %v", err)
	}
	if got.ID != a.ID || got.CoachID != "coach-2" || got.Correction != "" || got.Prompt != "why?" {
		t.Errorf("expected last write to win on the original record: %+v", got)
	}

	if _, err := store.GetAnnotation(ctx, "u-coached", "2026-05-12"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetAnnotation(other day): expected ErrNotFound, got %v", err)
	}
}

func testGoals(t *testing.T, ctx context.Context, store storage.Provider) {
	mustAddUser(t, ctx, store, "u-goal", "Goal Setter")

	g := models.Goal{
		ID: uuid.New().String(), UserID: "u-goal", Period: constants.GoalWeekly, PeriodKey: "2026-W20",
		Text: "read daily", Shared: true, CreatedAt: Base, UpdatedAt: Base,
	}
	if err := store.UpsertGoal(ctx, g); err != nil {
		t.Fatalf("UpsertGoal failed: %v", err)
	}

	g2 := g
	g2.ID = uuid.New().String()
	g2.Text = "read twice daily"
	g2.UpdatedAt = Base.Add(time.Hour)
	if err := store.UpsertGoal(ctx, g2); err != nil {
		t.Fatalf("UpsertGoal (update) failed: %v", err)
	}

	got, err := store.GetGoal(ctx, "u-goal", constants.GoalWeekly, "2026-W20")
	if err != nil {
		t.Fatalf("GetGoal failed: %v", err)
	}
	if got.ID != g.ID || got.Text != "read twice daily" {
		t.Errorf("unexpected goal: %+v", got)
	}

	byID, err := store.GetGoalByID(ctx, g.ID)
	if err != nil || byID.PeriodKey != "2026-W20" {
		t.Errorf("GetGoalByID = %+v, %v", byID, err)
	}

	if _, err := store.GetGoal(ctx, "u-goal", constants.GoalMonthly, "2026-05"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetGoal(monthly): expected ErrNotFound, got %v", err)
	}
}
