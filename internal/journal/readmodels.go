package journal

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/grove/internal/cache"
	"github.com/julianstephens/grove/internal/constants"
	"github.com/julianstephens/grove/internal/engagement"
	grerrors "github.com/julianstephens/grove/internal/errors"
	"github.com/julianstephens/grove/internal/models"
	"github.com/julianstephens/grove/internal/storage"
)

// HealthView is a user's engagement health at a query instant.
type HealthView struct {
	UserID string `json:"user_id"`
	engagement.HealthScore
	Input engagement.HealthInput `json:"-"`
}

// Health scores a user from their trailing 7 and 30 day post counts and
// most recent entry of either kind.
func (s *Service) Health(ctx context.Context, userID string) (HealthView, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return HealthView{}, err
	}
	now := s.clock.Now().UTC()
	since7 := now.AddDate(0, 0, -constants.ShortWindowDays)
	since30 := now.AddDate(0, 0, -constants.LongWindowDays)

	var in engagement.HealthInput
	counts := []struct {
		dst   *int
		kind  constants.EntryKind
		since time.Time
	}{
		{&in.MorningCount7, constants.EntryMorning, since7},
		{&in.NightCount7, constants.EntryEvening, since7},
		{&in.MorningCount30, constants.EntryMorning, since30},
		{&in.NightCount30, constants.EntryEvening, since30},
	}
	for _, c := range counts {
		n, err := s.store.CountEntries(ctx, userID, c.kind, c.since)
		if err != nil {
			return HealthView{}, grerrors.Upstream("count entries", err)
		}
		*c.dst = n
	}

	for _, kind := range []constants.EntryKind{constants.EntryMorning, constants.EntryEvening} {
		e, err := s.store.LatestEntry(ctx, userID, kind)
		last, err := optional("latest entry", e, err)
		if err != nil {
			return HealthView{}, err
		}
		if last != nil && (in.LastActivity == nil || last.CreatedAt.After(*in.LastActivity)) {
			t := last.CreatedAt
			in.LastActivity = &t
		}
	}

	score := engagement.ScoreHealth(in, now)
	s.metrics.HealthScored(score.Score)
	return HealthView{UserID: userID, HealthScore: score, Input: in}, nil
}

// StreakView is a user's consecutive morning-entry run.
type StreakView struct {
	UserID      string `json:"user_id"`
	Days        int    `json:"days"`
	Today       string `json:"today"`
	PostedToday bool   `json:"posted_today"`
	Lookback    int    `json:"lookback"`
}

func (s *Service) Streak(ctx context.Context, userID string) (StreakView, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return StreakView{}, err
	}
	now := s.clock.Now()
	today := s.policy.DayKey(now)
	since := s.policy.DayKey(s.policy.AddDays(now, -(s.lookback - 1)))

	days, err := s.store.EntryDays(ctx, userID, constants.EntryMorning, since)
	if err != nil {
		return StreakView{}, grerrors.Upstream("entry days", err)
	}
	posted := make(map[string]bool, len(days))
	for _, d := range days {
		posted[d] = true
	}

	return StreakView{
		UserID:      userID,
		Days:        engagement.CalculateStreak(posted, now, s.policy, s.lookback),
		Today:       today,
		PostedToday: posted[today],
		Lookback:    s.lookback,
	}, nil
}

// ForestView is the cohort's trees for the current month.
type ForestView struct {
	Month       string                   `json:"month"`
	Theme       engagement.Theme         `json:"theme"`
	DaysInMonth int                      `json:"days_in_month"`
	DayOfMonth  int                      `json:"day_of_month"`
	Trees       []engagement.Growth      `json:"trees"`
	Hidden      int                      `json:"hidden"`
	MVP         *engagement.SupportTally `json:"mvp,omitempty"`
	GeneratedAt time.Time                `json:"generated_at"`
}

// Forest computes every registered user's tree for the month and the week's
// most supportive peer. Results are cached per month until a write flushes them.
func (s *Service) Forest(ctx context.Context) (ForestView, error) {
	now := s.clock.Now()
	month := s.policy.MonthlyPeriodKey(now)
	key := "forest:" + month
	if v, ok := cache.Get[ForestView](s.cache, key); ok {
		return v, nil
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return ForestView{}, grerrors.Upstream("list users", err)
	}

	monthStart := s.policy.StartOfMonth(now).UTC()
	mvpSince := now.UTC().AddDate(0, 0, -constants.MVPWindowDays)
	view := ForestView{
		Month:       month,
		Theme:       engagement.MonthTheme(s.policy.Local(now).Month()),
		DaysInMonth: s.policy.DaysInMonth(now),
		DayOfMonth:  s.policy.DayOfMonth(now),
		GeneratedAt: now.UTC(),
	}

	growths := make([]engagement.Growth, 0, len(users))
	tallies := make([]engagement.SupportTally, 0, len(users))
	for _, u := range users {
		in, err := s.growthInput(ctx, u, monthStart)
		if err != nil {
			return ForestView{}, err
		}
		in.DaysInMonth = view.DaysInMonth
		in.DayOfMonth = view.DayOfMonth
		growths = append(growths, engagement.ComputeGrowth(in, now))

		given, err := s.store.WateringsGiven(ctx, u.ID, mvpSince)
		if err != nil {
			return ForestView{}, grerrors.Upstream("waterings given", err)
		}
		tallies = append(tallies, engagement.SupportTally{UserID: u.ID, DisplayName: u.DisplayName, Given: len(given)})
	}

	view.Trees = engagement.VisibleCohort(growths)
	view.Hidden = len(growths) - len(view.Trees)
	if mvp, ok := engagement.PickMVP(tallies); ok {
		view.MVP = &mvp
	}

	s.cache.Set(key, view)
	return view, nil
}

func (s *Service) growthInput(ctx context.Context, u models.User, monthStart time.Time) (engagement.GrowthInput, error) {
	in := engagement.GrowthInput{UserID: u.ID, DisplayName: u.DisplayName}

	posts, err := s.store.CountEntries(ctx, u.ID, constants.EntryMorning, monthStart)
	if err != nil {
		return in, grerrors.Upstream("count entries", err)
	}
	in.PostCountThisMonth = posts

	latest, err := s.store.LatestEntry(ctx, u.ID, constants.EntryMorning)
	switch {
	case err == nil:
		t := latest.CreatedAt
		in.LastPost = &t
	case !errors.Is(err, storage.ErrNotFound):
		return in, grerrors.Upstream("latest entry", err)
	}

	received, err := s.store.WateringsReceived(ctx, u.ID, monthStart)
	if err != nil {
		return in, grerrors.Upstream("waterings received", err)
	}
	in.WaterReceivedThisMonth = len(received)
	for _, w := range received {
		if in.LastWaterReceived == nil || w.CreatedAt.After(*in.LastWaterReceived) {
			t := w.CreatedAt
			in.LastWaterReceived = &t
		}
	}
	return in, nil
}
