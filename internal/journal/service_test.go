package journal

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/julianstephens/grove/internal/cache"
	"github.com/julianstephens/grove/internal/constants"
	grerrors "github.com/julianstephens/grove/internal/errors"
	"github.com/julianstephens/grove/internal/metrics"
	"github.com/julianstephens/grove/internal/models"
)

// 2026-05-11 07:00 in the reference timezone: morning open, evening not yet.
var base = time.Date(2026, 5, 10, 22, 0, 0, 0, time.UTC)

type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *stepClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *stepClock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	svc   *Service
	store *memStore
	clock *stepClock
	cache *cache.ReadModels
}

func newFixture(t *testing.T, users ...string) *fixture {
	t.Helper()
	clk := &stepClock{t: base}
	store := newMemStore()
	rm := cache.NewReadModels(time.Minute, clk)
	svc := NewService(store, Options{Clock: clk, Cache: rm})
	for _, id := range users {
		name := strings.ToUpper(id[:1]) + id[1:]
		if _, err := svc.AddUser(context.Background(), id, name, ""); err != nil {
			t.Fatalf("AddUser(%s): %v", id, err)
		}
	}
	return &fixture{svc: svc, store: store, clock: clk, cache: rm}
}

func intPtr(v int) *int { return &v }

func TestAddUser(t *testing.T) {
	f := newFixture(t, "alice")
	ctx := context.Background()

	if _, err := f.svc.AddUser(ctx, "alice", "Other", ""); !grerrors.IsConflict(err) {
		t.Errorf("duplicate id: expected conflict, got %v", err)
	}
	if _, err := f.svc.AddUser(ctx, "bob", "  ", ""); !grerrors.IsValidation(err) {
		t.Errorf("blank name: expected validation error, got %v", err)
	}
	u, err := f.svc.AddUser(ctx, "", "Generated", "")
	if err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	if len(u.ID) != 36 {
		t.Errorf("expected generated UUID, got %q", u.ID)
	}
}

func TestPostEntryCreatesInsideWindow(t *testing.T) {
	f := newFixture(t, "alice")
	ctx := context.Background()

	res, err := f.svc.PostEntry(ctx, PostInput{UserID: "alice", Kind: constants.EntryMorning, Content: " first light ", Score: intPtr(7)})
	if err != nil {
		t.Fatalf("PostEntry: %v", err)
	}
	if !res.Created || res.Decision.Reason != ReasonWindowOpen {
		t.Errorf("result = %+v", res)
	}
	if res.Entry.Day != "2026-05-11" {
		t.Errorf("Day = %s, want 2026-05-11", res.Entry.Day)
	}
	if res.Entry.Content != "first light" {
		t.Errorf("Content = %q, want trimmed", res.Entry.Content)
	}
}

func TestPostEntryEditAfterWindowKeepsIdentity(t *testing.T) {
	f := newFixture(t, "alice")
	ctx := context.Background()

	first, err := f.svc.PostEntry(ctx, PostInput{UserID: "alice", Kind: constants.EntryMorning, Content: "draft"})
	if err != nil {
		t.Fatalf("PostEntry: %v", err)
	}

	// 12:00 local, morning window closed.
	f.clock.Add(5 * time.Hour)
	second, err := f.svc.PostEntry(ctx, PostInput{UserID: "alice", Kind: constants.EntryMorning, Content: "final"})
	if err != nil {
		t.Fatalf("edit after window: %v", err)
	}
	if second.Created || second.Decision.Reason != ReasonEdit {
		t.Errorf("expected edit decision, got %+v", second.Decision)
	}
	if second.Entry.ID != first.Entry.ID {
		t.Errorf("ID changed: %s -> %s", first.Entry.ID, second.Entry.ID)
	}
	if !second.Entry.CreatedAt.Equal(first.Entry.CreatedAt) {
		t.Errorf("CreatedAt changed")
	}
	if len(f.store.entries) != 1 {
		t.Errorf("expected one stored entry, got %d", len(f.store.entries))
	}
}

func TestPostEntryRejectedOutsideWindow(t *testing.T) {
	f := newFixture(t, "alice")
	ctx := context.Background()

	res, err := f.svc.PostEntry(ctx, PostInput{UserID: "alice", Kind: constants.EntryEvening, Content: "too early"})
	if !grerrors.IsWindowClosed(err) {
		t.Fatalf("expected window closed, got %v", err)
	}
	if res.Decision.Allowed || res.Decision.Status != "before" {
		t.Errorf("decision = %+v", res.Decision)
	}
	if f.store.calls["UpsertEntry"] != 0 {
		t.Error("rejected post reached storage")
	}

	f.clock.Add(5 * time.Hour)
	if _, err := f.svc.PostEntry(ctx, PostInput{UserID: "alice", Kind: constants.EntryMorning, Content: "late"}); !grerrors.IsWindowClosed(err) {
		t.Errorf("morning after window: expected window closed, got %v", err)
	}
}

func TestPostEntryValidation(t *testing.T) {
	f := newFixture(t, "alice")
	ctx := context.Background()

	tests := []struct {
		name  string
		in    PostInput
		check func(error) bool
	}{
		{"empty content", PostInput{UserID: "alice", Kind: constants.EntryMorning, Content: "  "}, grerrors.IsValidation},
		{"score too high", PostInput{UserID: "alice", Kind: constants.EntryMorning, Content: "x", Score: intPtr(11)}, grerrors.IsValidation},
		{"score too low", PostInput{UserID: "alice", Kind: constants.EntryMorning, Content: "x", Score: intPtr(0)}, grerrors.IsValidation},
		{"bad kind", PostInput{UserID: "alice", Kind: "noon", Content: "x"}, grerrors.IsValidation},
		{"missing user", PostInput{Kind: constants.EntryMorning, Content: "x"}, grerrors.IsValidation},
		{"unknown user", PostInput{UserID: "ghost", Kind: constants.EntryMorning, Content: "x"}, grerrors.IsNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.PostEntry(ctx, tt.in); !tt.check(err) {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestPostEntryStoreFailure(t *testing.T) {
	f := newFixture(t, "alice")
	f.store.fail["GetEntry"] = true

	_, err := f.svc.PostEntry(context.Background(), PostInput{UserID: "alice", Kind: constants.EntryMorning, Content: "x"})
	if !grerrors.IsUpstream(err) {
		t.Errorf("expected upstream error, got %v", err)
	}
}

func TestEditEntry(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()

	res, err := f.svc.PostEntry(ctx, PostInput{UserID: "alice", Kind: constants.EntryMorning, Content: "draft", Score: intPtr(4)})
	if err != nil {
		t.Fatalf("PostEntry: %v", err)
	}

	// Three days later, well outside any window.
	f.clock.Add(72*time.Hour + 5*time.Hour)

	content := "revised"
	shared := true
	edited, err := f.svc.EditEntry(ctx, EditInput{EntryID: res.Entry.ID, UserID: "alice", Content: &content, ClearScore: true, Shared: &shared})
	if err != nil {
		t.Fatalf("EditEntry: %v", err)
	}
	if edited.Content != "revised" || edited.Score != nil || !edited.Shared {
		t.Errorf("edited = %+v", edited)
	}
	if edited.Day != "2026-05-11" {
		t.Errorf("edit moved day to %s", edited.Day)
	}

	if _, err := f.svc.EditEntry(ctx, EditInput{EntryID: res.Entry.ID, UserID: "bob", Content: &content}); !grerrors.IsNotFound(err) {
		t.Errorf("non-owner edit: expected not found, got %v", err)
	}
	if _, err := f.svc.EditEntry(ctx, EditInput{EntryID: "missing", UserID: "alice"}); !grerrors.IsNotFound(err) {
		t.Errorf("missing entry: expected not found, got %v", err)
	}
}

func TestWindowView(t *testing.T) {
	f := newFixture(t)

	morning, err := f.svc.Window(constants.EntryMorning)
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if morning.Status != "open" || morning.Until != 2*time.Hour {
		t.Errorf("morning = %s until %s, want open until 2h", morning.Status, morning.Until)
	}

	evening, _ := f.svc.Window(constants.EntryEvening)
	if evening.Status != "before" || evening.Until != 11*time.Hour {
		t.Errorf("evening = %s until %s, want before until 11h", evening.Status, evening.Until)
	}

	f.clock.Add(5 * time.Hour)
	morning, _ = f.svc.Window(constants.EntryMorning)
	if morning.Status != "after" || morning.Until != 18*time.Hour {
		t.Errorf("morning after = %s until %s, want 18h to reopen", morning.Status, morning.Until)
	}

	if _, err := f.svc.Window("noon"); !grerrors.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestWaterOncePerDay(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()

	w, err := f.svc.Water(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("Water: %v", err)
	}
	if w.FromName != "Bob" || w.Day != "2026-05-11" {
		t.Errorf("watering = %+v", w)
	}

	if _, err := f.svc.Water(ctx, "bob", "alice"); !grerrors.IsConflict(err) {
		t.Errorf("same day: expected conflict, got %v", err)
	}
	if _, err := f.svc.Water(ctx, "alice", "bob"); err != nil {
		t.Errorf("reverse direction: %v", err)
	}

	f.clock.Add(24 * time.Hour)
	if _, err := f.svc.Water(ctx, "bob", "alice"); err != nil {
		t.Errorf("next day: %v", err)
	}
	if len(f.store.waterings) != 3 {
		t.Errorf("stored %d waterings, want 3", len(f.store.waterings))
	}
}

func TestWaterSelfPersistsNothing(t *testing.T) {
	f := newFixture(t, "alice")

	_, err := f.svc.Water(context.Background(), "alice", "alice")
	if !grerrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.store.calls["AddWatering"] != 0 || len(f.store.waterings) != 0 {
		t.Error("self watering reached storage")
	}
}

func TestWaterUnknownUsers(t *testing.T) {
	f := newFixture(t, "alice")
	ctx := context.Background()

	if _, err := f.svc.Water(ctx, "alice", "ghost"); !grerrors.IsNotFound(err) {
		t.Errorf("unknown target: expected not found, got %v", err)
	}
	if _, err := f.svc.Water(ctx, "ghost", "alice"); !grerrors.IsNotFound(err) {
		t.Errorf("unknown sender: expected not found, got %v", err)
	}
}

func TestWaterConcurrentSinglesOut(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()
	// Without a storage unique key, only the lock stops every goroutine
	// passing the lookup before any of them inserts.
	f.store.looseWaterings = true
	f.store.findDelay = 20 * time.Millisecond

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Water(ctx, "bob", "alice")
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case !grerrors.IsConflict(err):
			t.Errorf("unexpected error %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("%d waterings succeeded, want 1", ok)
	}
	if got := len(f.store.waterings); got != 1 {
		t.Errorf("stored %d waterings, want 1", got)
	}
}

func TestWaterMetrics(t *testing.T) {
	m := metrics.New()
	store := newMemStore()
	svc := NewService(store, Options{Clock: &stepClock{t: base}, Metrics: m})
	ctx := context.Background()
	for _, id := range []string{"alice", "bob"} {
		if _, err := svc.AddUser(ctx, id, id, ""); err != nil {
			t.Fatalf("AddUser(%s): %v", id, err)
		}
	}

	svc.Water(ctx, "bob", "alice")
	svc.Water(ctx, "bob", "alice")
	svc.Water(ctx, "bob", "bob")
	store.fail["FindWatering"] = true
	svc.Water(ctx, "alice", "bob")

	for result, want := range map[string]float64{"created": 1, "duplicate": 1, "self": 1, "error": 1} {
		if got := testutil.ToFloat64(m.Waterings.WithLabelValues(result)); got != want {
			t.Errorf("waterings{result=%q} = %v, want %v", result, got, want)
		}
	}
}

func TestWaterStorageConflict(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	// Another process inserts between the lookup and the insert.
	f.store.blindFind = true
	f.store.waterings = append(f.store.waterings, models.Watering{FromUser: "bob", TargetUser: "alice", Day: "2026-05-11"})

	if _, err := f.svc.Water(context.Background(), "bob", "alice"); !grerrors.IsConflict(err) {
		t.Errorf("expected conflict, got %v", err)
	}
	if f.store.calls["AddWatering"] != 1 {
		t.Errorf("expected the insert to be attempted")
	}
}

func TestCheerSnapshotsAndLiveNames(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()

	post, err := f.svc.PostEntry(ctx, PostInput{UserID: "alice", Kind: constants.EntryMorning, Content: "gm", Shared: true})
	if err != nil {
		t.Fatalf("PostEntry: %v", err)
	}
	c, err := f.svc.Cheer(ctx, "bob", post.Entry.ID, constants.PostMorning)
	if err != nil {
		t.Fatalf("Cheer: %v", err)
	}
	if c.ActorName != "Bob" {
		t.Errorf("ActorName = %q", c.ActorName)
	}
	if _, err := f.svc.Cheer(ctx, "bob", post.Entry.ID, constants.PostMorning); err != nil {
		t.Errorf("repeat cheer: %v", err)
	}

	if _, err := f.svc.RenameUser(ctx, "bob", "Robert"); err != nil {
		t.Fatalf("RenameUser: %v", err)
	}
	views, err := f.svc.ListCheers(ctx, "alice", post.Entry.ID, constants.PostMorning)
	if err != nil {
		t.Fatalf("ListCheers: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d cheers, want 2", len(views))
	}
	if views[0].DisplayName != "Robert" || views[0].ActorName != "Bob" {
		t.Errorf("view = %+v, want live name Robert over snapshot Bob", views[0])
	}

	delete(f.store.users, "bob")
	views, err = f.svc.ListCheers(ctx, "alice", post.Entry.ID, constants.PostMorning)
	if err != nil {
		t.Fatalf("ListCheers: %v", err)
	}
	if views[0].DisplayName != "Bob" {
		t.Errorf("DisplayName = %q, want snapshot fallback", views[0].DisplayName)
	}

	f.store.users["bob"] = models.User{ID: "bob", DisplayName: "Robert"}
	f.store.fail["GetUser"] = true
	if _, err := f.svc.ListCheers(ctx, "alice", post.Entry.ID, constants.PostMorning); !grerrors.IsUpstream(err) {
		t.Errorf("expected upstream error, got %v", err)
	}
}

func TestCheerVisibility(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()

	post, err := f.svc.PostEntry(ctx, PostInput{UserID: "alice", Kind: constants.EntryMorning, Content: "private"})
	if err != nil {
		t.Fatalf("PostEntry: %v", err)
	}

	tests := []struct {
		name  string
		actor string
		post  string
		kind  constants.PostKind
		check func(error) bool
	}{
		{"private post from peer", "bob", post.Entry.ID, constants.PostMorning, grerrors.IsNotFound},
		{"kind mismatch", "alice", post.Entry.ID, constants.PostEvening, grerrors.IsNotFound},
		{"unknown post", "bob", "missing", constants.PostMorning, grerrors.IsNotFound},
		{"unknown kind", "bob", post.Entry.ID, "photo", grerrors.IsValidation},
		{"owner cheers own private post", "alice", post.Entry.ID, constants.PostMorning, func(err error) bool { return err == nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Cheer(ctx, tt.actor, tt.post, tt.kind); !tt.check(err) {
				t.Errorf("unexpected error %v", err)
			}
		})
	}

	listTests := []struct {
		name   string
		viewer string
		post   string
		kind   constants.PostKind
		check  func(error) bool
		want   int
	}{
		{"owner lists private cheers", "alice", post.Entry.ID, constants.PostMorning, func(err error) bool { return err == nil }, 1},
		{"peer lists private cheers", "bob", post.Entry.ID, constants.PostMorning, grerrors.IsNotFound, 0},
		{"anonymous lists private cheers", "", post.Entry.ID, constants.PostMorning, grerrors.IsNotFound, 0},
		{"unknown post", "alice", "no-such-post", constants.PostMorning, grerrors.IsNotFound, 0},
		{"kind mismatch", "alice", post.Entry.ID, constants.PostEvening, grerrors.IsNotFound, 0},
		{"unknown kind", "alice", post.Entry.ID, "photo", grerrors.IsValidation, 0},
	}
	for _, tt := range listTests {
		t.Run("list "+tt.name, func(t *testing.T) {
			views, err := f.svc.ListCheers(ctx, tt.viewer, tt.post, tt.kind)
			if !tt.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
			if len(views) != tt.want {
				t.Errorf("got %d cheers, want %d", len(views), tt.want)
			}
		})
	}
}

func TestCheerGoal(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()

	g, err := f.svc.SetGoal(ctx, GoalInput{UserID: "alice", Period: constants.GoalWeekly, Text: "walk daily", Shared: true})
	if err != nil {
		t.Fatalf("SetGoal: %v", err)
	}
	if _, err := f.svc.Cheer(ctx, "bob", g.ID, constants.PostGoal); err != nil {
		t.Errorf("Cheer goal: %v", err)
	}
}

func TestAnnotate(t *testing.T) {
	f := newFixture(t, "alice", "coach")
	ctx := context.Background()

	first, err := f.svc.Annotate(ctx, AnnotateInput{CoachID: "coach", UserID: "alice", Day: "2026-05-10", Prompt: "What went well?"})
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	second, err := f.svc.Annotate(ctx, AnnotateInput{CoachID: "coach", UserID: "alice", Day: "2026-05-10", Correction: "Sleep earlier"})
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if second.ID != first.ID || second.Prompt != "" || second.Correction != "Sleep earlier" {
		t.Errorf("last write should win in place: %+v", second)
	}

	got, err := f.svc.GetAnnotation(ctx, "alice", "2026-05-10")
	if err != nil || got.Correction != "Sleep earlier" {
		t.Errorf("GetAnnotation = %+v, %v", got, err)
	}

	long := make([]rune, constants.MaxAnnotationRunes+1)
	for i := range long {
		long[i] = 'a'
	}
	tests := []struct {
		name string
		in   AnnotateInput
	}{
		{"both empty", AnnotateInput{CoachID: "coach", UserID: "alice", Day: "2026-05-10"}},
		{"too long", AnnotateInput{CoachID: "coach", UserID: "alice", Day: "2026-05-10", Prompt: string(long)}},
		{"bad day", AnnotateInput{CoachID: "coach", UserID: "alice", Day: "05/10/2026", Prompt: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Annotate(ctx, tt.in); !grerrors.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}

	if _, err := f.svc.GetAnnotation(ctx, "alice", "2026-05-09"); !grerrors.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestSetGoalPeriodKeys(t *testing.T) {
	f := newFixture(t, "alice")
	ctx := context.Background()

	weekly, err := f.svc.SetGoal(ctx, GoalInput{UserID: "alice", Period: constants.GoalWeekly, Text: "stretch"})
	if err != nil {
		t.Fatalf("SetGoal: %v", err)
	}
	if weekly.PeriodKey != "2026-W20" {
		t.Errorf("weekly key = %s, want 2026-W20", weekly.PeriodKey)
	}
	monthly, err := f.svc.SetGoal(ctx, GoalInput{UserID: "alice", Period: constants.GoalMonthly, Text: "read two books"})
	if err != nil {
		t.Fatalf("SetGoal: %v", err)
	}
	if monthly.PeriodKey != "2026-05" {
		t.Errorf("monthly key = %s, want 2026-05", monthly.PeriodKey)
	}

	again, err := f.svc.SetGoal(ctx, GoalInput{UserID: "alice", Period: constants.GoalWeekly, Text: "stretch twice"})
	if err != nil {
		t.Fatalf("SetGoal: %v", err)
	}
	if again.ID != weekly.ID {
		t.Error("upsert should keep the goal ID within a period")
	}
	got, err := f.svc.GetGoal(ctx, "alice", constants.GoalWeekly)
	if err != nil || got.Text != "stretch twice" {
		t.Errorf("GetGoal = %+v, %v", got, err)
	}

	if _, err := f.svc.SetGoal(ctx, GoalInput{UserID: "alice", Period: "daily", Text: "x"}); !grerrors.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t, "alice")
	ctx := context.Background()

	empty, err := f.svc.Health(ctx, "alice")
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if empty.Score != 0 || empty.DaysSinceActivity != nil {
		t.Errorf("new user health = %+v", empty)
	}

	if _, err := f.svc.PostEntry(ctx, PostInput{UserID: "alice", Kind: constants.EntryMorning, Content: "gm"}); err != nil {
		t.Fatalf("PostEntry: %v", err)
	}
	h, err := f.svc.Health(ctx, "alice")
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	// 1/14 * 40 + 1/60 * 30 + 100 * 0.3 = 33.36
	if h.Score != 33 || h.Tier != "risk" {
		t.Errorf("Score = %d (%s), want 33 (risk)", h.Score, h.Tier)
	}
	if h.Input.MorningCount7 != 1 || h.Input.MorningCount30 != 1 || h.Input.NightCount7 != 0 {
		t.Errorf("input = %+v", h.Input)
	}
}

func TestHealthReadFailureReturnsNoScore(t *testing.T) {
	for _, method := range []string{"CountEntries", "LatestEntry"} {
		t.Run(method, func(t *testing.T) {
			f := newFixture(t, "alice")
			f.store.fail[method] = true

			h, err := f.svc.Health(context.Background(), "alice")
			if !grerrors.IsUpstream(err) {
				t.Fatalf("expected upstream error, got %v", err)
			}
			if h != (HealthView{}) {
				t.Errorf("partial view returned: %+v", h)
			}
		})
	}
}

func TestStreak(t *testing.T) {
	f := newFixture(t, "alice")
	ctx := context.Background()

	for _, day := range []string{"2026-05-07", "2026-05-09", "2026-05-10"} {
		f.store.entries[entryKey("alice", day, constants.EntryMorning)] = models.JournalEntry{
			ID: day, UserID: "alice", Kind: constants.EntryMorning, Day: day,
		}
	}

	s, err := f.svc.Streak(ctx, "alice")
	if err != nil {
		t.Fatalf("Streak: %v", err)
	}
	if s.Days != 2 || s.PostedToday || s.Today != "2026-05-11" {
		t.Errorf("streak = %+v, want 2 days pending today", s)
	}

	if _, err := f.svc.PostEntry(ctx, PostInput{UserID: "alice", Kind: constants.EntryMorning, Content: "gm"}); err != nil {
		t.Fatalf("PostEntry: %v", err)
	}
	s, _ = f.svc.Streak(ctx, "alice")
	if s.Days != 3 || !s.PostedToday {
		t.Errorf("streak = %+v, want 3 days", s)
	}

	f.store.fail["EntryDays"] = true
	if _, err := f.svc.Streak(ctx, "alice"); !grerrors.IsUpstream(err) {
		t.Errorf("expected upstream error, got %v", err)
	}
}

func TestForest(t *testing.T) {
	f := newFixture(t, "alice", "bob", "carol")
	ctx := context.Background()

	if _, err := f.svc.PostEntry(ctx, PostInput{UserID: "alice", Kind: constants.EntryMorning, Content: "gm"}); err != nil {
		t.Fatalf("PostEntry: %v", err)
	}
	if _, err := f.svc.Water(ctx, "bob", "alice"); err != nil {
		t.Fatalf("Water: %v", err)
	}

	forest, err := f.svc.Forest(ctx)
	if err != nil {
		t.Fatalf("Forest: %v", err)
	}
	if forest.Month != "2026-05" || forest.DaysInMonth != 31 || forest.DayOfMonth != 11 {
		t.Errorf("calendar = %s %d/%d", forest.Month, forest.DayOfMonth, forest.DaysInMonth)
	}
	if len(forest.Trees) != 1 || forest.Trees[0].UserID != "alice" {
		t.Fatalf("trees = %+v, want only alice", forest.Trees)
	}
	// round(1/31*100) = 3, no bonus below three waterings, active today.
	if forest.Trees[0].Progress != 3 || forest.Trees[0].WaterReceived != 1 {
		t.Errorf("alice = %+v", forest.Trees[0])
	}
	if forest.Hidden != 2 {
		t.Errorf("Hidden = %d, want 2", forest.Hidden)
	}
	if forest.MVP == nil || forest.MVP.UserID != "bob" || forest.MVP.Given != 1 {
		t.Errorf("MVP = %+v, want bob with 1", forest.MVP)
	}
}

func TestForestNoMVPWithoutWaterings(t *testing.T) {
	f := newFixture(t, "alice", "bob")

	forest, err := f.svc.Forest(context.Background())
	if err != nil {
		t.Fatalf("Forest: %v", err)
	}
	if forest.MVP != nil {
		t.Errorf("MVP = %+v, want none", forest.MVP)
	}
	if len(forest.Trees) != 0 {
		t.Errorf("trees = %+v, want none visible", forest.Trees)
	}
}

func TestForestCacheFlushedByWrites(t *testing.T) {
	f := newFixture(t, "alice", "bob", "carol")
	ctx := context.Background()

	if _, err := f.svc.PostEntry(ctx, PostInput{UserID: "alice", Kind: constants.EntryMorning, Content: "gm"}); err != nil {
		t.Fatalf("PostEntry: %v", err)
	}
	if _, err := f.svc.Forest(ctx); err != nil {
		t.Fatalf("Forest: %v", err)
	}
	if _, err := f.svc.Forest(ctx); err != nil {
		t.Fatalf("Forest: %v", err)
	}
	if got := f.store.calls["ListUsers"]; got != 1 {
		t.Errorf("ListUsers called %d times, want 1 (cached)", got)
	}

	if _, err := f.svc.Water(ctx, "carol", "alice"); err != nil {
		t.Fatalf("Water: %v", err)
	}
	forest, err := f.svc.Forest(ctx)
	if err != nil {
		t.Fatalf("Forest: %v", err)
	}
	if f.store.calls["ListUsers"] != 2 {
		t.Errorf("watering should flush the cached forest")
	}
	if forest.MVP == nil || forest.MVP.UserID != "carol" {
		t.Errorf("MVP = %+v, want carol", forest.MVP)
	}

	f.clock.Add(2 * time.Minute)
	if _, err := f.svc.Forest(ctx); err != nil {
		t.Fatalf("Forest: %v", err)
	}
	if f.store.calls["ListUsers"] != 3 {
		t.Errorf("expired entry should be recomputed")
	}
}

func TestForestReadFailure(t *testing.T) {
	for _, method := range []string{"ListUsers", "CountEntries", "LatestEntry", "WateringsReceived", "WateringsGiven"} {
		t.Run(method, func(t *testing.T) {
			f := newFixture(t, "alice")
			f.store.fail[method] = true

			view, err := f.svc.Forest(context.Background())
			if !grerrors.IsUpstream(err) {
				t.Fatalf("expected upstream error, got %v", err)
			}
			if view.Trees != nil || view.MVP != nil {
				t.Errorf("partial view returned: %+v", view)
			}
			if f.cache.Len() != 0 {
				t.Error("failed read was cached")
			}
		})
	}
}
