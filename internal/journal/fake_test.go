package journal

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/julianstephens/grove/internal/constants"
	"github.com/julianstephens/grove/internal/models"
	"github.com/julianstephens/grove/internal/storage"
)

var errBoom = errors.New("boom")

// memStore is an in-memory storage.Provider. Set fail[method] to make that
// method return errBoom.
type memStore struct {
	mu          sync.Mutex
	users       map[string]models.User
	entries     map[string]models.JournalEntry
	waterings   []models.Watering
	cheers      []models.Cheer
	annotations map[string]models.CoachingAnnotation
	goals       map[string]models.Goal
	fail        map[string]bool
	calls       map[string]int
	// blindFind makes FindWatering miss, as if a concurrent insert landed after it.
	blindFind bool
	// looseWaterings drops the unique key on waterings so only the service's
	// lock keeps pairs unique. findDelay widens the lookup-to-insert gap.
	looseWaterings bool
	findDelay      time.Duration
}

var _ storage.Provider = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[string]models.User),
		entries:     make(map[string]models.JournalEntry),
		annotations: make(map[string]models.CoachingAnnotation),
		goals:       make(map[string]models.Goal),
		fail:        make(map[string]bool),
		calls:       make(map[string]int),
	}
}

func (m *memStore) hit(method string) error {
	m.calls[method]++
	if m.fail[method] {
		return errBoom
	}
	return nil
}

func (m *memStore) Init(context.Context) error { return nil }
func (m *memStore) Load(context.Context) error { return nil }
func (m *memStore) Close() error               { return nil }
func (m *memStore) Ping(context.Context) error { return nil }
func (m *memStore) Describe() string           { return "memory" }

func (m *memStore) AddUser(_ context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("AddUser"); err != nil {
		return err
	}
	if _, ok := m.users[u.ID]; ok {
		return storage.ErrConflict
	}
	m.users[u.ID] = u
	return nil
}

func (m *memStore) GetUser(_ context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("GetUser"); err != nil {
		return models.User{}, err
	}
	u, ok := m.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (m *memStore) ListUsers(context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("ListUsers"); err != nil {
		return nil, err
	}
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) UpdateUser(_ context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("UpdateUser"); err != nil {
		return err
	}
	if _, ok := m.users[u.ID]; !ok {
		return storage.ErrNotFound
	}
	m.users[u.ID] = u
	return nil
}

func entryKey(userID, day string, kind constants.EntryKind) string {
	return userID + "|" + day + "|" + string(kind)
}

func (m *memStore) UpsertEntry(_ context.Context, e models.JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("UpsertEntry"); err != nil {
		return err
	}
	k := entryKey(e.UserID, e.Day, e.Kind)
	if prev, ok := m.entries[k]; ok {
		e.ID = prev.ID
		e.CreatedAt = prev.CreatedAt
	}
	m.entries[k] = e
	return nil
}

func (m *memStore) GetEntry(_ context.Context, userID, day string, kind constants.EntryKind) (models.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("GetEntry"); err != nil {
		return models.JournalEntry{}, err
	}
	e, ok := m.entries[entryKey(userID, day, kind)]
	if !ok {
		return models.JournalEntry{}, storage.ErrNotFound
	}
	return e, nil
}

func (m *memStore) GetEntryByID(_ context.Context, id string) (models.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("GetEntryByID"); err != nil {
		return models.JournalEntry{}, err
	}
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return models.JournalEntry{}, storage.ErrNotFound
}

func (m *memStore) CountEntries(_ context.Context, userID string, kind constants.EntryKind, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("CountEntries"); err != nil {
		return 0, err
	}
	n := 0
	for _, e := range m.entries {
		if e.UserID == userID && e.Kind == kind && !e.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) LatestEntry(_ context.Context, userID string, kind constants.EntryKind) (models.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("LatestEntry"); err != nil {
		return models.JournalEntry{}, err
	}
	var best *models.JournalEntry
	for _, e := range m.entries {
		if e.UserID != userID || e.Kind != kind {
			continue
		}
		if best == nil || e.CreatedAt.After(best.CreatedAt) {
			e := e
			best = &e
		}
	}
	if best == nil {
		return models.JournalEntry{}, storage.ErrNotFound
	}
	return *best, nil
}

func (m *memStore) EntryDays(_ context.Context, userID string, kind constants.EntryKind, sinceDay string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("EntryDays"); err != nil {
		return nil, err
	}
	var days []string
	for _, e := range m.entries {
		if e.UserID == userID && e.Kind == kind && e.Day >= sinceDay {
			days = append(days, e.Day)
		}
	}
	sort.Strings(days)
	return days, nil
}

func (m *memStore) AddWatering(_ context.Context, w models.Watering) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("AddWatering"); err != nil {
		return err
	}
	for _, x := range m.waterings {
		if !m.looseWaterings && x.FromUser == w.FromUser && x.TargetUser == w.TargetUser && x.Day == w.Day {
			return storage.ErrConflict
		}
	}
	m.waterings = append(m.waterings, w)
	return nil
}

func (m *memStore) FindWatering(_ context.Context, from, target, day string) (models.Watering, error) {
	w, err := m.findWatering(from, target, day)
	if m.findDelay > 0 {
		time.Sleep(m.findDelay)
	}
	return w, err
}

func (m *memStore) findWatering(from, target, day string) (models.Watering, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("FindWatering"); err != nil {
		return models.Watering{}, err
	}
	if m.blindFind {
		return models.Watering{}, storage.ErrNotFound
	}
	for _, x := range m.waterings {
		if x.FromUser == from && x.TargetUser == target && x.Day == day {
			return x, nil
		}
	}
	return models.Watering{}, storage.ErrNotFound
}

func (m *memStore) WateringsReceived(_ context.Context, target string, since time.Time) ([]models.Watering, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("WateringsReceived"); err != nil {
		return nil, err
	}
	var out []models.Watering
	for _, x := range m.waterings {
		if x.TargetUser == target && !x.CreatedAt.Before(since) {
			out = append(out, x)
		}
	}
	return out, nil
}

func (m *memStore) WateringsGiven(_ context.Context, from string, since time.Time) ([]models.Watering, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("WateringsGiven"); err != nil {
		return nil, err
	}
	var out []models.Watering
	for _, x := range m.waterings {
		if x.FromUser == from && !x.CreatedAt.Before(since) {
			out = append(out, x)
		}
	}
	return out, nil
}

func (m *memStore) AddCheer(_ context.Context, c models.Cheer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("AddCheer"); err != nil {
		return err
	}
	m.cheers = append(m.cheers, c)
	return nil
}

func (m *memStore) ListCheers(_ context.Context, postID string) ([]models.Cheer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("ListCheers"); err != nil {
		return nil, err
	}
	var out []models.Cheer
	for _, c := range m.cheers {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) UpsertAnnotation(_ context.Context, a models.CoachingAnnotation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("UpsertAnnotation"); err != nil {
		return err
	}
	m.annotations[a.UserID+"|"+a.Day] = a
	return nil
}

func (m *memStore) GetAnnotation(_ context.Context, userID, day string) (models.CoachingAnnotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("GetAnnotation"); err != nil {
		return models.CoachingAnnotation{}, err
	}
	a, ok := m.annotations[userID+"|"+day]
	if !ok {
		return models.CoachingAnnotation{}, storage.ErrNotFound
	}
	return a, nil
}

func (m *memStore) UpsertGoal(_ context.Context, g models.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("UpsertGoal"); err != nil {
		return err
	}
	m.goals[g.UserID+"|"+string(g.Period)+"|"+g.PeriodKey] = g
	return nil
}

func (m *memStore) GetGoal(_ context.Context, userID string, period constants.GoalPeriod, key string) (models.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("GetGoal"); err != nil {
		return models.Goal{}, err
	}
	g, ok := m.goals[userID+"|"+string(period)+"|"+key]
	if !ok {
		return models.Goal{}, storage.ErrNotFound
	}
	return g, nil
}

func (m *memStore) GetGoalByID(_ context.Context, id string) (models.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("GetGoalByID"); err != nil {
		return models.Goal{}, err
	}
	for _, g := range m.goals {
		if g.ID == id {
			return g, nil
		}
	}
	return models.Goal{}, storage.ErrNotFound
}
