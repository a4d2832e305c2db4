package engagement

import (
	"math"
	"sort"
	"time"

	"github.com/julianstephens/grove/internal/clock"
)

// Forest growth tuning.
const (
	WaterBonusEvery    = 3
	WaterBonusPoints   = 5
	MaxWaterBonus      = 20
	WitherGraceDays    = 2
	WitherPointsPerDay = 5
	MaxWitherPenalty   = 30
	MinProgress        = -30
	MaxProgress        = 100
)

// GrowthInput is one cohort member's month so far.
type GrowthInput struct {
	UserID                 string
	DisplayName            string
	PostCountThisMonth     int
	DaysInMonth            int
	DayOfMonth             int
	WaterReceivedThisMonth int
	LastPost               *time.Time
	LastWaterReceived      *time.Time
}

// Growth is a member's tree state for the current month.
type Growth struct {
	UserID            string `json:"user_id"`
	DisplayName       string `json:"display_name"`
	PostCount         int    `json:"post_count"`
	WaterReceived     int    `json:"water_received"`
	BaseProgress      int    `json:"base_progress"`
	WaterBonus        int    `json:"water_bonus"`
	WitherPenalty     int    `json:"wither_penalty"`
	DaysSinceActivity int    `json:"days_since_activity"`
	Progress          int    `json:"progress"`
}

// ComputeGrowth applies the monthly base, watering bonus and withering penalty,
// clamped to [MinProgress, MaxProgress].
func ComputeGrowth(in GrowthInput, now time.Time) Growth {
	base := 0
	if in.DaysInMonth > 0 {
		base = int(math.Round(float64(in.PostCountThisMonth) / float64(in.DaysInMonth) * 100))
	}

	bonus := (in.WaterReceivedThisMonth / WaterBonusEvery) * WaterBonusPoints
	if bonus > MaxWaterBonus {
		bonus = MaxWaterBonus
	}
	if bonus < 0 {
		bonus = 0
	}

	daysSince := in.DayOfMonth
	if last := latest(in.LastPost, in.LastWaterReceived); last != nil {
		daysSince = clock.WholeDaysSince(*last, now)
	}

	penalty := WitherPenalty(daysSince)

	progress := base + bonus - penalty
	if progress < MinProgress {
		progress = MinProgress
	} else if progress > MaxProgress {
		progress = MaxProgress
	}

	return Growth{
		UserID:            in.UserID,
		DisplayName:       in.DisplayName,
		PostCount:         in.PostCountThisMonth,
		WaterReceived:     in.WaterReceivedThisMonth,
		BaseProgress:      base,
		WaterBonus:        bonus,
		WitherPenalty:     penalty,
		DaysSinceActivity: daysSince,
		Progress:          progress,
	}
}

// WitherPenalty is 0 for under three idle days, then 5 points per day past the
// two-day grace period, capped at 30.
func WitherPenalty(daysSinceActivity int) int {
	if daysSinceActivity <= WitherGraceDays {
		return 0
	}
	penalty := (daysSinceActivity - WitherGraceDays) * WitherPointsPerDay
	if penalty > MaxWitherPenalty {
		return MaxWitherPenalty
	}
	return penalty
}

// VisibleCohort drops members whose progress is not positive and orders the rest
// by progress, highest first, then by user ID.
func VisibleCohort(growths []Growth) []Growth {
	visible := make([]Growth, 0, len(growths))
	for _, g := range growths {
		if g.Progress > 0 {
			visible = append(visible, g)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].Progress != visible[j].Progress {
			return visible[i].Progress > visible[j].Progress
		}
		return visible[i].UserID < visible[j].UserID
	})
	return visible
}

// SupportTally counts waterings a member gave in the trailing MVP window.
type SupportTally struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Given       int    `json:"given"`
}

// PickMVP returns the member who gave the most waterings. Ties go to the lowest
// user ID. A best count of zero means there is no MVP.
func PickMVP(tallies []SupportTally) (SupportTally, bool) {
	var best SupportTally
	found := false
	for _, t := range tallies {
		if !found || t.Given > best.Given || (t.Given == best.Given && t.UserID < best.UserID) {
			best = t
			found = true
		}
	}
	if !found || best.Given <= 0 {
		return SupportTally{}, false
	}
	return best, true
}

func latest(a, b *time.Time) *time.Time {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.After(*a):
		return b
	default:
		return a
	}
}
