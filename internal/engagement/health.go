package engagement

import (
	"math"
	"time"

	"github.com/julianstephens/grove/internal/clock"
)

// Tier is the dashboard band for a health score.
type Tier string

const (
	TierGood    Tier = "good"
	TierWarning Tier = "warning"
	TierRisk    Tier = "risk"
)

// Health score weights. Frequency caps are 2 posts/day over the window.
const (
	Frequency7Weight  = 0.4
	Frequency30Weight = 0.3
	RecencyWeight     = 0.3
	Frequency7Max     = 14
	Frequency30Max    = 60
)

// HealthInput holds the counts the aggregation layer gathers for one user.
// Counts are required; LastActivity is nil when the user has never posted.
type HealthInput struct {
	MorningCount7  int
	NightCount7    int
	MorningCount30 int
	NightCount30   int
	LastActivity   *time.Time
}

// HealthScore is the blended 0-100 engagement metric plus its parts.
type HealthScore struct {
	Score             int     `json:"score"`
	Tier              Tier    `json:"tier"`
	Frequency7        float64 `json:"frequency_7"`
	Frequency30       float64 `json:"frequency_30"`
	Recency           float64 `json:"recency"`
	DaysSinceActivity *int    `json:"days_since_activity,omitempty"`
}

// ScoreHealth blends short and medium term posting frequency with recency.
func ScoreHealth(in HealthInput, now time.Time) HealthScore {
	f7 := percentOf(in.MorningCount7+in.NightCount7, Frequency7Max) * Frequency7Weight
	f30 := percentOf(in.MorningCount30+in.NightCount30, Frequency30Max) * Frequency30Weight

	var recency float64
	var daysSince *int
	if in.LastActivity != nil {
		days := clock.WholeDaysSince(*in.LastActivity, now)
		daysSince = &days
		recency = float64(RecencyValue(days)) * RecencyWeight
	}

	score := int(math.Round(f7 + f30 + recency))
	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}

	return HealthScore{
		Score:             score,
		Tier:              ClassifyTier(score),
		Frequency7:        f7,
		Frequency30:       f30,
		Recency:           recency,
		DaysSinceActivity: daysSince,
	}
}

// RecencyValue maps whole days since the last post onto the recency curve.
func RecencyValue(days int) int {
	switch {
	case days <= 0:
		return 100
	case days == 1:
		return 90
	case days <= 3:
		return 70
	case days <= 7:
		return 50
	case days <= 14:
		return 30
	default:
		return 10
	}
}

// ClassifyTier bands a score: >=70 good, 40-69 warning, <40 risk.
func ClassifyTier(score int) Tier {
	switch {
	case score >= 70:
		return TierGood
	case score >= 40:
		return TierWarning
	default:
		return TierRisk
	}
}

func percentOf(count, max int) float64 {
	if count <= 0 {
		return 0
	}
	return math.Min(float64(count)/float64(max)*100, 100)
}
