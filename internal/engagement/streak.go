package engagement

import (
	"time"

	"github.com/julianstephens/grove/internal/clock"
)

// CalculateStreak counts consecutive reference days with a morning entry,
// walking back from today. A missing today does not end the streak (it may
// still be posted); any other missing day does.
func CalculateStreak(posted map[string]bool, now time.Time, p clock.Policy, lookback int) int {
	streak := 0
	for i := 0; i < lookback; i++ {
		day := p.DayKey(p.AddDays(now, -i))
		if posted[day] {
			streak++
			continue
		}
		if i == 0 {
			continue
		}
		break
	}
	return streak
}
