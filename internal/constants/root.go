package constants

import "time"

// EntryKind identifies which daily journal a post belongs to
type EntryKind string

// PostKind identifies anything that can receive a cheer
type PostKind string

// GoalPeriod identifies the period a goal record is keyed on
type GoalPeriod string

const (
	AppName            = "grove"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/grove"
	DefaultConfigFile  = "grove.yaml"
	DefaultStorePath   = "~/.config/grove/grove.db"
	Version            = "v0.3.0"

	// DateFormat is the day key format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the clock format used for window boundaries (HH:MM)
	TimeFormat = "15:04"

	// MonthFormat is the monthly period key format (YYYY-MM)
	MonthFormat = "2006-01"

	// TimestampFormat is how SQLite stores instants. Fixed width and always UTC,
	// so string comparison orders the same as time comparison.
	TimestampFormat = "2006-01-02T15:04:05.000000000Z"

	// Entry kinds
	EntryMorning EntryKind = "morning"
	EntryEvening EntryKind = "evening"

	// Post kinds
	PostMorning PostKind = "morning"
	PostEvening PostKind = "evening"
	PostGoal    PostKind = "goal"

	// Goal periods
	GoalWeekly  GoalPeriod = "weekly"
	GoalMonthly GoalPeriod = "monthly"

	// Validation limits
	MaxContentRunes    = 4000
	MaxAnnotationRunes = 280
	MaxGoalRunes       = 500
	MaxNameRunes       = 64
	MinScore           = 1
	MaxScore           = 10

	// Reference clock defaults
	DefaultUTCOffsetHours  = 9
	DefaultMorningOpen     = "06:00"
	DefaultMorningClose    = "09:00"
	DefaultEveningOpen     = "18:00"
	DefaultEveningClose    = "24:00"
	DefaultStreakLookback  = 100
	DefaultBackupRetention = 14

	// Server defaults
	DefaultHTTPAddr       = "127.0.0.1:8080"
	DefaultRequestTimeout = 10 * time.Second
	DefaultCacheTTL       = 30 * time.Second
	UserHeader            = "X-Grove-User"
	ServeLockfileName     = "serve.lock"

	// Lock defaults
	WaterLockTTL       = 5 * time.Second
	WaterLockRetryWait = 25 * time.Millisecond

	// Trailing windows used by the engagement read models
	ShortWindowDays = 7
	LongWindowDays  = 30
	MVPWindowDays   = 7
)

// Valid reports whether k is a known entry kind.
func (k EntryKind) Valid() bool {
	return k == EntryMorning || k == EntryEvening
}

// Valid reports whether k is a known post kind.
func (k PostKind) Valid() bool {
	return k == PostMorning || k == PostEvening || k == PostGoal
}

// Valid reports whether p is a known goal period.
func (p GoalPeriod) Valid() bool {
	return p == GoalWeekly || p == GoalMonthly
}
