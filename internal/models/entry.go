package models

import (
	"time"

	"github.com/julianstephens/grove/internal/constants"
)

// JournalEntry is a morning or evening post. At most one exists per (UserID, Day, Kind).
type JournalEntry struct {
	ID        string              `json:"id" bson:"_id"`
	UserID    string              `json:"user_id" bson:"userId"`
	Kind      constants.EntryKind `json:"kind" bson:"kind"`
	Day       string              `json:"day" bson:"day"` // YYYY-MM-DD in the reference timezone
	Content   string              `json:"content" bson:"content"`
	Score     *int                `json:"score,omitempty" bson:"score,omitempty"` // 1-10
	Shared    bool                `json:"shared" bson:"shared"`
	CreatedAt time.Time           `json:"created_at" bson:"createdAt"`
	UpdatedAt time.Time           `json:"updated_at" bson:"updatedAt"`
}
