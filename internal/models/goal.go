package models

import (
	"time"

	"github.com/julianstephens/grove/internal/constants"
)

// Goal is a weekly or monthly intention. (UserID, Period, PeriodKey) is unique.
type Goal struct {
	ID        string               `json:"id" bson:"_id"`
	UserID    string               `json:"user_id" bson:"userId"`
	Period    constants.GoalPeriod `json:"period" bson:"period"`
	PeriodKey string               `json:"period_key" bson:"periodKey"` // YYYY-Www or YYYY-MM
	Text      string               `json:"text" bson:"text"`
	Shared    bool                 `json:"shared" bson:"shared"`
	CreatedAt time.Time            `json:"created_at" bson:"createdAt"`
	UpdatedAt time.Time            `json:"updated_at" bson:"updatedAt"`
}
