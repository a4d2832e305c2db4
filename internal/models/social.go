package models

import (
	"time"

	"github.com/julianstephens/grove/internal/constants"
)

// Watering is one encouragement from FromUser toward TargetUser's forest.
// (FromUser, TargetUser, Day) is unique.
type Watering struct {
	ID         string    `json:"id" bson:"_id"`
	FromUser   string    `json:"from_user" bson:"fromUser"`
	TargetUser string    `json:"target_user" bson:"targetUser"`
	FromName   string    `json:"from_name" bson:"fromName"` // snapshot at write time
	Day        string    `json:"day" bson:"day"`
	CreatedAt  time.Time `json:"created_at" bson:"createdAt"`
}

// Cheer marks support for a single post. Repeats are allowed.
type Cheer struct {
	ID          string             `json:"id" bson:"_id"`
	PostID      string             `json:"post_id" bson:"postId"`
	PostKind    constants.PostKind `json:"post_kind" bson:"postKind"`
	ActorID     string             `json:"actor_id" bson:"actorId"`
	ActorName   string             `json:"actor_name" bson:"actorName"`                         // snapshot at write time
	ActorAvatar string             `json:"actor_avatar,omitempty" bson:"actorAvatar,omitempty"` // snapshot at write time
	CreatedAt   time.Time          `json:"created_at" bson:"createdAt"`
}

// CoachingAnnotation is a coach's note on one user's day. (UserID, Day) is unique; last write wins.
type CoachingAnnotation struct {
	ID         string    `json:"id" bson:"_id"`
	UserID     string    `json:"user_id" bson:"userId"`
	CoachID    string    `json:"coach_id" bson:"coachId"`
	Day        string    `json:"day" bson:"day"`
	Correction string    `json:"correction,omitempty" bson:"correction,omitempty"`
	Prompt     string    `json:"prompt,omitempty" bson:"prompt,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updatedAt"`
}
