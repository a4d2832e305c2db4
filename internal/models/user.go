package models

import "time"

// User is a journal author. DisplayName and AvatarURL are copied onto social
// records at write time.
type User struct {
	ID          string    `json:"id" bson:"_id"`
	DisplayName string    `json:"display_name" bson:"displayName"`
	AvatarURL   string    `json:"avatar_url,omitempty" bson:"avatarUrl,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updatedAt"`
}
