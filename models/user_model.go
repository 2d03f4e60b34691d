package models

type User struct {
	ID                   string   `json:"id" bson:"_id,omitempty"`
	PublicID             string   `json:"public_id" bson:"public_id"`
	Username             string   `json:"username" bson:"username"`
	Email                string   `json:"email" bson:"email"`
	Name                 string   `json:"name" bson:"name"`
	PasswordHash         string   `json:"password_hash" bson:"password_hash"`
	FcmToken             string   `json:"fcm_token" bson:"fcmToken"`
	DaysSubscribed       []string `json:"days_subscribed" bson:"daysSubscribed"`
	HasShownInstructions bool     `json:"has_shown_instructions" bson:"hasShownInstructions"`
	DoneCount            int      `json:"done_count" bson:"doneCount"`
	TotalCount           int      `json:"total_count" bson:"totalCount"`
}
