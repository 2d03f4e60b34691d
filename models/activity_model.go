package models

// Activity is a single occurrence of a task on one weekday. Activities
// created together for several days share a LinkGroupID.
type Activity struct {
	ID            string `json:"id" bson:"_id,omitempty"`
	UserID        string `json:"user_id" bson:"uid"`
	Title         string `json:"title" bson:"title"`
	Description   string `json:"description" bson:"description"`
	IsDone        bool   `json:"is_done" bson:"isDone"`
	Day           string `json:"day" bson:"day"`
	LinkGroupID   string `json:"link_group_id" bson:"linkGroupId"`
	FriendGroupID string `json:"friend_group_id" bson:"friendGroupId"`
}

// LinkGroup ties together the sibling activities of one multi-day add.
type LinkGroup struct {
	ID          string   `json:"id" bson:"_id,omitempty"`
	UserID      string   `json:"user_id" bson:"uid"`
	ActivityIDs []string `json:"activity_ids" bson:"activityIds"`
}
