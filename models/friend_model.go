package models

const (
	StatusFriend  = "FRIEND"
	StatusPending = "PENDING"
)

// FriendEntry is one side of a relationship as stored inside a user's
// relationship document maps.
type FriendEntry struct {
	Name     string `json:"name" bson:"name"`
	Username string `json:"username" bson:"username"`
	Status   string `json:"status" bson:"status"`
}

// Friend is a resolved relationship returned to callers, with the uid
// lifted out of the map key.
type Friend struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Status   string `json:"status"`
}

// RelationshipDoc holds both directions of a user's friend graph. Friends
// is mirrored on both sides; FriendRequests are incoming, OwnRequests
// outgoing.
type RelationshipDoc struct {
	ID             string                 `json:"id" bson:"_id,omitempty"`
	Friends        map[string]FriendEntry `json:"friends" bson:"friends"`
	FriendRequests map[string]FriendEntry `json:"friend_requests" bson:"friendRequests"`
	OwnRequests    map[string]FriendEntry `json:"own_requests" bson:"ownRequests"`
}

// FriendGroup is a named subset of a user's friends used to scope
// completion notifications.
type FriendGroup struct {
	ID      string                 `json:"id" bson:"_id,omitempty"`
	Owner   string                 `json:"owner" bson:"owner"`
	Name    string                 `json:"name" bson:"group_name"`
	Friends map[string]FriendEntry `json:"friends" bson:"friends"`
}
