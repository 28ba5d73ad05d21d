package model

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	mgo "snapcap/service/mgo"
)

// Location is a user-reported position shown on the friends map.
type Location struct {
	Lat  float64 `bson:"lat" json:"lat"`
	Lng  float64 `bson:"lng" json:"lng"`
	Name string  `bson:"name,omitempty" json:"name,omitempty"`
}

// Streak counts consecutive days with qualifying activity.
type Streak struct {
	Count         int    `bson:"count" json:"count"`
	LastActiveDay string `bson:"last_active_day,omitempty" json:"lastActiveDay,omitempty"` // YYYY-MM-DD UTC
}

// User is the account master record. PasswordHash is excluded from every JSON
// rendering; handlers return users only through this struct.
type User struct {
	UserID       string `bson:"user_id" json:"userId"` // immutable primary key
	Username     string `bson:"username" json:"username"`
	Email        string `bson:"email" json:"email"`
	PasswordHash string `bson:"password_hash" json:"-"`

	DisplayName string    `bson:"display_name,omitempty" json:"displayName,omitempty"`
	AvatarURL   string    `bson:"avatar_url,omitempty" json:"avatarUrl,omitempty"`
	Bio         string    `bson:"bio,omitempty" json:"bio,omitempty"`
	Location    *Location `bson:"location,omitempty" json:"location,omitempty"`

	IsOnline bool       `bson:"is_online" json:"isOnline"`
	LastSeen *time.Time `bson:"last_seen,omitempty" json:"lastSeen,omitempty"`

	Followers []string `bson:"followers" json:"followers"`
	Following []string `bson:"following" json:"following"`
	Blocked   []string `bson:"blocked" json:"-"`

	Streak Streak `bson:"streak" json:"streak"`

	CreateTime time.Time `bson:"create_time" json:"createdAt"`
	UpdateTime time.Time `bson:"update_time" json:"updatedAt"`
}

func (u *User) GetTableName() string { return "users" }

func (u *User) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(u.GetTableName())
}

// IsBlockedEither reports whether either side has blocked the other.
func (u *User) IsBlockedEither(other *User) bool {
	return contains(u.Blocked, other.UserID) || contains(other.Blocked, u.UserID)
}

// IsFollowing reports whether u follows target.
func (u *User) IsFollowing(target string) bool {
	return contains(u.Following, target)
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
