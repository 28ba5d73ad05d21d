package service

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	notifmodel "snapcap/module/notification/model"
	usermodel "snapcap/module/user/model"
	usersvc "snapcap/module/user/service"
	"snapcap/tools/errs"
	"snapcap/tools/ids"
)

var notifColl = func() *mongo.Collection { return (&notifmodel.Notification{}).Collection() }

// Event is the relay payload pushed to the recipient's room as
// `new_notification`. FromUser is a snapshot so clients can render without a
// second fetch.
type Event struct {
	Notification *notifmodel.Notification `json:"notification"`
	FromUser     *UserSummary             `json:"fromUser"`
}

type UserSummary struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

func summarize(u *usermodel.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{UserID: u.UserID, Username: u.Username, AvatarURL: u.AvatarURL}
}

// Relay delivers an event to a recipient's live connections. The gateway and
// the NATS bridge register themselves at startup; registration is process
// lifecycle state, cleared at shutdown via ResetRelays.
type Relay func(recipient string, ev *Event)

var (
	relayMu sync.RWMutex
	relays  []Relay
)

func RegisterRelay(r Relay) {
	relayMu.Lock()
	defer relayMu.Unlock()
	relays = append(relays, r)
}

func ResetRelays() {
	relayMu.Lock()
	defer relayMu.Unlock()
	relays = nil
}

// Params describes one interaction to notify about.
type Params struct {
	Recipient string
	Type      string
	FromUser  string

	PostID    string
	CommentID string
	StoryID   string
	MessageID string
	DuetID    string
}

// ShouldNotify centralizes self-notification suppression: interactions where
// the actor and the recipient are the same user never produce a record or an
// event.
func ShouldNotify(p Params) bool {
	return p.Recipient != "" && p.FromUser != "" && p.Recipient != p.FromUser
}

// Notify persists the notification and relays it to the recipient's room.
// Relay failures are invisible to the caller; the record is the durable part.
func Notify(ctx context.Context, p Params) (*notifmodel.Notification, error) {
	if !ShouldNotify(p) {
		return nil, nil
	}
	if !notifmodel.ValidType(p.Type) {
		return nil, errs.NewValidation("unknown notification type " + p.Type).Wrap()
	}

	n := &notifmodel.Notification{
		NotificationID: ids.GenerateString(),
		Recipient:      p.Recipient,
		Type:           p.Type,
		FromUserID:     p.FromUser,
		PostID:         p.PostID,
		CommentID:      p.CommentID,
		StoryID:        p.StoryID,
		MessageID:      p.MessageID,
		DuetID:         p.DuetID,
		CreateTime:     time.Now(),
	}
	if _, err := notifColl().InsertOne(ctx, n); err != nil {
		return nil, errs.Wrap(err)
	}

	ev := &Event{Notification: n}
	if from, err := usersvc.GetByID(ctx, p.FromUser); err == nil {
		ev.FromUser = summarize(from)
	}

	relayMu.RLock()
	rs := make([]Relay, len(relays))
	copy(rs, relays)
	relayMu.RUnlock()
	for _, r := range rs {
		r(p.Recipient, ev)
	}
	return n, nil
}

// List returns the recipient's notifications, newest first.
func List(ctx context.Context, recipient string, skip, limit int64) ([]notifmodel.Notification, error) {
	cur, err := notifColl().Find(ctx,
		bson.M{"recipient": recipient},
		options.Find().SetSort(bson.M{"create_time": -1}).SetSkip(skip).SetLimit(limit),
	)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	out := []notifmodel.Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(err)
	}
	return out, nil
}

func UnreadCount(ctx context.Context, recipient string) (int64, error) {
	n, err := notifColl().CountDocuments(ctx, bson.M{"recipient": recipient, "is_read": false})
	return n, errs.Wrap(err)
}

// MarkRead marks one notification; only the recipient may do so.
func MarkRead(ctx context.Context, recipient, notificationID string) error {
	res, err := notifColl().UpdateOne(ctx,
		bson.M{"notification_id": notificationID, "recipient": recipient},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return errs.Wrap(err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound.WrapMsg("notification " + notificationID)
	}
	return nil
}

func MarkAllRead(ctx context.Context, recipient string) (int64, error) {
	res, err := notifColl().UpdateMany(ctx,
		bson.M{"recipient": recipient, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return 0, errs.Wrap(err)
	}
	return res.ModifiedCount, nil
}
