package service

import (
	"context"
	stderr "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	chatmodel "snapcap/module/chat/model"
	notifmodel "snapcap/module/notification/model"
	notifsvc "snapcap/module/notification/service"
	usersvc "snapcap/module/user/service"
	"snapcap/tools/errs"
	"snapcap/tools/ids"
)

var (
	convColl = func() *mongo.Collection { return (&chatmodel.Conversation{}).Collection() }
	msgColl  = func() *mongo.Collection { return (&chatmodel.Message{}).Collection() }
)

// pair orders two participant ids so one conversation exists per pair.
func pair(a, b string) [2]string {
	if a < b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}

// GetOrCreateConversation returns the pair's conversation, creating it on
// first contact. Blocked pairs cannot converse.
func GetOrCreateConversation(ctx context.Context, userID, otherID string) (*chatmodel.Conversation, error) {
	if userID == otherID {
		return nil, errs.NewValidation("cannot message yourself").Wrap()
	}
	me, err := usersvc.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	other, err := usersvc.GetByID(ctx, otherID)
	if err != nil {
		return nil, err
	}
	if me.IsBlockedEither(other) {
		return nil, errs.ErrBlocked.Wrap()
	}

	p := pair(userID, otherID)
	var conv chatmodel.Conversation
	err = convColl().FindOneAndUpdate(ctx,
		bson.M{"participants": p},
		bson.M{"$setOnInsert": bson.M{
			"conversation_id": ids.GenerateString(),
			"participants":    p,
			"create_time":     time.Now(),
		}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&conv)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &conv, nil
}

// GetConversation loads one conversation the user participates in.
func GetConversation(ctx context.Context, conversationID, userID string) (*chatmodel.Conversation, error) {
	var conv chatmodel.Conversation
	err := convColl().FindOne(ctx, bson.M{"conversation_id": conversationID}).Decode(&conv)
	if stderr.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound.WrapMsg("conversation " + conversationID)
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}
	if !conv.Has(userID) {
		return nil, errs.ErrForbidden.WrapMsg("not a participant")
	}
	return &conv, nil
}

// ListConversations returns the user's threads sorted by last activity.
func ListConversations(ctx context.Context, userID string, skip, limit int64) ([]chatmodel.Conversation, error) {
	cur, err := convColl().Find(ctx,
		bson.M{"participants": userID},
		options.Find().
			SetSort(bson.D{{Key: "last_message_at", Value: -1}, {Key: "create_time", Value: -1}}).
			SetSkip(skip).SetLimit(limit),
	)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	out := []chatmodel.Conversation{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(err)
	}
	return out, nil
}

// SendParams is a validated outgoing message.
type SendParams struct {
	ConversationID string
	SenderID       string
	Content        string
	Type           string
}

// SendMessage appends to the thread, bumps the last-message pointer and
// notifies the receiver.
func SendMessage(ctx context.Context, in SendParams) (*chatmodel.Message, error) {
	if !chatmodel.ValidMsgType(in.Type) {
		return nil, errs.NewValidation("type must be one of text/image/video/audio/file").Wrap()
	}
	if in.Content == "" {
		return nil, errs.NewValidation("content is required").Wrap()
	}

	conv, err := GetConversation(ctx, in.ConversationID, in.SenderID)
	if err != nil {
		return nil, err
	}
	receiver := conv.Other(in.SenderID)

	// block state may have changed since the conversation was created
	me, err := usersvc.GetByID(ctx, in.SenderID)
	if err != nil {
		return nil, err
	}
	other, err := usersvc.GetByID(ctx, receiver)
	if err != nil {
		return nil, err
	}
	if me.IsBlockedEither(other) {
		return nil, errs.ErrBlocked.Wrap()
	}

	now := time.Now()
	m := &chatmodel.Message{
		MessageID:      ids.GenerateString(),
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		ReceiverID:     receiver,
		Content:        in.Content,
		Type:           in.Type,
		IsRead:         false,
		CreateTime:     now,
	}
	if _, err := msgColl().InsertOne(ctx, m); err != nil {
		return nil, errs.Wrap(err)
	}

	preview := in.Content
	if in.Type != chatmodel.MsgText {
		preview = "[" + in.Type + "]"
	}
	if _, err := convColl().UpdateOne(ctx,
		bson.M{"conversation_id": in.ConversationID},
		bson.M{"$set": bson.M{
			"last_message_id": m.MessageID,
			"last_message":    preview,
			"last_message_at": now,
		}},
	); err != nil {
		return nil, errs.Wrap(err)
	}

	_, _ = notifsvc.Notify(ctx, notifsvc.Params{
		Recipient: receiver,
		Type:      notifmodel.TypeMessage,
		FromUser:  in.SenderID,
		MessageID: m.MessageID,
	})
	return m, nil
}

// ListMessages returns a conversation page, oldest first within the page.
func ListMessages(ctx context.Context, conversationID, userID string, skip, limit int64) ([]chatmodel.Message, error) {
	if _, err := GetConversation(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	cur, err := msgColl().Find(ctx,
		bson.M{"conversation_id": conversationID},
		options.Find().SetSort(bson.M{"create_time": 1}).SetSkip(skip).SetLimit(limit),
	)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	out := []chatmodel.Message{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(err)
	}
	return out, nil
}

// MarkRead flips IsRead on every message addressed to userID in the thread.
func MarkRead(ctx context.Context, conversationID, userID string) (int64, error) {
	if _, err := GetConversation(ctx, conversationID, userID); err != nil {
		return 0, err
	}
	res, err := msgColl().UpdateMany(ctx,
		bson.M{"conversation_id": conversationID, "receiver_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return 0, errs.Wrap(err)
	}
	return res.ModifiedCount, nil
}
