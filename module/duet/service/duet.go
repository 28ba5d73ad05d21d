package service

import (
	"context"
	stderr "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	duetmodel "snapcap/module/duet/model"
	notifmodel "snapcap/module/notification/model"
	notifsvc "snapcap/module/notification/service"
	postsvc "snapcap/module/post/service"
	"snapcap/tools/errs"
	"snapcap/tools/ids"
)

var duetColl = func() *mongo.Collection { return (&duetmodel.Duet{}).Collection() }

// Create stores the duet and notifies the original post author.
func Create(ctx context.Context, postID, authorID, content string) (*duetmodel.Duet, error) {
	post, err := postsvc.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	d := &duetmodel.Duet{
		DuetID:           ids.GenerateString(),
		PostID:           postID,
		OriginalAuthorID: post.AuthorID,
		AuthorID:         authorID,
		Content:          content,
		CreateTime:       time.Now(),
	}
	if _, err := duetColl().InsertOne(ctx, d); err != nil {
		return nil, errs.Wrap(err)
	}

	_, _ = notifsvc.Notify(ctx, notifsvc.Params{
		Recipient: post.AuthorID,
		Type:      notifmodel.TypeDuet,
		FromUser:  authorID,
		PostID:    postID,
		DuetID:    d.DuetID,
	})
	return d, nil
}

func GetByID(ctx context.Context, duetID string) (*duetmodel.Duet, error) {
	var d duetmodel.Duet
	err := duetColl().FindOne(ctx, bson.M{"duet_id": duetID}).Decode(&d)
	if stderr.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound.WrapMsg("duet " + duetID)
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &d, nil
}

// ListByPost returns a post's duets, newest first.
func ListByPost(ctx context.Context, postID string, skip, limit int64) ([]duetmodel.Duet, error) {
	cur, err := duetColl().Find(ctx,
		bson.M{"post_id": postID},
		options.Find().SetSort(bson.M{"create_time": -1}).SetSkip(skip).SetLimit(limit),
	)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	out := []duetmodel.Duet{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(err)
	}
	return out, nil
}

// Delete removes the duet; caller must have verified ownership.
func Delete(ctx context.Context, duetID string) error {
	res, err := duetColl().DeleteOne(ctx, bson.M{"duet_id": duetID})
	if err != nil {
		return errs.Wrap(err)
	}
	if res.DeletedCount == 0 {
		return errs.ErrNotFound.WrapMsg("duet " + duetID)
	}
	return nil
}
