package service

import (
	"context"
	stderr "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	notifmodel "snapcap/module/notification/model"
	notifsvc "snapcap/module/notification/service"
	storymodel "snapcap/module/story/model"
	"snapcap/tools/errs"
	"snapcap/tools/ids"
)

var storyColl = func() *mongo.Collection { return (&storymodel.Story{}).Collection() }

type CreateParams struct {
	AuthorID  string
	MediaURL  string
	MediaType string
	Caption   string
	MusicURL  string
	TextOver  string
}

func Create(ctx context.Context, in CreateParams) (*storymodel.Story, error) {
	now := time.Now()
	s := &storymodel.Story{
		StoryID:    ids.GenerateString(),
		AuthorID:   in.AuthorID,
		MediaURL:   in.MediaURL,
		MediaType:  in.MediaType,
		Caption:    in.Caption,
		MusicURL:   in.MusicURL,
		TextOver:   in.TextOver,
		Viewers:    []string{},
		ExpiresAt:  now.Add(storymodel.DefaultTTL),
		CreateTime: now,
	}
	if _, err := storyColl().InsertOne(ctx, s); err != nil {
		return nil, errs.Wrap(err)
	}
	return s, nil
}

func GetByID(ctx context.Context, storyID string) (*storymodel.Story, error) {
	var s storymodel.Story
	err := storyColl().FindOne(ctx, bson.M{"story_id": storyID}).Decode(&s)
	if stderr.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound.WrapMsg("story " + storyID)
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}
	if s.Expired(time.Now()) {
		return nil, errs.ErrNotFound.WrapMsg("story " + storyID + " expired")
	}
	return &s, nil
}

// FeedFor returns unexpired stories by the given authors, newest first,
// grouped client-side.
func FeedFor(ctx context.Context, authorIDs []string, skip, limit int64) ([]storymodel.Story, error) {
	if len(authorIDs) == 0 {
		return []storymodel.Story{}, nil
	}
	cur, err := storyColl().Find(ctx,
		bson.M{
			"author_id":  bson.M{"$in": authorIDs},
			"expires_at": bson.M{"$gt": time.Now()},
		},
		options.Find().SetSort(bson.M{"create_time": -1}).SetSkip(skip).SetLimit(limit),
	)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	out := []storymodel.Story{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(err)
	}
	return out, nil
}

// MarkViewed records the viewer once ($addToSet) and notifies the author on
// the first view only.
func MarkViewed(ctx context.Context, storyID, viewerID string) (*storymodel.Story, error) {
	s, err := GetByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	already := false
	for _, v := range s.Viewers {
		if v == viewerID {
			already = true
			break
		}
	}

	var after storymodel.Story
	err = storyColl().FindOneAndUpdate(ctx,
		bson.M{"story_id": storyID},
		bson.M{"$addToSet": bson.M{"viewers": viewerID}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&after)
	if err != nil {
		return nil, errs.Wrap(err)
	}

	if !already {
		_, _ = notifsvc.Notify(ctx, notifsvc.Params{
			Recipient: after.AuthorID,
			Type:      notifmodel.TypeStoryView,
			FromUser:  viewerID,
			StoryID:   storyID,
		})
	}
	return &after, nil
}

// SweepExpired deletes stories past their expiry; run periodically.
func SweepExpired(ctx context.Context) (int64, error) {
	res, err := storyColl().DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": time.Now()}})
	if err != nil {
		return 0, errs.Wrap(err)
	}
	return res.DeletedCount, nil
}
