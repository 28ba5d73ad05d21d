package service

import (
	"context"
	stderr "errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	notifmodel "snapcap/module/notification/model"
	notifsvc "snapcap/module/notification/service"
	postmodel "snapcap/module/post/model"
	"snapcap/tools/errs"
	"snapcap/tools/ids"
)

var postColl = func() *mongo.Collection { return (&postmodel.Post{}).Collection() }

// CreateParams is the validated create input; MediaURL points at the already
// uploaded object.
type CreateParams struct {
	AuthorID  string
	MediaURL  string
	MediaType string
	Caption   string
	Hashtags  []string
	Location  *postmodel.GeoPoint
}

func Create(ctx context.Context, in CreateParams) (*postmodel.Post, error) {
	if in.MediaType != postmodel.MediaImage && in.MediaType != postmodel.MediaVideo {
		return nil, errs.NewValidation("mediaType must be image or video").Wrap()
	}
	p := &postmodel.Post{
		PostID:     ids.GenerateString(),
		AuthorID:   in.AuthorID,
		MediaURL:   in.MediaURL,
		MediaType:  in.MediaType,
		Caption:    in.Caption,
		Hashtags:   in.Hashtags,
		Location:   in.Location,
		Likes:      []string{},
		Comments:   []string{},
		CreateTime: time.Now(),
	}
	if p.Hashtags == nil {
		p.Hashtags = []string{}
	}
	if _, err := postColl().InsertOne(ctx, p); err != nil {
		return nil, errs.Wrap(err)
	}
	return p, nil
}

// GetByID loads one post or 404s.
func GetByID(ctx context.Context, postID string) (*postmodel.Post, error) {
	var p postmodel.Post
	err := postColl().FindOne(ctx, bson.M{"post_id": postID}).Decode(&p)
	if stderr.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound.WrapMsg("post " + postID)
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &p, nil
}

// View bumps the counter and returns the post. A single $inc keeps the bump
// atomic under concurrent viewers.
func View(ctx context.Context, postID string) (*postmodel.Post, error) {
	var p postmodel.Post
	err := postColl().FindOneAndUpdate(ctx,
		bson.M{"post_id": postID},
		bson.M{"$inc": bson.M{"views": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if stderr.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound.WrapMsg("post " + postID)
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &p, nil
}

// likeToggle picks the update for the caller's current like state.
// $addToSet/$pull make the write idempotent: liking twice leaves the same
// state as liking once.
func likeToggle(p *postmodel.Post, userID string) (update bson.M, liked bool) {
	if p.LikedBy(userID) {
		return bson.M{"$pull": bson.M{"likes": userID}}, false
	}
	return bson.M{"$addToSet": bson.M{"likes": userID}}, true
}

// ToggleLike flips the caller's like. Returns the resulting liked flag and
// like count.
func ToggleLike(ctx context.Context, postID, userID string) (liked bool, likes int, err error) {
	p, err := GetByID(ctx, postID)
	if err != nil {
		return false, 0, err
	}

	update, liked := likeToggle(p, userID)

	var after postmodel.Post
	err = postColl().FindOneAndUpdate(ctx,
		bson.M{"post_id": postID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&after)
	if err != nil {
		return false, 0, errs.Wrap(err)
	}

	if liked {
		_, _ = notifsvc.Notify(ctx, notifsvc.Params{
			Recipient: after.AuthorID,
			Type:      notifmodel.TypeLike,
			FromUser:  userID,
			PostID:    postID,
		})
	}
	return liked, len(after.Likes), nil
}

// Share bumps the share counter.
func Share(ctx context.Context, postID string) error {
	res, err := postColl().UpdateOne(ctx,
		bson.M{"post_id": postID},
		bson.M{"$inc": bson.M{"shares": 1}},
	)
	if err != nil {
		return errs.Wrap(err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound.WrapMsg("post " + postID)
	}
	return nil
}

// Feed returns posts by the given authors (the caller's following + self),
// newest first.
func Feed(ctx context.Context, authorIDs []string, skip, limit int64) ([]postmodel.Post, error) {
	if len(authorIDs) == 0 {
		return []postmodel.Post{}, nil
	}
	cur, err := postColl().Find(ctx,
		bson.M{"author_id": bson.M{"$in": authorIDs}},
		options.Find().SetSort(bson.M{"create_time": -1}).SetSkip(skip).SetLimit(limit),
	)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	out := []postmodel.Post{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(err)
	}
	return out, nil
}

// MapFeed returns geo-tagged posts inside the given bounding box.
func MapFeed(ctx context.Context, minLat, maxLat, minLng, maxLng float64, limit int64) ([]postmodel.Post, error) {
	cur, err := postColl().Find(ctx,
		bson.M{
			"location":     bson.M{"$ne": nil},
			"location.lat": bson.M{"$gte": minLat, "$lte": maxLat},
			"location.lng": bson.M{"$gte": minLng, "$lte": maxLng},
		},
		options.Find().SetSort(bson.M{"create_time": -1}).SetLimit(limit),
	)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	out := []postmodel.Post{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(err)
	}
	return out, nil
}

// ListByUser returns one author's posts, newest first.
func ListByUser(ctx context.Context, authorID string, skip, limit int64) ([]postmodel.Post, error) {
	cur, err := postColl().Find(ctx,
		bson.M{"author_id": authorID},
		options.Find().SetSort(bson.M{"create_time": -1}).SetSkip(skip).SetLimit(limit),
	)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	out := []postmodel.Post{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(err)
	}
	return out, nil
}

// SearchPosts matches hashtags exactly and captions by substring.
func SearchPosts(ctx context.Context, query string, skip, limit int64) ([]postmodel.Post, error) {
	tag := query
	if len(tag) > 0 && tag[0] != '#' {
		tag = "#" + tag
	}
	filter := bson.M{"$or": bson.A{
		bson.M{"hashtags": tag},
		bson.M{"caption": bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}},
	}}
	cur, err := postColl().Find(ctx, filter,
		options.Find().SetSort(bson.M{"create_time": -1}).SetSkip(skip).SetLimit(limit))
	if err != nil {
		return nil, errs.Wrap(err)
	}
	out := []postmodel.Post{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(err)
	}
	return out, nil
}

// AttachComment records a comment reference on the post.
func AttachComment(ctx context.Context, postID, commentID string) error {
	_, err := postColl().UpdateOne(ctx,
		bson.M{"post_id": postID},
		bson.M{"$addToSet": bson.M{"comments": commentID}},
	)
	return errs.Wrap(err)
}

// DetachComment removes a comment reference.
func DetachComment(ctx context.Context, postID, commentID string) error {
	_, err := postColl().UpdateOne(ctx,
		bson.M{"post_id": postID},
		bson.M{"$pull": bson.M{"comments": commentID}},
	)
	return errs.Wrap(err)
}
