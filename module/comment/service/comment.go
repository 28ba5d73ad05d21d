package service

import (
	"context"
	stderr "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	commentmodel "snapcap/module/comment/model"
	notifmodel "snapcap/module/notification/model"
	notifsvc "snapcap/module/notification/service"
	postsvc "snapcap/module/post/service"
	usersvc "snapcap/module/user/service"
	"snapcap/tools/errs"
	"snapcap/tools/ids"
	"snapcap/tools/textx"
)

var commentColl = func() *mongo.Collection { return (&commentmodel.Comment{}).Collection() }

// Create stores the comment, attaches it to the post, notifies the post
// author and anyone @mentioned in the content.
func Create(ctx context.Context, postID, authorID, content string) (*commentmodel.Comment, error) {
	post, err := postsvc.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	cm := &commentmodel.Comment{
		CommentID:  ids.GenerateString(),
		PostID:     postID,
		AuthorID:   authorID,
		Content:    content,
		Likes:      []string{},
		CreateTime: time.Now(),
	}
	if _, err := commentColl().InsertOne(ctx, cm); err != nil {
		return nil, errs.Wrap(err)
	}
	if err := postsvc.AttachComment(ctx, postID, cm.CommentID); err != nil {
		return nil, err
	}

	_, _ = notifsvc.Notify(ctx, notifsvc.Params{
		Recipient: post.AuthorID,
		Type:      notifmodel.TypeComment,
		FromUser:  authorID,
		PostID:    postID,
		CommentID: cm.CommentID,
	})

	for _, username := range textx.ExtractMentions(content) {
		mentioned, err := usersvc.GetByUsername(ctx, username)
		if err != nil {
			continue // unknown handle, not an error
		}
		_, _ = notifsvc.Notify(ctx, notifsvc.Params{
			Recipient: mentioned.UserID,
			Type:      notifmodel.TypeMention,
			FromUser:  authorID,
			PostID:    postID,
			CommentID: cm.CommentID,
		})
	}
	return cm, nil
}

func GetByID(ctx context.Context, commentID string) (*commentmodel.Comment, error) {
	var cm commentmodel.Comment
	err := commentColl().FindOne(ctx, bson.M{"comment_id": commentID}).Decode(&cm)
	if stderr.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound.WrapMsg("comment " + commentID)
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &cm, nil
}

// ListByPost returns a post's comments, oldest first.
func ListByPost(ctx context.Context, postID string, skip, limit int64) ([]commentmodel.Comment, error) {
	cur, err := commentColl().Find(ctx,
		bson.M{"post_id": postID},
		options.Find().SetSort(bson.M{"create_time": 1}).SetSkip(skip).SetLimit(limit),
	)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	out := []commentmodel.Comment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(err)
	}
	return out, nil
}

// ToggleLike mirrors the post like toggle.
func ToggleLike(ctx context.Context, commentID, userID string) (liked bool, likes int, err error) {
	cm, err := GetByID(ctx, commentID)
	if err != nil {
		return false, 0, err
	}
	has := false
	for _, id := range cm.Likes {
		if id == userID {
			has = true
			break
		}
	}
	var update bson.M
	if has {
		update = bson.M{"$pull": bson.M{"likes": userID}}
	} else {
		update = bson.M{"$addToSet": bson.M{"likes": userID}}
		liked = true
	}
	var after commentmodel.Comment
	err = commentColl().FindOneAndUpdate(ctx,
		bson.M{"comment_id": commentID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&after)
	if err != nil {
		return false, 0, errs.Wrap(err)
	}
	return liked, len(after.Likes), nil
}

// Delete removes the comment; caller must have verified ownership.
func Delete(ctx context.Context, commentID string) error {
	cm, err := GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if _, err := commentColl().DeleteOne(ctx, bson.M{"comment_id": commentID}); err != nil {
		return errs.Wrap(err)
	}
	return postsvc.DetachComment(ctx, cm.PostID, commentID)
}
