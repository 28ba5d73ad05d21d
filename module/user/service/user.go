package service

import (
	"context"
	stderr "errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	usermodel "snapcap/module/user/model"
	"snapcap/tools/errs"
	"snapcap/tools/ids"
)

var userColl = func() *mongo.Collection { return (&usermodel.User{}).Collection() }

// RegisterParams is the validated registration input.
type RegisterParams struct {
	Username string
	Email    string
	Password string
}

// Register creates the account. Unique username/email collisions come back as
// a 400 naming the offending field.
func Register(ctx context.Context, in RegisterParams) (*usermodel.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errs.Wrap(err)
	}

	now := time.Now()
	u := &usermodel.User{
		UserID:       ids.GenerateString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Followers:    []string{},
		Following:    []string{},
		Blocked:      []string{},
		CreateTime:   now,
		UpdateTime:   now,
	}

	if _, err := userColl().InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, errs.NewDuplicate(duplicateField(err)).Wrap()
		}
		return nil, errs.Wrap(err)
	}
	return u, nil
}

// duplicateField guesses which unique index collided from the error text.
func duplicateField(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "email"):
		return "email"
	case strings.Contains(msg, "username"):
		return "username"
	default:
		return "field"
	}
}

// Login checks credentials and bumps the daily streak on success.
func Login(ctx context.Context, usernameOrEmail, password string) (*usermodel.User, error) {
	var u usermodel.User
	err := userColl().FindOne(ctx, bson.M{
		"$or": bson.A{
			bson.M{"username": usernameOrEmail},
			bson.M{"email": usernameOrEmail},
		},
	}).Decode(&u)
	if stderr.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NewValidation("Invalid credentials").Wrap()
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, errs.NewValidation("Invalid credentials").Wrap()
	}

	if upd, changed := NextStreak(u.Streak, time.Now().UTC()); changed {
		u.Streak = upd
		_, _ = userColl().UpdateOne(ctx,
			bson.M{"user_id": u.UserID},
			bson.M{"$set": bson.M{"streak": upd, "update_time": time.Now()}},
		)
	}
	return &u, nil
}

// NextStreak advances the streak for activity on day `now`. Same-day repeats
// do not change it; a gap of more than one day resets to 1.
func NextStreak(s usermodel.Streak, now time.Time) (usermodel.Streak, bool) {
	today := now.Format("2006-01-02")
	if s.LastActiveDay == today {
		return s, false
	}
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")
	if s.LastActiveDay == yesterday {
		return usermodel.Streak{Count: s.Count + 1, LastActiveDay: today}, true
	}
	return usermodel.Streak{Count: 1, LastActiveDay: today}, true
}

// GetByID loads one user or 404s.
func GetByID(ctx context.Context, userID string) (*usermodel.User, error) {
	var u usermodel.User
	err := userColl().FindOne(ctx, bson.M{"user_id": userID}).Decode(&u)
	if stderr.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound.WrapMsg("user " + userID)
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &u, nil
}

// GetByUsername loads one user by exact username.
func GetByUsername(ctx context.Context, username string) (*usermodel.User, error) {
	var u usermodel.User
	err := userColl().FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if stderr.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound.WrapMsg("user @" + username)
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &u, nil
}

// ProfileUpdate carries optional profile edits; nil fields stay untouched.
type ProfileUpdate struct {
	DisplayName *string
	Bio         *string
	AvatarURL   *string
	Location    *usermodel.Location
}

func UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*usermodel.User, error) {
	set := bson.M{"update_time": time.Now()}
	if in.DisplayName != nil {
		set["display_name"] = *in.DisplayName
	}
	if in.Bio != nil {
		set["bio"] = *in.Bio
	}
	if in.AvatarURL != nil {
		set["avatar_url"] = *in.AvatarURL
	}
	if in.Location != nil {
		set["location"] = in.Location
	}

	var u usermodel.User
	err := userColl().FindOneAndUpdate(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if stderr.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound.WrapMsg("user " + userID)
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &u, nil
}

// Follow adds target to follower/following sets. $addToSet keeps repeats
// idempotent. Following yourself is rejected.
func Follow(ctx context.Context, userID, targetID string) error {
	if userID == targetID {
		return errs.NewValidation("cannot follow yourself").Wrap()
	}
	if _, err := GetByID(ctx, targetID); err != nil {
		return err
	}
	now := time.Now()
	if _, err := userColl().UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$addToSet": bson.M{"following": targetID}, "$set": bson.M{"update_time": now}},
	); err != nil {
		return errs.Wrap(err)
	}
	_, err := userColl().UpdateOne(ctx,
		bson.M{"user_id": targetID},
		bson.M{"$addToSet": bson.M{"followers": userID}, "$set": bson.M{"update_time": now}},
	)
	return errs.Wrap(err)
}

func Unfollow(ctx context.Context, userID, targetID string) error {
	now := time.Now()
	if _, err := userColl().UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$pull": bson.M{"following": targetID}, "$set": bson.M{"update_time": now}},
	); err != nil {
		return errs.Wrap(err)
	}
	_, err := userColl().UpdateOne(ctx,
		bson.M{"user_id": targetID},
		bson.M{"$pull": bson.M{"followers": userID}, "$set": bson.M{"update_time": now}},
	)
	return errs.Wrap(err)
}

// Block severs the relationship both ways and records the block.
func Block(ctx context.Context, userID, targetID string) error {
	if userID == targetID {
		return errs.NewValidation("cannot block yourself").Wrap()
	}
	if err := Unfollow(ctx, userID, targetID); err != nil {
		return err
	}
	if err := Unfollow(ctx, targetID, userID); err != nil {
		return err
	}
	_, err := userColl().UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$addToSet": bson.M{"blocked": targetID}, "$set": bson.M{"update_time": time.Now()}},
	)
	return errs.Wrap(err)
}

func Unblock(ctx context.Context, userID, targetID string) error {
	_, err := userColl().UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$pull": bson.M{"blocked": targetID}, "$set": bson.M{"update_time": time.Now()}},
	)
	return errs.Wrap(err)
}

// SetOnline flips the persisted online flag; last seen is stamped on offline.
func SetOnline(ctx context.Context, userID string, online bool) error {
	set := bson.M{"is_online": online, "update_time": time.Now()}
	if !online {
		set["last_seen"] = time.Now()
	}
	_, err := userColl().UpdateOne(ctx, bson.M{"user_id": userID}, bson.M{"$set": set})
	return errs.Wrap(err)
}

// Search matches username/display name by case-insensitive prefix.
func Search(ctx context.Context, query string, skip, limit int64) ([]usermodel.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": bson.M{"$regex": "^" + regexp.QuoteMeta(query), "$options": "i"}},
		bson.M{"display_name": bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}},
	}}
	cur, err := userColl().Find(ctx, filter,
		options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.M{"username": 1}))
	if err != nil {
		return nil, errs.Wrap(err)
	}
	var out []usermodel.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(err)
	}
	return out, nil
}

// ListByIDs loads a batch of users preserving no particular order.
func ListByIDs(ctx context.Context, userIDs []string) ([]usermodel.User, error) {
	if len(userIDs) == 0 {
		return []usermodel.User{}, nil
	}
	cur, err := userColl().Find(ctx, bson.M{"user_id": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, errs.Wrap(err)
	}
	var out []usermodel.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(err)
	}
	return out, nil
}

// EnsureIndexes creates the unique username/email indexes at startup.
func EnsureIndexes(ctx context.Context) error {
	_, err := userColl().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.M{"user_id": 1}, Options: options.Index().SetUnique(true)},
		{Keys: bson.M{"username": 1}, Options: options.Index().SetUnique(true)},
		{Keys: bson.M{"email": 1}, Options: options.Index().SetUnique(true)},
	})
	return errs.Wrap(err)
}
