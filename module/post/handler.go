package post

import (
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	mid "snapcap/middleware"
	postmodel "snapcap/module/post/model"
	postsvc "snapcap/module/post/service"
	"snapcap/service/caption"
	"snapcap/service/upload"
	"snapcap/tools/errs"
	"snapcap/tools/httpx"
	"snapcap/tools/textx"
)

var (
	mediaStore upload.Store
	captioner  *caption.Generator
)

func Init(store upload.Store, gen *caption.Generator) {
	mediaStore = store
	captioner = gen
}

// HandlerCreate accepts a multipart post: media file plus caption/location
// form fields. With autoCaption=true and no caption given, the AI captioner
// fills it in (canned fallback when unconfigured).
func HandlerCreate(c *gin.Context) {
	up, err := upload.Handle(c, mediaStore, upload.KindPost, "media")
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	capText := c.PostForm("caption")
	var hashtags []string
	for _, raw := range c.PostFormArray("hashtags") {
		if tag := textx.NormalizeHashtag(raw); tag != "" {
			hashtags = append(hashtags, tag)
		}
	}

	var loc *postmodel.GeoPoint
	if latS, lngS := c.PostForm("lat"), c.PostForm("lng"); latS != "" && lngS != "" {
		lat, errLat := strconv.ParseFloat(latS, 64)
		lng, errLng := strconv.ParseFloat(lngS, 64)
		if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			httpx.Fail(c, errs.NewValidation("invalid lat/lng").Wrap())
			return
		}
		loc = &postmodel.GeoPoint{Lat: lat, Lng: lng, Name: c.PostForm("locationName")}
	}

	generated := false
	if capText == "" && c.PostForm("autoCaption") == "true" {
		res := autoCaption(c, up)
		capText = res.Caption
		if len(hashtags) == 0 {
			hashtags = res.Hashtags
		}
		generated = res.Generated
	}

	p, err := postsvc.Create(c.Request.Context(), postsvc.CreateParams{
		AuthorID:  mid.CurrentUserID(c),
		MediaURL:  up.URL,
		MediaType: up.MediaType,
		Caption:   capText,
		Hashtags:  hashtags,
		Location:  loc,
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Created(c, gin.H{"post": p, "captionGenerated": generated})
}

func autoCaption(c *gin.Context, up *upload.Upload) caption.Result {
	cc := caption.Context{
		Location:  c.PostForm("locationName"),
		Mood:      c.PostForm("mood"),
		TimeOfDay: c.PostForm("timeOfDay"),
	}
	var image []byte
	if fh, err := c.FormFile("media"); err == nil && up.MediaType == "image" {
		if f, err := fh.Open(); err == nil {
			image, _ = io.ReadAll(f)
			_ = f.Close()
		}
	}
	return captioner.Generate(c.Request.Context(), image, up.MIME, cc)
}

// HandlerFeed returns posts from followed authors plus the caller's own.
func HandlerFeed(c *gin.Context) {
	page, limit, err := httpx.ParsePage(c)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	me := mid.CurrentUser(c)
	authors := append([]string{me.UserID}, me.Following...)
	posts, err := postsvc.Feed(c.Request.Context(), authors, httpx.Skip(page, limit), int64(limit))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, posts)
}

// HandlerMapFeed returns geo-tagged posts in a bounding box.
func HandlerMapFeed(c *gin.Context) {
	minLat, err1 := strconv.ParseFloat(c.DefaultQuery("minLat", "-90"), 64)
	maxLat, err2 := strconv.ParseFloat(c.DefaultQuery("maxLat", "90"), 64)
	minLng, err3 := strconv.ParseFloat(c.DefaultQuery("minLng", "-180"), 64)
	maxLng, err4 := strconv.ParseFloat(c.DefaultQuery("maxLng", "180"), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		httpx.Fail(c, errs.NewValidation("invalid bounding box").Wrap())
		return
	}
	posts, err := postsvc.MapFeed(c.Request.Context(), minLat, maxLat, minLng, maxLng, 200)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, posts)
}

// HandlerGet returns one post and bumps its view counter.
func HandlerGet(c *gin.Context) {
	p, err := postsvc.View(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, p)
}

// HandlerLike toggles the caller's like; idempotent per state.
func HandlerLike(c *gin.Context) {
	liked, likes, err := postsvc.ToggleLike(c.Request.Context(), c.Param("id"), mid.CurrentUserID(c))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, gin.H{"liked": liked, "likes": likes})
}

func HandlerShare(c *gin.Context) {
	if err := postsvc.Share(c.Request.Context(), c.Param("id")); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OKMsg(c, "shared", nil)
}

// HandlerListByUser returns one author's posts.
func HandlerListByUser(c *gin.Context) {
	page, limit, err := httpx.ParsePage(c)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	posts, err := postsvc.ListByUser(c.Request.Context(), c.Param("id"), httpx.Skip(page, limit), int64(limit))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, posts)
}
