package story

import (
	"github.com/gin-gonic/gin"

	mid "snapcap/middleware"
	storysvc "snapcap/module/story/service"
	"snapcap/service/upload"
	"snapcap/tools/httpx"
)

var mediaStore upload.Store

func Init(store upload.Store) { mediaStore = store }

// HandlerCreate accepts multipart story media (30MB) with optional caption,
// music and text overlay fields. Expiry is fixed server-side.
func HandlerCreate(c *gin.Context) {
	up, err := upload.Handle(c, mediaStore, upload.KindStory, "media")
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	s, err := storysvc.Create(c.Request.Context(), storysvc.CreateParams{
		AuthorID:  mid.CurrentUserID(c),
		MediaURL:  up.URL,
		MediaType: up.MediaType,
		Caption:   c.PostForm("caption"),
		MusicURL:  c.PostForm("musicUrl"),
		TextOver:  c.PostForm("textOverlay"),
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Created(c, s)
}

// HandlerFeed returns unexpired stories from the caller's follows plus their
// own.
func HandlerFeed(c *gin.Context) {
	page, limit, err := httpx.ParsePage(c)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	me := mid.CurrentUser(c)
	authors := append([]string{me.UserID}, me.Following...)
	stories, err := storysvc.FeedFor(c.Request.Context(), authors, httpx.Skip(page, limit), int64(limit))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, stories)
}

// HandlerView records the caller as a viewer (once) and notifies the author.
func HandlerView(c *gin.Context) {
	s, err := storysvc.MarkViewed(c.Request.Context(), c.Param("id"), mid.CurrentUserID(c))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, s)
}
