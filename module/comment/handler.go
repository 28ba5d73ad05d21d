package comment

import (
	"github.com/gin-gonic/gin"

	mid "snapcap/middleware"
	commentsvc "snapcap/module/comment/service"
	"snapcap/tools/httpx"
)

type createReq struct {
	PostID  string `json:"postId" binding:"required"`
	Content string `json:"content" binding:"required,min=1,max=500"`
}

// HandlerCreate adds a comment; @mentions in the content notify the
// mentioned users.
func HandlerCreate(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailValidation(c, "invalid comment input", httpx.BindingErrors(err)...)
		return
	}
	cm, err := commentsvc.Create(c.Request.Context(), req.PostID, mid.CurrentUserID(c), req.Content)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Created(c, cm)
}

// HandlerListByPost returns a post's comments.
func HandlerListByPost(c *gin.Context) {
	page, limit, err := httpx.ParsePage(c)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	out, err := commentsvc.ListByPost(c.Request.Context(), c.Param("id"), httpx.Skip(page, limit), int64(limit))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

// HandlerLike toggles a comment like.
func HandlerLike(c *gin.Context) {
	liked, likes, err := commentsvc.ToggleLike(c.Request.Context(), c.Param("id"), mid.CurrentUserID(c))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, gin.H{"liked": liked, "likes": likes})
}

// HandlerDelete removes the caller's own comment (403 otherwise).
func HandlerDelete(c *gin.Context) {
	cm, err := commentsvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	if !mid.RequireOwner(c, cm.AuthorID) {
		return
	}
	if err := commentsvc.Delete(c.Request.Context(), cm.CommentID); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OKMsg(c, "deleted", nil)
}
