package duet

import (
	"github.com/gin-gonic/gin"

	mid "snapcap/middleware"
	duetsvc "snapcap/module/duet/service"
	"snapcap/tools/httpx"
)

type createReq struct {
	PostID  string `json:"postId" binding:"required"`
	Content string `json:"content" binding:"required,min=1,max=500"`
}

// HandlerCreate attaches a duet to a post and notifies its author.
func HandlerCreate(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailValidation(c, "invalid duet input", httpx.BindingErrors(err)...)
		return
	}
	d, err := duetsvc.Create(c.Request.Context(), req.PostID, mid.CurrentUserID(c), req.Content)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Created(c, d)
}

// HandlerListByPost returns a post's duets.
func HandlerListByPost(c *gin.Context) {
	page, limit, err := httpx.ParsePage(c)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	out, err := duetsvc.ListByPost(c.Request.Context(), c.Param("id"), httpx.Skip(page, limit), int64(limit))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

// HandlerDelete removes the caller's own duet.
func HandlerDelete(c *gin.Context) {
	d, err := duetsvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	if !mid.RequireOwner(c, d.AuthorID) {
		return
	}
	if err := duetsvc.Delete(c.Request.Context(), d.DuetID); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OKMsg(c, "deleted", nil)
}
