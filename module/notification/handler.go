package notification

import (
	"github.com/gin-gonic/gin"

	mid "snapcap/middleware"
	notifsvc "snapcap/module/notification/service"
	"snapcap/tools/httpx"
)

// HandlerList returns the caller's notifications, newest first.
func HandlerList(c *gin.Context) {
	page, limit, err := httpx.ParsePage(c)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	out, err := notifsvc.List(c.Request.Context(), mid.CurrentUserID(c), httpx.Skip(page, limit), int64(limit))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

func HandlerUnreadCount(c *gin.Context) {
	n, err := notifsvc.UnreadCount(c.Request.Context(), mid.CurrentUserID(c))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, gin.H{"unread": n})
}

func HandlerMarkRead(c *gin.Context) {
	if err := notifsvc.MarkRead(c.Request.Context(), mid.CurrentUserID(c), c.Param("id")); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OKMsg(c, "read", nil)
}

func HandlerMarkAllRead(c *gin.Context) {
	n, err := notifsvc.MarkAllRead(c.Request.Context(), mid.CurrentUserID(c))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, gin.H{"marked": n})
}
