package search

import (
	"strings"

	"github.com/gin-gonic/gin"

	postsvc "snapcap/module/post/service"
	usersvc "snapcap/module/user/service"
	"snapcap/tools/errs"
	"snapcap/tools/httpx"
)

// HandlerSearch queries users by name prefix and posts by hashtag/caption.
// `type` narrows to users|posts; default returns both.
func HandlerSearch(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		httpx.Fail(c, errs.NewValidation("q is required").Wrap())
		return
	}
	page, limit, err := httpx.ParsePage(c)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	skip := httpx.Skip(page, limit)

	kind := c.DefaultQuery("type", "all")
	out := gin.H{}

	if kind == "all" || kind == "users" {
		users, err := usersvc.Search(c.Request.Context(), q, skip, int64(limit))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		out["users"] = users
	}
	if kind == "all" || kind == "posts" {
		posts, err := postsvc.SearchPosts(c.Request.Context(), q, skip, int64(limit))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		out["posts"] = posts
	}
	if len(out) == 0 {
		httpx.Fail(c, errs.NewValidation("type must be users, posts or all").Wrap())
		return
	}
	httpx.OK(c, out)
}
