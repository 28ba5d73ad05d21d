package friend

import (
	"github.com/gin-gonic/gin"

	mid "snapcap/middleware"
	usermodel "snapcap/module/user/model"
	usersvc "snapcap/module/user/service"
	"snapcap/service/storage"
	"snapcap/tools/httpx"
)

// Friends are mutual follows.
func mutuals(me *usermodel.User) []string {
	followers := make(map[string]struct{}, len(me.Followers))
	for _, id := range me.Followers {
		followers[id] = struct{}{}
	}
	var out []string
	for _, id := range me.Following {
		if _, ok := followers[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// HandlerList returns the caller's friends.
func HandlerList(c *gin.Context) {
	me := mid.CurrentUser(c)
	friends, err := usersvc.ListByIDs(c.Request.Context(), mutuals(me))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, friends)
}

// HandlerOnline returns only the friends currently online, with their
// locations for the map view.
func HandlerOnline(c *gin.Context) {
	me := mid.CurrentUser(c)
	friends, err := usersvc.ListByIDs(c.Request.Context(), mutuals(me))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	online := make([]usermodel.User, 0, len(friends))
	for _, f := range friends {
		// live presence wins over the document flag when Redis is up
		if _, up, err := storage.Lookup(c.Request.Context(), f.UserID); err == nil {
			if up {
				online = append(online, f)
			}
			continue
		}
		if f.IsOnline {
			online = append(online, f)
		}
	}
	httpx.OK(c, online)
}
