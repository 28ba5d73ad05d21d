package user

import (
	"github.com/gin-gonic/gin"

	notifmodel "snapcap/module/notification/model"
	notifsvc "snapcap/module/notification/service"
)

func notifyFollow(c *gin.Context, fromUser, target string) {
	_, _ = notifsvc.Notify(c.Request.Context(), notifsvc.Params{
		Recipient: target,
		Type:      notifmodel.TypeFollow,
		FromUser:  fromUser,
	})
}
