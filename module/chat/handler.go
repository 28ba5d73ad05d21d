package chat

import (
	"github.com/gin-gonic/gin"

	mid "snapcap/middleware"
	chatmodel "snapcap/module/chat/model"
	chatsvc "snapcap/module/chat/service"
	"snapcap/service/upload"
	"snapcap/tools/httpx"
)

var mediaStore upload.Store

func Init(store upload.Store) { mediaStore = store }

// HandlerListConversations returns threads sorted by last activity.
func HandlerListConversations(c *gin.Context) {
	page, limit, err := httpx.ParsePage(c)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	out, err := chatsvc.ListConversations(c.Request.Context(), mid.CurrentUserID(c), httpx.Skip(page, limit), int64(limit))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

type openReq struct {
	UserID string `json:"userId" binding:"required"`
}

// HandlerOpenConversation gets or creates the thread with another user.
func HandlerOpenConversation(c *gin.Context) {
	var req openReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailValidation(c, "userId is required")
		return
	}
	conv, err := chatsvc.GetOrCreateConversation(c.Request.Context(), mid.CurrentUserID(c), req.UserID)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, conv)
}

type sendReq struct {
	Content string `json:"content" binding:"required,min=1,max=5000"`
	Type    string `json:"type" binding:"omitempty,oneof=text image video audio file"`
}

// HandlerSendMessage posts a text message into the thread.
func HandlerSendMessage(c *gin.Context) {
	var req sendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailValidation(c, "invalid message input", httpx.BindingErrors(err)...)
		return
	}
	if req.Type == "" {
		req.Type = chatmodel.MsgText
	}
	m, err := chatsvc.SendMessage(c.Request.Context(), chatsvc.SendParams{
		ConversationID: c.Param("id"),
		SenderID:       mid.CurrentUserID(c),
		Content:        req.Content,
		Type:           req.Type,
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Created(c, m)
}

// HandlerSendMedia uploads chat media (25MB) and sends it as a typed
// message whose content is the stored URL.
func HandlerSendMedia(c *gin.Context) {
	up, err := upload.Handle(c, mediaStore, upload.KindChat, "media")
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	m, err := chatsvc.SendMessage(c.Request.Context(), chatsvc.SendParams{
		ConversationID: c.Param("id"),
		SenderID:       mid.CurrentUserID(c),
		Content:        up.URL,
		Type:           up.MediaType,
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Created(c, m)
}

// HandlerListMessages returns one page of the thread.
func HandlerListMessages(c *gin.Context) {
	page, limit, err := httpx.ParsePage(c)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	out, err := chatsvc.ListMessages(c.Request.Context(), c.Param("id"), mid.CurrentUserID(c), httpx.Skip(page, limit), int64(limit))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

// HandlerMarkRead flips IsRead on everything addressed to the caller.
func HandlerMarkRead(c *gin.Context) {
	n, err := chatsvc.MarkRead(c.Request.Context(), c.Param("id"), mid.CurrentUserID(c))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, gin.H{"marked": n})
}
