package user

import (
	"github.com/gin-gonic/gin"

	mid "snapcap/middleware"
	usermodel "snapcap/module/user/model"
	usersvc "snapcap/module/user/service"
	"snapcap/service/upload"
	"snapcap/tools/errs"
	"snapcap/tools/httpx"
	"snapcap/tools/security"
)

// package wiring, set once from main
var (
	jwtOpts    security.Options
	mediaStore upload.Store
)

func Init(opts security.Options, store upload.Store) {
	jwtOpts = opts
	mediaStore = store
}

type registerReq struct {
	Username string `json:"username" binding:"required,min=3,max=30,alphanum"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type authResp struct {
	Token string          `json:"token"`
	User  *usermodel.User `json:"user"`
}

// HandlerRegister creates an account and signs a token. The user struct
// never serializes the password hash.
func HandlerRegister(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailValidation(c, "invalid registration input", httpx.BindingErrors(err)...)
		return
	}
	u, err := usersvc.Register(c.Request.Context(), usersvc.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	token, _, err := security.Generate(jwtOpts, u.UserID, u.Username)
	if err != nil {
		httpx.Fail(c, errs.Wrap(err))
		return
	}
	httpx.Created(c, authResp{Token: token, User: u})
}

type loginReq struct {
	Username string `json:"username" binding:"required"` // username or email
	Password string `json:"password" binding:"required"`
}

func HandlerLogin(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailValidation(c, "username and password are required")
		return
	}
	u, err := usersvc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	token, _, err := security.Generate(jwtOpts, u.UserID, u.Username)
	if err != nil {
		httpx.Fail(c, errs.Wrap(err))
		return
	}
	httpx.OK(c, authResp{Token: token, User: u})
}

// HandlerMe returns the authenticated account.
func HandlerMe(c *gin.Context) {
	httpx.OK(c, mid.CurrentUser(c))
}

// HandlerGetProfile returns any user's public profile.
func HandlerGetProfile(c *gin.Context) {
	u, err := usersvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	if !mid.RequireNotBlocked(c, u) {
		return
	}
	httpx.OK(c, u)
}

type updateProfileReq struct {
	DisplayName *string             `json:"displayName" binding:"omitempty,max=50"`
	Bio         *string             `json:"bio" binding:"omitempty,max=300"`
	Location    *usermodel.Location `json:"location"`
}

func HandlerUpdateProfile(c *gin.Context) {
	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailValidation(c, "invalid profile input", httpx.BindingErrors(err)...)
		return
	}
	u, err := usersvc.UpdateProfile(c.Request.Context(), mid.CurrentUserID(c), usersvc.ProfileUpdate{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Location:    req.Location,
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, u)
}

// HandlerUploadAvatar accepts a multipart avatar (5MB, images only).
func HandlerUploadAvatar(c *gin.Context) {
	up, err := upload.Handle(c, mediaStore, upload.KindAvatar, "avatar")
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	u, err := usersvc.UpdateProfile(c.Request.Context(), mid.CurrentUserID(c), usersvc.ProfileUpdate{
		AvatarURL: &up.URL,
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, u)
}

// HandlerFollow follows the target and notifies them.
func HandlerFollow(c *gin.Context) {
	targetID := c.Param("id")
	target, err := usersvc.GetByID(c.Request.Context(), targetID)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	if !mid.RequireNotBlocked(c, target) {
		return
	}
	me := mid.CurrentUser(c)
	if err := usersvc.Follow(c.Request.Context(), me.UserID, targetID); err != nil {
		httpx.Fail(c, err)
		return
	}
	notifyFollow(c, me.UserID, targetID)
	httpx.OKMsg(c, "following", nil)
}

func HandlerUnfollow(c *gin.Context) {
	if err := usersvc.Unfollow(c.Request.Context(), mid.CurrentUserID(c), c.Param("id")); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OKMsg(c, "unfollowed", nil)
}

func HandlerBlock(c *gin.Context) {
	if err := usersvc.Block(c.Request.Context(), mid.CurrentUserID(c), c.Param("id")); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OKMsg(c, "blocked", nil)
}

func HandlerUnblock(c *gin.Context) {
	if err := usersvc.Unblock(c.Request.Context(), mid.CurrentUserID(c), c.Param("id")); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OKMsg(c, "unblocked", nil)
}
