package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"snapcap/global"
	"snapcap/logger"
	mid "snapcap/middleware"
	"snapcap/module/chat"
	"snapcap/module/comment"
	"snapcap/module/duet"
	"snapcap/module/friend"
	"snapcap/module/notification"
	notifsvc "snapcap/module/notification/service"
	"snapcap/module/post"
	"snapcap/module/search"
	"snapcap/module/story"
	"snapcap/module/user"
	usersvc "snapcap/module/user/service"
	"snapcap/service/caption"
	"snapcap/service/cron"
	"snapcap/service/gateway"
	"snapcap/service/mgo"
	redisx "snapcap/service/storage/redis"
	"snapcap/service/upload"
	"snapcap/tools/ids"
	"snapcap/tools/security"
)

func main() {
	cfg, err := global.Load()
	if err != nil {
		logger.Errorf("config: %v", err)
		os.Exit(1)
	}
	ids.SetNodeID(cfg.NodeID)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// storage comes up async; wait for the first connection before serving
	mgo.StartAsync(rootCtx, mgo.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		Username:    cfg.Mongo.Username,
		Password:    cfg.Mongo.Password,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	waitCtx, cancel := context.WithTimeout(rootCtx, 30*time.Second)
	err = mgo.WaitReady(waitCtx)
	cancel()
	if err != nil {
		logger.Errorf("mongo not ready: %v (last: %v)", err, mgo.Err())
		os.Exit(1)
	}
	if err := usersvc.EnsureIndexes(rootCtx); err != nil {
		logger.Warnf("user indexes: %v", err)
	}

	if err := redisx.InitRedis(redisx.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}); err != nil {
		logger.Warnf("redis unavailable, presence degraded: %v", err)
	}

	store, err := upload.NewS3Store(rootCtx, upload.S3Config{
		Region:    cfg.S3.Region,
		Bucket:    cfg.S3.Bucket,
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		PublicURL: cfg.S3.PublicURL,
	})
	if err != nil {
		logger.Errorf("s3: %v", err)
		os.Exit(1)
	}

	jwtOpts := security.Options{Secret: cfg.JWTSecret(), Alg: "HS256", TTL: cfg.JWT.TTL}
	captioner := caption.NewGenerator(cfg.OpenAI.APIKey, cfg.OpenAI.Model)

	user.Init(jwtOpts, store)
	post.Init(store, captioner)
	story.Init(store)
	chat.Init(store)

	gw := gateway.NewServer(ids.GenerateString(), jwtOpts)
	var relay *gateway.NatsRelay
	if cfg.NATS.URL != "" {
		relay, err = gateway.NewNatsRelay(cfg.NATS.URL, cfg.NATS.Subject, gw.ConnMgr().GwID(), gw)
		if err != nil {
			logger.Warnf("nats relay disabled: %v", err)
			relay = nil
		} else {
			gw.AttachRelay(relay)
		}
	}

	scheduler, err := cron.Start()
	if err != nil {
		logger.Errorf("cron: %v", err)
		os.Exit(1)
	}

	limiter := mid.NewSlidingWindow(cfg.RateLimit.Window, cfg.RateLimit.Max)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), mid.CORS(cfg.CORS.Origins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "env": cfg.Env})
	})
	r.GET("/ws", gw.HandleWS)

	api := r.Group("/api")

	// multi-instance deployments share the window through Redis
	var limit gin.HandlerFunc
	if cfg.NATS.URL != "" {
		limit = mid.RateLimitRedis(cfg.RateLimit.Window, cfg.RateLimit.Max)
	} else {
		limit = mid.RateLimit(limiter)
	}

	auth := api.Group("/auth")
	auth.Use(limit)
	{
		auth.POST("/register", user.HandlerRegister)
		auth.POST("/login", user.HandlerLogin)
	}

	// share links open without an account; the limiter runs after
	// OptionalAuth so a presented token keys the window by user
	public := api.Group("/public")
	public.Use(mid.OptionalAuth(jwtOpts), limit)
	{
		public.GET("/posts/:id", post.HandlerGet)
		public.GET("/users/:id", user.HandlerGetProfile)
	}

	authed := api.Group("")
	authed.Use(mid.Authenticate(jwtOpts), limit)

	users := authed.Group("/users")
	{
		users.GET("/me", user.HandlerMe)
		users.PUT("/me", user.HandlerUpdateProfile)
		users.POST("/me/avatar", user.HandlerUploadAvatar)
		users.GET("/:id", user.HandlerGetProfile)
		users.POST("/:id/follow", user.HandlerFollow)
		users.DELETE("/:id/follow", user.HandlerUnfollow)
		users.POST("/:id/block", user.HandlerBlock)
		users.DELETE("/:id/block", user.HandlerUnblock)
		users.GET("/:id/posts", post.HandlerListByUser)
	}

	posts := authed.Group("/posts")
	{
		posts.POST("", post.HandlerCreate)
		posts.GET("/feed", post.HandlerFeed)
		posts.GET("/map", post.HandlerMapFeed)
		posts.GET("/:id", post.HandlerGet)
		posts.POST("/:id/like", post.HandlerLike)
		posts.POST("/:id/share", post.HandlerShare)
		posts.GET("/:id/comments", comment.HandlerListByPost)
		posts.GET("/:id/duets", duet.HandlerListByPost)
	}

	stories := authed.Group("/stories")
	{
		stories.POST("", story.HandlerCreate)
		stories.GET("/feed", story.HandlerFeed)
		stories.POST("/:id/view", story.HandlerView)
	}

	comments := authed.Group("/comments")
	{
		comments.POST("", comment.HandlerCreate)
		comments.POST("/:id/like", comment.HandlerLike)
		comments.DELETE("/:id", comment.HandlerDelete)
	}

	duets := authed.Group("/duets")
	{
		duets.POST("", duet.HandlerCreate)
		duets.DELETE("/:id", duet.HandlerDelete)
	}

	chats := authed.Group("/chat")
	{
		chats.GET("/conversations", chat.HandlerListConversations)
		chats.POST("/conversations", chat.HandlerOpenConversation)
		chats.GET("/conversations/:id/messages", chat.HandlerListMessages)
		chats.POST("/conversations/:id/messages", chat.HandlerSendMessage)
		chats.POST("/conversations/:id/media", chat.HandlerSendMedia)
		chats.POST("/conversations/:id/read", chat.HandlerMarkRead)
	}

	notifs := authed.Group("/notifications")
	{
		notifs.GET("", notification.HandlerList)
		notifs.GET("/unread", notification.HandlerUnreadCount)
		notifs.POST("/:id/read", notification.HandlerMarkRead)
		notifs.POST("/read-all", notification.HandlerMarkAllRead)
	}

	authed.GET("/search", search.HandlerSearch)
	authed.GET("/friends", friend.HandlerList)
	authed.GET("/friends/online", friend.HandlerOnline)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		logger.Infof("listening on %s (env=%s)", cfg.HTTPAddr, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("http server: %v", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	logger.Info("shutting down")

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutCtx)

	gw.Close()
	if relay != nil {
		relay.Close()
	}
	notifsvc.ResetRelays()
	limiter.Stop()
	_ = scheduler.Shutdown()
	_ = redisx.CloseRedis()
}
