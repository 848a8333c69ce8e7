package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apirest "github.com/shillien-project/portal/api/rest"
	"github.com/shillien-project/portal/api/sse"
	"github.com/shillien-project/portal/audit"
	"github.com/shillien-project/portal/cache"
	"github.com/shillien-project/portal/config"
	"github.com/shillien-project/portal/countdown"
	dbadapter "github.com/shillien-project/portal/db"
	"github.com/shillien-project/portal/game/droprate"
	"github.com/shillien-project/portal/game/item"
	"github.com/shillien-project/portal/game/market"
	mw "github.com/shillien-project/portal/middleware"
	"github.com/shillien-project/portal/model"
	"github.com/shillien-project/portal/resource"
	"github.com/shillien-project/portal/scheduler"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized")

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(nil)

	// ---- Cache / PubSub ----
	cacheConfig := cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
		LocalPubSubBuf:  cfg.Cache.LocalPubSubBuf,
	}
	c, err := cache.NewCache(cacheConfig)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	pubsub, err := cache.NewPubSub(cacheConfig)
	if err != nil {
		log.Fatalf("pubsub: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- Static game data ----
	res := resource.NewLoader(cfg.Data.Path)
	if err := res.Load(); err != nil {
		log.Fatalf("resource: %v", err)
	}
	logger.Info("Game data loaded",
		zap.Int("items", len(res.ItemDefs.Items)),
		zap.Int("drop_tables", len(res.DropTables)))

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()

	// ---- Services ----
	items := item.NewService(db, res, cfg.Game, logger)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	marketSvc := market.NewService(c, res, cfg.Market, rng, logger)
	drops := droprate.NewService(res)

	// ---- Launch countdown ----
	// The engine publishes each second's breakdown over pub/sub; the SSE
	// handler fans it out to connected landing pages.
	engine := countdown.NewEngineFromConfig(
		cfg.Countdown.Target,
		sse.PublishBreakdown(pubsub, logger),
		logger,
		countdown.WithOnComplete(func() {
			sched.Remove("countdown")
			logger.Info("launch countdown complete")
		}),
	)
	if engine != nil {
		sched.AddTicker("countdown", time.Second, engine.Tick)
		logger.Info("Launch countdown armed",
			zap.Time("target", engine.Target()))
	}

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// ---- REST API routes ----
	authH := apirest.NewAuthHandler(db, c, cfg.Security)
	charH := apirest.NewCharacterHandler(db, items, cfg.Game)
	invH := apirest.NewInventoryHandler(db, items)
	marketH := apirest.NewMarketHandler(db, items, marketSvc, auditSvc, logger)
	dropH := apirest.NewDropRateHandler(drops)
	countdownH := apirest.NewCountdownHandler(engine)
	adminH := apirest.NewAdminHandler(db, marketSvc, pubsub, sched, logger)

	api := r.Group("/api")
	{
		authG := api.Group("/auth")
		authG.POST("/login", authH.Login)
		authG.POST("/logout", mw.Auth(cfg.Security, c), authH.Logout)
		authG.POST("/refresh", mw.Auth(cfg.Security, c), authH.Refresh)

		charsG := api.Group("/characters")
		charsG.Use(mw.Auth(cfg.Security, c))
		charsG.GET("", charH.List)
		charsG.POST("", charH.Create)
		charsG.DELETE("/:id", charH.Delete)
		charsG.GET("/:id/inventory", invH.List)
		charsG.POST("/:id/inventory/split", invH.Split)
		charsG.POST("/:id/inventory/combine", invH.Combine)

		marketG := api.Group("/market")
		marketG.Use(mw.Auth(cfg.Security, c))
		marketG.GET("/catalog", marketH.Catalog)
		marketG.POST("/buy", marketH.Buy)
		marketG.POST("/sell", marketH.Sell)

		// Public pages: drop database and countdown need no login.
		api.GET("/droprates", dropH.List)
		api.GET("/droprates/:monster", dropH.Monster)
		api.GET("/countdown", countdownH.Status)

		adminG := api.Group("/admin")
		adminG.Use(apirest.AdminAuth(cfg.Server.AdminKey))
		adminG.GET("/metrics", adminH.Metrics)
		adminG.POST("/announce", adminH.Announce)
		adminG.POST("/accounts/:id/ban", adminH.BanAccount)
	}

	// ---- SSE ----
	sseH := sse.NewHandler(pubsub, logger)
	r.GET("/sse", sseH.ServeSSE)

	// ---- Static site ----
	if cfg.Server.SiteDir != "" {
		r.StaticFile("/", cfg.Server.SiteDir+"/index.html")
		r.NoRoute(func(c *gin.Context) {
			path := cfg.Server.SiteDir + c.Request.URL.Path
			if _, err := os.Stat(path); err == nil {
				c.File(path)
				return
			}
			c.JSON(404, gin.H{"error": "not found"})
		})
		logger.Info("Serving site files", zap.String("dir", cfg.Server.SiteDir))
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
