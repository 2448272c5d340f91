package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	bookmarksdomain "github.com/daybook-app/daybook/internal/bookmarks/domain"
	calendardomain "github.com/daybook-app/daybook/internal/calendar/domain"
	"github.com/daybook-app/daybook/internal/config"
	identitydomain "github.com/daybook-app/daybook/internal/identity/domain"
	notesdomain "github.com/daybook-app/daybook/internal/notes/domain"
	"github.com/daybook-app/daybook/internal/observability"
	"github.com/daybook-app/daybook/internal/ratelimit"
	tasksdomain "github.com/daybook-app/daybook/internal/tasks/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(autoMigrate),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, registry *prometheus.Registry, httpMetrics *observability.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.GinMiddleware(log, observability.MiddlewareConfig{
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(observability.MetricsMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return r
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&identitydomain.User{},
		&calendardomain.RefreshTokenRecord{},
		&tasksdomain.Task{},
		&notesdomain.Note{},
		&bookmarksdomain.Bookmark{},
	)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	identitySvc identitydomain.Service
	calendarSvc calendardomain.Service
	taskSvc     tasksdomain.Service
	noteSvc     notesdomain.Service
	bookmarkSvc bookmarksdomain.Service
	mintLimiter *ratelimit.MintLimiter
	eventsCache *eventsCache
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	IdentitySvc identitydomain.Service
	CalendarSvc calendardomain.Service
	TaskSvc     tasksdomain.Service
	NoteSvc     notesdomain.Service
	BookmarkSvc bookmarksdomain.Service
	MintLimiter *ratelimit.MintLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("server"),
		identitySvc: p.IdentitySvc,
		calendarSvc: p.CalendarSvc,
		taskSvc:     p.TaskSvc,
		noteSvc:     p.NoteSvc,
		bookmarkSvc: p.BookmarkSvc,
		mintLimiter: p.MintLimiter,
		eventsCache: newEventsCache(p.Cfg.EventsCacheTTL),
	}

	s.registerAuthRoutes()
	s.registerAPIRoutes()

	return s
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")
	auth.GET("/login", s.Login)
	auth.GET("/google/callback", s.OAuthCallback)
	auth.POST("/google/url", s.AuthRequired(), s.ConnectCalendarURL)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	calendar := api.Group("/calendar")
	calendar.GET("/events", s.ListCalendarEvents)
	calendar.POST("/events", s.CreateCalendarEvent)
	calendar.GET("/access-token", s.MintRateLimit(), s.MintCalendarToken)
	calendar.GET("/status", s.CalendarStatus)

	tasks := api.Group("/tasks")
	tasks.GET("", s.ListTasks)
	tasks.POST("", s.CreateTask)
	tasks.PATCH("/:id", s.UpdateTask)
	tasks.DELETE("/:id", s.DeleteTask)

	notes := api.Group("/notes")
	notes.GET("", s.ListNotes)
	notes.POST("", s.CreateNote)
	notes.PATCH("/:id", s.UpdateNote)
	notes.DELETE("/:id", s.DeleteNote)

	bookmarks := api.Group("/bookmarks")
	bookmarks.GET("", s.ListBookmarks)
	bookmarks.POST("", s.CreateBookmark)
	bookmarks.DELETE("/:id", s.DeleteBookmark)
}
