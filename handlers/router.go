package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ewm/api/config"
	"ewm/api/middleware"
)

// MainHandlers groups every handler the main service routes to.
type MainHandlers struct {
	Auth         *AuthHandlers
	Users        *UserHandlers
	Categories   *CategoryHandlers
	Events       *EventHandlers
	Requests     *RequestHandlers
	Comments     *CommentHandlers
	Compilations *CompilationHandlers
}

// newEngine installs the middleware both services share. limiter may be nil.
func newEngine(shared config.Shared, limiter *middleware.LimiterStore, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logger(log), gin.Recovery())
	r.Use(middleware.CORSMiddleware(shared.FrontendOrigin))
	if limiter != nil {
		r.Use(middleware.RateLimit(limiter, log))
	}
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
	return r
}

func NewStatsRouter(cfg *config.Stats, stats *StatsHandlers, limiter *middleware.LimiterStore, log *zap.Logger) *gin.Engine {
	r := newEngine(cfg.Shared, limiter, log)
	r.POST("/hit", stats.RecordHit)
	r.GET("/stats", stats.GetStats)
	return r
}

func NewMainRouter(cfg *config.Main, h MainHandlers, limiter *middleware.LimiterStore, log *zap.Logger) *gin.Engine {
	r := newEngine(cfg.Shared, limiter, log)

	// Public
	r.GET("/categories", h.Categories.List)
	r.GET("/categories/:catId", h.Categories.Get)
	r.GET("/events", h.Events.PublicSearch)
	r.GET("/events/:eventId", h.Events.PublicEvent)
	r.GET("/events/:eventId/comments", h.Comments.EventComments)
	r.GET("/comments/:commentId", h.Comments.Get)
	r.GET("/compilations", h.Compilations.List)
	r.GET("/compilations/:compId", h.Compilations.Get)

	// Private, scoped to the acting user.
	users := r.Group("/users/:userId")
	{
		users.POST("/events", h.Events.Create)
		users.GET("/events", h.Events.UserEvents)
		users.GET("/events/:eventId", h.Events.UserEvent)
		users.PATCH("/events/:eventId", h.Events.UpdateByUser)
		users.GET("/events/:eventId/requests", h.Requests.EventRequests)
		users.PATCH("/events/:eventId/requests", h.Requests.ChangeStatus)
		users.POST("/events/:eventId/comments", h.Comments.Create)

		users.POST("/requests", h.Requests.Create)
		users.GET("/requests", h.Requests.UserRequests)
		users.PATCH("/requests/:requestId/cancel", h.Requests.Cancel)

		users.PATCH("/comments/:commentId", h.Comments.Update)
		users.DELETE("/comments/:commentId", h.Comments.Delete)
	}

	r.POST("/admin/login", h.Auth.Login)
	r.POST("/admin/logout", h.Auth.Logout)

	admin := r.Group("/admin")
	if cfg.AdminAuthEnabled {
		admin.Use(middleware.AuthRequired([]byte(cfg.JWTSecret), cfg.AuthDefault, log))
	}
	{
		admin.POST("/users", h.Users.Create)
		admin.GET("/users", h.Users.List)
		admin.DELETE("/users/:userId", h.Users.Delete)

		admin.POST("/categories", h.Categories.Create)
		admin.PATCH("/categories/:catId", h.Categories.Update)
		admin.DELETE("/categories/:catId", h.Categories.Delete)

		admin.GET("/events", h.Events.AdminSearch)
		admin.PATCH("/events/:eventId", h.Events.UpdateByAdmin)

		admin.PATCH("/comments/:commentId", h.Comments.Moderate)

		admin.POST("/compilations", h.Compilations.Create)
		admin.PATCH("/compilations/:compId", h.Compilations.Update)
		admin.DELETE("/compilations/:compId", h.Compilations.Delete)
	}

	return r
}
