// Package router mounts handlers and their middleware on an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/todo-api/internal/config"
	"github.com/iliyamo/todo-api/internal/handler"
	"github.com/iliyamo/todo-api/internal/middleware"
	"github.com/iliyamo/todo-api/internal/utils"
)

// Deps collects everything the routes need.  Redis may be nil, in which
// case rate limiting and caching are skipped.
type Deps struct {
	Tasks       *handler.TaskHandler
	Users       *handler.UserHandler
	DB          handler.Pinger
	Tokens      utils.TokenParams
	Redis       *redis.Client
	RateLimit   config.RateLimitConfig
	Cache       config.CacheConfig
	SecureTasks bool // require a bearer token on /api/todotasks
}

// Register mounts every route.
func Register(e *echo.Echo, d Deps) {
	auth := middleware.JWTAuth(d.Tokens)

	// health probes, public
	health := handler.Health(d.DB)
	e.GET("/health", health)
	e.GET("/healthz", health)

	var taskMW []echo.MiddlewareFunc
	if d.SecureTasks {
		taskMW = append(taskMW, auth)
	}
	taskMW = append(taskMW, middleware.NewRedisCache(d.Cache, d.Redis))
	tasks := e.Group("/api/todotasks", taskMW...)
	tasks.GET("", d.Tasks.List)
	tasks.GET("/:id", d.Tasks.Get)
	tasks.POST("", d.Tasks.Create)
	tasks.PUT("/:id", d.Tasks.Update)
	tasks.DELETE("/:id", d.Tasks.Delete)

	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis)
	e.POST("/api/users", d.Users.Register, limit)
	user := e.Group("/api/user")
	user.POST("/register", d.Users.Register, limit)
	user.POST("/login", d.Users.Login, limit)
	user.GET("/me", d.Users.Me, auth)
}
