// api/router.go
package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/astro-datacenter/rundb/api/handlers"
	"github.com/astro-datacenter/rundb/api/middleware"
	"github.com/astro-datacenter/rundb/config"
)

// SetupRouter initializes the Gin router and sets up all routes.
func SetupRouter(db *sql.DB, cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.RequestID())
	router.Use(cors.New(corsConfig(cfg)))
	if cfg.RateLimit > 0 {
		router.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(cfg.RateLimit, time.Minute)))
	}
	// runs after the handlers and turns attached errors into responses
	router.Use(middleware.ErrorHandler())

	authHandler := handlers.NewAuthHandler(db, cfg)
	queryHandler := handlers.NewQueryHandler(db, cfg)
	dataSetHandler := handlers.NewDataSetHandler(db, cfg)
	commentHandler := handlers.NewCommentHandler(db, cfg)
	sequenceHandler := handlers.NewSequenceHandler(db, cfg)

	// --- Public Routes ---
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
	}

	// --- Protected Routes ---
	apiRoutes := router.Group("/api/v1")
	apiRoutes.Use(middleware.AuthMiddleware(db, cfg))
	{
		apiRoutes.GET("/me", authHandler.Me)

		apiRoutes.GET("/pages", queryHandler.ListPages)
		apiRoutes.GET("/query/:page", queryHandler.Query)

		apiRoutes.POST("/datasets/check", dataSetHandler.Check)
		apiRoutes.POST("/datasets", dataSetHandler.Store)
		apiRoutes.GET("/datasets/:number/file", dataSetHandler.File)

		apiRoutes.GET("/comments/:kind", commentHandler.List)
		apiRoutes.POST("/comments/:kind", commentHandler.Create)
		apiRoutes.PUT("/comments/:kind", commentHandler.Update)

		apiRoutes.GET("/sequences/reset", sequenceHandler.PreviewReset)
		apiRoutes.POST("/sequences/reset", sequenceHandler.Reset)
		apiRoutes.GET("/sources", sequenceHandler.Sources)
		apiRoutes.GET("/plots/sequences", sequenceHandler.PlotSequences)
		apiRoutes.GET("/plots/file", sequenceHandler.PlotFile)
	}

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", middleware.RequestIDHeader)
	c.ExposeHeaders = []string{middleware.RequestIDHeader, "Content-Disposition"}
	if len(cfg.CORSOrigins) == 0 || (len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.CORSOrigins
	}
	return c
}
