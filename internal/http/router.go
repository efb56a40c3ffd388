// Package http exposes the import pipeline over a small JSON API.
package http

import (
	"github.com/gin-gonic/gin"
)

// RouterConfig carries the controllers the router wires up.
type RouterConfig struct {
	Health  *HealthController
	Imports *ImportController

	// CoversDir, when set, is served read-only under /covers.
	CoversDir string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.GET("/health", cfg.Health.Status)

	if cfg.CoversDir != "" {
		router.Static("/covers", cfg.CoversDir)
	}

	api := router.Group("/api")
	{
		imports := api.Group("/import")
		{
			imports.POST("/goodreads", cfg.Imports.Goodreads)
			imports.POST("/libby", cfg.Imports.Libby)
			imports.POST("/kindle", cfg.Imports.KindleList)
			imports.POST("/kindle-clippings", cfg.Imports.KindleClippings)
			imports.POST("/kobo", cfg.Imports.Kobo)
			imports.POST("/readwise", cfg.Imports.Readwise)
		}

		api.GET("/duplicates", cfg.Imports.Duplicates)
	}

	return router
}
