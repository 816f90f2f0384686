package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talentvec/talentvec/internal/middleware"
)

type RouterDeps struct {
	Chunks    *ChunkHandler
	Search    *SearchHandler
	Answers   *AnswerHandler
	Files     *FileHandler
	JWTSecret []byte
	// AskWindow throttles the answer endpoint, which fans out to paid
	// provider calls. Zero disables the throttle.
	AskWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))

	authGroup.POST("/chunks", deps.Chunks.Create)
	authGroup.GET("/chunks", deps.Chunks.List)
	authGroup.GET("/chunks/stats", deps.Chunks.Stats)
	authGroup.POST("/chunks/search", deps.Search.SearchChunks)
	authGroup.DELETE("/chunks/extraction/:id", deps.Chunks.DeleteByExtraction)
	authGroup.DELETE("/chunks/document/:id", deps.Chunks.DeleteByDocument)

	authGroup.POST("/search/records", deps.Search.SearchRecords)
	authGroup.POST("/ask", middleware.RateLimit(deps.AskWindow), deps.Answers.Ask)

	authGroup.POST("/files/upload", deps.Files.Upload)
	authGroup.GET("/files/:key", deps.Files.Get)
	authGroup.DELETE("/files/:key", deps.Files.Delete)
}
