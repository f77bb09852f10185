// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/transcribe-helpers/internal/api/handlers"
	"github.com/andresuchdata/transcribe-helpers/internal/api/middleware"
	"github.com/andresuchdata/transcribe-helpers/internal/service"
)

type Services struct {
	ObjectService *service.ObjectService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(cors.New(newCORSConfig(allowedOrigins)))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	transcriptHandler := handlers.NewTranscriptHandler()
	apiGroup.POST("/transcripts/best", transcriptHandler.BestAlternative)

	if services != nil && services.ObjectService != nil {
		objectHandler := handlers.NewObjectHandler(services.ObjectService)
		apiGroup.POST("/objects", objectHandler.Upload)
		apiGroup.POST("/workdir/purge", objectHandler.PurgeWorkdir)

		bucketGroup := apiGroup.Group("/buckets/:bucket")
		{
			bucketGroup.GET("/objects", objectHandler.List)
			bucketGroup.DELETE("/objects/*key", objectHandler.Delete)
			bucketGroup.GET("/url/*key", objectHandler.URL)
		}
	}

	return router
}

func newCORSConfig(allowedOrigins []string) cors.Config {
	corsConfig := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
	switch {
	case allowAll:
		corsConfig.AllowOrigins = nil
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	case len(normalizedOrigins) > 0:
		corsConfig.AllowOrigins = normalizedOrigins
	}
	return corsConfig
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
