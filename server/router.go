package server

import (
	"net/http"
	"time"

	httpHandler "publish-automation/interfaces/http"
	"publish-automation/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitiateRouter(publishHandler httpHandler.IPublishHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:4200", "http://localhost:1313"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.POST("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("api")
	api.Use(middleware.Auth())

	publish := api.Group("/publish")
	{
		publish.POST("/queue", publishHandler.EnqueuePosts)
		publish.GET("/queue", publishHandler.GetQueue)
		publish.GET("/status", publishHandler.GetStatus)
		publish.POST("/dispatch", publishHandler.Dispatch)
		publish.GET("/tasks", publishHandler.GetTasks)
		publish.GET("/platforms", publishHandler.GetPlatforms)
	}

	return router
}
