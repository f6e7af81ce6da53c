package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

func NewRouter(h *Handler, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Metrics())
	r.Use(RequestLog(logger))

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", h.RateLimit(), h.Register)
	auth.POST("/login", h.RateLimit(), h.Login)
	auth.GET("/gh/:code", h.GitHub)
	auth.POST("/google", h.Google)
	auth.POST("/facebook", h.Facebook)

	api.GET("/profile", AuthJWT(h.JWTSecret), h.Profile)
	api.PUT("/update", AuthJWT(h.JWTSecret), h.Update)

	return r
}
