package v1

import (
	"net/http"

	"go-network-backend/internal/delivery/http/middleware"
	"go-network-backend/internal/delivery/http/response"
	"go-network-backend/internal/domain"
	"go-network-backend/internal/usecase"
	"go-network-backend/pkg/blob"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC    domain.AuthUsecase
	ProfileUC domain.ProfileUsecase
	MediaUC   domain.MediaUsecase
	SkillUC   domain.SkillUsecase
	HealthUC  usecase.HealthUsecase

	Images         *blob.Store
	MediaPrefix    string
	MaxUploadBytes int64
	JWTSecret      string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	NewImageHandler(r, deps.MediaPrefix, deps.Images)

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		status := deps.HealthUC.Check(c.Request.Context())
		if status["status"] != "ok" {
			response.Error(c, http.StatusServiceUnavailable, "System degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	NewSkillHandler(v1, deps.SkillUC)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWTSecret, deps.AuthUC))
	{
		NewAuthHandler(protected, deps.AuthUC)
		NewProfileHandler(v1, protected, deps.ProfileUC)
		NewMediaHandler(protected, deps.MediaUC, deps.MaxUploadBytes)
	}

	return r
}
