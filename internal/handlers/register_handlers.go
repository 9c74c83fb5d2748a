package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	portssvc "github.com/read424/walrex-contable-sub001/internal/core/ports/services"
	"github.com/read424/walrex-contable-sub001/pkg/config"
)

// RegisterRoutes sets up all application routes.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, entryService portssvc.JournalEntrySvcFacade) {
	r.GET("/health", getHealth)

	v1 := r.Group("/api/v1")
	RegisterJournalEntryRoutes(v1, entryService)

	setupSwaggerRoutes(r, cfg)
}

// setupSwaggerRoutes configures the swagger documentation routes.
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
